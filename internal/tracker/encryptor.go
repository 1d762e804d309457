package tracker

import "io"

// Encryptor protects sensitive values at rest. Encryption needs only the
// public key; decryption needs the private key unlocked by Unlock.
type Encryptor interface {
	// Setup performs one-time key generation during `mood config init`.
	// An empty passphrase stores the private key unencrypted.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock loads the private key and returns a DecryptionContext.
	// Returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist at configured paths.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory. The unlocked
// key is never written back to disk.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
