package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"

	"moodtrack/internal/config"
	"moodtrack/internal/tracker"
)

// scryptFileHeader is the first line of a passphrase-protected key file.
const scryptFileHeader = "age-encryption.org/v1"

var errNoPassphrase = errors.New("private key is passphrase protected but no passphrase was given")

// AgeEncryptor seals session values (the bearer token and the signed-in user)
// to an X25519 recipient kept next to the config. The matching identity is
// written either as a plain owner-only file or wrapped with an age scrypt
// passphrase, and is only read on Unlock.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string

	once      sync.Once
	recipient age.Recipient
	loadErr   error
}

var _ tracker.Encryptor = (*AgeEncryptor)(nil)

func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// Setup creates a key pair for this installation. An empty passphrase leaves
// the identity unwrapped so the CLI can open the session without prompting.
func (e *AgeEncryptor) Setup(passphrase string) error {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return fmt.Errorf("creating key directory: %w", err)
		}
	}

	pub := identity.Recipient().String() + "\n"
	if err := os.WriteFile(e.publicKeyPath, []byte(pub), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	if err := writeIdentity(e.privateKeyPath, identity, passphrase); err != nil {
		return err
	}

	e.once = sync.Once{}
	return nil
}

func writeIdentity(path string, identity *age.X25519Identity, passphrase string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating private key file: %w", err)
	}
	defer f.Close()

	var w io.WriteCloser = nopWriteCloser{f}
	if passphrase != "" {
		wrap, err := age.NewScryptRecipient(passphrase)
		if err != nil {
			return fmt.Errorf("creating scrypt recipient: %w", err)
		}
		if w, err = age.Encrypt(f, wrap); err != nil {
			return fmt.Errorf("wrapping private key: %w", err)
		}
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing private key: %w", err)
	}
	return nil
}

// Encrypt seals the value read from r for the installation's public key.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := e.loadRecipient()
	if err != nil {
		return err
	}
	sealed, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("starting encryption: %w", err)
	}
	if _, err := io.Copy(sealed, r); err != nil {
		return fmt.Errorf("encrypting value: %w", err)
	}
	return sealed.Close()
}

// loadRecipient parses the public key once per encryptor.
func (e *AgeEncryptor) loadRecipient() (age.Recipient, error) {
	e.once.Do(func() {
		data, err := os.ReadFile(e.publicKeyPath)
		if err != nil {
			e.loadErr = fmt.Errorf("reading public key: %w", err)
			return
		}
		recipients, err := age.ParseRecipients(bytes.NewReader(data))
		if err != nil {
			e.loadErr = fmt.Errorf("parsing public key: %w", err)
			return
		}
		if len(recipients) == 0 {
			e.loadErr = fmt.Errorf("public key file %s is empty", e.publicKeyPath)
			return
		}
		e.recipient = recipients[0]
	})
	return e.recipient, e.loadErr
}

// Unlock reads the identity, unwrapping it with passphrase if needed.
func (e *AgeEncryptor) Unlock(passphrase string) (tracker.DecryptionContext, error) {
	data, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key file: %w", err)
	}
	if bytes.HasPrefix(data, []byte(scryptFileHeader)) {
		if data, err = unwrapIdentity(data, passphrase); err != nil {
			return nil, err
		}
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("private key file %s holds no identity", e.privateKeyPath)
	}
	return &AgeDecryptionContext{identity: identities[0]}, nil
}

func unwrapIdentity(wrapped []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errNoPassphrase
	}
	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(wrapped), scrypt)
	if err != nil {
		return nil, fmt.Errorf("unwrapping private key: %w", err)
	}
	return io.ReadAll(r)
}

// IsConfigured reports whether both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// AgeDecryptionContext opens values sealed by AgeEncryptor.
type AgeDecryptionContext struct {
	identity age.Identity
}

var _ tracker.DecryptionContext = (*AgeDecryptionContext)(nil)

func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	plain, err := age.Decrypt(r, c.identity)
	if err != nil {
		return fmt.Errorf("opening sealed value: %w", err)
	}
	if _, err := io.Copy(w, plain); err != nil {
		return fmt.Errorf("decrypting value: %w", err)
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
