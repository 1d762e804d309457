package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal reports whether stdin is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// input is shared by every prompt so buffered lines are not lost between them.
var input *bufio.Reader

// readLine prompts for a line of input.
func readLine(cmd *cobra.Command, prompt string) (string, error) {
	if input == nil {
		input = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := input.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readSecret prompts for a secret without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if !isTerminal() {
		return readLine(cmd, prompt)
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// readNewPassphrase asks for a passphrase twice. Without a terminal it
// returns "" so scripted setups get an unprotected key.
func readNewPassphrase(cmd *cobra.Command, prompt string) (string, error) {
	if !isTerminal() {
		return "", nil
	}
	first, err := readSecret(cmd, prompt)
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", nil
	}
	second, err := readSecret(cmd, "Confirm: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passphrases do not match")
	}
	return first, nil
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	answer, err := readLine(cmd, prompt+" [y/N] ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
