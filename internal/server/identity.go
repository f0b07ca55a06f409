package server

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// CheckIdentityFile verifies that path holds a private key the ssh client can use.
// Passphrase-protected keys are accepted since the client prompts or asks the agent.
func CheckIdentityFile(path string) error {
	key, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read ssh key %q: %w", path, err)
	}
	if _, err := ssh.ParseRawPrivateKey(key); err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil
		}
		return fmt.Errorf("failed to parse ssh key %q: %w", path, err)
	}
	return nil
}
