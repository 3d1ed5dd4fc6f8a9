// Package keys generates the per-profile SSH keypairs the host aliases
// authenticate with.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/pkg/fileops"
)

// Generate creates an ed25519 keypair at the profile's key path. An
// existing key is left alone unless force is set; created reports whether
// anything was written. The public key lands next to the private one with a
// .pub suffix, in authorized_keys format.
func Generate(p profile.Profile, force bool, logger *logging.AppLogger) (path string, created bool, err error) {
	path = p.KeyPath()
	if path == "" {
		return "", false, fmt.Errorf("profile %q has no SSH key path", p.Name)
	}

	if fileops.Exists(path) && !force {
		if logger != nil {
			logger.Debug("Key already exists, skipping", "profile", p.Name, "path", path)
		}
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", false, fmt.Errorf("failed to create key directory: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", false, fmt.Errorf("key generation failed: %w", err)
	}

	comment := keyComment(p)

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode private key: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return "", false, fmt.Errorf("failed to write private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode public key: %w", err)
	}
	line := strings.TrimRight(string(ssh.MarshalAuthorizedKey(sshPub)), "\n")
	pubData := fmt.Sprintf("%s %s\n", line, comment)
	if err := os.WriteFile(path+".pub", []byte(pubData), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write public key: %w", err)
	}

	if logger != nil {
		logger.Info("SSH key generated", "profile", p.Name, "path", path)
	}
	return path, true, nil
}

func keyComment(p profile.Profile) string {
	if p.GitUserEmail != "" {
		return p.GitUserEmail
	}
	return "gitid-" + p.Name
}
