package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v6"

	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/pkg/fileops"
)

// Clone clones url into dir and applies the profile's identity inside the
// fresh clone, so the first commit already carries the right author. The
// URL is expected to be rewritten for the profile's host alias already; the
// SSH transport resolves the alias through the user's SSH client config.
func Clone(url, dir string, p profile.Profile, logger *logging.AppLogger) (*Repo, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("clone URL cannot be empty")
	}
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("clone directory cannot be empty")
	}

	abs, err := fileops.Absolute(dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	if logger != nil {
		logger.Info("Cloning repository", "url", url, "dir", abs, "profile", p.Name)
	}

	if _, err := git.PlainClone(abs, &git.CloneOptions{URL: url}); err != nil {
		return nil, translateCloneError(err, url)
	}

	repo, err := Open(abs, logger)
	if err != nil {
		return nil, err
	}

	settings := map[string]string{
		"user.name":  p.GitUserName,
		"user.email": p.GitUserEmail,
	}
	if p.SSHKeyPath != "" {
		settings["core.sshCommand"] = p.SSHCommand()
	}
	for key, value := range settings {
		if value == "" {
			continue
		}
		if err := repo.ConfigSet(key, value); err != nil {
			return nil, fmt.Errorf("cloned, but applying identity failed: %w", err)
		}
	}

	if logger != nil {
		logger.Info("Repository cloned", "dir", abs)
	}

	return repo, nil
}

// translateCloneError turns transport errors into messages that name the
// violated precondition instead of a bare "failed". A failed clone is
// reported, never retried.
func translateCloneError(err error, url string) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "publickey") ||
		strings.Contains(msg, "handshake failed") || strings.Contains(msg, "unable to authenticate"):
		return fmt.Errorf("SSH authentication to %s failed - check that the profile's key exists and the SSH config stanza is applied (gitid ssh-config --apply): %w", url, err)
	case strings.Contains(msg, "not found") || strings.Contains(msg, "404"):
		return fmt.Errorf("repository not found - check the URL or ensure you have access: %s", url)
	case strings.Contains(msg, "could not resolve") || strings.Contains(msg, "no such host"):
		return fmt.Errorf("cannot resolve host for %s - if the URL uses a profile alias, apply the SSH config first: %w", url, err)
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection") || strings.Contains(msg, "timeout"):
		return fmt.Errorf("network error during clone - check your connection and try again: %w", err)
	default:
		return fmt.Errorf("failed to clone repository: %w", err)
	}
}
