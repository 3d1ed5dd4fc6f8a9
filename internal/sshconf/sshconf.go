// Package sshconf renders and inspects the managed SSH client config file
// that makes the profile host aliases resolvable. The managed file is
// written as a full-file overwrite, never merged: one stanza per profile
// alias plus one stanza pinning the bare upstream host to the fallback
// profile's key. Users include it from ~/.ssh/config with a single Include
// line so their own stanzas stay untouched.
package sshconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sshconfig "github.com/kevinburke/ssh_config"

	"gitid/internal/logging"
	"gitid/internal/profile"
)

// DefaultFileName is the managed file's name under ~/.ssh.
const DefaultFileName = "gitid_config"

// DefaultPath returns the managed file's location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", DefaultFileName), nil
}

// IncludeLine returns the directive users add to ~/.ssh/config.
func IncludeLine(path string) string {
	return "Include " + path
}

// Render produces the full managed file contents for the store.
func Render(store *profile.Store) string {
	var b strings.Builder
	b.WriteString("# Managed by gitid. This file is rewritten as a whole; do not edit.\n")

	for _, p := range store.Profiles() {
		writeStanza(&b, p.SSHHostAlias, p.KeyPath())
	}

	// Unaliased URLs still authenticate with the fallback profile's key.
	writeStanza(&b, profile.UpstreamHost, store.Fallback().KeyPath())

	return b.String()
}

func writeStanza(b *strings.Builder, host, identityFile string) {
	fmt.Fprintf(b, "\nHost %s\n", host)
	fmt.Fprintf(b, "    HostName %s\n", profile.UpstreamHost)
	b.WriteString("    User git\n")
	fmt.Fprintf(b, "    IdentityFile %s\n", identityFile)
	b.WriteString("    IdentitiesOnly yes\n")
}

// Write overwrites the managed file with the rendered stanzas.
func Write(store *profile.Store, path string, logger *logging.AppLogger) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(Render(store)), 0o600); err != nil {
		return fmt.Errorf("failed to write SSH config: %w", err)
	}

	if logger != nil {
		logger.Info("SSH config written", "path", path)
	}
	return nil
}

// Drift describes how one expected stanza diverges from the file on disk.
type Drift struct {
	Host         string // alias or the bare upstream host
	Profile      string
	Missing      bool   // no stanza for the host at all
	IdentityFile string // what the file currently resolves for the host
	WantIdentity string
}

// InSync reports whether the stanza matches what Render would write.
func (d Drift) InSync() bool {
	return !d.Missing && d.IdentityFile == d.WantIdentity
}

// Inspect parses the file at path and reports per-host drift against the
// store. A missing file reports every host as missing rather than erroring,
// so callers can present "run ssh-config --apply" as the fix.
func Inspect(store *profile.Store, path string) ([]Drift, error) {
	type expectation struct {
		host    string
		profile string
		key     string
	}

	expected := make([]expectation, 0, 3)
	for _, p := range store.Profiles() {
		expected = append(expected, expectation{host: p.SSHHostAlias, profile: p.Name, key: p.KeyPath()})
	}
	fallback := store.Fallback()
	expected = append(expected, expectation{host: profile.UpstreamHost, profile: fallback.Name, key: fallback.KeyPath()})

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			out := make([]Drift, 0, len(expected))
			for _, e := range expected {
				out = append(out, Drift{Host: e.host, Profile: e.profile, Missing: true, WantIdentity: e.key})
			}
			return out, nil
		}
		return nil, fmt.Errorf("cannot read SSH config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := sshconfig.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse SSH config %s: %w", path, err)
	}

	out := make([]Drift, 0, len(expected))
	for _, e := range expected {
		got, err := cfg.Get(e.host, "IdentityFile")
		if err != nil || got == "" {
			out = append(out, Drift{Host: e.host, Profile: e.profile, Missing: true, WantIdentity: e.key})
			continue
		}
		out = append(out, Drift{
			Host:         e.host,
			Profile:      e.profile,
			IdentityFile: got,
			WantIdentity: e.key,
		})
	}
	return out, nil
}
