// Package profile holds the identity profiles the tool switches between and
// the persisted store they live in. A profile bundles the git author
// identity with the SSH key and host alias that make it effective on the
// wire. The store knows exactly two profiles, "work" and "personal"; "work"
// is location-bound to a configured root folder and "personal" is the
// universal fallback.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gitid/pkg/fileops"
)

const (
	// Work is the location-bound profile name.
	Work = "work"
	// Personal is the fallback profile name.
	Personal = "personal"

	// UpstreamHost is the provider's default hostname, used without any alias.
	UpstreamHost = "github.com"
)

var (
	// ErrNotConfigured indicates no profile data has been persisted yet.
	ErrNotConfigured = errors.New("no configuration found, first-time setup required")
	// ErrInvalidPath indicates a supplied folder does not exist after expansion.
	ErrInvalidPath = errors.New("folder does not exist")
	// ErrInvalidEmail indicates an email failed local validation.
	ErrInvalidEmail = errors.New("invalid email address")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks an email address against the local validation
// pattern. The interactive re-prompt loop lives in the caller; this is the
// pure decision.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// Profile is a named identity bundling git author identity with an SSH key
// and host alias.
type Profile struct {
	Name         string
	DisplayName  string
	GitUserName  string
	GitUserEmail string
	SSHKeyPath   string // may contain ~ or $VARs, expanded at point of use
	SSHHostAlias string // unique per profile, never the bare upstream host
}

// KeyPath returns the profile's SSH key path with ~ and $VARs expanded.
func (p Profile) KeyPath() string {
	return fileops.ExpandPath(p.SSHKeyPath)
}

// SSHCommand returns the core.sshCommand value that pins transport to this
// profile's key.
func (p Profile) SSHCommand() string {
	return fmt.Sprintf("ssh -i %s -o IdentitiesOnly=yes", p.KeyPath())
}

// Configured reports whether the identity fields a reconcile needs are set.
func (p Profile) Configured() bool {
	return p.GitUserName != "" && p.GitUserEmail != ""
}

func defaultProfile(name string) Profile {
	if name == "" {
		// No name means no derived defaults to build.
		return Profile{}
	}
	return Profile{
		Name:         name,
		DisplayName:  strings.ToUpper(name[:1]) + name[1:],
		SSHHostAlias: "github-" + name,
		SSHKeyPath:   "~/.ssh/gitid_" + name,
	}
}

// Store maps profile names to profiles and designates the work profile as
// location-bound with an associated root folder. It is always passed
// explicitly; nothing reads it as ambient global state.
type Store struct {
	profiles map[string]Profile
	order    []string
	bound    string

	// RootFolder is the location-bound profile's root. Empty means every
	// path resolves to the fallback profile.
	RootFolder string

	// StrictFolderMatch switches Resolve from the historical string-prefix
	// comparison to a path-segment-aware one. Off by default for parity
	// with the documented behavior.
	StrictFolderMatch bool
}

// NewStore builds a store from the work and personal profiles, filling in
// derived defaults (display name, host alias, key path) for fields left
// empty.
func NewStore(work, personal Profile) *Store {
	s := &Store{
		profiles: make(map[string]Profile, 2),
		order:    []string{Work, Personal},
		bound:    Work,
	}
	work.Name = Work
	personal.Name = Personal
	s.Put(work)
	s.Put(personal)
	return s
}

// DefaultStore returns a store with only the derived defaults set.
func DefaultStore() *Store {
	return NewStore(Profile{}, Profile{})
}

// Put stores a profile, filling derived defaults for empty fields.
func (s *Store) Put(p Profile) {
	def := defaultProfile(p.Name)
	if p.DisplayName == "" {
		p.DisplayName = def.DisplayName
	}
	if p.SSHHostAlias == "" {
		p.SSHHostAlias = def.SSHHostAlias
	}
	if p.SSHKeyPath == "" {
		p.SSHKeyPath = def.SSHKeyPath
	}
	s.profiles[p.Name] = p
}

// Get returns the named profile.
func (s *Store) Get(name string) (Profile, bool) {
	p, ok := s.profiles[name]
	return p, ok
}

// Profiles returns all profiles in fixed order (work, personal).
func (s *Store) Profiles() []Profile {
	out := make([]Profile, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.profiles[name])
	}
	return out
}

// Bound returns the location-bound profile.
func (s *Store) Bound() Profile {
	return s.profiles[s.bound]
}

// Fallback returns the profile that applies when the location-bound one
// does not.
func (s *Store) Fallback() Profile {
	for _, name := range s.order {
		if name != s.bound {
			return s.profiles[name]
		}
	}
	return Profile{}
}

// Aliases returns the SSH host alias of every profile, keyed by alias.
func (s *Store) Aliases() map[string]string {
	out := make(map[string]string, len(s.profiles))
	for name, p := range s.profiles {
		out[p.SSHHostAlias] = name
	}
	return out
}

// SetRootFolder expands and validates the location-bound root folder. The
// folder must exist at the time it is set; it is not re-validated on read.
func (s *Store) SetRootFolder(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		s.RootFolder = ""
		return nil
	}
	abs, err := fileops.Absolute(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	if !fileops.DirExists(abs) {
		return fmt.Errorf("%w: %s", ErrInvalidPath, abs)
	}
	s.RootFolder = abs
	return nil
}

// Validate checks the store invariants: pairwise distinct host aliases that
// never equal the bare upstream host, and well-formed emails where set.
func (s *Store) Validate() error {
	seen := make(map[string]string, len(s.profiles))
	for _, p := range s.Profiles() {
		if p.SSHHostAlias == UpstreamHost {
			return fmt.Errorf("profile %q host alias must not be the bare upstream host %q", p.Name, UpstreamHost)
		}
		if prev, dup := seen[p.SSHHostAlias]; dup {
			return fmt.Errorf("host alias %q is shared by profiles %q and %q", p.SSHHostAlias, prev, p.Name)
		}
		seen[p.SSHHostAlias] = p.Name
		if p.GitUserEmail != "" {
			if err := ValidateEmail(p.GitUserEmail); err != nil {
				return fmt.Errorf("profile %q: %w", p.Name, err)
			}
		}
	}
	return nil
}
