// Package gitrepo is the accessor the reconciliation engine uses to read
// and write a repository's persisted state: the remote URL and the
// repo-local identity configuration. Repository discovery and remotes go
// through go-git; config writes go through gopasspw/gitconfig, which edits
// .git/config in place so unrelated settings, comments and formatting
// survive every write.
package gitrepo

import (
	"errors"
	"fmt"
	"path/filepath"

	git "github.com/go-git/go-git/v6"
	gitconfig "github.com/gopasspw/gitconfig"

	"gitid/internal/logging"
)

// DefaultRemote is the remote reconciliation operates on.
const DefaultRemote = "origin"

var (
	// ErrNotARepository indicates the operation requires a git working tree.
	ErrNotARepository = errors.New("not inside a git repository")
	// ErrNoRemote indicates the repository has no origin remote configured.
	ErrNoRemote = errors.New(`remote "origin" is not configured - add one with: git remote add origin <url>`)
)

// Accessor is the persisted-state surface the reconciliation engine needs.
type Accessor interface {
	RemoteURL(name string) (string, error)
	SetRemoteURL(name, url string) error
	ConfigGet(key string) (string, bool)
	ConfigSet(key, value string) error
}

// Repo wraps an opened git repository rooted at a working tree.
type Repo struct {
	root   string
	repo   *git.Repository
	logger *logging.AppLogger
}

// Open locates the repository containing dir (walking up like git itself
// does) and returns an accessor for it.
func Open(dir string, logger *logging.AppLogger) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, dir)
		}
		return nil, fmt.Errorf("cannot open git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get working tree: %w", err)
	}

	r := &Repo{
		root:   worktree.Filesystem.Root(),
		repo:   repo,
		logger: logger,
	}

	if logger != nil {
		logger.Debug("Opened repository", "root", r.root)
	}

	return r, nil
}

// IsInsideRepository reports whether dir is inside a git working tree.
func IsInsideRepository(dir string) bool {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Root returns the working tree root.
func (r *Repo) Root() string {
	return r.root
}

// RemoteURL returns the first URL of the named remote.
func (r *Repo) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", ErrNoRemote
		}
		return "", fmt.Errorf("cannot get remote %q: %w", name, err)
	}

	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return "", ErrNoRemote
	}

	return cfg.URLs[0], nil
}

// SetRemoteURL rewrites the named remote's URL in the repo-local config.
func (r *Repo) SetRemoteURL(name, url string) error {
	return r.ConfigSet(fmt.Sprintf("remote.%s.url", name), url)
}

// ConfigGet reads a key from the repo-local config only; global and system
// scopes are deliberately not consulted, reconciliation owns the local file.
func (r *Repo) ConfigGet(key string) (string, bool) {
	cfg, err := gitconfig.LoadConfig(r.localConfigPath())
	if err != nil {
		return "", false
	}
	return cfg.Get(key)
}

// ConfigSet writes a key to the repo-local config, preserving everything
// else in the file.
func (r *Repo) ConfigSet(key, value string) error {
	cfg, err := gitconfig.LoadConfig(r.localConfigPath())
	if err != nil {
		return fmt.Errorf("cannot load repository config: %w", err)
	}
	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("cannot set %s: %w", key, err)
	}

	if r.logger != nil {
		r.logger.Debug("Repository config updated", "key", key)
	}
	return nil
}

func (r *Repo) localConfigPath() string {
	return filepath.Join(r.root, ".git", "config")
}
