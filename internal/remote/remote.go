// Package remote classifies git remote URLs against the configured profile
// host aliases and rewrites them to target a profile. Only the scp-style
// SSH syntax (user@host:path) is understood; https URLs are normalized to
// that form first. Classification is computed fresh on every call since the
// underlying URL can change between invocations.
package remote

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gitid/internal/profile"
)

// Binding classifies which profile, if any, a remote URL is bound to.
type Binding int

const (
	// Unrecognized means the host matches neither an alias nor the
	// upstream domain. Such URLs are never touched.
	Unrecognized Binding = iota
	// BareUpstream means the host is the provider default with no alias.
	BareUpstream
	// Bound means the host is one profile's alias.
	Bound
)

func (b Binding) String() string {
	switch b {
	case BareUpstream:
		return "bare upstream"
	case Bound:
		return "bound"
	default:
		return "unrecognized"
	}
}

// Classification is the result of classifying a remote URL. Profile is set
// only when the binding is Bound; at most one profile can match because
// host aliases are pairwise distinct (store invariant).
type Classification struct {
	Binding Binding
	Profile string
}

// ErrNoAuthority indicates the URL has no scp-style user@host authority.
var ErrNoAuthority = errors.New("url has no user@host authority")

// authority extracts the segment between "@" and the first ":" or "/".
// Returns the host and the index range it occupies in the url.
// Scheme-qualified URLs are never scp-style, even when they carry a
// userinfo "@" (https://token@host/...), so they have no authority here.
func authority(url string) (host string, start, end int, err error) {
	if strings.Contains(url, "://") {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNoAuthority, url)
	}
	at := strings.IndexByte(url, '@')
	if at < 0 || at == len(url)-1 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNoAuthority, url)
	}
	start = at + 1
	end = len(url)
	if i := strings.IndexAny(url[start:], ":/"); i >= 0 {
		end = start + i
	}
	host = url[start:end]
	if host == "" {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNoAuthority, url)
	}
	return host, start, end, nil
}

// Classify determines which profile a URL is already bound to, whether it
// targets the bare upstream host, or whether it is not ours to manage.
func Classify(url string, store *profile.Store) Classification {
	host, _, _, err := authority(strings.TrimSpace(url))
	if err != nil {
		return Classification{Binding: Unrecognized}
	}

	if name, ok := store.Aliases()[host]; ok {
		return Classification{Binding: Bound, Profile: name}
	}
	if host == profile.UpstreamHost {
		return Classification{Binding: BareUpstream}
	}
	return Classification{Binding: Unrecognized}
}

// Rewrite replaces the URL's authority segment with the target profile's
// host alias, leaving the user@ part and the path untouched. The operation
// replaces rather than chains, so rewriting an already-bound URL for the
// same target returns the identical string, and rewriting twice for
// different targets equals rewriting once for the final target.
func Rewrite(url, target string, store *profile.Store) (string, error) {
	p, ok := store.Get(target)
	if !ok {
		return "", fmt.Errorf("unknown profile %q", target)
	}

	trimmed := strings.TrimSpace(url)
	_, start, end, err := authority(trimmed)
	if err != nil {
		return "", err
	}

	return trimmed[:start] + p.SSHHostAlias + trimmed[end:], nil
}

var httpsPattern = regexp.MustCompile(`^https?://([^/@]+)/(.+)$`)

// NormalizeScheme converts an https clone URL into the scp-style SSH form
// the classifier understands: https://host/owner/repo[.git] becomes
// git@host:owner/repo[.git]. URLs already in SSH form pass through
// unchanged.
func NormalizeScheme(url string) string {
	trimmed := strings.TrimSpace(url)
	if m := httpsPattern.FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf("git@%s:%s", m[1], m[2])
	}
	return trimmed
}
