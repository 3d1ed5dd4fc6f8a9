package profile

import (
	"path/filepath"
	"strings"

	"gitid/pkg/fileops"
)

// Resolve decides which profile governs the given filesystem path. An
// explicit override path, when non-empty, replaces the location-bound
// profile's root folder for this resolution only; it is never persisted.
//
// The comparison is an exact string prefix match on the expanded paths, so
// /home/u/Work also claims /home/u/WorkXYZ. Set Store.StrictFolderMatch for
// the segment-aware comparison instead.
func Resolve(currentPath string, s *Store, overridePath string) string {
	root := s.RootFolder
	if overridePath != "" {
		root = overridePath
	}
	if strings.TrimSpace(root) == "" {
		// No folder bound: everything falls through to the fallback profile.
		return s.Fallback().Name
	}

	root = filepath.Clean(fileops.ExpandPath(strings.TrimSpace(root)))
	cur := strings.TrimSpace(currentPath)
	if cur == "" {
		return s.Fallback().Name
	}
	cur = filepath.Clean(fileops.ExpandPath(cur))

	if s.StrictFolderMatch {
		if cur == root || strings.HasPrefix(cur, root+string(filepath.Separator)) {
			return s.Bound().Name
		}
		return s.Fallback().Name
	}

	if strings.HasPrefix(cur, root) {
		return s.Bound().Name
	}
	return s.Fallback().Name
}
