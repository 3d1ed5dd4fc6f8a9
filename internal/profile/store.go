package profile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/adrg/xdg"

	"gitid/internal/logging"
)

const appName = "gitid" // application name used for the config directory

// configFileName is the persisted record. The format is line-oriented
// KEY='value' with shell-escaped values, so the file stays sourceable by
// the shell tooling that predates this implementation.
const configFileName = "gitidrc"

// Record keys. Only non-empty fields are persisted; a partial configuration
// round-trips as partial.
const (
	keyWorkFolder    = "WORK_FOLDER"
	keyWorkName      = "WORK_NAME"
	keyWorkEmail     = "WORK_EMAIL"
	keyWorkKey       = "WORK_KEY"
	keyWorkHost      = "WORK_HOST"
	keyPersonalName  = "PERSONAL_NAME"
	keyPersonalEmail = "PERSONAL_EMAIL"
	keyPersonalKey   = "PERSONAL_KEY"
	keyPersonalHost  = "PERSONAL_HOST"
)

// ConfigPath returns the fixed per-user path of the persisted record.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// FindConfigFile returns the config path and whether a record exists there.
func FindConfigFile() (string, bool) {
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return path, false
}

// IsFirstRun reports whether no configuration has been persisted yet.
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// Load reads the store from the standard location. Absence of the file
// means the tool has never been configured.
func Load() (*Store, error) {
	path, exists := FindConfigFile()
	logging.Debug("Loading profile store", "path", path)
	if !exists {
		return nil, ErrNotConfigured
	}
	return LoadFrom(path)
}

// LoadFrom reads the store from a specific path. Unknown keys are ignored,
// missing fields keep their derived defaults.
func LoadFrom(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[strings.TrimSpace(key)] = unquoteValue(raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	store := NewStore(
		Profile{
			GitUserName:  values[keyWorkName],
			GitUserEmail: values[keyWorkEmail],
			SSHKeyPath:   values[keyWorkKey],
			SSHHostAlias: values[keyWorkHost],
		},
		Profile{
			GitUserName:  values[keyPersonalName],
			GitUserEmail: values[keyPersonalEmail],
			SSHKeyPath:   values[keyPersonalKey],
			SSHHostAlias: values[keyPersonalHost],
		},
	)
	// The folder was validated when it was set. It may have vanished since;
	// that is not re-validated here.
	store.RootFolder = values[keyWorkFolder]

	if err := store.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return store, nil
}

// Save writes the store to the standard location.
func (s *Store) Save() error {
	return s.SaveTo(ConfigPath())
}

// SaveTo persists all non-empty fields to the given path. Derived defaults
// are written only when they differ from the default, keeping the record
// minimal.
func (s *Store) SaveTo(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# gitid configuration\n")

	work := s.profiles[Work]
	personal := s.profiles[Personal]

	writeEntry(&b, keyWorkFolder, s.RootFolder)
	writeEntry(&b, keyWorkName, work.GitUserName)
	writeEntry(&b, keyWorkEmail, work.GitUserEmail)
	writeNonDefault(&b, keyWorkKey, work.SSHKeyPath, defaultProfile(Work).SSHKeyPath)
	writeNonDefault(&b, keyWorkHost, work.SSHHostAlias, defaultProfile(Work).SSHHostAlias)
	writeEntry(&b, keyPersonalName, personal.GitUserName)
	writeEntry(&b, keyPersonalEmail, personal.GitUserEmail)
	writeNonDefault(&b, keyPersonalKey, personal.SSHKeyPath, defaultProfile(Personal).SSHKeyPath)
	writeNonDefault(&b, keyPersonalHost, personal.SSHHostAlias, defaultProfile(Personal).SSHHostAlias)

	// Restrictive permissions: the record names the operator's identities.
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logging.Debug("Profile store saved", "path", path)
	return nil
}

func writeEntry(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s=%s\n", key, shellescape.Quote(value))
}

func writeNonDefault(b *strings.Builder, key, value, def string) {
	if value == def {
		return
	}
	writeEntry(b, key, value)
}

// unquoteValue undoes shell quoting on a record value. Values written by
// SaveTo are either bare or single-quoted; double quotes are tolerated for
// hand-edited files.
func unquoteValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") {
		// shellescape writes embedded single quotes as '"'"'
		v = strings.ReplaceAll(v, `'"'"'`, "\x00")
		v = strings.TrimSuffix(strings.TrimPrefix(v, "'"), "'")
		return strings.ReplaceAll(v, "\x00", "'")
	}
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v[1 : len(v)-1]
	}
	return v
}
