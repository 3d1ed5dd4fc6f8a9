package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitidrc")

	s := NewStore(
		Profile{GitUserName: "Jane Doe", GitUserEmail: "jane@corp.example"},
		Profile{GitUserName: "jane", GitUserEmail: "jane@home.example"},
	)
	require.NoError(t, s.SetRootFolder(dir))
	require.NoError(t, s.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)

	work, _ := loaded.Get(Work)
	assert.Equal(t, "Jane Doe", work.GitUserName)
	assert.Equal(t, "jane@corp.example", work.GitUserEmail)
	assert.Equal(t, "github-work", work.SSHHostAlias)

	personal, _ := loaded.Get(Personal)
	assert.Equal(t, "jane@home.example", personal.GitUserEmail)

	assert.Equal(t, dir, loaded.RootFolder)
}

func TestStorePartialRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitidrc")

	// Only the personal identity is configured.
	s := NewStore(Profile{}, Profile{GitUserName: "jane", GitUserEmail: "jane@home.example"})
	require.NoError(t, s.SaveTo(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "WORK_NAME", "empty fields must be omitted, not written as empty strings")
	assert.NotContains(t, content, "WORK_FOLDER")
	assert.Contains(t, content, "PERSONAL_NAME=jane")

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	work, _ := loaded.Get(Work)
	assert.Empty(t, work.GitUserName)
	personal, _ := loaded.Get(Personal)
	assert.Equal(t, "jane", personal.GitUserName)
}

func TestStoreShellEscaping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitidrc")

	s := NewStore(Profile{GitUserName: "Jane O'Connor", GitUserEmail: "jane@corp.example"}, Profile{})
	require.NoError(t, s.SaveTo(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `WORK_NAME='Jane O'"'"'Connor'`)

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	work, _ := loaded.Get(Work)
	assert.Equal(t, "Jane O'Connor", work.GitUserName)
}

func TestStoreDefaultsNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitidrc")

	s := NewStore(Profile{GitUserName: "Jane"}, Profile{})
	require.NoError(t, s.SaveTo(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "WORK_HOST", "derived defaults should not be persisted")
	assert.NotContains(t, content, "WORK_KEY")
}

func TestStoreCustomHostAndKeyPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitidrc")

	s := NewStore(Profile{SSHHostAlias: "gh-corp", SSHKeyPath: "~/.ssh/corp_ed25519"}, Profile{})
	require.NoError(t, s.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	work, _ := loaded.Get(Work)
	assert.Equal(t, "gh-corp", work.SSHHostAlias)
	assert.Equal(t, "~/.ssh/corp_ed25519", work.SSHKeyPath)
}

func TestStoreFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitidrc")

	require.NoError(t, DefaultStore().SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&0o077, "config file must not be readable by group/others")
}

func TestLoadFromIgnoresCommentsAndUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitidrc")
	content := strings.Join([]string{
		"# hand-edited file",
		"",
		"WORK_NAME='Jane Doe'",
		"SOME_FUTURE_KEY=whatever",
		"PERSONAL_EMAIL=jane@home.example",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	work, _ := loaded.Get(Work)
	assert.Equal(t, "Jane Doe", work.GitUserName)
	personal, _ := loaded.Get(Personal)
	assert.Equal(t, "jane@home.example", personal.GitUserEmail)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadFromRejectsInvalidEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitidrc")
	require.NoError(t, os.WriteFile(path, []byte("WORK_EMAIL=broken\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}
