package sshconf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitid/internal/logging"
	"gitid/internal/profile"
)

func testStore() *profile.Store {
	return profile.NewStore(
		profile.Profile{SSHKeyPath: "/keys/work"},
		profile.Profile{SSHKeyPath: "/keys/personal"},
	)
}

func TestRender(t *testing.T) {
	out := Render(testStore())

	assert.Contains(t, out, "Host github-work\n")
	assert.Contains(t, out, "Host github-personal\n")
	assert.Contains(t, out, "Host github.com\n")
	assert.Contains(t, out, "IdentityFile /keys/work\n")
	assert.Contains(t, out, "IdentityFile /keys/personal\n")
	assert.Contains(t, out, "IdentitiesOnly yes\n")
	assert.Contains(t, out, "User git\n")

	// Every stanza resolves to the real upstream host.
	assert.Equal(t, 3, strings.Count(out, "HostName github.com"))

	// The bare-host stanza uses the fallback profile's key.
	idx := strings.Index(out, "Host github.com")
	require.GreaterOrEqual(t, idx, 0)
	assert.Contains(t, out[idx:], "IdentityFile /keys/personal")
}

func TestRenderIsDeterministic(t *testing.T) {
	s := testStore()
	assert.Equal(t, Render(s), Render(s))
}

func TestWriteAndInspectInSync(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	path := filepath.Join(t.TempDir(), "gitid_config")
	store := testStore()

	require.NoError(t, Write(store, path, logger))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&0o077, "SSH config must not be readable by group/others")

	drifts, err := Inspect(store, path)
	require.NoError(t, err)
	require.Len(t, drifts, 3)
	for _, d := range drifts {
		assert.True(t, d.InSync(), "host %s should be in sync, got %+v", d.Host, d)
	}
}

func TestWriteIsFullOverwrite(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	path := filepath.Join(t.TempDir(), "gitid_config")

	require.NoError(t, os.WriteFile(path, []byte("Host leftover\n    User nobody\n"), 0o600))
	require.NoError(t, Write(testStore(), path, logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "leftover", "write must replace the whole file, not merge")
}

func TestInspectMissingFile(t *testing.T) {
	drifts, err := Inspect(testStore(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Len(t, drifts, 3)
	for _, d := range drifts {
		assert.True(t, d.Missing)
		assert.False(t, d.InSync())
	}
}

func TestInspectDetectsWrongIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitid_config")
	stale := strings.Join([]string{
		"Host github-work",
		"    HostName github.com",
		"    User git",
		"    IdentityFile /keys/old-work",
		"    IdentitiesOnly yes",
		"",
		"Host github-personal",
		"    HostName github.com",
		"    User git",
		"    IdentityFile /keys/personal",
		"    IdentitiesOnly yes",
		"",
		"Host github.com",
		"    HostName github.com",
		"    User git",
		"    IdentityFile /keys/personal",
		"    IdentitiesOnly yes",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(stale), 0o600))

	drifts, err := Inspect(testStore(), path)
	require.NoError(t, err)

	byHost := make(map[string]Drift, len(drifts))
	for _, d := range drifts {
		byHost[d.Host] = d
	}

	work := byHost["github-work"]
	assert.False(t, work.InSync())
	assert.Equal(t, "/keys/old-work", work.IdentityFile)
	assert.Equal(t, "/keys/work", work.WantIdentity)

	assert.True(t, byHost["github-personal"].InSync())
	assert.True(t, byHost["github.com"].InSync())
}

func TestIncludeLine(t *testing.T) {
	assert.Equal(t, "Include /home/u/.ssh/gitid_config", IncludeLine("/home/u/.ssh/gitid_config"))
}
