package keys

import (
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"gitid/internal/logging"
	"gitid/internal/profile"
)

func keyProfile(t *testing.T) profile.Profile {
	t.Helper()
	return profile.Profile{
		Name:         profile.Work,
		GitUserEmail: "jane@corp.example",
		SSHKeyPath:   filepath.Join(t.TempDir(), "keys", "gitid_work"),
	}
}

func TestGenerate(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	p := keyProfile(t)

	path, created, err := Generate(p, false, logger)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, p.SSHKeyPath, path)

	// Private key: parseable OpenSSH PEM with strict permissions.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	block, _ := pem.Decode(data)
	require.NotNil(t, block, "private key must be PEM encoded")

	signer, err := ssh.ParsePrivateKey(data)
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519", signer.PublicKey().Type())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&0o077, "private key must be 0600")

	// Public key: authorized_keys format carrying the profile email.
	pubData, err := os.ReadFile(path + ".pub")
	require.NoError(t, err)
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(pubData)
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519", pub.Type())
	assert.Equal(t, "jane@corp.example", comment)
	assert.True(t, strings.HasSuffix(string(pubData), "\n"))
}

func TestGenerateSkipsExisting(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	p := keyProfile(t)

	_, created, err := Generate(p, false, logger)
	require.NoError(t, err)
	require.True(t, created)

	before, err := os.ReadFile(p.SSHKeyPath)
	require.NoError(t, err)

	_, created, err = Generate(p, false, logger)
	require.NoError(t, err)
	assert.False(t, created)

	after, err := os.ReadFile(p.SSHKeyPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "existing key must be left alone")
}

func TestGenerateForceOverwrites(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	p := keyProfile(t)

	_, _, err := Generate(p, false, logger)
	require.NoError(t, err)
	before, err := os.ReadFile(p.SSHKeyPath)
	require.NoError(t, err)

	_, created, err := Generate(p, true, logger)
	require.NoError(t, err)
	assert.True(t, created)

	after, err := os.ReadFile(p.SSHKeyPath)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestGenerateCommentFallsBackToProfileName(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	p := keyProfile(t)
	p.GitUserEmail = ""

	path, _, err := Generate(p, false, logger)
	require.NoError(t, err)

	pubData, err := os.ReadFile(path + ".pub")
	require.NoError(t, err)
	_, comment, _, _, err := ssh.ParseAuthorizedKey(pubData)
	require.NoError(t, err)
	assert.Equal(t, "gitid-work", comment)
}

func TestGenerateRequiresKeyPath(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	_, _, err := Generate(profile.Profile{Name: profile.Work}, false, logger)
	assert.Error(t, err)
}
