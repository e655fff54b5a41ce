package main

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialauth/internal/security/secretbox"
)

const testMasterKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestProvidersCmd(t *testing.T) {
	t.Setenv("OAUTH_GITHUB_CLIENT_ID", "cid")
	t.Setenv("OAUTH_GITHUB_CLIENT_SECRET", "secret")

	out, err := run(t, "providers")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 25) // header + 24 providers
	for _, l := range lines {
		f := strings.Fields(l)
		switch f[0] {
		case "github":
			assert.Equal(t, "true", f[1])
		case "gitee":
			assert.Equal(t, "false", f[1])
		}
	}
}

func TestAuthorizeCmd(t *testing.T) {
	t.Setenv("OAUTH_GITHUB_CLIENT_ID", "cid")
	t.Setenv("OAUTH_GITHUB_CLIENT_SECRET", "secret")
	t.Setenv("OAUTH_GITHUB_REDIRECT_URI", "http://localhost:8080/callback/github")

	out, err := run(t, "authorize", "github", "--state", "abc")
	require.NoError(t, err)
	u, err := url.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "abc", u.Query().Get("state"))
	assert.Equal(t, "http://localhost:8080/callback/github", u.Query().Get("redirect_uri"))

	_, err = run(t, "authorize", "gitee")
	require.Error(t, err)

	_, err = run(t, "authorize", "github", "--extra", "novalue")
	require.Error(t, err)
}

func TestAuthorizeCmdFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  douyin:
    client_id: ck
    client_secret: cs
    redirect_uri: https://app.example.com/cb
`), 0o600))

	out, err := run(t, "--config", path, "authorize", "douyin", "--state", "s1")
	require.NoError(t, err)
	u, err := url.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ck", u.Query().Get("client_key"))
}

func TestSealCmd(t *testing.T) {
	t.Setenv(secretbox.EnvVar, testMasterKey)

	out, err := run(t, "seal", "my-client-secret")
	require.NoError(t, err)
	sealed := strings.TrimSpace(out)
	require.True(t, secretbox.IsSealed(sealed))

	box, err := secretbox.New(testMasterKey)
	require.NoError(t, err)
	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "my-client-secret", plain)
}

func TestSealCmdWithoutKey(t *testing.T) {
	t.Setenv(secretbox.EnvVar, "")
	_, err := run(t, "seal", "x")
	require.ErrorIs(t, err, secretbox.ErrNoKey)
}

func TestParseKV(t *testing.T) {
	got, err := parseKV([]string{"service=https://a.example.com", "open_id=u1", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"service": "https://a.example.com", "open_id": "u1", "empty": ""}, got)
}
