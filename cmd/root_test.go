package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelitsyn-sc/zappifest/internal/publish"
)

// execute runs the root command with args and fresh flag values.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  debug: false\n"), 0o600))

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin-manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "zappifest "+version+"\n", out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zappifest", "config.yaml")

	out, _, err := execute(t, "config", "init", "--path", path, "--admin-url", "https://staging.example.com/admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "admin_url: https://staging.example.com/admin")

	_, _, err = execute(t, "config", "init", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "config", "init", "--path", path, "--force")
	require.NoError(t, err)
}

func TestConfigInit_RejectsBadURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, _, err := execute(t, "config", "init", "--path", path, "--admin-url", "ftp://nope")
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestPublish_MissingToken(t *testing.T) {
	t.Setenv("ZAPP_TOKEN", "")
	t.Setenv("ZAPPIFEST_ACCESS_TOKEN", "")
	path := writeManifest(t, `{"name":"Foo","identifier":"com.foo"}`)

	_, errOut, err := execute(t, "publish", "--manifest", path)
	require.ErrorIs(t, err, publish.ErrAuth)
	assert.Contains(t, errOut, "Access token is missing")
}

func TestPublish_ManifestErrors(t *testing.T) {
	_, _, err := execute(t, "publish", "--manifest", filepath.Join(t.TempDir(), "nope.json"), "--access-token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manifest")

	path := writeManifest(t, `{"identifier":"com.foo"}`)
	_, _, err = execute(t, "publish", "--manifest", path, "--access-token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestPublish_NewAndPluginIDExclusive(t *testing.T) {
	path := writeManifest(t, `{"name":"Foo","identifier":"com.foo"}`)
	_, _, err := execute(t, "publish", "--manifest", path, "--new", "--plugin-id", "7")
	require.Error(t, err)
}

func TestPublish_UpdateThroughOverrideURL(t *testing.T) {
	var mu sync.Mutex
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/plugins.json":
			assert.Equal(t, url.Values{"access_token": {"tok"}}, r.URL.Query())
			_ = json.NewEncoder(w).Encode([]map[string]any{{
				"id":                  "abc",
				"name":                "Foo",
				"external_identifier": "com.foo",
				"description":         "old",
			}})
		case r.Method == http.MethodPut && r.URL.Path == "/admin/plugins/abc":
			_, _ = w.Write([]byte(`{"id":"abc"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	path := writeManifest(t, `{"name":"Foo","identifier":"com.foo","description":"new"}`)
	out, _, err := execute(t, "publish",
		"--manifest", path,
		"--access-token", "tok",
		"--override-url", srv.URL+"/admin",
	)
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"GET /admin/plugins.json", "PUT /admin/plugins/abc"}, methods)
	assert.Contains(t, out, "Plugin updated!")
}

func TestPublish_PluginIDWithYes(t *testing.T) {
	var put atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode([]map[string]any{{
				"id":                  "abc",
				"name":                "Renamed",
				"external_identifier": "com.elsewhere",
			}})
		case http.MethodPut:
			put.Store(true)
			_, _ = w.Write([]byte(`{"id":"abc"}`))
		}
	}))
	defer srv.Close()

	path := writeManifest(t, `{"name":"Foo","identifier":"com.foo"}`)
	_, _, err := execute(t, "publish",
		"--manifest", path,
		"--access-token", "tok",
		"--override-url", srv.URL+"/admin",
		"--plugin-id", "abc",
		"--yes",
	)
	require.NoError(t, err)
	assert.True(t, put.Load())
}
