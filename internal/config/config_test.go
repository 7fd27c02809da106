package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := ParseArgs(newFlagSet(), []string{"-c", filepath.Join(t.TempDir(), "none.json")}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, opts.APIURL)
	assert.Equal(t, DefaultAPIBasePath, opts.APIBasePath)
	assert.Equal(t, DefaultStore, opts.StoreDSN)
	assert.Equal(t, DefaultLogLevel, opts.LogLevel)
	assert.Equal(t, DefaultNotifyTTL, opts.NotifyTTL)
	assert.Empty(t, opts.CAFile)
}

func TestParseArgs_Precedence(t *testing.T) {
	path := writeConfig(t, `{
		"api_url": "https://file.example",
		"api_base_path": "v2",
		"store": "sqlite:file.db",
		"log_level": "warn",
		"ca_file": "ca.pem",
		"notify_ttl": "2s"
	}`)

	opts, err := ParseArgs(newFlagSet(),
		[]string{"-log-level", "debug"},
		env(map[string]string{
			"CONFIG":             path,
			"FAMILYCART_API_URL": "https://env.example",
			// overridden by the explicit flag
			"FAMILYCART_LOG_LEVEL": "error",
		}))
	require.NoError(t, err)

	assert.Equal(t, path, opts.Config)
	assert.Equal(t, "https://env.example", opts.APIURL)
	assert.Equal(t, "v2", opts.APIBasePath)
	assert.Equal(t, "sqlite:file.db", opts.StoreDSN)
	assert.Equal(t, "ca.pem", opts.CAFile)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, 2*time.Second, opts.NotifyTTL)
}

func TestParseArgs_BadFile(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := ParseArgs(newFlagSet(), []string{"-config", path}, env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error while parsing config file")
}

func TestParseArgs_BadDuration(t *testing.T) {
	path := writeConfig(t, `{"notify_ttl": "soon"}`)
	_, err := ParseArgs(newFlagSet(), []string{"-config", path}, env(nil))
	require.Error(t, err)
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	fs := newFlagSet()
	fs.SetOutput(io.Discard)
	_, err := ParseArgs(fs, []string{"-nope"}, env(nil))
	require.Error(t, err)
}

func TestParseServerArgs(t *testing.T) {
	path := writeConfig(t, `{"address": "0.0.0.0:9000", "log_level": "debug"}`)

	opts, err := ParseServerArgs(newFlagSet(), []string{"-c", path}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", opts.Addr)
	assert.Equal(t, "debug", opts.LogLevel)

	opts, err = ParseServerArgs(newFlagSet(), []string{"-c", path},
		env(map[string]string{"SERVER_ADDRESS": ":7000"}))
	require.NoError(t, err)
	assert.Equal(t, ":7000", opts.Addr)

	opts, err = ParseServerArgs(newFlagSet(), []string{"-c", path, "-a", ":6000"},
		env(map[string]string{"SERVER_ADDRESS": ":7000"}))
	require.NoError(t, err)
	assert.Equal(t, ":6000", opts.Addr)
}
