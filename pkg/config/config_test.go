package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, args []string, environ map[string]string) (*Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return flags.Resolve(fs, "pokerledger", environ)
}

func TestDefaults(t *testing.T) {
	cfg, err := resolve(t, nil, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, "info", cfg.DebugLevel)
	assert.Equal(t, "chehsunliu", cfg.Ranker)
	assert.Equal(t, 5, cfg.MaxLogFiles)
	assert.Equal(t, time.Second, cfg.AutoAdvanceDelay)
	assert.Equal(t, 3*time.Second, cfg.AutoStartDelay)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "logs", "pokerledger.log"), cfg.LogFile)
}

func TestEnvThenFlags(t *testing.T) {
	environ := map[string]string{
		"POKERLEDGER_DATADIR":            "/tmp/pl",
		"POKERLEDGER_STORE":              "sqlite",
		"POKERLEDGER_RANKER":             "paulhankin",
		"POKERLEDGER_AUTO_ADVANCE_DELAY": "250ms",
	}
	cfg, err := resolve(t, nil, environ)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pl", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "paulhankin", cfg.Ranker)
	assert.Equal(t, 250*time.Millisecond, cfg.AutoAdvanceDelay)

	cfg, err = resolve(t, []string{"-store", "file", "-autoadvance", "0s", "-debuglevel", "debug,GAME=trace"}, environ)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store)
	assert.Zero(t, cfg.AutoAdvanceDelay)
	assert.Equal(t, "debug,GAME=trace", cfg.DebugLevel)
	assert.Equal(t, "/tmp/pl", cfg.DataDir)
}

func TestValidate(t *testing.T) {
	_, err := resolve(t, []string{"-store", "postgres"}, map[string]string{})
	assert.Error(t, err)
	_, err = resolve(t, []string{"-ranker", "magic"}, map[string]string{})
	assert.Error(t, err)
	_, err = resolve(t, []string{"-debuglevel", "loud"}, map[string]string{})
	assert.Error(t, err)
	_, err = resolve(t, []string{"-autostart", "-1s"}, map[string]string{})
	assert.Error(t, err)
	_, err = resolve(t, nil, map[string]string{"POKERLEDGER_MAXLOGFILES": "lots"})
	assert.Error(t, err)
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("POKERLEDGER_RANKER=paulhankin\n"), 0o600))
	t.Setenv("POKERLEDGER_STORE", "sqlite")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-envfile", envFile, "-datadir", dir}, "pokerledger")
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("POKERLEDGER_RANKER") })

	assert.Equal(t, "paulhankin", cfg.Ranker)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, dir, cfg.DataDir)

	// A missing .env file is not an error.
	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	_, err = Load(fs, []string{"-envfile", filepath.Join(dir, "none.env"), "-datadir", dir}, "pokerledger")
	require.NoError(t, err)
}
