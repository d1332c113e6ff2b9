package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/fsm/internal/config"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("FSM_SPEC_FILE", "")
	t.Setenv("FSM_LOG_LEVEL", "")
	t.Setenv("FSM_LOG_FORMAT", "")
	t.Setenv("FSM_IGNORE_UNEXPECTED", "")
	t.Setenv("FSM_AWAIT_TIMEOUT", "")
	for _, k := range []string{"FSM_SPEC_FILE", "FSM_LOG_LEVEL", "FSM_LOG_FORMAT", "FSM_IGNORE_UNEXPECTED", "FSM_AWAIT_TIMEOUT"} {
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := config.Parse()
	require.NoError(t, err)
	assert.Empty(t, cfg.SpecFile)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.IgnoreUnexpected)
	assert.Equal(t, 5*time.Second, cfg.AwaitTimeout)
}

func TestParseValues(t *testing.T) {
	t.Setenv("FSM_SPEC_FILE", "machine.yaml")
	t.Setenv("FSM_LOG_LEVEL", "debug")
	t.Setenv("FSM_LOG_FORMAT", "json")
	t.Setenv("FSM_IGNORE_UNEXPECTED", "true")
	t.Setenv("FSM_AWAIT_TIMEOUT", "250ms")

	cfg, err := config.Parse()
	require.NoError(t, err)
	assert.Equal(t, "machine.yaml", cfg.SpecFile)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.IgnoreUnexpected)
	assert.Equal(t, 250*time.Millisecond, cfg.AwaitTimeout)
}

func TestParseErrors(t *testing.T) {
	t.Setenv("FSM_LOG_FORMAT", "xml")
	_, err := config.Parse()
	assert.ErrorIs(t, err, config.ErrInvalidLogFormat)

	t.Setenv("FSM_LOG_FORMAT", "text")
	t.Setenv("FSM_AWAIT_TIMEOUT", "soon")
	_, err = config.Parse()
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("FSM_LOG_FORMAT", "text")
	t.Setenv("FSM_AWAIT_TIMEOUT", "1s")
	t.Setenv("FSM_SPEC_FILE", "")
	require.NoError(t, os.Unsetenv("FSM_SPEC_FILE"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FSM_SPEC_FILE=from-dotenv.yaml\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("FSM_SPEC_FILE") })

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.yaml", cfg.SpecFile)
	assert.Equal(t, time.Second, cfg.AwaitTimeout)

	// A missing .env file is not an error
	_, err = config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
