package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/forest-cli/internal/config"
)

// executeCmd is a helper to execute a cobra command in tests
func executeCmd(cmd *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	bufOut := new(bytes.Buffer)
	bufErr := new(bytes.Buffer)

	cmd.SetOut(bufOut)
	cmd.SetErr(bufErr)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return bufOut.String(), bufErr.String(), err
}

// resetFlags clears global flag state between command runs.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configPath, platformFlag, logLevelFlag, durationFlag = "", "", "", ""
		configForce = false
	})
}

// headlessConfig keeps command tests off the session bus.
const headlessConfig = `
[platform]
wake_lock = false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestRootCmd_Use(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "forest", rootCmd.Use)
}

func TestRootCmd_Help(t *testing.T) {
	resetFlags(t)
	stdout, _, err := executeCmd(rootCmd, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Forest")
	assert.Contains(t, stdout, "mcp")
	assert.Contains(t, stdout, "config")
}

func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{"config", "platform", "log-level", "duration"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "--%s should be registered", name)
	}
}

func TestConfigCmd_ShowsEffectiveConfig(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, `
[session]
duration = "10m"
interruption_grace = "30s"

[platform]
class = "mobile"
wake_lock = false

[notifications]
enabled = false
`)

	stdout, _, err := executeCmd(rootCmd, "config", "--config", path, "--duration", "15m")
	require.NoError(t, err)

	assert.Contains(t, stdout, path)
	assert.Contains(t, stdout, "15m0s")
	assert.Contains(t, stdout, "30s")
	assert.Contains(t, stdout, "Mobile behavior:    true")
	assert.Contains(t, stdout, "Wake lock:          off")
	assert.Contains(t, stdout, "Notifications:        off")
}

func TestConfigCmd_RejectsInvalidDuration(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, headlessConfig)

	_, _, err := executeCmd(rootCmd, "config", "--config", path, "--duration", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--duration")
}

func TestConfigCmd_RejectsUnknownPlatform(t *testing.T) {
	resetFlags(t)
	path := writeConfig(t, headlessConfig)

	_, _, err := executeCmd(rootCmd, "config", "--config", path, "--platform", "watch")
	require.Error(t, err)
}

func TestConfigInitCmd(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	custom := config.DefaultConfig()
	custom.Session.Duration = config.Duration(5 * time.Minute)
	custom.Platform.WakeLock = false
	require.NoError(t, config.Save(path, custom))

	stdout, _, err := executeCmd(rootCmd, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")

	stdout, _, err = executeCmd(rootCmd, "config", "init", "--config", path, "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default configuration")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Session, cfg.Session)
}

func TestNewLogger_WritesToFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "forest.log")

	logger, closer, err := newLogger(cfg, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Debug("tree planted", "forest_size", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tree planted")
	assert.Contains(t, string(data), "forest_size=1")
}

func TestNewLogger_LevelFilters(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	logger, closer, err := newLogger(cfg, &buf)
	require.NoError(t, err)
	assert.Nil(t, closer)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "chatty"

	_, _, err := newLogger(cfg, io.Discard)
	assert.Error(t, err)
}

func TestNewWakeLock_Disabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Platform.WakeLock = false

	lock := newWakeLock(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, lock.Acquire(t.Context()))
	assert.NoError(t, lock.Release(t.Context()))
}

func TestLogSink(t *testing.T) {
	var stderr bytes.Buffer
	configCmd.SetErr(&stderr)
	t.Cleanup(func() { configCmd.SetErr(nil) })

	assert.Equal(t, io.Discard, logSink(rootCmd), "the UI owns the terminal")
	assert.Equal(t, &stderr, logSink(configCmd))
	assert.Equal(t, io.Discard, logSink(&cobra.Command{Use: "detached"}))
}
