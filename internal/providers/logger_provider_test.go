package providers

import (
	"bytes"
	"felixrec/internal/structures"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "app", TypeApp.String())
	assert.Equal(t, "executor", TypeExecutor.String())
	assert.Equal(t, "unknown", TypeEnum(99).String())
}

func TestNewLogProvider_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		AppName: "felixrec",
		Logger: structures.LoggerConfig{
			Level: "debug",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)

	logger.Infof(TypeApp, "test message %d", 1)
	logger.Debugf(TypeJournal, "journal message")
	logger.Warnf(TypePoller, "poller message")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"app"`)
	assert.Contains(t, string(data), "test message 1")
	assert.Contains(t, string(data), `"component":"poller"`)
}

func TestNewLogProvider_LevelFilters(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "warn", Mode: 0644, Dir: dir},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	logger.Infof(TypeApp, "hidden")
	logger.Errorf(TypeApp, "shown")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "verbose", Mode: 0644, Dir: t.TempDir()},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewConsoleLogProvider(t *testing.T) {
	var buf bytes.Buffer
	conf := &structures.Config{AppName: "felixrec", Logger: structures.LoggerConfig{Level: "info"}}

	logger := NewConsoleLogProvider(conf, &buf)
	logger.Debugf(TypeApp, "hidden")
	logger.Warnf(TypeJournal, "archive %s unreadable", "2026-10")
	logger.Close()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "archive 2026-10 unreadable")
	assert.Contains(t, out, "component=journal")
}

func TestNewConsoleLogProvider_DefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogProvider(&structures.Config{}, &buf)

	logger.Infof(TypeApp, "quiet")
	logger.Errorf(TypeApp, "loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
