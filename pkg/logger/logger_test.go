package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_LevelsPerCore(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")
	var console bytes.Buffer

	log, err := New(Config{
		Level:        "debug",
		ConsoleLevel: "warn",
		Format:       "console",
		DateFormat:   "2006/01/02",
		OutputPath:   logPath,
		Console:      &console,
	})
	require.NoError(t, err)

	log.Debug("probing", zap.String("url", "https://a/1"))
	log.Warn("download failed", zap.String("url", "https://a/2"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	fileOut := string(data)
	assert.Contains(t, fileOut, "DEBUG - probing")
	assert.Contains(t, fileOut, "WARN - download failed")
	assert.Contains(t, fileOut, `"url": "https://a/2"`)

	consoleOut := console.String()
	assert.NotContains(t, consoleOut, "probing")
	assert.True(t, strings.HasPrefix(consoleOut, "download failed"), consoleOut)
	assert.NotContains(t, consoleOut, "WARN")
}

func TestNew_JSONFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	log, err := New(Config{
		Level:        "info",
		ConsoleLevel: "error",
		Format:       "json",
		DateFormat:   "2006-01-02",
		OutputPath:   logPath,
		Console:      &bytes.Buffer{},
	})
	require.NoError(t, err)
	log.Info("run finished", zap.Int("failed", 2))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(2), entry["failed"])
	assert.Len(t, entry["timestamp"], len("2006-01-02"))
}

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	log, err := New(Config{ConsoleLevel: "info", Console: &console})
	require.NoError(t, err)

	log.Info("hello")
	assert.Equal(t, "hello\n", console.String())
}

func TestNew_PatternFormatUsesConsoleEncoding(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	log, err := New(Config{
		Level:        "info",
		ConsoleLevel: "error",
		Format:       "%(asctime)s - %(levelname)s - %(message)s",
		OutputPath:   logPath,
		Console:      &bytes.Buffer{},
	})
	require.NoError(t, err)
	log.Info("run started")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO - run started")
}
