package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/dev-Pau/evidens/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, ParseLevel("debug"), slog.LevelDebug)
	assert.Equal(t, ParseLevel("WARNING"), slog.LevelWarn)
	assert.Equal(t, ParseLevel("error"), slog.LevelError)
	assert.Equal(t, ParseLevel("verbose"), slog.LevelInfo)
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "WARN")
	logger.Info("hidden")
	logger.Warn("shown", "screen", "home")

	var rec map[string]any
	err := json.Unmarshal(buf.Bytes(), &rec)
	assert.Equal(t, err, nil)
	assert.Equal(t, rec["msg"], "shown")
	assert.Equal(t, rec["screen"], "home")
}

func TestSetupCreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "evidens.log")
	logger, closer, err := Setup(&config.LoggingConfig{File: path, Level: "INFO"})
	assert.Equal(t, err, nil)
	logger.Info("hello")
	assert.Equal(t, closer.Close(), nil)

	data, err := os.ReadFile(path)
	assert.Equal(t, err, nil)
	assert.NotEqual(t, len(data), 0)
}
