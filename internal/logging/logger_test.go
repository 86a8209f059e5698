package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitLogger_JSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := initLogger(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("stored", "file", "a.png")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stored", entry["msg"])
	assert.Equal(t, "a.png", entry["file"])
}

func TestInitLogger_Text(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	initLogger(&buf, "debug", "text").Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
