package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("Error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	New("info", "json", &buf).Info("rendered", "layer", "tmp")
	assert.Contains(t, buf.String(), `"layer":"tmp"`)

	buf.Reset()
	New("info", "text", &buf).Info("rendered", "layer", "tmp")
	assert.Contains(t, buf.String(), "layer=tmp")

	buf.Reset()
	New("warn", "text", &buf).Info("dropped")
	assert.Empty(t, buf.String())
}
