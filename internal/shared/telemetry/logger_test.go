package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoWritesFieldsAsJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { Setup("info", "json") })

	Info("document.status", map[string]any{
		"document_id": "doc-1",
		"status":      "DONE",
		"error":       errors.New("boom"),
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "document.status", entry["msg"])
	assert.Equal(t, "doc-1", entry["document_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.NotEmpty(t, entry["ts"])
}

func TestLevelFiltersLowerEvents(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel))
	t.Cleanup(func() { Setup("info", "json") })

	Info("ignored", nil)
	Warn("ignored", nil)
	assert.Zero(t, buf.Len())

	Error("kept", nil)
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}
