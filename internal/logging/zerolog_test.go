package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

func TestNewZerolog_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerolog(&buf, ZerologOptions{Level: "debug"})
	require.NoError(t, err)

	logger.Debug().Str("source", "file").Msg("dataset loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "dataset loaded", entry["message"])
	assert.Equal(t, "file", entry["source"])
	assert.Equal(t, ServiceName, entry["service"])
}

func TestNewZerolog_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerolog(&buf, ZerologOptions{Level: "loud"})
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
	logger.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestKVLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerolog(&buf, ZerologOptions{Level: "debug"})
	require.NoError(t, err)
	kv := NewKVLogger(logger)

	kv.Error("error occurred", "code", 500, "reason", "internal", 42, "dropped key", "dangling")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "error occurred", entry["message"])
	assert.Equal(t, float64(500), entry["code"]) // JSON numbers are float64
	assert.Equal(t, "internal", entry["reason"])
	assert.NotContains(t, entry, "dangling")
}

func TestKVLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerolog(&buf, ZerologOptions{Level: "info"})
	require.NoError(t, err)
	kv := NewKVLogger(logger)

	kv.Debug("filtered")
	kv.Info("kept")
	kv.Warn("warned")

	out := buf.String()
	assert.NotContains(t, out, "filtered")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, `"level":"warn"`)
}
