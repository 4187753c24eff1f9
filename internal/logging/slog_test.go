package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestSetup_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "debug", nil, nil)

	m.Logger().Debug("debug msg")
	m.Logger().Info("info msg")

	output := buf.String()
	assert.Contains(t, output, "Logging initialized")
	assert.Contains(t, output, "debug msg")
	assert.Contains(t, output, "info msg")
}

func TestSetup_InfoLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, nil)

	m.Logger().Debug("should be filtered")
	m.Logger().Info("should appear")

	assert.NotContains(t, buf.String(), "should be filtered")
	assert.Contains(t, buf.String(), "should appear")
}

func TestSetup_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, func() []slog.Attr {
		return []slog.Attr{slog.String("demo", "g2-vs-spirit-m3-dust2.dem")}
	})

	m.Logger().Info("round rendered")
	assert.Contains(t, buf.String(), "demo=g2-vs-spirit-m3-dust2.dem")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandler_ContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(nil, failingHandler{}, slog.NewTextHandler(&buf, nil))
	logger := slog.New(h)

	logger.Info("delivered anyway")
	assert.Contains(t, buf.String(), "delivered anyway")

	err := h.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "direct", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
}

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewTextHandler(&buf, nil))

	assert.Same(t, h, h.WithGroup(""))
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("map", "de_dust2")}).WithGroup("view"))
	logger.Info("x", "round", 3)

	assert.Contains(t, buf.String(), "map=de_dust2")
	assert.Contains(t, buf.String(), "view.round=3")
}
