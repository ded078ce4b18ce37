package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("JSON handler honours level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(config.Log{Level: "info", Format: "json"}, &buf)

		logger.Debug("hidden")
		logger.Info("shown", slog.String("screen", "cart"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "cart", entry["screen"])
	})

	t.Run("Text handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(config.Log{Level: "debug", Format: "text"}, &buf)

		logger.Debug("visible")

		assert.Contains(t, buf.String(), "msg=visible")
	})

	t.Run("Unknown level falls back to warn", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(config.Log{Level: "chatty"}, &buf)

		logger.Info("dropped")
		assert.Empty(t, buf.String())

		logger.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With(slog.String("session_id", "abc"))

	ctx := logging.WithLogger(context.Background(), logger)
	logging.FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "session_id=abc")
	assert.Equal(t, slog.Default(), logging.FromContext(context.Background()))
}
