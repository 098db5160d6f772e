package common

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	ctx := context.Background()

	t.Run("level is applied", func(t *testing.T) {
		SetupLogger(slog.LevelWarn, "console")

		logger := slog.Default()
		assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
		assert.True(t, logger.Enabled(ctx, slog.LevelError))
		assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
		assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("json format", func(t *testing.T) {
		SetupLogger(slog.LevelInfo, "json")

		_, ok := slog.Default().Handler().(*slog.JSONHandler)
		assert.True(t, ok)
	})

	t.Run("unknown format falls back to console", func(t *testing.T) {
		SetupLogger(slog.LevelInfo, "logfmt")

		_, ok := slog.Default().Handler().(*slog.TextHandler)
		assert.True(t, ok)
	})
}
