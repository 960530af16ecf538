package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlust-app/wanderlust/pkg/logger"
)

func TestDecorate(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}

	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(ctxKey{}).(string); ok {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}

	t.Run("injects context attribute", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(logger.Decorate(slog.NewJSONHandler(&buf, nil), extractor))

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-123")
		log.InfoContext(ctx, "hello")

		assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	})

	t.Run("skips when extractor declines", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(logger.Decorate(slog.NewJSONHandler(&buf, nil), extractor))

		log.InfoContext(context.Background(), "hello")

		assert.NotContains(t, buf.String(), "request_id")
	})

	t.Run("nil extractors are dropped", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(logger.Decorate(slog.NewJSONHandler(&buf, nil), nil))

		require.NotPanics(t, func() {
			log.Info("hello")
		})
	})
}
