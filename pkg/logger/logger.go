package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON logger writing to stdout. Context extractors pull
// request-scoped attributes (request id, user id) into every record.
func New(level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(Decorate(h, extractors...))
}

// NewNope creates a no-op logger that discards all output.
// Used as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
