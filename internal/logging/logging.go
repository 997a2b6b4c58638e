// Package logging carries a *slog.Logger on a context.Context so packages
// deep in the render path can log without holding a logger themselves.
package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var slogCtxKey = ctxKey{}

// FromContext returns the logger stored on ctx, or a logger that discards
// everything when none was set.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return Discard()
	}
	val := ctx.Value(slogCtxKey)
	if val == nil {
		return Discard()
	}
	logger, ok := val.(*slog.Logger)
	if !ok || logger == nil {
		return Discard()
	}
	return logger
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, slogCtxKey, logger)
}

// Discard returns a logger whose handler drops every record.
func Discard() *slog.Logger {
	return slog.New(noopHandler{})
}

type noopHandler struct{}

func (noopHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (noopHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (n noopHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return n
}

func (n noopHandler) WithGroup(_ string) slog.Handler {
	return n
}
