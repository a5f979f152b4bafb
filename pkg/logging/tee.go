package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler writes each record to a primary handler and a JSON mirror.
// The mirror sees the same attributes and groups as the primary.
type teeHandler struct {
	primary slog.Handler
	mirror  slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.primary.Enabled(ctx, level) || t.mirror.Enabled(ctx, level)
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var primaryErr, mirrorErr error
	if t.primary.Enabled(ctx, r.Level) {
		primaryErr = t.primary.Handle(ctx, r.Clone())
	}
	if t.mirror.Enabled(ctx, r.Level) {
		mirrorErr = t.mirror.Handle(ctx, r)
	}
	return errors.Join(primaryErr, mirrorErr)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{primary: t.primary.WithAttrs(attrs), mirror: t.mirror.WithAttrs(attrs)}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{primary: t.primary.WithGroup(name), mirror: t.mirror.WithGroup(name)}
}
