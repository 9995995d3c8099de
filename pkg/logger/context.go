package logger

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

type fieldsKey struct{}

// With returns a context carrying fields in addition to any stored by an
// earlier call. Records logged through a *Context method pick them up.
func With(ctx context.Context, fields ...any) context.Context {
	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "", 0)
	r.Add(fields...)

	attrs := slices.Clone(Fields(ctx))
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return context.WithValue(ctx, fieldsKey{}, attrs)
}

// Fields returns the attributes stored in ctx by With.
func Fields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(fieldsKey{}).([]slog.Attr)
	return attrs
}

// From returns the process logger with the context fields already bound.
func From(ctx context.Context) *slog.Logger {
	attrs := Fields(ctx)
	if len(attrs) == 0 {
		return LoggerWrapper()
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return LoggerWrapper().With(args...)
}

// ContextHandler adds the fields stored by With to every record handled
// with a context.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := Fields(ctx); len(attrs) > 0 {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
