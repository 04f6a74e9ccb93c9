package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// AttrsFunc pulls request-scoped attributes out of a context.
type AttrsFunc func(ctx context.Context) []slog.Attr

// ContextHandler decorates records logged with a context: trace and span ids
// when a span is active, plus whatever the extra AttrsFuncs return.
type ContextHandler struct {
	next  slog.Handler
	extra []AttrsFunc
}

func NewContextHandler(next slog.Handler, extra ...AttrsFunc) *ContextHandler {
	return &ContextHandler{next: next, extra: extra}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		r.AddAttrs(traceAttrs(ctx)...)
		for _, fn := range h.extra {
			r.AddAttrs(fn(ctx)...)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), extra: h.extra}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), extra: h.extra}
}

func traceAttrs(ctx context.Context) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
}
