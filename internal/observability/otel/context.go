package otel

import (
	"context"

	"github.com/patuh/patuh/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type handleKey struct{}

// Handle wraps tracer and shutdown
type Handle struct {
	Tracer   trace.Tracer
	Shutdown func(context.Context) error
}

// WithHandle stores the OTel Handle in context.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// From retrieves the OTel Handle from context.
// Returns nil if OTel is not enabled.
func From(ctx context.Context) *Handle {
	h, _ := ctx.Value(handleKey{}).(*Handle)
	return h
}

// StartCommand opens the span for a CLI command. Without a handle in ctx it
// returns ctx unchanged and a no-op finisher.
func StartCommand(ctx context.Context, command string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	h := From(ctx)
	if h == nil {
		return ctx, func(error) {}
	}

	attrs = append([]attribute.KeyValue{
		attribute.String("patuh.op_id", observability.OpID(ctx)),
		attribute.String("patuh.command", command),
	}, attrs...)

	ctx, span := h.Tracer.Start(ctx, "patuh."+command, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed")
		} else {
			span.SetStatus(codes.Ok, "success")
		}
		span.End()
	}
}
