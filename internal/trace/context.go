package trace

import "context"

type tracerKey struct{}

type spanKey struct{}

// WithTracer returns a copy of ctx carrying t. A nil t stores Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// SpanContext identifies the span new work should be parented to.
type SpanContext struct {
	SpanID uint64
}

// WithSpan returns a copy of ctx whose current span is s. Unrecorded spans
// leave ctx unchanged.
func WithSpan(ctx context.Context, s *Span) context.Context {
	if !s.recorded() {
		return ctx
	}
	return context.WithValue(ctx, spanKey{}, SpanContext{SpanID: s.id})
}

// CurrentSpan returns the span set by WithSpan, or the zero SpanContext.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}
