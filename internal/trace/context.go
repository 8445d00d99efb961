package trace

import "context"

type (
	tracerKey   struct{}
	parentKey   struct{}
	progressKey struct{}
)

// WithTracer attaches t to ctx; nil means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithParent makes s the parent of spans begun from the returned context.
// A nil span leaves ctx unchanged.
func WithParent(ctx context.Context, s *Span) context.Context {
	if s == nil {
		return ctx
	}
	return context.WithValue(ctx, parentKey{}, s.id)
}

// ParentID returns the span new spans of ctx hang under, 0 at the root.
func ParentID(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(parentKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}

// WithProgress attaches the file counter the heartbeat reports.
func WithProgress(ctx context.Context, p *Progress) context.Context {
	return context.WithValue(ctx, progressKey{}, p)
}

// ProgressFrom returns the file counter of ctx; nil is a valid no-op value.
func ProgressFrom(ctx context.Context) *Progress {
	if ctx != nil {
		if p, ok := ctx.Value(progressKey{}).(*Progress); ok {
			return p
		}
	}
	return nil
}
