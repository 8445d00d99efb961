package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// Span is one traced piece of work. Begin returns nil when the tracer does
// not emit the scope; every method is safe on a nil Span.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   Attrs
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return BeginWith(t, scope, name, parent, Attrs{})
}

// BeginWith is Begin with attributes already known at the start, which
// then appear on both events.
func BeginWith(t Tracer, scope Scope, name string, parent uint64, attrs Attrs) *Span {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return nil
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
		attrs:   attrs,
	}
	s.emit(KindSpanBegin, "")
	return s
}

// BeginFile opens the span of one input file.
func BeginFile(t Tracer, parent uint64, path string) *Span {
	return BeginWith(t, ScopeFile, "check_file", parent, Attrs{Path: path})
}

// BeginPass opens the validation pass of one program.
func BeginPass(t Tracer, parent uint64, mode string) *Span {
	return BeginWith(t, ScopePass, "sema.validate", parent, Attrs{Mode: mode})
}

// BeginBoundary opens the span of one scope boundary; node is the ESTree
// type of the boundary node.
func BeginBoundary(t Tracer, parent uint64, kind, node string) *Span {
	return BeginWith(t, ScopeNode, "boundary:"+kind, parent, Attrs{Node: node})
}

func (s *Span) emit(kind Kind, detail string) {
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      nextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Attrs:    s.attrs,
	})
}

// End emits the end event and returns the duration of the span.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	s.emit(KindSpanEnd, detail)
	return time.Since(s.started)
}

// Reduced records what a scope boundary did with the facts of its subtree.
func (s *Span) Reduced(captured, facts int) *Span {
	if s != nil {
		s.attrs.Captured, s.attrs.Facts = captured, facts
	}
	return s
}

// Diagnostics records how many diagnostics the span produced.
func (s *Span) Diagnostics(n int) *Span {
	if s != nil {
		s.attrs.Diagnostics = n
	}
	return s
}

// Cached marks a file whose diagnostics came from the cache.
func (s *Span) Cached(cached bool) *Span {
	if s != nil {
		s.attrs.Cached = cached
	}
	return s
}

// Files records how many of the expected files were checked.
func (s *Span) Files(done, total int) *Span {
	if s != nil {
		s.attrs.Done, s.attrs.Total = done, total
	}
	return s
}

// ID returns the span ID, 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
