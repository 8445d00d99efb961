package trace

import (
	"io"
	"sync"
)

// gate is the level check shared by the stream and the ring.
type gate Level

func (g gate) Level() Level  { return Level(g) }
func (g gate) Enabled() bool { return Level(g) > LevelOff }

// admits lets heartbeats through at every level.
func (g gate) admits(ev *Event) bool {
	return ev.Kind == KindHeartbeat || Level(g).ShouldEmit(ev.Scope)
}

// RingTracer keeps the last events of a run in memory, so a crash can
// print what the checker was doing.
type RingTracer struct {
	gate
	mu      sync.Mutex
	events  []Event
	written uint64
}

// NewRingTracer keeps up to capacity events (4096 when capacity <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{gate: gate(level), events: make([]Event, capacity)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	t.mu.Lock()
	t.events[t.written%uint64(len(t.events))] = *ev
	t.written++
	t.mu.Unlock()
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := uint64(len(t.events))
	if t.written <= size {
		return append([]Event(nil), t.events[:t.written]...)
	}
	start := t.written % size
	return append(append(make([]Event, 0, size), t.events[start:]...), t.events[:start]...)
}

// Dump writes the kept events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }

// FindRing returns the ring buffer behind t, nil when tracing is not buffered.
func FindRing(t Tracer) *RingTracer {
	switch tt := t.(type) {
	case *RingTracer:
		return tt
	case tee:
		return tt.ring
	}
	return nil
}
