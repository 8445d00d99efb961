package trace

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Progress counts the files of a run. Methods are safe for concurrent use
// and do nothing on a nil Progress.
type Progress struct {
	total   atomic.Int64
	done    atomic.Int64
	current atomic.Pointer[string]
}

func NewProgress() *Progress { return &Progress{} }

// Expect adds n files to the expected total.
func (p *Progress) Expect(n int) {
	if p != nil {
		p.total.Add(int64(n))
	}
}

// Start records path as the file most recently picked up.
func (p *Progress) Start(path string) {
	if p != nil {
		p.current.Store(&path)
	}
}

// Finish marks one file as checked.
func (p *Progress) Finish() {
	if p != nil {
		p.done.Add(1)
	}
}

// Counts returns the files checked and expected so far.
func (p *Progress) Counts() (done, total int) {
	if p == nil {
		return 0, 0
	}
	return int(p.done.Load()), int(p.total.Load())
}

func (p *Progress) attrs() Attrs {
	if p == nil {
		return Attrs{}
	}
	var a Attrs
	a.Done, a.Total = p.Counts()
	if cur := p.current.Load(); cur != nil {
		a.Path = *cur
	}
	return a
}

// Heartbeat periodically reports the progress of a run. A Path that stays
// the same across several beats names the file the checker is stuck on.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat emits a heartbeat every interval until Stop. p may be nil,
// then the beats carry no progress.
func StartHeartbeat(t Tracer, interval time.Duration, p *Progress) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go h.run(t, interval, p)
	return h
}

func (h *Heartbeat) run(t Tracer, interval time.Duration, p *Progress) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-ticker.C:
			a := p.attrs()
			t.Emit(&Event{
				Time:   time.Now(),
				Seq:    nextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d", beat),
				Attrs:  a,
			})
		case <-h.stop:
			return
		}
	}
}

// Stop ends the heartbeat and waits for the goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
