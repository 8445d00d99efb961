package driver

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary of one file. Err is set on PhaseEnd
// when the phase failed.
type PhaseEvent struct {
	Name   string
	Status PhaseStatus
	Err    error
}

// PhaseObserver receives phase events emitted while checking a file. Directory
// runs call it from several goroutines.
type PhaseObserver func(PhaseEvent)
