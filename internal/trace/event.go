package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat // progress of a run, see Heartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one CLI invocation
	ScopePass                    // a directory run, the validation pass of a program
	ScopeFile                    // one input file
	ScopeNode                    // scope boundaries inside the validator
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeFile:   "file",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Attrs are the typed fields of an event. Zero values are not printed.
type Attrs struct {
	Path        string `json:"path,omitempty"`        // input file or directory
	Mode        string `json:"mode,omitempty"`        // module, script or eval
	Node        string `json:"node,omitempty"`        // ESTree type of a scope boundary
	Captured    int    `json:"captured,omitempty"`    // bindings a boundary claimed
	Facts       int    `json:"facts,omitempty"`       // facts leaving a boundary
	Diagnostics int    `json:"diagnostics,omitempty"` // of a file or a pass
	Cached      bool   `json:"cached,omitempty"`
	Done        int    `json:"done,omitempty"`  // files finished
	Total       int    `json:"total,omitempty"` // files expected
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // global, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // "check", "check_file", "sema.validate", "boundary:block"
	Detail   string
	Attrs    Attrs
}
