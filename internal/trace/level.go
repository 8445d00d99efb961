package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing is streamed; the ring is dumped on a crash
	LevelPhase        // driver and pass spans
	LevelDetail       // plus one span per file
	LevelDebug        // plus scope boundaries
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest scope each level emits; zero emits nothing
var finestScope = [...]Scope{
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeNode,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level, ignoring case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are traced at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(finestScope) && scope <= finestScope[l]
}
