package source

import (
	"fmt"
)

// Span is a half-open range of character offsets, as ESTree producers report
// it through `range` or the `start`/`end` pair.
type Span struct {
	Start uint32 // включительно
	End   uint32 // не включительно
}

func (s Span) Len() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}
