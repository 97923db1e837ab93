package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is a half-open byte range inside one file.
type Span struct {
	File  FileID
	Start uint32 // включительно
	End   uint32 // не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// SpanOf builds a span from int byte offsets as reported by go/token.
// Negative or oversized offsets collapse to an empty span at 0.
func SpanOf(file FileID, start, end int) Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return Span{File: file}
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil || e < s {
		e = s
	}
	return Span{File: file, Start: s, End: e}
}

// NoFile marks spans that do not point into any loaded file, e.g. declarations
// decoded from a binary snapshot.
const NoFile FileID = ^FileID(0)

// NoSpan is the span used when a declaration has no source position.
var NoSpan = Span{File: NoFile}

// Valid reports whether the span refers to a file.
func (s Span) Valid() bool {
	return s.File != NoFile
}
