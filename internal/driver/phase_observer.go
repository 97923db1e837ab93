package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a generation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	// Note is set on PhaseEnd: "3 files", "skipped", an error text.
	Note string
}

// PhaseObserver receives phase events emitted by Discover, Generate and
// WriteFiles. It is called from the caller's goroutine only.
type PhaseObserver func(PhaseEvent)

// observe reports the start of name and returns the matching end call.
func (o PhaseObserver) observe(name string) func(note string) {
	if o == nil {
		return func(string) {}
	}
	start := time.Now()
	o(PhaseEvent{Name: name, Status: PhaseStart})
	return func(note string) {
		o(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Note: note})
	}
}
