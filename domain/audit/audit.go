// Package audit provides value types for the dispatch audit trail.
package audit

import "time"

// Outcome values recorded per dispatch.
const (
	OutcomeOK          = "ok"
	OutcomeDescriptors = "descriptors"
)

// Event records one dispatched request.
type Event struct {
	ID        string
	Operation string // empty for descriptor-listing requests
	Outcome   string // OutcomeOK, OutcomeDescriptors, or a fault kind
	Username  string // empty for anonymous callers
	Locale    string
	LatencyMs int64
	RemoteIP  string
	Timestamp time.Time
}

// Failed reports whether the event recorded a fault.
func (e Event) Failed() bool {
	return e.Outcome != OutcomeOK && e.Outcome != OutcomeDescriptors
}
