// Package trace provides decision-trace recording for queueing network
// simulation analysis. This package has no dependency on sim -- it stores
// pure data types.
package trace

// EventRecord captures a single scheduled event, independent of whether it
// is later discarded as stale when popped.
type EventRecord struct {
	Time     float64
	Type     string
	NodeName string
	EventID  uint64
	Valid    bool
}

// QueueSample captures one node's waiting-line length at a point in time.
type QueueSample struct {
	Time        float64
	NodeName    string
	QueueLength int
}
