// Package trace provides decision- and event-trace recording for queueing
// network simulation analysis. This package has no dependency on sim -- it
// stores pure data types, recorded by value from the engine.
package trace

// TraceLevel controls the verbosity of trace recording.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents records every scheduled event.
	TraceLevelEvents TraceLevel = "events"
	// TraceLevelFull records events and the queue-length samples taken
	// after every dispatched event.
	TraceLevelFull TraceLevel = "full"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	TraceLevelFull:   true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Recorder collects event and queue-length samples during one replication.
type Recorder struct {
	Config  TraceConfig
	Events  []EventRecord
	Samples []QueueSample
}

// NewRecorder creates a Recorder ready for recording at the given level.
func NewRecorder(config TraceConfig) *Recorder {
	return &Recorder{
		Config:  config,
		Events:  make([]EventRecord, 0),
		Samples: make([]QueueSample, 0),
	}
}

// RecordEvent appends an event record, unless the configured level is None
// (or empty, which defaults to none).
func (r *Recorder) RecordEvent(record EventRecord) {
	if r.Config.Level == TraceLevelNone || r.Config.Level == "" {
		return
	}
	r.Events = append(r.Events, record)
}

// RecordQueueSample appends a queue-length sample, recorded only at
// TraceLevelFull -- queue samples are taken after every dispatched event and
// would dominate memory use at TraceLevelEvents.
func (r *Recorder) RecordQueueSample(sample QueueSample) {
	if r.Config.Level != TraceLevelFull {
		return
	}
	r.Samples = append(r.Samples, sample)
}
