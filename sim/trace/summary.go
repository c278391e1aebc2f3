package trace

// TraceSummary aggregates statistics from a Recorder.
type TraceSummary struct {
	TotalEvents     int
	EventsByType    map[string]int
	TotalSamples    int
	MaxQueueLength  map[string]int
	MeanQueueLength map[string]float64
}

// Summarize computes aggregate statistics from a Recorder.
// Safe for nil or empty recorders (returns zero-value fields).
func Summarize(r *Recorder) *TraceSummary {
	summary := &TraceSummary{
		EventsByType:    make(map[string]int),
		MaxQueueLength:  make(map[string]int),
		MeanQueueLength: make(map[string]float64),
	}
	if r == nil {
		return summary
	}

	summary.TotalEvents = len(r.Events)
	for _, e := range r.Events {
		summary.EventsByType[e.Type]++
	}

	summary.TotalSamples = len(r.Samples)
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, s := range r.Samples {
		if s.QueueLength > summary.MaxQueueLength[s.NodeName] {
			summary.MaxQueueLength[s.NodeName] = s.QueueLength
		}
		sums[s.NodeName] += s.QueueLength
		counts[s.NodeName]++
	}
	for name, count := range counts {
		summary.MeanQueueLength[name] = float64(sums[name]) / float64(count)
	}

	return summary
}
