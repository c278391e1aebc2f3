package sim

// Result holds the per-replication performance metrics of spec.md §3;
// BatchResult holds the aggregate over replications. Map keys are always
// node names drawn from Config.Nodes.
type Result struct {
	Throughput    float64
	ThroughputCI  [2]float64 // always (Throughput, Throughput) for a single replication

	MeanQueueLength   map[string]float64
	ServerUtilization map[string]float64
	ServiceCompletions map[string]int64
	RenegingProb      map[string]float64
	MeanWaitingTime   map[string]float64
	MeanSystemTime    map[string]float64
}

// newResult allocates a Result with empty per-node maps ready to be filled
// in for the given node names.
func newResult(nodes []string) *Result {
	r := &Result{
		MeanQueueLength:    make(map[string]float64, len(nodes)),
		ServerUtilization:  make(map[string]float64, len(nodes)),
		ServiceCompletions: make(map[string]int64, len(nodes)),
		RenegingProb:       make(map[string]float64, len(nodes)),
		MeanWaitingTime:    make(map[string]float64, len(nodes)),
		MeanSystemTime:     make(map[string]float64, len(nodes)),
	}
	return r
}
