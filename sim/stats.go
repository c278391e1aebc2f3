package sim

// Stats accumulates the time integrals and counters a Node needs for
// steady-state metrics. Integrals accumulate only once warmupDone is set;
// counters incremented by Engine's handlers before then are zeroed by
// resetAtWarmup. Node.updateStats is the sole mutator of the integrals and
// is called on every state change that affects a tracked quantity, using the deferred-accumulation
// method of spec.md §4.6: integrate (now - lastUpdateTime) * currentValue
// into the accumulator, update currentValue, then advance lastUpdateTime.
type Stats struct {
	lastUpdateTime float64
	warmupDone     bool

	QueueIntegral float64 // ∫ queue_length dt, post-warmup only
	BusyTime      float64 // Σ over servers of time spent BUSY, post-warmup only
	DownTime      float64 // Σ over servers of time spent DOWN, post-warmup only

	CompletedServices  int64
	ArrivalsTotal      int64
	RenegedTotal       int64
	WaitingTimeSum     float64
	SystemTimeSum      float64
	ServedCount        int64 // customers whose waiting time was recorded on this node
	ExitedCount        int64 // customers whose system time was recorded as exiting at this node

	lastServerTime []float64 // per-server last_update_time for busy/down integrals
}

// NewStats creates a Stats accumulator for a node with the given server
// count, with integrals starting at t=0.
func NewStats(serverCount int) *Stats {
	return &Stats{
		lastServerTime: make([]float64, serverCount),
	}
}

// resetAtWarmup zeroes every accumulator and resets lastUpdateTime to t --
// the synthetic checkpoint of spec.md §4.6. The caller must have already
// called updateStats(t) to close out the pre-warmup interval before
// resetting, so this is safe to call at t=0 (nothing accumulated yet, so
// zeroing changes nothing observable -- the warmup-reset idempotence
// property of spec.md §8).
func (s *Stats) resetAtWarmup(t float64) {
	s.QueueIntegral = 0
	s.BusyTime = 0
	s.DownTime = 0
	s.CompletedServices = 0
	s.ArrivalsTotal = 0
	s.RenegedTotal = 0
	s.WaitingTimeSum = 0
	s.SystemTimeSum = 0
	s.ServedCount = 0
	s.ExitedCount = 0

	s.lastUpdateTime = t
	for i := range s.lastServerTime {
		s.lastServerTime[i] = t
	}
	s.warmupDone = true
}
