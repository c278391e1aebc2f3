// batch.go
//
// Defines BatchDriver, which runs a Config through multiple independent
// replications and aggregates their Results into confidence intervals.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// seedStride spaces replication seeds far enough apart that their LCG
// streams never visibly correlate for the sample sizes spec.md targets.
const seedStride = 1_000_003

// BatchResult aggregates BatchCount independent replications of the same
// Config into per-metric sample means and 95% confidence intervals.
// Failures is the count of replications that returned an error; FirstError
// is the first such error encountered, kept for diagnostics. A failed
// replication is excluded from every aggregate rather than treated as zero.
type BatchResult struct {
	Replications int
	Failures     int
	FirstError   error

	MeanThroughput float64
	ThroughputCI   [2]float64

	MeanQueueLength   map[string]float64
	QueueLengthCI     map[string][2]float64
	ServerUtilization map[string]float64
	ServerUtilCI      map[string][2]float64
	RenegingProb      map[string]float64
	RenegingProbCI    map[string][2]float64
	MeanWaitingTime   map[string]float64
	WaitingTimeCI     map[string][2]float64
	MeanSystemTime    map[string]float64
	SystemTimeCI      map[string][2]float64
}

// BatchDriver runs Config.BatchCount independent replications of cfg, each
// with its own Engine and RNG stream, and aggregates their Results.
type BatchDriver struct {
	config *Config
}

// NewBatchDriver constructs a BatchDriver for cfg. cfg is validated lazily,
// on the first call to Run, by the first replication's NewEngine.
func NewBatchDriver(cfg *Config) *BatchDriver {
	return &BatchDriver{config: cfg}
}

// Run executes Config.BatchCount replications, seeding replication i with
// Config.Seed + i*seedStride, and returns the aggregated BatchResult. Run
// returns an error only if the Config itself fails validation, or if every
// replication fails; a partial failure is recorded on
// BatchResult.Failures/FirstError and excluded from the aggregates.
func (b *BatchDriver) Run() (*BatchResult, error) {
	results := make([]*Result, 0, b.config.BatchCount)
	br := &BatchResult{}

	for i := 0; i < b.config.BatchCount; i++ {
		seed := b.config.Seed + int64(i)*seedStride
		eng, err := NewEngine(b.config, seed)
		if err != nil {
			return nil, err
		}
		res, err := eng.Run()
		if err != nil {
			br.Failures++
			if br.FirstError == nil {
				br.FirstError = err
			}
			logrus.Warnf("replication %d (seed %d) failed: %v", i, seed, err)
			continue
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		return nil, &InvariantViolation{Detail: "every replication failed"}
	}
	br.Replications = len(results)

	throughputs := make([]float64, len(results))
	for i, r := range results {
		throughputs[i] = r.Throughput
	}
	br.MeanThroughput, br.ThroughputCI = meanAndCI(throughputs)

	br.MeanQueueLength, br.QueueLengthCI = aggregateMap(results, func(r *Result) map[string]float64 { return r.MeanQueueLength })
	br.ServerUtilization, br.ServerUtilCI = aggregateMap(results, func(r *Result) map[string]float64 { return r.ServerUtilization })
	br.RenegingProb, br.RenegingProbCI = aggregateMap(results, func(r *Result) map[string]float64 { return r.RenegingProb })
	br.MeanWaitingTime, br.WaitingTimeCI = aggregateMap(results, func(r *Result) map[string]float64 { return r.MeanWaitingTime })
	br.MeanSystemTime, br.SystemTimeCI = aggregateMap(results, func(r *Result) map[string]float64 { return r.MeanSystemTime })

	return br, nil
}

// aggregateMap collects per-node samples of one metric across replications
// and reduces each node's sample to a mean and confidence interval.
func aggregateMap(results []*Result, pick func(*Result) map[string]float64) (map[string]float64, map[string][2]float64) {
	nodes := make(map[string]bool)
	for _, r := range results {
		for name := range pick(r) {
			nodes[name] = true
		}
	}

	means := make(map[string]float64, len(nodes))
	cis := make(map[string][2]float64, len(nodes))
	for name := range nodes {
		samples := make([]float64, len(results))
		for i, r := range results {
			samples[i] = pick(r)[name]
		}
		means[name], cis[name] = meanAndCI(samples)
	}
	return means, cis
}

// meanAndCI returns the sample mean and a 95% confidence interval using the
// Student's t distribution with n-1 degrees of freedom, per spec.md §4.8.
// With fewer than two samples the interval collapses to the point estimate:
// there is no meaningful variance to report.
func meanAndCI(samples []float64) (float64, [2]float64) {
	mean := stat.Mean(samples, nil)
	n := len(samples)
	if n < 2 {
		return mean, [2]float64{mean, mean}
	}

	stddev := stat.StdDev(samples, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	halfWidth := t.Quantile(0.975) * stddev / math.Sqrt(float64(n))
	return mean, [2]float64{mean - halfWidth, mean + halfWidth}
}
