package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchDriver_Run_SingleReplication_CIEqualsPointEstimate(t *testing.T) {
	// GIVEN a config with batch_count=1
	cfg := &Config{
		Nodes:        []string{"q"},
		ArrivalDists: map[string]Distribution{"q": mustExp(t, 3)},
		ServiceDists: map[string]Distribution{"q": mustExp(t, 4)},
		Servers:      map[string]int{"q": 1},
		SimTime:      1000,
		Warmup:       100,
		BatchCount:   1,
		Seed:         1,
	}

	// WHEN run
	br, err := NewBatchDriver(cfg).Run()
	require.NoError(t, err)

	// THEN the confidence interval collapses to the point estimate
	assert.Equal(t, 1, br.Replications)
	assert.Equal(t, [2]float64{br.MeanThroughput, br.MeanThroughput}, br.ThroughputCI)
}

func TestBatchDriver_Run_MultipleReplications_SeedsDiffer(t *testing.T) {
	// GIVEN a config with several replications
	cfg := &Config{
		Nodes:        []string{"q"},
		ArrivalDists: map[string]Distribution{"q": mustExp(t, 3)},
		ServiceDists: map[string]Distribution{"q": mustExp(t, 4)},
		Servers:      map[string]int{"q": 1},
		SimTime:      1000,
		Warmup:       100,
		BatchCount:   5,
		Seed:         1,
	}

	// WHEN run
	br, err := NewBatchDriver(cfg).Run()
	require.NoError(t, err)

	// THEN all five replications succeed and the throughput CI has nonzero width
	assert.Equal(t, 5, br.Replications)
	assert.Equal(t, 0, br.Failures)
	assert.Less(t, br.ThroughputCI[0], br.ThroughputCI[1])
}

func TestBatchDriver_Run_InvalidConfig_FailsBeforeAnyReplication(t *testing.T) {
	// GIVEN an invalid config
	cfg := &Config{
		Nodes:      nil,
		BatchCount: 1,
	}

	// WHEN run
	_, err := NewBatchDriver(cfg).Run()

	// THEN it reports a ConfigurationError and runs nothing
	require.Error(t, err)
	assert.IsType(t, &ConfigurationError{}, err)
}
