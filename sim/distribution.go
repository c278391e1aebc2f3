package sim

import "math"

// Distribution samples a non-negative duration from the shared RNG. Every
// implementation must consume exactly one RNG draw per call, so that
// swapping one distribution for another (e.g. Exponential for Constant, for
// testing) changes only downstream durations and never the sequence of
// draws observed by other distributions sharing the stream.
type Distribution interface {
	Sample(rng *RNG) float64
}

// Exponential returns -ln(1-u)/Rate for a fresh uniform draw u. Rate must be
// > 0; NewExponential enforces this at construction so a bad Config fails
// before any event is scheduled, per the ConfigurationError taxonomy.
type Exponential struct {
	Rate float64
}

// NewExponential constructs an Exponential distribution with the given rate.
func NewExponential(rate float64) (*Exponential, error) {
	if rate <= 0 {
		return nil, &ConfigurationError{Field: "rate", Reason: "must be > 0"}
	}
	return &Exponential{Rate: rate}, nil
}

// Sample draws one exponential duration, consuming one RNG value.
func (e *Exponential) Sample(rng *RNG) float64 {
	u := rng.Next()
	return -math.Log(1-u) / e.Rate
}

// Constant always returns Value, but still consumes one RNG draw -- a hard
// contract (spec.md §4.2) that keeps positional synchronization across runs
// that swap a stochastic distribution for a constant one.
type Constant struct {
	Value float64
}

// NewConstant constructs a Constant distribution. Value must be >= 0.
func NewConstant(value float64) (*Constant, error) {
	if value < 0 {
		return nil, &ConfigurationError{Field: "value", Reason: "must be >= 0"}
	}
	return &Constant{Value: value}, nil
}

// Sample consumes one RNG draw and discards it, then returns Value.
func (c *Constant) Sample(rng *RNG) float64 {
	rng.Next()
	return c.Value
}
