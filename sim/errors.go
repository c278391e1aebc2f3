package sim

import "fmt"

// ConfigurationError reports a problem with a Config that is detectable
// before any event is scheduled: an unknown node reference, a missing
// distribution, a non-positive server count, a routing row that sums to
// more than 1, and so on. Configuration errors always abort the run before
// it starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// InvariantViolation reports a bug in the engine, not in the caller's
// configuration: a dispatched event referencing an unknown server or
// customer, or a state machine left in an inconsistent state. It aborts the
// current replication; it is never swallowed or retried, since the
// simulation is deterministic and a failure is reproducible.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}

// NumericDomain reports a defensive failure in a numeric operation, such as
// a log(0). RNG.Next resamples without a bound instead of giving up, so no
// function in this package returns NumericDomain.
type NumericDomain struct {
	Detail string
}

func (e *NumericDomain) Error() string {
	return fmt.Sprintf("numeric domain error: %s", e.Detail)
}
