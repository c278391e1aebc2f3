package sim

// Customer is owned by exactly one location at a time: a Node's waiting
// line, a Server's current slot, or neither once it has routed onward or
// departed (at which point it is dropped from the simulation's bookkeeping
// maps -- final time metrics are recorded before that happens). ID is
// unique and monotonic across the replication.
type Customer struct {
	ID                   int64
	Priority             int
	ArrivalTimeSystem    float64 // set once, at first entry into the network
	ArrivalTimeNode      float64 // reset every time the customer enters a node
	PendingRenegeEventID uint64  // meaningful only while HasPendingRenege is true
	HasPendingRenege     bool
}
