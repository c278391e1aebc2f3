package sim

import "sort"

// Config is the in-memory configuration record for one simulation run
// (spec.md §6). There is no file or wire format: callers build a Config in
// Go and pass it to NewEngine or NewBatchDriver directly.
type Config struct {
	Nodes []string // ordered list of unique node names

	ArrivalDists   map[string]Distribution // node -> distribution; absent = no external arrivals
	ServiceDists   map[string]Distribution // node -> distribution; required for every node
	Servers        map[string]int          // node -> positive server count
	Priorities     map[string][]int         // node -> ordered priority classes, smaller = higher
	PatienceDists  map[string]Distribution  // node -> distribution; absent = no reneging
	BreakdownDists map[string]Distribution  // node -> distribution; absent = never breaks down
	RepairDists    map[string]Distribution  // node -> distribution; required iff BreakdownDists[node] set

	RoutingMatrix map[string]map[string]float64 // origin -> target -> probability, Σ <= 1

	SimTime    float64
	Warmup     float64
	BatchCount int
	Seed       int64
}

const routingSumEpsilon = 1e-9

// Validate checks every condition in the ConfigurationError taxonomy of
// spec.md §7 and returns the first violation found, wrapped with the field
// it concerns. Validate never schedules an event; a failing Config aborts
// the run before the engine is constructed.
func (c *Config) Validate() error {
	known := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if known[n] {
			return &ConfigurationError{Field: "nodes", Reason: "duplicate node name " + n}
		}
		known[n] = true
	}
	if len(c.Nodes) == 0 {
		return &ConfigurationError{Field: "nodes", Reason: "must list at least one node"}
	}

	for _, n := range c.Nodes {
		if _, ok := c.ServiceDists[n]; !ok {
			return &ConfigurationError{Field: "service_dists[" + n + "]", Reason: "required for every node"}
		}
		count, ok := c.Servers[n]
		if !ok || count <= 0 {
			return &ConfigurationError{Field: "servers[" + n + "]", Reason: "must be a positive integer"}
		}
		if prios, ok := c.Priorities[n]; ok && len(prios) == 0 {
			return &ConfigurationError{Field: "priorities[" + n + "]", Reason: "must not be empty when present"}
		}
		if _, hasBreakdown := c.BreakdownDists[n]; hasBreakdown {
			if _, hasRepair := c.RepairDists[n]; !hasRepair {
				return &ConfigurationError{Field: "repair_dists[" + n + "]", Reason: "required when breakdown_dists is set"}
			}
		}
	}

	for field, dists := range map[string]map[string]Distribution{
		"arrival_dists": c.ArrivalDists, "service_dists": c.ServiceDists,
		"patience_dists": c.PatienceDists, "breakdown_dists": c.BreakdownDists,
		"repair_dists": c.RepairDists,
	} {
		for n := range dists {
			if !known[n] {
				return &ConfigurationError{Field: field, Reason: "references unknown node " + n}
			}
		}
	}
	for n := range c.Servers {
		if !known[n] {
			return &ConfigurationError{Field: "servers", Reason: "references unknown node " + n}
		}
	}
	for n := range c.Priorities {
		if !known[n] {
			return &ConfigurationError{Field: "priorities", Reason: "references unknown node " + n}
		}
	}

	for origin, targets := range c.RoutingMatrix {
		if !known[origin] {
			return &ConfigurationError{Field: "routing_matrix", Reason: "references unknown origin " + origin}
		}
		sum := 0.0
		names := make([]string, 0, len(targets))
		for t := range targets {
			names = append(names, t)
		}
		sort.Strings(names)
		for _, t := range names {
			if !known[t] {
				return &ConfigurationError{Field: "routing_matrix[" + origin + "]", Reason: "references unknown target " + t}
			}
			sum += targets[t]
		}
		if sum > 1+routingSumEpsilon {
			return &ConfigurationError{Field: "routing_matrix[" + origin + "]", Reason: "probabilities sum to more than 1"}
		}
	}

	if c.Warmup < 0 || c.Warmup > c.SimTime {
		return &ConfigurationError{Field: "warmup", Reason: "must be in [0, sim_time]"}
	}
	if c.SimTime <= 0 {
		return &ConfigurationError{Field: "sim_time", Reason: "must be positive"}
	}
	if c.BatchCount <= 0 {
		return &ConfigurationError{Field: "batch_count", Reason: "must be a positive integer"}
	}

	return nil
}

// priorityClasses returns node n's configured priority classes, defaulting
// to a single class {0} when Priorities omits the node.
func (c *Config) priorityClasses(n string) []int {
	if p, ok := c.Priorities[n]; ok {
		return p
	}
	return []int{0}
}
