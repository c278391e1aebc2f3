// Package sim provides a discrete-event simulation engine for networks of
// multi-server queues.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - rng.go: the single deterministic RNG stream shared by every Distribution
//   - distribution.go: Exponential and Constant duration samplers
//   - event.go, queue.go: the tagged event union and its time-ordered heap
//   - server.go, node.go: per-node server pool, priority waiting lines, dispatch
//   - stats.go: warmup-aware time-integral accumulators
//   - engine.go: the dispatch loop that ties everything together
//   - batch.go: runs independent replications and aggregates confidence intervals
//
// # Architecture
//
// A Config describes a network of named Nodes connected by a routing matrix.
// BatchDriver constructs one Engine per replication, each with its own RNG,
// EventQueue and Node/Server state; replications never share mutable state.
// Optional decision tracing lives in sim/trace, which has no dependency on
// sim's internals.
package sim
