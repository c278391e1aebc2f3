package sim

import (
	"sort"

	"github.com/gammazero/deque"
)

// Node is one service station: a pool of Servers, a set of priority-ordered
// FIFO waiting lines, and the Stats accumulators for that station. Each
// priority class's waiting line is a github.com/gammazero/deque.Deque for
// O(1) head removal (dispatch), head insertion (breakdown requeue) and tail
// append (arrival) -- replacing a plain slice avoids the O(n) copy a
// slice-based FIFO would pay on every dispatch. Renege removal scans the
// customer's line (see removeCustomer).
type Node struct {
	Name    string
	Servers []*Server

	priorities   []int // ascending; smaller value = higher priority
	waitingLines map[int]*deque.Deque[*Customer]

	ServiceDist   Distribution
	ArrivalDist   Distribution // nil: no external arrivals
	PatienceDist  Distribution // nil: no reneging
	BreakdownDist Distribution // nil: servers never break down
	RepairDist    Distribution // required iff BreakdownDist != nil

	Routing map[string]float64 // target node name -> probability, Σ <= 1

	Stats *Stats
}

// NewNode creates a Node with numServers IDLE servers and an empty waiting
// line for each priority in priorities.
func NewNode(name string, numServers int, priorities []int) *Node {
	servers := make([]*Server, numServers)
	for i := range servers {
		servers[i] = NewServer(name, i)
	}

	lines := make(map[int]*deque.Deque[*Customer], len(priorities))
	sorted := append([]int(nil), priorities...)
	sort.Ints(sorted)
	for _, p := range sorted {
		lines[p] = new(deque.Deque[*Customer])
	}

	return &Node{
		Name:         name,
		Servers:      servers,
		priorities:   sorted,
		waitingLines: lines,
		Stats:        NewStats(numServers),
	}
}

// QueueLength returns the current total number of customers across all
// priority waiting lines (not counting customers already in service).
func (n *Node) QueueLength() int {
	total := 0
	for _, p := range n.priorities {
		total += n.waitingLines[p].Len()
	}
	return total
}

// Population returns the node's current concurrent population: customers
// waiting plus customers being served, the invariant of spec.md §3.
func (n *Node) Population() int {
	total := n.QueueLength()
	for _, s := range n.Servers {
		if s.State == ServerBusy {
			total++
		}
	}
	return total
}

// enqueue appends c to the waiting line for its priority class, preserving
// arrival order within that class.
func (n *Node) enqueue(c *Customer) {
	n.waitingLines[c.Priority].PushBack(c)
}

// dequeueHighestPriority removes and returns the head of the non-empty
// waiting line with the lowest priority value (highest priority), or nil if
// every line is empty.
func (n *Node) dequeueHighestPriority() *Customer {
	for _, p := range n.priorities {
		line := n.waitingLines[p]
		if line.Len() > 0 {
			return line.PopFront()
		}
	}
	return nil
}

// requeueFront returns c to the head of its priority line, preserving FIFO
// order within that class. Used when a breakdown evicts a customer from
// service: spec.md §4.4 requires the customer go back to the head of its
// line, not the tail.
func (n *Node) requeueFront(c *Customer) {
	n.waitingLines[c.Priority].PushFront(c)
}

// removeCustomer scans c's priority line and removes it, returning true if
// found and false otherwise. Used by renege handling, which treats false as
// an InvariantViolation: a customer who left the line by being dispatched
// had its renege event invalidated, so that event never reaches the handler.
func (n *Node) removeCustomer(c *Customer) bool {
	line, ok := n.waitingLines[c.Priority]
	if !ok {
		return false
	}
	for i := 0; i < line.Len(); i++ {
		if line.At(i) == c {
			line.Remove(i)
			return true
		}
	}
	return false
}

// idleServer returns the lowest-index IDLE server, or nil if none.
func (n *Node) idleServer() *Server {
	for _, s := range n.Servers {
		if s.State == ServerIdle {
			return s
		}
	}
	return nil
}

// sortedRoutingTargets returns the node's routing targets in deterministic
// (sorted-by-name) order, required so that the cumulative-probability walk
// in Engine's routing handler never depends on Go's randomized map
// iteration order.
func (n *Node) sortedRoutingTargets() []string {
	targets := make([]string, 0, len(n.Routing))
	for t := range n.Routing {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// updateStats applies the deferred time-integral accumulation of spec.md
// §4.6: close out the interval [lastUpdateTime, now) for the queue-length
// integral and each server's busy/down integral, then advance the
// watermarks. Must be called before any state mutation that changes
// QueueLength or a Server's State, so the closed-out interval reflects the
// value that actually held throughout it.
func (n *Node) updateStats(now float64) {
	st := n.Stats
	dt := now - st.lastUpdateTime
	if st.warmupDone {
		st.QueueIntegral += float64(n.QueueLength()) * dt
	}
	st.lastUpdateTime = now

	for i, s := range n.Servers {
		dtS := now - st.lastServerTime[i]
		if st.warmupDone {
			switch s.State {
			case ServerBusy:
				st.BusyTime += dtS
			case ServerDown:
				st.DownTime += dtS
			}
		}
		st.lastServerTime[i] = now
	}
}
