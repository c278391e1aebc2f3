package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/Ybazylbe/MoCaSim/sim/trace"
)

// Engine runs a single replication: it exclusively owns the EventQueue and
// every Node/Server/Customer in the replication (spec.md §5's shared-
// resource policy). There is no I/O and no suspension; an event handler
// runs to completion before the next event is popped.
type Engine struct {
	config *Config
	rng    *RNG
	queue  *EventQueue
	nodes  map[string]*Node

	customers      map[int64]*Customer
	nextCustomerID int64
	nextEventID    uint64
	pending        map[uint64]*Event // scheduled, not yet popped; keyed by eventID for invalidation

	time       float64
	warmupDone bool

	Trace *trace.Recorder // optional; nil disables decision tracing
}

// NewEngine validates cfg and builds an Engine ready to Run, seeding its RNG
// and constructing one Node per configured node name. Returns a
// *ConfigurationError if cfg fails validation; no event is scheduled in
// that case.
func NewEngine(cfg *Config, seed int64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:         cfg,
		rng:            NewRNG(seed),
		queue:          NewEventQueue(),
		nodes:          make(map[string]*Node, len(cfg.Nodes)),
		customers:      make(map[int64]*Customer),
		nextCustomerID: 1, // 0 is reserved as the "no customer" sentinel on Event
		pending:        make(map[uint64]*Event),
	}

	for _, name := range cfg.Nodes {
		n := NewNode(name, cfg.Servers[name], cfg.priorityClasses(name))
		n.ServiceDist = cfg.ServiceDists[name]
		n.ArrivalDist = cfg.ArrivalDists[name]
		n.PatienceDist = cfg.PatienceDists[name]
		n.BreakdownDist = cfg.BreakdownDists[name]
		n.RepairDist = cfg.RepairDists[name]
		n.Routing = cfg.RoutingMatrix[name]
		e.nodes[name] = n
	}

	return e, nil
}

func (e *Engine) schedule(ev *Event) {
	e.nextEventID++
	ev.eventID = e.nextEventID
	ev.Valid = true
	e.queue.Push(ev)
	e.pending[ev.eventID] = ev
	if e.Trace != nil {
		e.Trace.RecordEvent(trace.EventRecord{
			Time: ev.Time, Type: ev.Type.String(), NodeName: ev.NodeName, EventID: ev.eventID, Valid: true,
		})
	}
}

// invalidate flips the Valid flag of the pending event identified by id, so
// EventQueue.PopMin discards it without returning it. A no-op if id no
// longer names a pending event (already popped, or never scheduled).
func (e *Engine) invalidate(id uint64) {
	if ev, ok := e.pending[id]; ok {
		ev.Valid = false
		delete(e.pending, id)
	}
}

func (e *Engine) sampleQueueLength(nodeName string) {
	if e.Trace == nil {
		return
	}
	n, ok := e.nodes[nodeName]
	if !ok {
		return
	}
	e.Trace.RecordQueueSample(trace.QueueSample{
		Time: e.time, NodeName: nodeName, QueueLength: n.QueueLength(),
	})
}

// scheduleArrival schedules the next external arrival for node, using the
// priority of the node's first configured priority class -- the fixed
// priority assignment of the arrival stream. handleArrival invokes it only
// for external arrivals, so a node that both receives routed traffic and has
// its own ArrivalDist keeps both streams alive independently: routed
// arrivals never start additional external arrivals.
func (e *Engine) scheduleArrival(nodeName string) {
	n := e.nodes[nodeName]
	if n.ArrivalDist == nil {
		return
	}
	d := n.ArrivalDist.Sample(e.rng)
	t := e.time + d
	if t >= e.config.SimTime {
		return
	}
	prio := e.config.priorityClasses(nodeName)[0]
	e.schedule(&Event{Time: t, Type: EventArrival, NodeName: nodeName, Priority: prio})
}

// scheduleBreakdown schedules the next breakdown for the given server.
func (e *Engine) scheduleBreakdown(nodeName string, serverIndex int) {
	n := e.nodes[nodeName]
	if n.BreakdownDist == nil {
		return
	}
	d := n.BreakdownDist.Sample(e.rng)
	t := e.time + d
	if t >= e.config.SimTime {
		return
	}
	e.schedule(&Event{Time: t, Type: EventBreakdown, NodeName: nodeName, ServerIndex: serverIndex})
}

// scheduleRenege arms a renege timer for cust, who must currently be in a
// node's waiting line, recording the event id on the customer so startService
// can invalidate the timer the moment the customer enters service instead.
func (e *Engine) scheduleRenege(nodeName string, cust *Customer) {
	n := e.nodes[nodeName]
	if n.PatienceDist == nil {
		return
	}
	d := n.PatienceDist.Sample(e.rng)
	ev := &Event{Time: e.time + d, Type: EventRenege, NodeName: nodeName, CustomerID: cust.ID}
	e.schedule(ev)
	cust.PendingRenegeEventID = ev.eventID
	cust.HasPendingRenege = true
}

// startService transitions server to BUSY with cust, draws a service time,
// and schedules the matching departure -- the terminal steps of the
// dispatch rule (spec.md §4.5, steps 3-5).
func (e *Engine) startService(nodeName string, cust *Customer, server *Server) {
	n := e.nodes[nodeName]
	n.updateStats(e.time)

	if cust.HasPendingRenege {
		e.invalidate(cust.PendingRenegeEventID)
		cust.HasPendingRenege = false
	}

	server.State = ServerBusy
	server.CurrentCustomer = cust

	n.Stats.WaitingTimeSum += e.time - cust.ArrivalTimeNode
	n.Stats.ServedCount++

	d := n.ServiceDist.Sample(e.rng)
	ev := &Event{Time: e.time + d, Type: EventDeparture, NodeName: nodeName, ServerIndex: server.Index, CustomerID: cust.ID}
	e.schedule(ev)
	server.ActiveDepartureEventID = ev.eventID
	server.HasActiveDeparture = true
}

// dispatchNode implements the general dispatch rule of spec.md §4.5: if an
// IDLE server exists and some waiting line is non-empty, remove the head of
// the highest-priority non-empty line and start service on it. Invoked
// after departure and repair, and by handleArrival (external or routed)
// when the arriving customer joins a waiting line.
func (e *Engine) dispatchNode(nodeName string) {
	n := e.nodes[nodeName]
	server := n.idleServer()
	if server == nil {
		return
	}
	cust := n.dequeueHighestPriority()
	if cust == nil {
		return
	}
	e.startService(nodeName, cust, server)
}

// Run executes the dispatch loop until the event queue is exhausted or the
// next event's time exceeds Config.SimTime, then finalizes every node's
// integrals at Config.SimTime and returns the replication's Result.
func (e *Engine) Run() (*Result, error) {
	for _, name := range e.config.Nodes {
		e.scheduleArrival(name)
	}
	for _, name := range e.config.Nodes {
		n := e.nodes[name]
		if n.BreakdownDist != nil {
			for i := range n.Servers {
				e.scheduleBreakdown(name, i)
			}
		}
	}

	var lastTime float64
	for {
		ev := e.queue.PopMin()
		if ev == nil {
			break
		}
		if ev.Time > e.config.SimTime {
			break
		}
		if ev.Time < lastTime {
			return nil, &InvariantViolation{Detail: "event popped out of time order"}
		}
		delete(e.pending, ev.eventID)
		e.time = ev.Time
		lastTime = ev.Time

		if !e.warmupDone && e.time >= e.config.Warmup {
			for _, n := range e.nodes {
				n.updateStats(e.config.Warmup)
				n.Stats.resetAtWarmup(e.config.Warmup)
			}
			e.warmupDone = true
			logrus.Debugf("warmup complete at t=%.4f, resetting accumulators to t=%.4f", e.time, e.config.Warmup)
		}

		if err := e.dispatch(ev); err != nil {
			return nil, err
		}
	}

	for _, n := range e.nodes {
		n.updateStats(e.config.SimTime)
	}

	return e.computeResult(), nil
}

func (e *Engine) dispatch(ev *Event) error {
	var err error
	switch ev.Type {
	case EventArrival:
		err = e.handleArrival(ev)
	case EventDeparture:
		err = e.handleDeparture(ev)
	case EventRouting:
		err = e.handleRouting(ev)
	case EventRenege:
		err = e.handleRenege(ev)
	case EventBreakdown:
		err = e.handleBreakdown(ev)
	case EventRepair:
		err = e.handleRepair(ev)
	default:
		err = &InvariantViolation{Detail: "unknown event type"}
	}
	if err != nil {
		return err
	}
	e.sampleQueueLength(ev.NodeName)
	return nil
}

// handleArrival admits a customer into ev.NodeName: a brand-new customer
// when ev.CustomerID is 0 (an external arrival), or the existing customer
// identified by ev.CustomerID when this arrival is the result of a routing
// decision from another node (spec.md §4.5's "On routing": the customer
// retains its system-arrival timestamp and its current-node timestamp is
// reset on the arrival).
func (e *Engine) handleArrival(ev *Event) error {
	n, ok := e.nodes[ev.NodeName]
	if !ok {
		return &InvariantViolation{Detail: "arrival for unknown node " + ev.NodeName}
	}

	var cust *Customer
	if ev.CustomerID != 0 {
		cust, ok = e.customers[ev.CustomerID]
		if !ok {
			return &InvariantViolation{Detail: "routed arrival for unknown customer"}
		}
		cust.Priority = ev.Priority
		cust.ArrivalTimeNode = e.time
	} else {
		cust = &Customer{
			ID:                e.nextCustomerID,
			Priority:          ev.Priority,
			ArrivalTimeSystem: e.time,
			ArrivalTimeNode:   e.time,
		}
		e.nextCustomerID++
		e.customers[cust.ID] = cust
	}

	n.updateStats(e.time)
	n.Stats.ArrivalsTotal++

	// A server that is IDLE while every waiting line is empty serves this
	// arrival directly, without arming a renege timer. A breakdown can return
	// a customer to a waiting line while another server is IDLE; then the
	// arrival joins its line like any other, and dispatch takes the head of
	// the highest-priority non-empty line.
	if server := n.idleServer(); server != nil && n.QueueLength() == 0 {
		e.startService(ev.NodeName, cust, server)
	} else {
		n.enqueue(cust)
		if n.PatienceDist != nil {
			e.scheduleRenege(ev.NodeName, cust)
		}
		e.dispatchNode(ev.NodeName)
	}

	if ev.CustomerID == 0 {
		e.scheduleArrival(ev.NodeName)
	}
	return nil
}

// handleDeparture processes a service completion. A departure invalidated by
// an intervening breakdown (handleBreakdown) never reaches here: Engine
// flips its Valid flag at invalidation time and EventQueue.PopMin discards
// it unreturned, per spec.md §5's invalidation contract. The server's
// active-departure marker is therefore expected to still agree with this
// event id; disagreement indicates a bug in that bookkeeping, not an
// ordinary race.
func (e *Engine) handleDeparture(ev *Event) error {
	n, ok := e.nodes[ev.NodeName]
	if !ok {
		return &InvariantViolation{Detail: "departure for unknown node " + ev.NodeName}
	}
	if ev.ServerIndex < 0 || ev.ServerIndex >= len(n.Servers) {
		return &InvariantViolation{Detail: "departure for unknown server index"}
	}
	server := n.Servers[ev.ServerIndex]

	if !server.HasActiveDeparture || server.ActiveDepartureEventID != ev.eventID {
		return &InvariantViolation{Detail: "departure event reached dispatch without a matching active-departure marker"}
	}

	if _, ok := e.customers[ev.CustomerID]; !ok {
		return &InvariantViolation{Detail: "departure for unknown customer"}
	}

	n.updateStats(e.time)
	n.Stats.CompletedServices++

	server.HasActiveDeparture = false
	server.State = ServerIdle
	server.CurrentCustomer = nil
	n.updateStats(e.time)

	e.dispatchNode(ev.NodeName)

	// Every departure is followed by a routing decision, even when the
	// node's routing map is empty: the residual (exit) probability is then
	// 1, and the routing handler records the exit. This keeps the RNG
	// stream synchronized regardless of whether routing is configured.
	e.schedule(&Event{Time: e.time, Type: EventRouting, NodeName: ev.NodeName, CustomerID: ev.CustomerID})
	return nil
}

// handleRouting decides where a customer goes after completing service at
// ev.NodeName: continue to a target node (re-entering via a fresh
// EventArrival carrying the same customer id), or exit the network. Exit
// metrics are associated with the node the customer exited from, per
// spec.md §4.6.
func (e *Engine) handleRouting(ev *Event) error {
	n, ok := e.nodes[ev.NodeName]
	if !ok {
		return &InvariantViolation{Detail: "routing for unknown node " + ev.NodeName}
	}
	cust, ok := e.customers[ev.CustomerID]
	if !ok {
		return &InvariantViolation{Detail: "routing for unknown customer"}
	}

	u := e.rng.Next()
	cum := 0.0
	nextNode := ""
	for _, target := range n.sortedRoutingTargets() {
		cum += n.Routing[target]
		if u < cum {
			nextNode = target
			break
		}
	}

	if nextNode != "" {
		prio := e.config.priorityClasses(nextNode)[0]
		e.schedule(&Event{Time: e.time, Type: EventArrival, NodeName: nextNode, CustomerID: cust.ID, Priority: prio})
		return nil
	}

	n.Stats.SystemTimeSum += e.time - cust.ArrivalTimeSystem
	n.Stats.ExitedCount++
	delete(e.customers, cust.ID)
	return nil
}

// handleRenege removes a customer from its waiting line. A renege timer
// invalidated by the customer entering service first (startService) never
// reaches here, for the same reason a breakdown-invalidated departure never
// reaches handleDeparture: Engine flips its Valid flag at invalidation time
// and EventQueue.PopMin discards it unreturned.
func (e *Engine) handleRenege(ev *Event) error {
	cust, ok := e.customers[ev.CustomerID]
	if !ok {
		return &InvariantViolation{Detail: "renege for unknown customer"}
	}
	if !cust.HasPendingRenege || cust.PendingRenegeEventID != ev.eventID {
		return &InvariantViolation{Detail: "renege event reached dispatch without a matching pending-renege marker"}
	}

	n := e.nodes[ev.NodeName]
	if !n.removeCustomer(cust) {
		return &InvariantViolation{Detail: "renege for customer not found in its waiting line"}
	}

	n.updateStats(e.time)
	n.Stats.RenegedTotal++
	cust.HasPendingRenege = false
	delete(e.customers, cust.ID)
	return nil
}

// handleBreakdown takes a server DOWN. If it was serving a customer, that
// customer returns to the head of its priority line, its departure event is
// invalidated by flipping its Valid flag, and (if the node has a patience
// distribution) a fresh renege timer is armed for it from the current time.
// The next breakdown for this server is armed by handleRepair once it is
// actually back up, not here: a server only ever has one outstanding
// breakdown timer armed against it, so a breakdown can never fire while the
// server is already DOWN waiting on its one pending repair.
func (e *Engine) handleBreakdown(ev *Event) error {
	n, ok := e.nodes[ev.NodeName]
	if !ok {
		return &InvariantViolation{Detail: "breakdown for unknown node " + ev.NodeName}
	}
	if ev.ServerIndex < 0 || ev.ServerIndex >= len(n.Servers) {
		return &InvariantViolation{Detail: "breakdown for unknown server index"}
	}
	server := n.Servers[ev.ServerIndex]

	n.updateStats(e.time)

	if server.State == ServerBusy {
		cust := server.CurrentCustomer
		if server.HasActiveDeparture {
			e.invalidate(server.ActiveDepartureEventID)
			server.HasActiveDeparture = false
		}
		server.CurrentCustomer = nil
		n.requeueFront(cust)
		if n.PatienceDist != nil {
			e.scheduleRenege(ev.NodeName, cust)
		}
	}

	server.State = ServerDown
	n.updateStats(e.time)
	logrus.Debugf("node %s server %d down at t=%.4f", ev.NodeName, ev.ServerIndex, e.time)

	if n.RepairDist != nil {
		d := n.RepairDist.Sample(e.rng)
		t := e.time + d
		if t < e.config.SimTime {
			e.schedule(&Event{Time: t, Type: EventRepair, NodeName: ev.NodeName, ServerIndex: ev.ServerIndex})
		}
	}
	return nil
}

// handleRepair brings a server back to IDLE, immediately attempts dispatch
// per spec.md §4.4's DOWN -> IDLE transition, and arms the server's next
// breakdown timer now that it is genuinely up again.
func (e *Engine) handleRepair(ev *Event) error {
	n, ok := e.nodes[ev.NodeName]
	if !ok {
		return &InvariantViolation{Detail: "repair for unknown node " + ev.NodeName}
	}
	if ev.ServerIndex < 0 || ev.ServerIndex >= len(n.Servers) {
		return &InvariantViolation{Detail: "repair for unknown server index"}
	}
	server := n.Servers[ev.ServerIndex]

	n.updateStats(e.time)
	server.State = ServerIdle
	n.updateStats(e.time)

	e.dispatchNode(ev.NodeName)
	e.scheduleBreakdown(ev.NodeName, ev.ServerIndex)
	return nil
}

// computeResult aggregates every node's Stats over the post-warmup window
// into a Result, per the formulas of spec.md §4.6. Throughput is the total
// rate of service completions summed across every node, not the network
// exit rate: a customer routed through two nodes contributes two
// completions.
func (e *Engine) computeResult() *Result {
	r := newResult(e.config.Nodes)
	duration := e.config.SimTime - e.config.Warmup

	var totalCompletions int64
	for _, name := range e.config.Nodes {
		n := e.nodes[name]
		st := n.Stats
		totalCompletions += st.CompletedServices

		if duration > 0 {
			r.MeanQueueLength[name] = st.QueueIntegral / duration
		}

		k := float64(len(n.Servers))
		denom := k*duration - st.DownTime
		if denom <= 0 {
			r.ServerUtilization[name] = 0
		} else {
			r.ServerUtilization[name] = st.BusyTime / denom
		}

		r.ServiceCompletions[name] = st.CompletedServices
		r.RenegingProb[name] = float64(st.RenegedTotal) / float64(maxInt64(1, st.ArrivalsTotal))

		if st.ServedCount > 0 {
			r.MeanWaitingTime[name] = st.WaitingTimeSum / float64(st.ServedCount)
		}
		if st.ExitedCount > 0 {
			r.MeanSystemTime[name] = st.SystemTimeSum / float64(st.ExitedCount)
		}
	}

	if duration > 0 {
		r.Throughput = float64(totalCompletions) / duration
	}
	r.ThroughputCI = [2]float64{r.Throughput, r.Throughput}

	return r
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

