package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode_CreatesIdleServersAndEmptyLines(t *testing.T) {
	// GIVEN a node with 3 servers and two priority classes
	n := NewNode("q1", 3, []int{1, 0})

	// WHEN inspecting its initial state
	// THEN all servers are idle and both lines are empty
	assert.Len(t, n.Servers, 3)
	for _, s := range n.Servers {
		assert.Equal(t, ServerIdle, s.State)
	}
	assert.Equal(t, 0, n.QueueLength())
	assert.Equal(t, 0, n.Population())
}

func TestNode_DequeueHighestPriority_PrefersLowerPriorityValue(t *testing.T) {
	// GIVEN a node with customers waiting in two priority classes
	n := NewNode("q1", 1, []int{0, 1})
	low := &Customer{ID: 1, Priority: 1}
	high := &Customer{ID: 2, Priority: 0}
	n.enqueue(low)
	n.enqueue(high)

	// WHEN dequeuing
	// THEN the higher-priority (lower value) customer comes first
	got := n.dequeueHighestPriority()
	require.NotNil(t, got)
	assert.Equal(t, high.ID, got.ID)
}

func TestNode_DequeueHighestPriority_PreservesFIFOWithinClass(t *testing.T) {
	// GIVEN two customers in the same priority class, enqueued in order
	n := NewNode("q1", 1, []int{0})
	first := &Customer{ID: 1, Priority: 0}
	second := &Customer{ID: 2, Priority: 0}
	n.enqueue(first)
	n.enqueue(second)

	// WHEN dequeuing
	// THEN the first one enqueued comes out first
	got := n.dequeueHighestPriority()
	assert.Equal(t, first.ID, got.ID)
}

func TestNode_DequeueHighestPriority_EmptyReturnsNil(t *testing.T) {
	// GIVEN a node with no waiting customers
	n := NewNode("q1", 1, []int{0})

	// WHEN dequeuing
	// THEN nil is returned
	assert.Nil(t, n.dequeueHighestPriority())
}

func TestNode_RequeueFront_PutsCustomerAheadOfExistingLine(t *testing.T) {
	// GIVEN a node with one customer already waiting
	n := NewNode("q1", 1, []int{0})
	waiting := &Customer{ID: 1, Priority: 0}
	n.enqueue(waiting)

	// WHEN a second customer is returned to the front of the line
	evicted := &Customer{ID: 2, Priority: 0}
	n.requeueFront(evicted)

	// THEN the evicted customer is dequeued first
	got := n.dequeueHighestPriority()
	assert.Equal(t, evicted.ID, got.ID)
}

func TestNode_RemoveCustomer_FindsAndRemoves(t *testing.T) {
	// GIVEN three waiting customers in the same priority class
	n := NewNode("q1", 1, []int{0})
	a := &Customer{ID: 1, Priority: 0}
	b := &Customer{ID: 2, Priority: 0}
	c := &Customer{ID: 3, Priority: 0}
	n.enqueue(a)
	n.enqueue(b)
	n.enqueue(c)

	// WHEN removing the middle customer
	ok := n.removeCustomer(b)

	// THEN it is reported removed and the remaining order is preserved
	assert.True(t, ok)
	assert.Equal(t, a.ID, n.dequeueHighestPriority().ID)
	assert.Equal(t, c.ID, n.dequeueHighestPriority().ID)
}

func TestNode_RemoveCustomer_NotPresentReturnsFalse(t *testing.T) {
	// GIVEN an empty waiting line
	n := NewNode("q1", 1, []int{0})

	// WHEN removing a customer that was never enqueued
	ok := n.removeCustomer(&Customer{ID: 1, Priority: 0})

	// THEN it reports false
	assert.False(t, ok)
}

func TestNode_IdleServer_ReturnsLowestIndexIdle(t *testing.T) {
	// GIVEN a node with three servers, the first two busy
	n := NewNode("q1", 3, []int{0})
	n.Servers[0].State = ServerBusy
	n.Servers[1].State = ServerBusy

	// WHEN looking up an idle server
	s := n.idleServer()

	// THEN the third server (index 2) is returned
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Index)
}

func TestNode_IdleServer_NoneIdleReturnsNil(t *testing.T) {
	// GIVEN a node whose only server is down
	n := NewNode("q1", 1, []int{0})
	n.Servers[0].State = ServerDown

	// WHEN looking up an idle server
	// THEN nil is returned
	assert.Nil(t, n.idleServer())
}

func TestNode_SortedRoutingTargets_DeterministicOrder(t *testing.T) {
	// GIVEN a node with a routing map over several targets
	n := NewNode("q1", 1, []int{0})
	n.Routing = map[string]float64{"c": 0.1, "a": 0.2, "b": 0.3}

	// WHEN listing routing targets
	targets := n.sortedRoutingTargets()

	// THEN they come back sorted by name
	assert.Equal(t, []string{"a", "b", "c"}, targets)
}

func TestNode_UpdateStats_AccumulatesQueueIntegralOnlyAfterWarmup(t *testing.T) {
	// GIVEN a node with one customer waiting, before warmup completes
	n := NewNode("q1", 1, []int{0})
	n.enqueue(&Customer{ID: 1, Priority: 0})

	// WHEN time advances without a warmup reset
	n.updateStats(5.0)

	// THEN nothing accumulates: warmupDone is still false
	assert.Equal(t, 0.0, n.Stats.QueueIntegral)

	// WHEN warmup completes and time advances again with the same queue length
	n.Stats.resetAtWarmup(5.0)
	n.updateStats(7.0)

	// THEN the queue-length integral accumulates the elapsed interval
	assert.Equal(t, 2.0, n.Stats.QueueIntegral)
}
