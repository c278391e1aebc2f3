package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pushEvent(q *EventQueue, t float64, typ EventType, id uint64) {
	q.Push(&Event{Time: t, Type: typ, eventID: id, Valid: true})
}

func TestEventQueue_PopMin_OrdersByTimeFirst(t *testing.T) {
	// GIVEN events pushed out of time order
	q := NewEventQueue()
	pushEvent(q, 5, EventArrival, 1)
	pushEvent(q, 1, EventArrival, 2)
	pushEvent(q, 3, EventArrival, 3)

	// WHEN popped
	// THEN they come back in ascending time order
	assert.Equal(t, 1.0, q.PopMin().Time)
	assert.Equal(t, 3.0, q.PopMin().Time)
	assert.Equal(t, 5.0, q.PopMin().Time)
}

func TestEventQueue_PopMin_TiesBreakByTypePriority(t *testing.T) {
	// GIVEN an arrival, a departure, a breakdown and a routing event
	// scheduled at the same time
	q := NewEventQueue()
	pushEvent(q, 10, EventArrival, 1)
	pushEvent(q, 10, EventDeparture, 2)
	pushEvent(q, 10, EventBreakdown, 3)
	pushEvent(q, 10, EventRouting, 4)

	// WHEN popped
	// THEN departure comes first, then routing, then arrival, then breakdown
	assert.Equal(t, EventDeparture, q.PopMin().Type)
	assert.Equal(t, EventRouting, q.PopMin().Type)
	assert.Equal(t, EventArrival, q.PopMin().Type)
	assert.Equal(t, EventBreakdown, q.PopMin().Type)
}

func TestEventQueue_PopMin_TiesBreakByEventIDLast(t *testing.T) {
	// GIVEN two arrivals at the same time with different event ids
	q := NewEventQueue()
	pushEvent(q, 10, EventArrival, 99)
	pushEvent(q, 10, EventArrival, 2)

	// WHEN popped
	// THEN the lower event id comes first
	assert.Equal(t, uint64(2), q.PopMin().eventID)
	assert.Equal(t, uint64(99), q.PopMin().eventID)
}

func TestEventQueue_PopMin_SkipsInvalidEvents(t *testing.T) {
	// GIVEN one invalid event ahead of a valid one
	q := NewEventQueue()
	q.Push(&Event{Time: 1, Type: EventArrival, eventID: 1, Valid: false})
	q.Push(&Event{Time: 2, Type: EventArrival, eventID: 2, Valid: true})

	// WHEN popped
	// THEN the invalid event is discarded and the valid one is returned
	ev := q.PopMin()
	assert.Equal(t, uint64(2), ev.eventID)
}

func TestEventQueue_PopMin_EmptyReturnsNil(t *testing.T) {
	// GIVEN an empty queue
	q := NewEventQueue()

	// WHEN popped
	// THEN nil is returned
	assert.Nil(t, q.PopMin())
}

func TestEventQueue_PeekTime_DoesNotRemove(t *testing.T) {
	// GIVEN a queue with one event
	q := NewEventQueue()
	pushEvent(q, 4, EventArrival, 1)

	// WHEN peeking twice
	t1, ok1 := q.PeekTime()
	t2, ok2 := q.PeekTime()

	// THEN both peeks see the same event, and the queue is unaffected
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, 4.0, t1)
	assert.Equal(t, 4.0, t2)
	assert.Equal(t, 1, q.Len())
}
