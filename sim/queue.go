// Implements EventQueue, the time-ordered priority queue that drives the
// dispatch loop. Ordering is (time, type priority, event id), matching the
// Python ancestor's heapq comparator.

package sim

import "container/heap"

// EventQueue is a min-heap of *Event keyed on (Time, type priority,
// eventID). Cancellation is a side channel: Engine.invalidate flips an
// Event's Valid flag; PopMin discards invalid events without returning
// them, trading heap size for O(1) cancellation instead of mutating the
// heap to remove an arbitrary element.
type EventQueue struct {
	events eventSlice
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.events)
	return q
}

// Push schedules e for dispatch.
func (q *EventQueue) Push(e *Event) {
	heap.Push(&q.events, e)
}

// PopMin removes and returns the earliest valid event, skipping and
// discarding any invalid events it encounters along the way. Returns nil if
// the queue is empty or every remaining event is invalid.
func (q *EventQueue) PopMin() *Event {
	for q.events.Len() > 0 {
		e := heap.Pop(&q.events).(*Event)
		if e.Valid {
			return e
		}
	}
	return nil
}

// PeekTime returns the timestamp of the earliest event without removing it,
// and false if the queue is empty. Invalid events still occupy the head
// until popped, so callers needing the next *valid* time should pop.
func (q *EventQueue) PeekTime() (float64, bool) {
	if q.events.Len() == 0 {
		return 0, false
	}
	return q.events[0].Time, true
}

// Len returns the number of events still in the heap, valid or not.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// eventSlice implements container/heap.Interface over *Event.
type eventSlice []*Event

func (s eventSlice) Len() int { return len(s) }

func (s eventSlice) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	pa, pb := eventTypePriority[a.Type], eventTypePriority[b.Type]
	if pa != pb {
		return pa < pb
	}
	return a.eventID < b.eventID
}

func (s eventSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *eventSlice) Push(x interface{}) {
	*s = append(*s, x.(*Event))
}

func (s *eventSlice) Pop() interface{} {
	old := *s
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*s = old[:n-1]
	return item
}
