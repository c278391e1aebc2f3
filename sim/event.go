package sim

// EventType discriminates the six event variants dispatched by Engine.Run.
// Events are modeled as a single tagged struct rather than polymorphic
// objects, matching the Python ancestor's Event(time, typ, **kwargs); Go
// expresses the "tag plus payload" shape directly instead of an interface
// hierarchy, since dispatch is a switch on the discriminator, not virtual
// calls.
type EventType int

const (
	EventArrival EventType = iota
	EventDeparture
	EventRouting
	EventRenege
	EventBreakdown
	EventRepair
)

func (t EventType) String() string {
	switch t {
	case EventArrival:
		return "arrival"
	case EventDeparture:
		return "departure"
	case EventRouting:
		return "routing"
	case EventRenege:
		return "renege"
	case EventBreakdown:
		return "breakdown"
	case EventRepair:
		return "repair"
	default:
		return "unknown"
	}
}

// eventTypePriority fixes the tie-break order among events sharing a
// timestamp: completions must be observed before the routing decisions and
// new arrivals/breakdowns that follow from them, so statistics see a
// consistent instantaneous state.
var eventTypePriority = map[EventType]int{
	EventDeparture: 0,
	EventRouting:   1,
	EventRenege:    2,
	EventRepair:    3,
	EventArrival:   4,
	EventBreakdown: 5,
}

// Event is the unit of work in the simulation. NodeName, ServerIndex and
// CustomerID are interpreted according to Type; unused fields are zero.
// eventID is the final tie-break after (time, type priority), assigned by
// Engine.schedule in allocation order. Valid is the sole cancellation
// primitive: Engine.invalidate flips it to false when a departure is
// superseded by its server breaking down, or a renege timer is superseded by
// its customer entering service, and EventQueue.PopMin discards an invalid
// event without returning it. Server.ActiveDepartureEventID and
// Customer.PendingRenegeEventID are back-references by event id, not owning
// pointers, used only to find the event to invalidate.
type Event struct {
	Time        float64
	Type        EventType
	NodeName    string
	ServerIndex int
	CustomerID  int64
	Priority    int // arrival: the customer's priority class
	eventID     uint64
	Valid       bool
}
