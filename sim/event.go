package sim

// VTime is a point, or a span, on the simulated clock. The unit is abstract;
// batch files and configuration use the same unit.
type VTime uint64

// An Event is something going to happen in the future.
type Event interface {
	// Return the time that the event should happen
	Time() VTime
}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID   string
	time VTime
}

// NewEventBase creates a new EventBase
func NewEventBase(id string, t VTime) *EventBase {
	e := new(EventBase)
	e.ID = id
	e.time = t
	return e
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTime {
	return e.time
}
