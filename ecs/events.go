package ecs

// EventKind identifies world events.
type EventKind string

const (
	// EventDied is pushed when an entity's health crosses into dead.
	EventDied EventKind = "died"
	// EventRevived is pushed when a dead entity comes back.
	EventRevived EventKind = "revived"
)

// Event is a world event raised by a system during a tick.
type Event struct {
	Kind   EventKind
	Entity Entity
	Data   any
}

// EventQueue is a FIFO the scene drains after every tick.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
