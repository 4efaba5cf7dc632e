// Package fsm is the state machine core shared by the player controller and
// NPC AI: a registry of runtime states addressable by key or type tag, an
// ordered transition set evaluated once per tick, and a per-machine message
// bus for animation-driven events.
package fsm

// Key is the stable, human-readable identifier of a state within a machine.
type Key string

// TypeID tags the concrete kind of a state so code can address "the state of
// kind X" without knowing the key it was registered under.
type TypeID string

// State is one behavior unit driven by a Machine.
//
// Transitions is called exactly once, when the state is registered. The
// returned slice is cached and never asked for again, so dynamic behavior has
// to live inside the predicates.
//
// Exit must leave the state's mutable fields as a freshly constructed
// instance would have them; instances are reused across activations.
type State interface {
	Enter()
	Update()
	Exit()
	Transitions() []Transition
}

// Entry is a registered state.
type Entry struct {
	Key     Key
	Type    TypeID
	State   State
	Enabled bool

	transitions TransitionSet
}

// Transitions returns the cached transition set of the entry.
func (e *Entry) Transitions() TransitionSet {
	if e == nil {
		return TransitionSet{}
	}
	return e.transitions
}
