package fsm

// Factory builds the runtime instance of a state for one machine. key is the
// key the state is registered under, for bus subscriptions made while
// constructing it. settings is the definition's tuning payload, passed
// through untouched.
type Factory[O any] func(m *Machine[O], key Key, settings any) (State, error)

// Definition is the read-only blueprint of a state. Every machine built from
// a definition gets its own State from New; the definition itself is never
// mutated at runtime.
type Definition[O any] struct {
	Key      Key
	Type     TypeID
	Enabled  bool
	Settings any
	New      Factory[O]

	// Extra, when set, contributes transitions evaluated after the state's
	// own. It is called once, while the machine is built.
	Extra func(m *Machine[O]) ([]Transition, error)
}

// Group is an ordered states group. Initial names the state entered on the
// first tick; when empty the first enabled state in order is used.
type Group[O any] struct {
	Name    string
	Initial Key
	States  []Definition[O]
}

// Keys lists the keys of the group in declaration order.
func (g Group[O]) Keys() []Key {
	out := make([]Key, 0, len(g.States))
	for _, d := range g.States {
		out = append(out, d.Key)
	}
	return out
}
