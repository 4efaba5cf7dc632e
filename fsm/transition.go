package fsm

// Predicate decides whether a transition fires. It must not mutate anything.
type Predicate func() bool

// Transition is a guarded edge to the state of type Target.
type Transition struct {
	When   Predicate
	Target TypeID
}

// To builds a Transition; it reads well inside a Transitions literal.
func To(target TypeID, when Predicate) Transition {
	return Transition{When: when, Target: target}
}

// TransitionSet is the immutable, ordered list of transitions of a state.
type TransitionSet struct {
	items []Transition
}

// NewTransitionSet copies ts so later mutation of the caller's slice has no
// effect on the set.
func NewTransitionSet(ts ...Transition) TransitionSet {
	if len(ts) == 0 {
		return TransitionSet{}
	}
	return TransitionSet{items: append([]Transition(nil), ts...)}
}

// Len reports the number of transitions.
func (s TransitionSet) Len() int {
	return len(s.items)
}

// At returns the i-th transition in declaration order.
func (s TransitionSet) At(i int) Transition {
	return s.items[i]
}

// Targets lists the target types in declaration order.
func (s TransitionSet) Targets() []TypeID {
	out := make([]TypeID, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t.Target)
	}
	return out
}

// Next returns the target of the first transition whose predicate holds and
// whose target differs from current. Transitions pointing back at current
// are skipped, not treated as a match.
func (s TransitionSet) Next(current TypeID) (TypeID, bool) {
	for _, t := range s.items {
		if t.When == nil {
			continue
		}
		if t.When() && t.Target != current {
			return t.Target, true
		}
	}
	return "", false
}
