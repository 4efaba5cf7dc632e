package fsm

// Change describes a state change, or a change request that was dropped
// because its target is disabled.
type Change struct {
	MachineID string
	Machine   string
	Kind      string
	From      Key
	To        Key
}

// Observer is notified synchronously from inside the tick.
type Observer interface {
	StateChanged(c Change)
	DisabledTarget(c Change)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnChange   func(c Change)
	OnDisabled func(c Change)
}

func (o ObserverFuncs) StateChanged(c Change) {
	if o.OnChange != nil {
		o.OnChange(c)
	}
}

func (o ObserverFuncs) DisabledTarget(c Change) {
	if o.OnDisabled != nil {
		o.OnDisabled(c)
	}
}
