package player

import (
	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/prefabs"
)

// Machine is the player variant of fsm.Machine. Besides ticking states it
// turns the view, regenerates stamina outside Run and integrates the body.
type Machine struct {
	*fsm.Machine[*Controller]
}

// New builds a player machine over group.
func New(name string, c *Controller, group fsm.Group[*Controller], opts ...fsm.Option) (*Machine, error) {
	opts = append([]fsm.Option{fsm.WithKind("player")}, opts...)
	m, err := fsm.New(name, c, group, opts...)
	if err != nil {
		return nil, err
	}
	return &Machine{Machine: m}, nil
}

// Load builds a player machine from a states-group asset.
func Load(name, asset string, c *Controller, opts ...fsm.Option) (*Machine, error) {
	group, err := prefabs.LoadGroup(asset, Factories, (*Controller).Vars)
	if err != nil {
		return nil, err
	}
	return New(name, c, group, opts...)
}

// Group builds a group from a parsed states-group asset.
func Group(spec prefabs.StatesGroupSpec) (fsm.Group[*Controller], error) {
	return prefabs.BuildGroup(spec, Factories, (*Controller).Vars)
}

// Update runs one tick.
func (m *Machine) Update() {
	if m == nil || m.Destroyed() {
		return
	}
	c := m.Owner()
	if key, ok := m.CurrentKey(); ok {
		c.state = string(key)
	}
	if !c.IsDead() {
		c.Look()
	}

	m.Machine.Update()

	if !m.IsCurrent(Run) {
		c.Stamina.Restore(c.Stamina.Regen * c.DT)
	}
	c.Body.Step(c.DT)
}
