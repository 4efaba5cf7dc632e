// Package nav moves agents across the level grid and hands out patrol
// waypoints.
package nav

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/component"
)

// Agent is what AI states steer. Path planning belongs to the agent; states
// only decide when to request a destination.
type Agent interface {
	SetDestination(p cp.Vector) bool
	RemainingDistance() float64
	PathPending() bool
	Velocity() cp.Vector
	StoppingDistance() float64
	Stop()
	Speed() float64
	SetSpeed(speed float64)
	Position() cp.Vector
}

const defaultMaxNodes = 4096

// GridAgent plans on a component.Grid. A requested path is resolved on the
// next Step, which also starts moving along it, so PathPending is true from
// SetDestination until that Step.
type GridAgent struct {
	grid     *component.Grid
	position cp.Vector
	speed    float64
	stopping float64

	destination cp.Vector
	hasDest     bool
	pending     bool
	path        []cp.Vector
	velocity    cp.Vector

	MaxNodes int
}

func NewGridAgent(grid *component.Grid, position cp.Vector, speed, stopping float64) *GridAgent {
	return &GridAgent{
		grid:     grid,
		position: position,
		speed:    speed,
		stopping: stopping,
		MaxNodes: defaultMaxNodes,
	}
}

// SetDestination requests a path to p. Returns false when p lies outside the
// grid.
func (a *GridAgent) SetDestination(p cp.Vector) bool {
	if a == nil || !a.grid.InBounds(a.grid.CellAt(p)) {
		return false
	}
	if a.hasDest && !a.pending && a.destination.Distance(p) < 1e-6 {
		return true
	}
	a.destination = p
	a.hasDest = true
	a.pending = true
	a.path = nil
	return true
}

// Destination returns the requested destination, if any.
func (a *GridAgent) Destination() (cp.Vector, bool) {
	return a.destination, a.hasDest
}

// RemainingDistance is the length of the rest of the path. It is +Inf while a
// path is pending or when the destination is unreachable, and zero without a
// destination.
func (a *GridAgent) RemainingDistance() float64 {
	if a == nil || !a.hasDest {
		return 0
	}
	if a.pending || a.path == nil {
		return math.Inf(1)
	}
	remaining := 0.0
	from := a.position
	for _, p := range a.path {
		remaining += from.Distance(p)
		from = p
	}
	return remaining
}

func (a *GridAgent) PathPending() bool         { return a != nil && a.pending }
func (a *GridAgent) Velocity() cp.Vector       { return a.velocity }
func (a *GridAgent) StoppingDistance() float64 { return a.stopping }
func (a *GridAgent) Speed() float64            { return a.speed }
func (a *GridAgent) Position() cp.Vector       { return a.position }

func (a *GridAgent) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	a.speed = speed
}

// Stop clears the destination and halts the agent.
func (a *GridAgent) Stop() {
	if a == nil {
		return
	}
	a.hasDest = false
	a.pending = false
	a.path = nil
	a.velocity = cp.Vector{}
}

// Warp teleports the agent and drops its path.
func (a *GridAgent) Warp(p cp.Vector) {
	a.Stop()
	a.position = p
}

// Step resolves a pending path and moves the agent dt seconds along it. Once
// the destination is within the stopping distance the rest of the path
// collapses to the destination itself and the agent halts.
func (a *GridAgent) Step(dt float64) {
	if a == nil {
		return
	}
	a.velocity = cp.Vector{}
	if !a.hasDest {
		return
	}
	if a.pending {
		a.pending = false
		a.path = a.plan()
	}
	if len(a.path) == 0 {
		return
	}
	if a.position.Distance(a.destination) <= a.stopping {
		a.path = []cp.Vector{a.destination}
		return
	}

	travel := a.speed * dt
	start := a.position
	for travel > 0 && len(a.path) > 0 {
		next := a.path[0]
		d := a.position.Distance(next)
		if d <= travel {
			a.position = next
			a.path = a.path[1:]
			travel -= d
			continue
		}
		a.position = a.position.Add(next.Sub(a.position).Normalize().Mult(travel))
		travel = 0
	}
	if len(a.path) == 0 {
		// keep an empty, non-nil path so RemainingDistance reads zero
		a.path = []cp.Vector{}
	}
	if dt > 0 {
		a.velocity = a.position.Sub(start).Mult(1 / dt)
	}
}

func (a *GridAgent) plan() []cp.Vector {
	from := a.grid.CellAt(a.position)
	to := a.grid.CellAt(a.destination)
	cells := a.grid.FindPath(from, to, a.MaxNodes)
	if cells == nil {
		return nil
	}
	path := make([]cp.Vector, 0, len(cells))
	for _, c := range cells[1:] {
		path = append(path, a.grid.Center(c))
	}
	if len(path) > 0 {
		path[len(path)-1] = a.destination
	} else {
		path = append(path, a.destination)
	}
	return path
}
