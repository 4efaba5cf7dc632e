package nav

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Waypoint is a patrol point. ReservedBy holds the id of the agent heading
// there, empty when free.
type Waypoint struct {
	ID         string
	Group      string
	Position   cp.Vector
	ReservedBy string
}

func (w *Waypoint) Free() bool {
	return w != nil && w.ReservedBy == ""
}

// Group is a named, ordered set of waypoints.
type Group struct {
	Name   string
	Points []*Waypoint
}

// Waypoints holds every group in the scene. Reservation is first come, first
// served in tick order; there is no locking because only the tick loop
// touches it.
type Waypoints struct {
	groups []*Group
	byName map[string]*Group

	// OnChange is called with the reserved count of a group after it changes.
	OnChange func(group string, reserved int)
}

func NewWaypoints() *Waypoints {
	return &Waypoints{byName: make(map[string]*Group)}
}

// Add appends a waypoint to group, creating the group on first use.
func (ws *Waypoints) Add(group, id string, pos cp.Vector) *Waypoint {
	g, ok := ws.byName[group]
	if !ok {
		g = &Group{Name: group}
		ws.byName[group] = g
		ws.groups = append(ws.groups, g)
	}
	wp := &Waypoint{ID: id, Group: group, Position: pos}
	g.Points = append(g.Points, wp)
	return wp
}

// Groups returns the groups in insertion order.
func (ws *Waypoints) Groups() []*Group {
	return ws.groups
}

// FreeWaypoints lists the unreserved waypoints of group.
func (ws *Waypoints) FreeWaypoints(group string) []*Waypoint {
	g, ok := ws.byName[group]
	if !ok {
		return nil
	}
	out := make([]*Waypoint, 0, len(g.Points))
	for _, wp := range g.Points {
		if wp.Free() {
			out = append(out, wp)
		}
	}
	return out
}

// ReserveNearest reserves the free waypoint closest to from across all groups
// for owner. except, when non-nil, is skipped unless it is the only choice.
func (ws *Waypoints) ReserveNearest(owner string, from cp.Vector, except *Waypoint) (*Waypoint, bool) {
	if ws == nil || owner == "" {
		return nil, false
	}

	var best, fallback *Waypoint
	bestDist := math.Inf(1)
	for _, g := range ws.groups {
		for _, wp := range g.Points {
			if !wp.Free() {
				continue
			}
			if wp == except {
				fallback = wp
				continue
			}
			if d := from.Distance(wp.Position); d < bestDist {
				best, bestDist = wp, d
			}
		}
	}
	if best == nil {
		best = fallback
	}
	if best == nil {
		return nil, false
	}
	ws.Reserve(owner, best)
	return best, true
}

// Reserve marks wp as taken by owner. It fails if someone else holds it.
func (ws *Waypoints) Reserve(owner string, wp *Waypoint) bool {
	if wp == nil || owner == "" {
		return false
	}
	if wp.ReservedBy == owner {
		return true
	}
	if !wp.Free() {
		return false
	}
	wp.ReservedBy = owner
	ws.changed(wp.Group)
	return true
}

// Release frees wp if owner holds it.
func (ws *Waypoints) Release(owner string, wp *Waypoint) {
	if wp == nil || wp.ReservedBy != owner || owner == "" {
		return
	}
	wp.ReservedBy = ""
	ws.changed(wp.Group)
}

// ReleaseAll frees every waypoint held by owner.
func (ws *Waypoints) ReleaseAll(owner string) {
	for _, g := range ws.groups {
		for _, wp := range g.Points {
			ws.Release(owner, wp)
		}
	}
}

// Reserved counts the reserved waypoints of group.
func (ws *Waypoints) Reserved(group string) int {
	g, ok := ws.byName[group]
	if !ok {
		return 0
	}
	n := 0
	for _, wp := range g.Points {
		if !wp.Free() {
			n++
		}
	}
	return n
}

func (ws *Waypoints) changed(group string) {
	if ws.OnChange != nil {
		ws.OnChange(group, ws.Reserved(group))
	}
}
