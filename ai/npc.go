// Package ai drives NPCs: a Machine that adds the player-death edge on top of
// fsm.Machine, perception helpers and the zombie states.
package ai

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/nav"
	"github.com/milk9111/nightshade/physics"
	"github.com/milk9111/nightshade/script"
)

// Target is what an NPC hunts. The player controller satisfies it.
type Target interface {
	Position() cp.Vector
	IsDead() bool
	ApplyDamage(amount float64) bool
}

// NPC owns everything the AI states read and write. ID doubles as the
// waypoint reservation owner.
type NPC struct {
	ID        string
	Agent     nav.Agent
	Animator  *component.Animator
	Health    *component.Health
	Target    Target
	World     *physics.World
	Waypoints *nav.Waypoints

	Facing    cp.Vector
	SightMask physics.Layer
	DT        float64
}

func NewNPC(id string, agent nav.Agent, health *component.Health, anim *component.Animator) *NPC {
	if health == nil {
		health = component.NewHealth(100)
	}
	if anim == nil {
		anim = component.NewAnimator(component.AnimatorSpec{})
	}
	return &NPC{
		ID:        id,
		Agent:     agent,
		Health:    health,
		Animator:  anim,
		Facing:    cp.Vector{X: 1},
		SightMask: physics.LayerSight,
		DT:        1.0 / 60,
	}
}

func (n *NPC) Position() cp.Vector {
	if n.Agent == nil {
		return cp.Vector{}
	}
	return n.Agent.Position()
}

// DistanceToTarget is +Inf without a target.
func (n *NPC) DistanceToTarget() float64 {
	if n.Target == nil {
		return inf
	}
	return n.Position().Distance(n.Target.Position())
}

func (n *NPC) TargetDead() bool {
	return n.Target == nil || n.Target.IsDead()
}

func (n *NPC) Dead() bool {
	return n.Health.IsDead()
}

// CanSee checks distance, line of sight and, when fov > 0, the view cone.
func (n *NPC) CanSee(distance, fov float64) bool {
	if n.Target == nil {
		return false
	}
	target := n.Target.Position()
	if !SeesTarget(n.World, n.Position(), target, distance, n.SightMask) {
		return false
	}
	return fov <= 0 || InFieldOfView(n.Facing, n.Position(), target, fov)
}

// faceMovement turns the NPC towards where its agent is heading.
func (n *NPC) faceMovement() {
	if n.Agent == nil {
		return
	}
	v := n.Agent.Velocity()
	n.Animator.SetFloat("Speed", v.Length())
	if v.LengthSq() > 1e-12 {
		n.Facing = v.Normalize()
	}
}

// FaceTarget turns the NPC towards its target.
func (n *NPC) FaceTarget() {
	if n.Target == nil {
		return
	}
	if d := n.Target.Position().Sub(n.Position()); d.LengthSq() > 1e-12 {
		n.Facing = d.Normalize()
	}
}

// Vars exposes the NPC to asset-authored transition conditions.
func (n *NPC) Vars() script.Vars {
	dist := n.DistanceToTarget()
	if dist == inf {
		dist = -1
	}
	return script.Vars{
		"distance":    dist,
		"player_dead": n.TargetDead(),
		"health":      n.Health.Current,
		"dead":        n.Dead(),
		"sees_player": n.CanSee(defaultSightDistance, 0),
	}
}
