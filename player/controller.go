// Package player is the first-person player controller: a Machine over the
// locomotion states and the collaborators they drive.
package player

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/input"
	"github.com/milk9111/nightshade/script"
)

const gravity = 9.81

// Body is the player's kinematic body. Position is on the floor plane,
// Height is how far the feet are above it.
type Body struct {
	Position      cp.Vector
	Velocity      cp.Vector
	Yaw           float64
	Height        float64
	VerticalSpeed float64
}

func (b *Body) Grounded() bool {
	return b.Height <= 0 && b.VerticalSpeed <= 0
}

// Forward is the unit facing vector.
func (b *Body) Forward() cp.Vector {
	return cp.ForAngle(b.Yaw)
}

// Step integrates the body over dt.
func (b *Body) Step(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Mult(dt))
	if b.Height <= 0 && b.VerticalSpeed <= 0 {
		b.Height, b.VerticalSpeed = 0, 0
		return
	}
	b.VerticalSpeed -= gravity * dt
	b.Height += b.VerticalSpeed * dt
	if b.Height <= 0 {
		b.Height, b.VerticalSpeed = 0, 0
	}
}

// Stamina gates running.
type Stamina struct {
	Max     float64
	Current float64
	Regen   float64 // per second
}

func (s *Stamina) Drain(amount float64) {
	s.Current = max(s.Current-amount, 0)
}

func (s *Stamina) Restore(amount float64) {
	s.Current = min(s.Current+amount, s.Max)
}

// Controller owns everything the player states read and write.
type Controller struct {
	Input     input.Reader
	Health    *component.Health
	Animator  *component.Animator
	Body      Body
	Stamina   Stamina
	TurnSpeed float64
	DT        float64

	state string
}

// NewController wires a controller with default tuning.
func NewController(in input.Reader, health *component.Health, anim *component.Animator) *Controller {
	if health == nil {
		health = component.NewHealth(100)
	}
	if anim == nil {
		anim = component.NewAnimator(component.AnimatorSpec{})
	}
	return &Controller{
		Input:     in,
		Health:    health,
		Animator:  anim,
		Stamina:   Stamina{Max: 100, Current: 100, Regen: 10},
		TurnSpeed: 2.5,
		DT:        1.0 / 60,
	}
}

// MoveInput returns the move axis; X strafes, Y walks forward.
func (c *Controller) MoveInput() cp.Vector {
	if c.Input == nil {
		return cp.Vector{}
	}
	return c.Input.ReadAxis(input.Move)
}

// Magnitude is the length of the move axis.
func (c *Controller) Magnitude() float64 {
	return c.MoveInput().Length()
}

func (c *Controller) held(ctl input.Control) bool {
	return c.Input != nil && c.Input.ReadButton(ctl)
}

func (c *Controller) pressed(ctl input.Control) bool {
	return c.Input != nil && c.Input.ReadButtonOnce(ctl)
}

// Move sets the planar velocity from the move axis at speed.
func (c *Controller) Move(speed float64) {
	in := c.MoveInput()
	fwd := c.Body.Forward()
	c.Body.Velocity = fwd.Mult(in.Y).Add(fwd.ReversePerp().Mult(in.X)).Mult(speed)
	c.Animator.SetFloat("Speed", c.Body.Velocity.Length())
}

// Halt zeroes the planar velocity.
func (c *Controller) Halt() {
	c.Body.Velocity = cp.Vector{}
	c.Animator.SetFloat("Speed", 0)
}

// Look turns the body by the look axis.
func (c *Controller) Look() {
	if c.Input == nil {
		return
	}
	c.Body.Yaw -= c.Input.ReadAxis(input.Look).X * c.TurnSpeed * c.DT
}

// Position, IsDead and ApplyDamage let NPCs treat the controller as their
// target.
func (c *Controller) Position() cp.Vector { return c.Body.Position }
func (c *Controller) IsDead() bool        { return c.Health.IsDead() }
func (c *Controller) ApplyDamage(amount float64) bool {
	return c.Health.ApplyDamage(amount)
}

// Vars exposes the controller to asset-authored transition conditions.
func (c *Controller) Vars() script.Vars {
	return script.Vars{
		"move":           c.Magnitude(),
		"run_held":       c.held(input.Run),
		"crouch_pressed": c.pressed(input.Crouch),
		"jump_pressed":   c.pressed(input.Jump),
		"grounded":       c.Body.Grounded(),
		"stamina":        c.Stamina.Current,
		"health":         c.Health.Current,
		"dead":           c.IsDead(),
		"state":          c.state,
	}
}
