package player

import (
	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/input"
	"github.com/milk9111/nightshade/prefabs"
)

const (
	Idle   fsm.TypeID = "Idle"
	Walk   fsm.TypeID = "Walk"
	Run    fsm.TypeID = "Run"
	Crouch fsm.TypeID = "Crouch"
	Jump   fsm.TypeID = "Jump"
	Death  fsm.TypeID = "Death"
)

// Factories instantiates the player state types named in states-group
// assets.
var Factories = map[fsm.TypeID]fsm.Factory[*Controller]{
	Idle:   newIdle,
	Walk:   newWalk,
	Run:    newRun,
	Crouch: newCrouch,
	Jump:   newJump,
	Death:  newDeath,
}

type baseState struct {
	c *Controller
}

func (s baseState) dead() bool   { return s.c.IsDead() }
func (s baseState) moving() bool { return s.c.Magnitude() > 0 }
func (s baseState) still() bool  { return s.c.Magnitude() <= 0 }

func (s baseState) jumpPressed() bool {
	return s.c.pressed(input.Jump) && s.c.Body.Grounded()
}

func (s baseState) crouchPressed() bool {
	return s.c.pressed(input.Crouch)
}

func (s baseState) toDeath() fsm.Transition {
	return fsm.To(Death, s.dead)
}

type idleState struct {
	baseState
}

func newIdle(m *fsm.Machine[*Controller], _ fsm.Key, _ any) (fsm.State, error) {
	return &idleState{baseState{m.Owner()}}, nil
}

func (s *idleState) Enter()  { s.c.Halt() }
func (s *idleState) Update() { s.c.Halt() }
func (s *idleState) Exit()   {}

func (s *idleState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDeath(),
		fsm.To(Jump, s.jumpPressed),
		fsm.To(Crouch, s.crouchPressed),
		fsm.To(Walk, s.moving),
	}
}

type WalkSettings struct {
	Speed float64 `yaml:"speed"`
}

type walkState struct {
	baseState
	settings WalkSettings
}

func newWalk(m *fsm.Machine[*Controller], _ fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[WalkSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Speed <= 0 {
		settings.Speed = 2
	}
	return &walkState{baseState: baseState{m.Owner()}, settings: settings}, nil
}

func (s *walkState) Enter()  { s.c.Move(s.settings.Speed) }
func (s *walkState) Update() { s.c.Move(s.settings.Speed) }
func (s *walkState) Exit()   {}

func (s *walkState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDeath(),
		fsm.To(Jump, s.jumpPressed),
		fsm.To(Crouch, s.crouchPressed),
		fsm.To(Run, func() bool { return s.c.held(input.Run) && s.c.Stamina.Current > 0 }),
		fsm.To(Idle, s.still),
	}
}

type RunSettings struct {
	Speed float64 `yaml:"speed"`
	Drain float64 `yaml:"stamina_drain"`
}

type runState struct {
	baseState
	settings RunSettings
}

func newRun(m *fsm.Machine[*Controller], _ fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[RunSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Speed <= 0 {
		settings.Speed = 4.5
	}
	if settings.Drain <= 0 {
		settings.Drain = 20
	}
	return &runState{baseState: baseState{m.Owner()}, settings: settings}, nil
}

func (s *runState) Enter() {
	s.c.Move(s.settings.Speed)
	s.c.Animator.SetBool("Run", true)
}

func (s *runState) Update() {
	s.c.Move(s.settings.Speed)
	s.c.Stamina.Drain(s.settings.Drain * s.c.DT)
}

func (s *runState) Exit() {
	s.c.Animator.SetBool("Run", false)
}

func (s *runState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDeath(),
		fsm.To(Jump, s.jumpPressed),
		fsm.To(Idle, s.still),
		fsm.To(Walk, func() bool { return !s.c.held(input.Run) || s.c.Stamina.Current <= 0 }),
	}
}

type CrouchSettings struct {
	Speed float64 `yaml:"speed"`
}

type crouchState struct {
	baseState
	settings CrouchSettings
}

func newCrouch(m *fsm.Machine[*Controller], _ fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[CrouchSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Speed <= 0 {
		settings.Speed = 1.2
	}
	return &crouchState{baseState: baseState{m.Owner()}, settings: settings}, nil
}

func (s *crouchState) Enter() {
	s.c.Animator.SetBool("Crouch", true)
	s.c.Move(s.settings.Speed)
}

func (s *crouchState) Update() { s.c.Move(s.settings.Speed) }

func (s *crouchState) Exit() {
	s.c.Animator.SetBool("Crouch", false)
}

func (s *crouchState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDeath(),
		fsm.To(Idle, s.crouchPressed),
	}
}

type JumpSettings struct {
	Velocity float64 `yaml:"velocity"`
	AirSpeed float64 `yaml:"air_speed"`
}

type jumpState struct {
	baseState
	settings JumpSettings
	airborne bool
}

func newJump(m *fsm.Machine[*Controller], _ fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[JumpSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Velocity <= 0 {
		settings.Velocity = 4
	}
	if settings.AirSpeed <= 0 {
		settings.AirSpeed = 2
	}
	return &jumpState{baseState: baseState{m.Owner()}, settings: settings}, nil
}

func (s *jumpState) Enter() {
	s.c.Body.VerticalSpeed = s.settings.Velocity
	s.c.Animator.SetTrigger("Jump")
}

func (s *jumpState) Update() {
	if !s.c.Body.Grounded() {
		s.airborne = true
	}
	s.c.Move(s.settings.AirSpeed)
}

func (s *jumpState) Exit() {
	s.airborne = false
}

func (s *jumpState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDeath(),
		fsm.To(Idle, func() bool { return s.airborne && s.c.Body.Grounded() }),
	}
}

type deathState struct {
	baseState
}

func newDeath(m *fsm.Machine[*Controller], _ fsm.Key, _ any) (fsm.State, error) {
	return &deathState{baseState{m.Owner()}}, nil
}

func (s *deathState) Enter() {
	s.c.Halt()
	s.c.Animator.SetTrigger("Death")
}

func (s *deathState) Update() { s.c.Halt() }
func (s *deathState) Exit()   {}

func (s *deathState) Transitions() []fsm.Transition {
	// revived by the session on restart
	return []fsm.Transition{
		fsm.To(Idle, func() bool { return !s.dead() }),
	}
}
