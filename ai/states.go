package ai

import (
	"io"

	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/nav"
	"github.com/milk9111/nightshade/prefabs"
)

const (
	Idle   fsm.TypeID = "Idle"
	Patrol fsm.TypeID = "Patrol"
	Chase  fsm.TypeID = "Chase"
	Attack fsm.TypeID = "Attack"
	Dead   fsm.TypeID = "Dead"
)

// AttackTopic is the animation frame event that lands a hit.
const AttackTopic fsm.Topic = "Attack"

// Factories instantiates the NPC state types named in states-group assets.
var Factories = map[fsm.TypeID]fsm.Factory[*NPC]{
	Idle:   newIdle,
	Patrol: newPatrol,
	Chase:  newChase,
	Attack: newAttack,
	Dead:   newDead,
}

// Sight is shared by the states that look for the player.
type Sight struct {
	Distance float64 `yaml:"sight"`
	FOV      float64 `yaml:"fov"`
}

func (s *Sight) defaults() {
	if s.Distance <= 0 {
		s.Distance = defaultSightDistance
	}
	if s.FOV <= 0 {
		s.FOV = 120
	}
}

type baseState struct {
	m   *fsm.Machine[*NPC]
	npc *NPC
}

func base(m *fsm.Machine[*NPC]) baseState {
	return baseState{m: m, npc: m.Owner()}
}

func (s baseState) dead() bool { return s.npc.Dead() }

func (s baseState) toDead() fsm.Transition {
	return fsm.To(Dead, s.dead)
}

func (s baseState) seesPlayer(sight Sight) bool {
	return !s.npc.TargetDead() && s.npc.CanSee(sight.Distance, sight.FOV)
}

func (s baseState) change(to fsm.TypeID) {
	if err := s.m.ChangeStateType(to); err != nil {
		s.m.Logger().Error().Err(err).Str("to", string(to)).Msg("change state")
	}
}

type IdleSettings struct {
	Wait  float64 `yaml:"wait"`
	Sight `yaml:",inline"`
}

type idleState struct {
	baseState
	settings IdleSettings
	elapsed  float64
}

func newIdle(m *fsm.Machine[*NPC], _ fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[IdleSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Wait <= 0 {
		settings.Wait = 2
	}
	settings.Sight.defaults()
	return &idleState{baseState: base(m), settings: settings}, nil
}

func (s *idleState) Enter() {
	if s.npc.Agent != nil {
		s.npc.Agent.Stop()
	}
}

func (s *idleState) Update() { s.elapsed += s.npc.DT }
func (s *idleState) Exit()   { s.elapsed = 0 }

func (s *idleState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDead(),
		fsm.To(Chase, func() bool { return s.seesPlayer(s.settings.Sight) }),
		fsm.To(Patrol, func() bool { return s.elapsed >= s.settings.Wait }),
	}
}

type PatrolSettings struct {
	Speed float64 `yaml:"speed"`
	Wait  float64 `yaml:"wait"`
	Sight `yaml:",inline"`
}

// patrolState walks between reserved waypoints. It holds at most one
// reservation and hands it back before choosing the next point.
type patrolState struct {
	baseState
	settings PatrolSettings
	latch    *PathLatch

	target   *nav.Waypoint
	previous *nav.Waypoint
	waiting  bool
	elapsed  float64
}

func newPatrol(m *fsm.Machine[*NPC], _ fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[PatrolSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Speed <= 0 {
		settings.Speed = 1.2
	}
	if settings.Wait < 0 {
		settings.Wait = 0
	}
	settings.Sight.defaults()
	return &patrolState{baseState: base(m), settings: settings, latch: NewPathLatch(defaultLatchMargin)}, nil
}

func (s *patrolState) Enter() {
	if s.npc.Agent != nil {
		s.npc.Agent.SetSpeed(s.settings.Speed)
	}
	s.next()
}

func (s *patrolState) next() {
	if s.npc.Waypoints == nil || s.npc.Agent == nil {
		return
	}
	wp, ok := s.npc.Waypoints.ReserveNearest(s.npc.ID, s.npc.Position(), s.previous)
	if !ok {
		return
	}
	s.target = wp
	s.latch.Reset()
	if !s.npc.Agent.SetDestination(wp.Position) {
		s.abandon()
	}
}

// abandon hands back a waypoint the agent cannot reach so the next pick
// prefers another one.
func (s *patrolState) abandon() {
	s.m.Logger().Debug().Str("waypoint", s.target.ID).Msg("waypoint unreachable")
	s.npc.Waypoints.Release(s.npc.ID, s.target)
	s.previous, s.target = s.target, nil
}

func (s *patrolState) Update() {
	if s.target == nil {
		// every waypoint was taken; try again next tick
		s.next()
		return
	}
	if !s.waiting {
		if unreachable(s.npc.Agent) {
			s.abandon()
			return
		}
		if s.latch.Completed(s.npc.Agent) {
			s.waiting = true
			s.elapsed = 0
		}
		return
	}
	s.elapsed += s.npc.DT
	if s.elapsed < s.settings.Wait {
		return
	}
	s.npc.Waypoints.Release(s.npc.ID, s.target)
	s.previous, s.target = s.target, nil
	s.waiting = false
	s.next()
}

func (s *patrolState) Exit() {
	if s.target != nil {
		s.npc.Waypoints.Release(s.npc.ID, s.target)
	}
	s.target = nil
	s.previous = nil
	s.waiting = false
	s.elapsed = 0
	s.latch.Reset()
}

func (s *patrolState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDead(),
		fsm.To(Chase, func() bool { return s.seesPlayer(s.settings.Sight) }),
	}
}

type ChaseSettings struct {
	Speed          float64 `yaml:"speed"`
	AttackDistance float64 `yaml:"attack_distance"`
	LoseTime       float64 `yaml:"lose_time"`
	Sight          `yaml:",inline"`
}

type chaseState struct {
	baseState
	settings ChaseSettings
	unseen   float64
}

func newChase(m *fsm.Machine[*NPC], _ fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[ChaseSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Speed <= 0 {
		settings.Speed = 2.5
	}
	if settings.AttackDistance <= 0 {
		settings.AttackDistance = 1.2
	}
	if settings.LoseTime <= 0 {
		settings.LoseTime = 3
	}
	settings.Sight.defaults()
	return &chaseState{baseState: base(m), settings: settings}, nil
}

func (s *chaseState) Enter() {
	if s.npc.Agent != nil {
		s.npc.Agent.SetSpeed(s.settings.Speed)
	}
	s.follow()
}

func (s *chaseState) follow() {
	if s.npc.Agent != nil && s.npc.Target != nil {
		s.npc.Agent.SetDestination(s.npc.Target.Position())
	}
}

func (s *chaseState) Update() {
	// while chasing the player is tracked all around, not only in the cone
	if s.npc.CanSee(s.settings.Distance, 0) {
		s.unseen = 0
		s.follow()
		return
	}
	s.unseen += s.npc.DT
}

func (s *chaseState) Exit() { s.unseen = 0 }

func (s *chaseState) OnPlayerDeath() { s.change(Patrol) }

func (s *chaseState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDead(),
		fsm.To(Attack, func() bool {
			return !s.npc.TargetDead() && s.npc.DistanceToTarget() <= s.settings.AttackDistance
		}),
		fsm.To(Patrol, func() bool { return s.unseen >= s.settings.LoseTime }),
	}
}

type AttackSettings struct {
	Damage float64 `yaml:"damage"`
	Reach  float64 `yaml:"reach"`
	// Duration is used when the animator has no Attack clip; the hit then
	// lands when it runs out.
	Duration float64 `yaml:"duration"`
}

type attackState struct {
	baseState
	settings AttackSettings
	sub      io.Closer

	animated bool
	elapsed  float64
	hits     int
}

func newAttack(m *fsm.Machine[*NPC], key fsm.Key, raw any) (fsm.State, error) {
	settings, err := prefabs.DecodeComponentSpec[AttackSettings](raw)
	if err != nil {
		return nil, err
	}
	if settings.Damage <= 0 {
		settings.Damage = 25
	}
	if settings.Reach <= 0 {
		settings.Reach = 1.5
	}
	if settings.Duration <= 0 {
		settings.Duration = 0.8
	}
	s := &attackState{baseState: base(m), settings: settings}
	s.sub = m.CatchMessage(key, AttackTopic, s.hit)
	return s, nil
}

// hit lands the swing if the player is still in reach.
func (s *attackState) hit() {
	if s.npc.TargetDead() || s.npc.DistanceToTarget() > s.settings.Reach {
		return
	}
	s.hits++
	s.npc.Target.ApplyDamage(s.settings.Damage)
}

func (s *attackState) Enter() {
	if s.npc.Agent != nil {
		s.npc.Agent.Stop()
	}
	s.npc.FaceTarget()
	s.animated = s.npc.Animator.HasTrigger("Attack")
	s.npc.Animator.SetTrigger("Attack")
}

func (s *attackState) Update() {
	if s.animated {
		return
	}
	s.elapsed += s.npc.DT
	if s.hits == 0 && s.elapsed >= s.settings.Duration {
		s.hit()
	}
}

func (s *attackState) done() bool {
	if s.animated {
		return s.npc.Animator.Finished(0)
	}
	return s.elapsed >= s.settings.Duration
}

func (s *attackState) Exit() {
	s.animated = false
	s.elapsed = 0
	s.hits = 0
}

func (s *attackState) OnPlayerDeath() { s.change(Idle) }

func (s *attackState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		s.toDead(),
		fsm.To(Chase, s.done),
	}
}

type deadState struct {
	baseState
}

func newDead(m *fsm.Machine[*NPC], _ fsm.Key, _ any) (fsm.State, error) {
	return &deadState{base(m)}, nil
}

func (s *deadState) Enter() {
	if s.npc.Agent != nil {
		s.npc.Agent.Stop()
	}
	if s.npc.Waypoints != nil {
		s.npc.Waypoints.ReleaseAll(s.npc.ID)
	}
	s.npc.Animator.SetTrigger("Death")
}

func (s *deadState) Update() {}
func (s *deadState) Exit()   {}

func (s *deadState) Transitions() []fsm.Transition {
	return []fsm.Transition{
		fsm.To(Idle, func() bool { return !s.dead() }),
	}
}
