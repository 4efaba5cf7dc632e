// Package scene builds a playable world from a scene asset and ticks it at a
// fixed step.
package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/ai"
	"github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/ecs"
	ecscomp "github.com/milk9111/nightshade/ecs/component"
	"github.com/milk9111/nightshade/ecs/system"
	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/input"
	"github.com/milk9111/nightshade/internal/metrics"
	"github.com/milk9111/nightshade/nav"
	"github.com/milk9111/nightshade/physics"
	"github.com/milk9111/nightshade/player"
	"github.com/milk9111/nightshade/prefabs"
	"github.com/rs/zerolog"
)

const defaultTickRate = 60

var ErrClosed = errors.New("scene: closed")

// Option configures a Scene.
type Option func(*options)

type options struct {
	logger    zerolog.Logger
	observers []fsm.Observer
	input     *input.Scripted
	live      bool
	realtime  bool
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver adds an observer to every machine in the scene.
func WithObserver(obs fsm.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithLiveInput drives the player from in, written by the caller before each
// tick, instead of the scene's input tape.
func WithLiveInput(in *input.Scripted) Option {
	return func(o *options) {
		o.input = in
		o.live = true
	}
}

// WithRealtime paces Run at the scene's tick rate.
func WithRealtime() Option {
	return func(o *options) { o.realtime = true }
}

// Scene owns the world, its machines and the session that gates them.
type Scene struct {
	spec prefabs.SceneSpec
	opts options
	log  zerolog.Logger

	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *physics.World
	grid      *component.Grid
	waypoints *nav.Waypoints
	session   *Session

	playerEntity ecs.Entity
	controller   *player.Controller
	playerSpawn  cp.Vector
	input        *input.Scripted
	machines     []machineRef

	tick   uint64
	closed bool

	mu   sync.RWMutex
	snap Snapshot
}

type machineRef struct {
	entity ecs.Entity
	name   string
	kind   string
	m      interface {
		Snapshot() fsm.Snapshot
		Destroy() error
	}
}

// Load reads, validates and builds the scene asset name.
func Load(name string, opts ...Option) (*Scene, error) {
	spec, err := prefabs.LoadSpec[prefabs.SceneSpec](name)
	if err != nil {
		return nil, err
	}
	return Build(spec, opts...)
}

// Build creates the world described by spec. Every machine is constructed
// here so setup errors surface before the first tick.
func Build(spec prefabs.SceneSpec, opts ...Option) (*Scene, error) {
	cfg := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.TickRate <= 0 {
		spec.TickRate = defaultTickRate
	}

	s := &Scene{
		spec: spec,
		opts: cfg,
		log:  cfg.logger.With().Str("scene", spec.Name).Logger(),
	}
	session, err := NewSession(s.log, spec.GameOverDelay)
	if err != nil {
		return nil, fmt.Errorf("scene %q: session: %w", spec.Name, err)
	}
	s.session = session

	if err := s.build(); err != nil {
		s.destroyMachines()
		session.Close()
		return nil, fmt.Errorf("scene %q: %w", spec.Name, err)
	}

	session.Send(EventLoaded)
	s.publish()
	s.log.Info().Int("npcs", len(spec.NPCs)).Int("walls", len(spec.Walls)).Msg("scene loaded")
	return s, nil
}

func (s *Scene) dt() float64 {
	return 1 / float64(s.spec.TickRate)
}

// Interval is the wall-clock length of one tick.
func (s *Scene) Interval() time.Duration {
	return time.Duration(float64(time.Second) * s.dt())
}

// Finished reports whether the session has reached game over or was closed.
func (s *Scene) Finished() bool {
	return s.session.Is(StateGameOver) || s.session.Is(StateClosed)
}

func (s *Scene) build() error {
	g := s.spec.Grid
	s.grid = component.NewGrid(g.Width, g.Height, g.CellSize, g.Origin.V())
	s.physics = physics.NewWorld()
	for _, w := range s.spec.Walls {
		layer, err := parseLayer(w.Layer)
		if err != nil {
			return err
		}
		s.physics.AddBox(w.Name, w.Min.V(), w.Max.V(), layer)
		if !w.Walkable {
			s.grid.BlockRect(w.Min.V(), w.Max.V())
		}
	}

	s.waypoints = nav.NewWaypoints()
	s.waypoints.OnChange = metrics.WaypointsReserved
	for _, group := range s.spec.Waypoints {
		for _, p := range group.Points {
			s.waypoints.Add(group.Group, p.ID, p.Position.V())
		}
		metrics.WaypointsReserved(group.Group, 0)
	}

	s.world = ecs.NewWorld()
	if err := s.buildPlayer(); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	for _, n := range s.spec.NPCs {
		if err := s.buildNPC(n); err != nil {
			return fmt.Errorf("npc %q: %w", n.Name, err)
		}
	}

	s.scheduler = ecs.NewScheduler(
		system.NewInputSystem(),
		system.NewPlayerControllerSystem(),
		system.NewAISystem(),
		system.NewNavigationSystem(s.dt()),
		system.NewAnimationSystem(),
		system.NewHealthSystem(),
	)
	return nil
}

func (s *Scene) machineOptions(name string) []fsm.Option {
	opts := []fsm.Option{
		fsm.WithLogger(s.log.With().Str("component", name).Logger()),
		fsm.WithObserver(metrics.FSMObserver{}),
	}
	for _, obs := range s.opts.observers {
		opts = append(opts, fsm.WithObserver(obs))
	}
	return opts
}

func (s *Scene) animator(name string) *component.Animator {
	return component.NewAnimator(s.spec.Animators[name])
}

// forward sends animation frame events to the machine's bus.
func forward[O any](anim *component.Animator, m *fsm.Machine[O]) {
	anim.Events.Handlers = append(anim.Events.Handlers, func(evt component.AnimationEvent) {
		m.SendMessage(fsm.Topic(evt.Name))
	})
}

func (s *Scene) buildPlayer() error {
	ps := s.spec.Player
	in := s.opts.input
	if in == nil {
		tape := input.Tape{}
		if s.spec.Input != "" {
			var err error
			if tape, err = prefabs.LoadSpec[input.Tape](s.spec.Input); err != nil {
				return err
			}
		}
		in = input.NewScripted(tape)
	}
	s.input = in

	health := component.NewHealth(max(ps.Health, 1))
	anim := s.animator(ps.Animator)
	c := player.NewController(in, health, anim)
	c.Body.Position = ps.Position.V()
	c.Body.Yaw = ps.Yaw
	c.DT = s.dt()
	if ps.TurnSpeed > 0 {
		c.TurnSpeed = ps.TurnSpeed
	}
	if ps.Stamina.Max > 0 {
		c.Stamina.Max, c.Stamina.Current = ps.Stamina.Max, ps.Stamina.Max
	}
	if ps.Stamina.Regen > 0 {
		c.Stamina.Regen = ps.Stamina.Regen
	}

	m, err := player.Load("player", ps.States, c, s.machineOptions("player")...)
	if err != nil {
		return err
	}
	forward(anim, m.Machine)

	e := ecs.CreateEntity(s.world)
	s.playerEntity = e
	s.controller = c
	s.playerSpawn = c.Body.Position
	s.machines = append(s.machines, machineRef{entity: e, name: "player", kind: "player", m: m})

	return errors.Join(
		ecs.Add(s.world, e, ecscomp.PlayerTagComponent.Kind(), &ecscomp.PlayerTag{}),
		ecs.Add(s.world, e, ecscomp.NameComponent.Kind(), &ecscomp.Name{Value: "player"}),
		ecs.Add(s.world, e, ecscomp.InputComponent.Kind(), &ecscomp.Input{Source: in, Live: s.opts.live}),
		ecs.Add(s.world, e, ecscomp.PlayerComponent.Kind(), m),
		ecs.Add(s.world, e, ecscomp.AnimatorComponent.Kind(), anim),
		ecs.Add(s.world, e, ecscomp.HealthComponent.Kind(), health),
	)
}

func (s *Scene) buildNPC(spec prefabs.NPCSpec) error {
	agent := nav.NewGridAgent(s.grid, spec.Position.V(), spec.Speed, spec.Stopping)
	anim := s.animator(spec.Animator)
	health := component.NewHealth(max(spec.Health, 1))

	npc := ai.NewNPC(spec.Name, agent, health, anim)
	npc.Target = s.controller
	npc.World = s.physics
	npc.Waypoints = s.waypoints
	npc.DT = s.dt()
	if f := spec.Facing.V(); f.LengthSq() > 0 {
		npc.Facing = f.Normalize()
	}

	m, err := ai.Load(spec.Name, spec.States, npc, s.machineOptions("npc")...)
	if err != nil {
		return err
	}
	forward(anim, m.Machine)

	e := ecs.CreateEntity(s.world)
	s.machines = append(s.machines, machineRef{entity: e, name: spec.Name, kind: "npc", m: m})

	return errors.Join(
		ecs.Add(s.world, e, ecscomp.NPCTagComponent.Kind(), &ecscomp.NPCTag{}),
		ecs.Add(s.world, e, ecscomp.NameComponent.Kind(), &ecscomp.Name{Value: spec.Name}),
		ecs.Add(s.world, e, ecscomp.AIComponent.Kind(), m),
		ecs.Add(s.world, e, ecscomp.NavAgentComponent.Kind(), agent),
		ecs.Add(s.world, e, ecscomp.AnimatorComponent.Kind(), anim),
		ecs.Add(s.world, e, ecscomp.HealthComponent.Kind(), health),
	)
}

func parseLayer(name string) (physics.Layer, error) {
	switch name {
	case "", "wall":
		return physics.LayerWall, nil
	case "prop":
		return physics.LayerProp, nil
	case "door":
		return physics.LayerDoor, nil
	}
	return 0, fmt.Errorf("%w %q", prefabs.ErrUnknownLayer, name)
}

// Tick advances the scene by one fixed step. It reports whether the world
// moved; paused and finished sessions do not tick.
func (s *Scene) Tick() bool {
	if s.closed || !s.session.Ticking() {
		return false
	}
	s.scheduler.Update(s.world)
	s.tick++
	metrics.Tick()

	// count down before handling this tick's events so a death waits the
	// full delay
	s.session.step()
	for _, evt := range s.world.Events().Drain() {
		s.handle(evt)
	}
	s.publish()
	return true
}

func (s *Scene) handle(evt ecs.Event) {
	name := "?"
	if n, ok := ecs.Get(s.world, evt.Entity, ecscomp.NameComponent.Kind()); ok {
		name = n.Value
	}
	s.log.Debug().Str("entity", name).Str("event", string(evt.Kind)).Uint64("tick", s.tick).Msg("world event")

	if evt.Entity != s.playerEntity || evt.Kind != ecs.EventDied {
		return
	}
	if s.session.Send(EventPlayerDied) {
		s.log.Info().Uint64("tick", s.tick).Int("delay", s.spec.GameOverDelay).Msg("player died")
	}
}

// Run ticks until ctx is done, the session ends, or ticks steps have run
// when ticks > 0. It returns the number of steps taken.
func (s *Scene) Run(ctx context.Context, ticks int) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var pace <-chan time.Time
	if s.opts.realtime {
		t := time.NewTicker(s.Interval())
		defer t.Stop()
		pace = t.C
	}

	n := 0
	for ticks <= 0 || n < ticks {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if s.Finished() {
			return n, nil
		}
		if pace != nil {
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-pace:
			}
		}
		if !s.Tick() {
			if pace != nil && s.session.Is(StatePaused) {
				continue
			}
			return n, nil
		}
		n++
	}
	return n, nil
}

func (s *Scene) Pause() bool {
	if !s.session.Is(StateRunning) {
		return false
	}
	defer s.publish()
	return s.session.Send(EventPause)
}

func (s *Scene) Resume() bool {
	if !s.session.Is(StatePaused) {
		return false
	}
	defer s.publish()
	return s.session.Send(EventResume)
}

// Restart revives the player at the spawn point after a death.
func (s *Scene) Restart() bool {
	if !s.session.Is(StateDying) && !s.session.Is(StateGameOver) {
		return false
	}
	s.controller.Health.Revive()
	s.controller.Body.Position = s.playerSpawn
	s.controller.Halt()
	ok := s.session.Send(EventRestart)
	s.publish()
	return ok
}

func (s *Scene) Session() *Session              { return s.session }
func (s *Scene) Controller() *player.Controller { return s.controller }
func (s *Scene) Physics() *physics.World        { return s.physics }
func (s *Scene) Grid() *component.Grid          { return s.grid }
func (s *Scene) Waypoints() *nav.Waypoints      { return s.waypoints }
func (s *Scene) Spec() prefabs.SceneSpec        { return s.spec }

// Input returns the player's input source.
func (s *Scene) Input() *input.Scripted { return s.input }

// Ticks returns the number of steps taken so far.
func (s *Scene) Ticks() uint64 { return s.tick }

func (s *Scene) destroyMachines() {
	for _, ref := range s.machines {
		if err := ref.m.Destroy(); err != nil {
			s.log.Error().Err(err).Str("machine", ref.name).Msg("destroy machine")
		}
	}
}

// Close destroys every machine and ends the session. Later ticks are no-ops.
func (s *Scene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.destroyMachines()
	s.session.Close()
	s.publish()
	return nil
}
