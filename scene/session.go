package scene

import (
	"github.com/felixgeelhaar/statekit"
	"github.com/rs/zerolog"
)

// Session states.
const (
	StateLoading  statekit.StateID = "loading"
	StateRunning  statekit.StateID = "running"
	StatePaused   statekit.StateID = "paused"
	StateDying    statekit.StateID = "dying"
	StateGameOver statekit.StateID = "game_over"
	StateClosed   statekit.StateID = "closed"
)

// Session events.
const (
	EventLoaded     statekit.EventType = "LOADED"
	EventPause      statekit.EventType = "PAUSE"
	EventResume     statekit.EventType = "RESUME"
	EventPlayerDied statekit.EventType = "PLAYER_DIED"
	EventGameOver   statekit.EventType = "GAME_OVER"
	EventRestart    statekit.EventType = "RESTART"
	EventClose      statekit.EventType = "CLOSE"
)

// sessionContext is the statekit context of a session.
type sessionContext struct {
	log       zerolog.Logger
	delay     int
	countdown int
}

// Session gates the tick loop: machines only advance while it is running or
// dying. Player death starts a countdown of GameOverDelay ticks.
type Session struct {
	interp *statekit.Interpreter[*sessionContext]
	ctx    *sessionContext
}

func newSessionMachine() (*statekit.MachineConfig[*sessionContext], error) {
	return statekit.NewMachine[*sessionContext]("session").
		WithInitial(StateLoading).
		WithContext(&sessionContext{}).
		WithAction("logEntry", logEntry).
		WithAction("armCountdown", armCountdown).
		WithGuard("countdownElapsed", countdownElapsed).
		State(StateLoading).
		OnEntry("logEntry").
		On(EventLoaded).Target(StateRunning).
		On(EventClose).Target(StateClosed).
		Done().
		State(StateRunning).
		OnEntry("logEntry").
		On(EventPause).Target(StatePaused).
		On(EventPlayerDied).Target(StateDying).Do("armCountdown").
		On(EventClose).Target(StateClosed).
		Done().
		State(StatePaused).
		OnEntry("logEntry").
		On(EventResume).Target(StateRunning).
		On(EventClose).Target(StateClosed).
		Done().
		State(StateDying).
		OnEntry("logEntry").
		On(EventGameOver).Target(StateGameOver).Guard("countdownElapsed").
		On(EventRestart).Target(StateRunning).
		On(EventClose).Target(StateClosed).
		Done().
		State(StateGameOver).
		OnEntry("logEntry").
		On(EventRestart).Target(StateRunning).
		On(EventClose).Target(StateClosed).
		Done().
		State(StateClosed).
		Final().
		OnEntry("logEntry").
		Done().
		Build()
}

func logEntry(ctx **sessionContext, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).log.Info().Str("event", string(event.Type)).Msg("session transition")
}

func armCountdown(ctx **sessionContext, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).countdown = (*ctx).delay
}

func countdownElapsed(ctx *sessionContext, _ statekit.Event) bool {
	return ctx != nil && ctx.countdown <= 0
}

// NewSession builds and starts a session in the loading state.
func NewSession(log zerolog.Logger, gameOverDelay int) (*Session, error) {
	cfg, err := newSessionMachine()
	if err != nil {
		return nil, err
	}
	ctx := &sessionContext{log: log, delay: max(gameOverDelay, 0)}
	interp := statekit.NewInterpreter(cfg)
	interp.UpdateContext(func(c **sessionContext) {
		*c = ctx
	})
	interp.Start()
	return &Session{interp: interp, ctx: ctx}, nil
}

// State returns the current session state.
func (s *Session) State() statekit.StateID {
	return s.interp.State().Value
}

func (s *Session) Is(id statekit.StateID) bool {
	return s.interp.Matches(id)
}

// Ticking reports whether the world advances this tick.
func (s *Session) Ticking() bool {
	return s.Is(StateRunning) || s.Is(StateDying)
}

// Send delivers event and reports whether the state changed.
func (s *Session) Send(event statekit.EventType) bool {
	if s.interp.Done() {
		return false
	}
	before := s.State()
	s.interp.Send(statekit.Event{Type: event})
	return s.State() != before
}

// Countdown returns the ticks left before game over while dying.
func (s *Session) Countdown() int {
	if !s.Is(StateDying) {
		return 0
	}
	return s.ctx.countdown
}

// step advances the game-over countdown by one tick.
func (s *Session) step() {
	if !s.Is(StateDying) {
		return
	}
	if s.ctx.countdown > 0 {
		s.ctx.countdown--
	}
	s.Send(EventGameOver)
}

// Close moves the session to its final state.
func (s *Session) Close() {
	if !s.interp.Done() {
		s.Send(EventClose)
	}
	s.interp.Stop()
}
