package fsm

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Option configures a Machine.
type Option func(*options)

type options struct {
	kind      string
	logger    zerolog.Logger
	observers []Observer
}

// WithKind labels the machine ("player", "npc") for logs and metrics.
func WithKind(kind string) Option {
	return func(o *options) { o.kind = kind }
}

// WithLogger attaches a logger; machines are silent by default.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers an observer. May be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// Machine drives exactly one active state per tick.
// O is the owner the states were built for (a player controller, an NPC).
type Machine[O any] struct {
	id    string
	name  string
	kind  string
	owner O

	registry *Registry
	initial  Key

	current  *Entry
	previous *Entry
	entered  bool

	bus       *Bus
	log       zerolog.Logger
	observers []Observer
	destroyed bool
}

// New instantiates every state of group for owner and validates that each
// transition target exists. Setup problems are returned here so they never
// surface at tick time.
func New[O any](name string, owner O, group Group[O], opts ...Option) (*Machine[O], error) {
	cfg := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Machine[O]{
		id:        uuid.NewString(),
		name:      name,
		kind:      cfg.kind,
		owner:     owner,
		registry:  NewRegistry(),
		initial:   group.Initial,
		observers: cfg.observers,
	}
	m.log = cfg.logger.With().
		Str("machine", name).
		Str("kind", cfg.kind).
		Str("machine_id", m.id).
		Logger()
	m.bus = newBus(m.CurrentKey)

	for _, def := range group.States {
		if def.New == nil {
			return nil, &RegistrationError{Key: def.Key, Type: def.Type, Err: ErrNilState}
		}
		state, err := def.New(m, def.Key, def.Settings)
		if err != nil {
			return nil, fmt.Errorf("fsm: machine %q: build %s: %w", name, def.Key, err)
		}
		var extra []Transition
		if def.Extra != nil {
			if extra, err = def.Extra(m); err != nil {
				return nil, fmt.Errorf("fsm: machine %q: transitions of %s: %w", name, def.Key, err)
			}
		}
		if _, err := m.registry.add(def.Key, def.Type, state, def.Enabled, extra); err != nil {
			return nil, err
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine[O]) validate() error {
	for _, entry := range m.registry.Entries() {
		for _, target := range entry.transitions.Targets() {
			if _, err := m.registry.LookupType(target); err != nil {
				return &ReferenceMissingError{Machine: m.name, Target: string(target), From: entry.Key}
			}
		}
	}
	if m.initial != "" {
		if _, err := m.registry.Lookup(m.initial); err != nil {
			return &ReferenceMissingError{Machine: m.name, Target: string(m.initial)}
		}
	}
	return nil
}

// Update runs one tick: Enter on the first tick after a state became current,
// otherwise Update followed by at most one transition.
func (m *Machine[O]) Update() {
	if m == nil || m.destroyed {
		return
	}
	if m.current == nil && !m.selectInitial() {
		return
	}

	if !m.entered {
		m.current.State.Enter()
		m.entered = true
		return
	}

	cur := m.current
	cur.State.Update()
	if m.current != cur {
		// the state changed itself during Update
		return
	}

	target, ok := cur.transitions.Next(cur.Type)
	if !ok {
		return
	}
	if err := m.ChangeStateType(target); err != nil {
		panic(err)
	}
}

func (m *Machine[O]) selectInitial() bool {
	if m.initial != "" {
		if entry, err := m.registry.Lookup(m.initial); err == nil && entry.Enabled {
			m.current = entry
			m.entered = false
			return true
		}
	}
	for _, entry := range m.registry.Entries() {
		if entry.Enabled {
			m.current = entry
			m.entered = false
			return true
		}
	}
	return false
}

// ChangeState switches to the state registered under key. An unknown key is
// returned as *ReferenceMissingError and leaves the machine untouched; a
// disabled or already current target is ignored without error.
func (m *Machine[O]) ChangeState(key Key) error {
	entry, err := m.registry.Lookup(key)
	if err != nil {
		return &ReferenceMissingError{Machine: m.name, Target: string(key)}
	}
	m.changeTo(entry)
	return nil
}

// ChangeStateType is ChangeState addressed by type tag.
func (m *Machine[O]) ChangeStateType(typeID TypeID) error {
	entry, err := m.registry.LookupType(typeID)
	if err != nil {
		return &ReferenceMissingError{Machine: m.name, Target: string(typeID)}
	}
	m.changeTo(entry)
	return nil
}

func (m *Machine[O]) changeTo(entry *Entry) {
	if m.destroyed || entry == m.current {
		return
	}

	change := Change{MachineID: m.id, Machine: m.name, Kind: m.kind, To: entry.Key}
	if m.current != nil {
		change.From = m.current.Key
	}

	if !entry.Enabled {
		m.log.Debug().Str("from", string(change.From)).Str("to", string(entry.Key)).Msg("target state disabled")
		for _, o := range m.observers {
			o.DisabledTarget(change)
		}
		return
	}

	if m.current != nil {
		m.current.State.Exit()
	}
	m.previous = m.current
	m.current = entry
	m.entered = false

	m.log.Debug().Str("from", string(change.From)).Str("to", string(entry.Key)).Msg("state changed")
	for _, o := range m.observers {
		o.StateChanged(change)
	}
}

// Current returns the active entry.
func (m *Machine[O]) Current() (*Entry, bool) {
	if m == nil || m.current == nil {
		return nil, false
	}
	return m.current, true
}

// Previous returns the entry that was active before the last change.
func (m *Machine[O]) Previous() (*Entry, bool) {
	if m == nil || m.previous == nil {
		return nil, false
	}
	return m.previous, true
}

// CurrentKey returns the key of the active state.
func (m *Machine[O]) CurrentKey() (Key, bool) {
	if m == nil || m.current == nil {
		return "", false
	}
	return m.current.Key, true
}

// IsCurrent reports whether the active state is of type typeID.
func (m *Machine[O]) IsCurrent(typeID TypeID) bool {
	return m != nil && m.current != nil && m.current.Type == typeID
}

// Entered reports whether the active state has received Enter.
func (m *Machine[O]) Entered() bool {
	return m != nil && m.entered
}

// Registry exposes the machine's states.
func (m *Machine[O]) Registry() *Registry {
	return m.registry
}

// Owner returns the value the states were built for.
func (m *Machine[O]) Owner() O {
	return m.owner
}

func (m *Machine[O]) Name() string { return m.name }
func (m *Machine[O]) Kind() string { return m.kind }
func (m *Machine[O]) ID() string   { return m.id }

// Logger returns the machine's logger for use by its states.
func (m *Machine[O]) Logger() *zerolog.Logger {
	return &m.log
}

// Bus returns the machine's message bus.
func (m *Machine[O]) Bus() *Bus {
	return m.bus
}

// SendMessage delivers topic to the active state's handler.
func (m *Machine[O]) SendMessage(topic Topic) int {
	if m == nil || m.destroyed {
		return 0
	}
	return m.bus.Send(topic)
}

// CatchMessage subscribes the state registered under owner to topic.
func (m *Machine[O]) CatchMessage(owner Key, topic Topic, handler Handler) io.Closer {
	return m.bus.Catch(owner, topic, handler)
}

// Destroy tears the machine down: every bus subscription is closed and later
// ticks, messages and state changes are ignored.
func (m *Machine[O]) Destroy() error {
	if m == nil || m.destroyed {
		return nil
	}
	m.destroyed = true
	return m.bus.Close()
}

// Destroyed reports whether Destroy has run.
func (m *Machine[O]) Destroyed() bool {
	return m == nil || m.destroyed
}

// Snapshot is a point-in-time view of a machine for inspectors.
type Snapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Current  Key    `json:"current,omitempty"`
	Previous Key    `json:"previous,omitempty"`
	Entered  bool   `json:"entered"`
}

func (m *Machine[O]) Snapshot() Snapshot {
	s := Snapshot{ID: m.id, Name: m.name, Kind: m.kind, Entered: m.entered}
	if m.current != nil {
		s.Current = m.current.Key
	}
	if m.previous != nil {
		s.Previous = m.previous.Key
	}
	return s
}
