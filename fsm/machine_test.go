package fsm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

type probe struct {
	name        string
	log         *journal
	transitions []Transition
	onUpdate    func()
	asked       int
}

func (p *probe) Enter()  { p.log.add("%s.enter", p.name) }
func (p *probe) Update() { p.log.add("%s.update", p.name); p.runUpdate() }
func (p *probe) Exit()   { p.log.add("%s.exit", p.name) }

func (p *probe) runUpdate() {
	if p.onUpdate != nil {
		p.onUpdate()
	}
}

func (p *probe) Transitions() []Transition {
	p.asked++
	return p.transitions
}

type flags map[string]bool

func (f flags) is(name string) Predicate {
	return func() bool { return f[name] }
}

func probeDef(name string, log *journal, enabled bool, ts ...Transition) Definition[flags] {
	return Definition[flags]{
		Key:     Key(name),
		Type:    TypeID(name),
		Enabled: enabled,
		New: func(m *Machine[flags], _ Key, _ any) (State, error) {
			return &probe{name: name, log: log, transitions: ts}, nil
		},
	}
}

func mustMachine(t *testing.T, f flags, defs ...Definition[flags]) *Machine[flags] {
	t.Helper()
	m, err := New("test", f, Group[flags]{Name: "test", States: defs})
	require.NoError(t, err)
	return m
}

func currentKey(t *testing.T, m *Machine[flags]) Key {
	t.Helper()
	k, ok := m.CurrentKey()
	require.True(t, ok, "machine has no current state")
	return k
}

func TestMachineEnterBeforeUpdate(t *testing.T) {
	log := &journal{}
	m := mustMachine(t, flags{}, probeDef("a", log, true))

	_, ok := m.Current()
	assert.False(t, ok, "no current state before the first tick")

	for i := 0; i < 3; i++ {
		m.Update()
	}

	want := []string{"a.enter", "a.update", "a.update"}
	if diff := cmp.Diff(want, log.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, m.Entered())
}

func TestMachineExitBeforeNewEnter(t *testing.T) {
	log := &journal{}
	f := flags{}
	m := mustMachine(t, f,
		probeDef("a", log, true, To("b", f.is("go"))),
		probeDef("b", log, true),
	)

	m.Update()
	f["go"] = true
	m.Update()
	assert.Equal(t, Key("b"), currentKey(t, m))
	assert.False(t, m.Entered(), "enter is pending until the next tick")
	m.Update()
	m.Update()

	want := []string{"a.enter", "a.update", "a.exit", "b.enter", "b.update"}
	if diff := cmp.Diff(want, log.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestMachineFirstMatchWins(t *testing.T) {
	log := &journal{}
	f := flags{"p1": true, "p2": true, "p3": true}
	m := mustMachine(t, f,
		probeDef("start", log, true,
			To("s1", f.is("p1")),
			To("s2", f.is("p2")),
			To("s3", f.is("p3")),
		),
		probeDef("s1", log, true),
		probeDef("s2", log, true),
		probeDef("s3", log, true),
	)

	m.Update()
	m.Update()
	assert.Equal(t, Key("s1"), currentKey(t, m))

	prev, ok := m.Previous()
	require.True(t, ok)
	assert.Equal(t, Key("start"), prev.Key)
}

func TestMachineNoSelfTransition(t *testing.T) {
	log := &journal{}
	f := flags{"self": true}
	m := mustMachine(t, f,
		probeDef("a", log, true, To("a", f.is("self")), To("b", f.is("other"))),
		probeDef("b", log, true),
	)

	m.Update()
	m.Update()
	m.Update()

	assert.Equal(t, Key("a"), currentKey(t, m))
	assert.True(t, m.Entered())
	assert.Equal(t, []string{"a.enter", "a.update", "a.update"}, log.calls)
	_, ok := m.Previous()
	assert.False(t, ok)
}

func TestMachineSelfTargetDoesNotShadowLaterTransitions(t *testing.T) {
	log := &journal{}
	f := flags{"self": true, "other": true}
	m := mustMachine(t, f,
		probeDef("a", log, true, To("a", f.is("self")), To("b", f.is("other"))),
		probeDef("b", log, true),
	)

	m.Update()
	m.Update()
	assert.Equal(t, Key("b"), currentKey(t, m))
}

func TestMachineDisabledTargetIsNoOp(t *testing.T) {
	log := &journal{}
	f := flags{"go": true}
	var dropped []Change
	m, err := New("test", f, Group[flags]{States: []Definition[flags]{
		probeDef("a", log, true, To("b", f.is("go"))),
		probeDef("b", log, false),
	}}, WithObserver(ObserverFuncs{OnDisabled: func(c Change) { dropped = append(dropped, c) }}))
	require.NoError(t, err)

	m.Update()
	m.Update()
	require.NoError(t, m.ChangeState("b"))

	assert.Equal(t, Key("a"), currentKey(t, m))
	assert.True(t, m.Entered())
	assert.NotContains(t, log.calls, "a.exit")
	require.Len(t, dropped, 2)
	assert.Equal(t, Change{MachineID: m.ID(), Machine: "test", From: "a", To: "b"}, dropped[1])
}

func TestMachineUnknownKey(t *testing.T) {
	log := &journal{}
	m := mustMachine(t, flags{}, probeDef("a", log, true))
	m.Update()

	err := m.ChangeState("does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStateNotFound))

	var missing *ReferenceMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "does-not-exist", missing.Target)

	assert.Equal(t, Key("a"), currentKey(t, m))
	assert.True(t, m.Entered())

	assert.ErrorIs(t, m.ChangeStateType("nope"), ErrStateNotFound)
}

func TestMachinePreviousState(t *testing.T) {
	log := &journal{}
	f := flags{}
	m := mustMachine(t, f,
		probeDef("a", log, true, To("b", f.is("ab"))),
		probeDef("b", log, true, To("c", f.is("bc"))),
		probeDef("c", log, true),
	)

	m.Update()
	f["ab"] = true
	m.Update()
	prev, _ := m.Previous()
	assert.Equal(t, Key("a"), prev.Key)

	m.Update()
	f["bc"] = true
	m.Update()
	prev, _ = m.Previous()
	assert.Equal(t, Key("b"), prev.Key)
	assert.Equal(t, Key("c"), currentKey(t, m))
}

func TestMachineAtMostOneTransitionPerTick(t *testing.T) {
	log := &journal{}
	f := flags{"ab": true, "bc": true}
	m := mustMachine(t, f,
		probeDef("a", log, true, To("b", f.is("ab"))),
		probeDef("b", log, true, To("c", f.is("bc"))),
		probeDef("c", log, true),
	)

	var seen []Key
	for i := 0; i < 6; i++ {
		m.Update()
		seen = append(seen, currentKey(t, m))
	}
	assert.Equal(t, []Key{"a", "b", "b", "c", "c", "c"}, seen)
}

func TestMachineStateChangesItselfDuringUpdate(t *testing.T) {
	log := &journal{}
	f := flags{"ac": true}
	var m *Machine[flags]
	forced := Definition[flags]{
		Key: "a", Type: "a", Enabled: true,
		New: func(owner *Machine[flags], _ Key, _ any) (State, error) {
			return &probe{name: "a", log: log, transitions: []Transition{To("c", f.is("ac"))}, onUpdate: func() {
				require.NoError(t, owner.ChangeState("b"))
			}}, nil
		},
	}
	m = mustMachine(t, f, forced, probeDef("b", log, true), probeDef("c", log, true))

	m.Update()
	m.Update()
	assert.Equal(t, Key("b"), currentKey(t, m), "the scripted change wins and no transition runs the same tick")
}

func TestMachineInitialState(t *testing.T) {
	log := &journal{}
	m, err := New("test", flags{}, Group[flags]{Initial: "b", States: []Definition[flags]{
		probeDef("a", log, true),
		probeDef("b", log, true),
	}})
	require.NoError(t, err)
	m.Update()
	assert.Equal(t, Key("b"), currentKey(t, m))

	t.Run("skips_disabled", func(t *testing.T) {
		log := &journal{}
		m := mustMachine(t, flags{}, probeDef("a", log, false), probeDef("b", log, true))
		m.Update()
		assert.Equal(t, Key("b"), currentKey(t, m))
	})

	t.Run("empty_group", func(t *testing.T) {
		m := mustMachine(t, flags{})
		m.Update()
		_, ok := m.Current()
		assert.False(t, ok)
	})
}

func TestMachineConstructionErrors(t *testing.T) {
	log := &journal{}
	f := flags{}

	tests := []struct {
		name  string
		group Group[flags]
		check func(t *testing.T, err error)
	}{
		{
			name:  "duplicate_key",
			group: Group[flags]{States: []Definition[flags]{probeDef("a", log, true), probeDef("a", log, true)}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrDuplicateKey) },
		},
		{
			name:  "missing_transition_target",
			group: Group[flags]{States: []Definition[flags]{probeDef("a", log, true, To("ghost", f.is("x")))}},
			check: func(t *testing.T, err error) {
				var missing *ReferenceMissingError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, Key("a"), missing.From)
				assert.Equal(t, "ghost", missing.Target)
			},
		},
		{
			name:  "missing_initial",
			group: Group[flags]{Initial: "ghost", States: []Definition[flags]{probeDef("a", log, true)}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrStateNotFound) },
		},
		{
			name: "factory_error",
			group: Group[flags]{States: []Definition[flags]{{
				Key: "a", Type: "a",
				New: func(*Machine[flags], Key, any) (State, error) { return nil, errors.New("boom") },
			}}},
			check: func(t *testing.T, err error) { assert.ErrorContains(t, err, "boom") },
		},
		{
			name:  "nil_factory",
			group: Group[flags]{States: []Definition[flags]{{Key: "a", Type: "a"}}},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNilState) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("test", f, tc.group)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestMachineTransitionsRequestedOnce(t *testing.T) {
	log := &journal{}
	f := flags{}
	var built *probe
	def := Definition[flags]{
		Key: "a", Type: "a", Enabled: true,
		New: func(*Machine[flags], Key, any) (State, error) {
			built = &probe{name: "a", log: log, transitions: []Transition{To("b", f.is("x"))}}
			return built, nil
		},
	}
	m := mustMachine(t, f, def, probeDef("b", log, true, To("a", f.is("y"))))
	for i := 0; i < 5; i++ {
		m.Update()
		f["x"], f["y"] = !f["x"], !f["y"]
	}
	assert.Equal(t, 1, built.asked)
}

func TestMachineExtraTransitions(t *testing.T) {
	log := &journal{}
	f := flags{"own": true, "extra": true}
	def := probeDef("a", log, true, To("b", f.is("own")))
	def.Extra = func(*Machine[flags]) ([]Transition, error) {
		return []Transition{To("c", f.is("extra"))}, nil
	}
	m := mustMachine(t, f, def, probeDef("b", log, true), probeDef("c", log, true))

	entry, err := m.Registry().Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, []TypeID{"b", "c"}, entry.Transitions().Targets())

	m.Update()
	m.Update()
	assert.Equal(t, Key("b"), currentKey(t, m), "extra transitions run after the state's own")
}

func TestMachineInstancesAreIndependent(t *testing.T) {
	log := &journal{}
	var built []*probe
	def := Definition[flags]{
		Key: "a", Type: "a", Enabled: true,
		New: func(*Machine[flags], Key, any) (State, error) {
			p := &probe{name: "a", log: log}
			built = append(built, p)
			return p, nil
		},
	}
	group := Group[flags]{States: []Definition[flags]{def}}

	m1, err := New("one", flags{}, group)
	require.NoError(t, err)
	m2, err := New("two", flags{}, group)
	require.NoError(t, err)

	require.Len(t, built, 2)
	assert.NotSame(t, built[0], built[1])
	e1, _ := m1.Registry().Lookup("a")
	e2, _ := m2.Registry().Lookup("a")
	assert.NotSame(t, e1.State, e2.State)
	assert.NotEqual(t, m1.ID(), m2.ID())
}

func TestMachineDestroy(t *testing.T) {
	log := &journal{}
	f := flags{}
	m := mustMachine(t, f, probeDef("a", log, true, To("b", f.is("go"))), probeDef("b", log, true))

	fired := 0
	m.CatchMessage("a", "Attack", func() { fired++ })
	m.Update()
	assert.Equal(t, 1, m.SendMessage("Attack"))

	require.NoError(t, m.Destroy())
	assert.True(t, m.Destroyed())
	assert.Equal(t, 0, m.SendMessage("Attack"))
	assert.Equal(t, 1, fired)

	f["go"] = true
	m.Update()
	assert.Equal(t, Key("a"), currentKey(t, m))
	require.NoError(t, m.ChangeState("b"))
	assert.Equal(t, Key("a"), currentKey(t, m))
}

func TestMachineSnapshot(t *testing.T) {
	log := &journal{}
	f := flags{"go": true}
	m, err := New("zombie-1", f, Group[flags]{States: []Definition[flags]{
		probeDef("a", log, true, To("b", f.is("go"))),
		probeDef("b", log, true),
	}}, WithKind("npc"))
	require.NoError(t, err)

	m.Update()
	m.Update()
	assert.Equal(t, Snapshot{ID: m.ID(), Name: "zombie-1", Kind: "npc", Current: "b", Previous: "a"}, m.Snapshot())
}
