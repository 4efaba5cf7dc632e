package player

import (
	"math"
	"testing"

	"github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/input"
	"github.com/milk9111/nightshade/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func off() *bool {
	b := false
	return &b
}

// locomotion registers every player state but only Idle, Walk and Run are
// reachable.
func locomotion() prefabs.StatesGroupSpec {
	return prefabs.StatesGroupSpec{
		Name:    "locomotion",
		Initial: "idle",
		States: []prefabs.StateSpec{
			{Key: "idle", Type: "Idle"},
			{Key: "walk", Type: "Walk", Settings: map[string]any{"speed": 2.0}},
			{Key: "run", Type: "Run", Settings: map[string]any{"speed": 4.0, "stamina_drain": 60.0}},
			{Key: "crouch", Type: "Crouch", Enabled: off()},
			{Key: "jump", Type: "Jump", Enabled: off()},
			{Key: "death", Type: "Death", Enabled: off()},
		},
	}
}

func newMachine(t *testing.T, spec prefabs.StatesGroupSpec) (*Machine, *Controller, *input.Scripted) {
	t.Helper()
	in := input.NewScripted(input.Tape{})
	c := NewController(in, component.NewHealth(100), nil)
	group, err := Group(spec)
	require.NoError(t, err)
	m, err := New("player", c, group)
	require.NoError(t, err)
	return m, c, in
}

func keys(t *testing.T, m *Machine) (cur, prev fsm.Key) {
	t.Helper()
	if e, ok := m.Current(); ok {
		cur = e.Key
	}
	if e, ok := m.Previous(); ok {
		prev = e.Key
	}
	return cur, prev
}

func TestIdleWalkRun(t *testing.T) {
	m, c, in := newMachine(t, locomotion())

	in.Set(input.Frame{})
	m.Update()
	cur, _ := keys(t, m)
	require.Equal(t, fsm.Key("idle"), cur)

	in.Set(input.Frame{Move: input.Axis{Y: 0.5}})
	m.Update()
	cur, prev := keys(t, m)
	assert.Equal(t, fsm.Key("walk"), cur)
	assert.Equal(t, fsm.Key("idle"), prev)

	in.Set(input.Frame{Move: input.Axis{Y: 0.5}, Held: []input.Control{input.Run}})
	c.Stamina.Current = 50
	m.Update() // enters walk
	m.Update()
	cur, prev = keys(t, m)
	assert.Equal(t, fsm.Key("run"), cur)
	assert.Equal(t, fsm.Key("walk"), prev)

	in.Set(input.Frame{})
	m.Update() // enters run
	m.Update()
	cur, prev = keys(t, m)
	assert.Equal(t, fsm.Key("idle"), cur, "stopping while running goes straight to idle")
	assert.Equal(t, fsm.Key("run"), prev)
}

func TestRunFallsBackToWalkWhenExhausted(t *testing.T) {
	m, c, in := newMachine(t, locomotion())
	in.Set(input.Frame{Move: input.Axis{Y: 1}, Held: []input.Control{input.Run}})
	c.Stamina = Stamina{Max: 100, Current: 3, Regen: 0}

	var seen []fsm.Key
	for i := 0; i < 12; i++ {
		m.Update()
		cur, _ := keys(t, m)
		seen = append(seen, cur)
	}
	assert.Contains(t, seen, fsm.Key("run"))
	assert.Equal(t, fsm.Key("walk"), seen[len(seen)-1])
	assert.Zero(t, c.Stamina.Current)
}

func TestStaminaRegeneratesOutsideRun(t *testing.T) {
	m, c, in := newMachine(t, locomotion())
	c.Stamina = Stamina{Max: 10, Current: 0, Regen: 60}
	in.Set(input.Frame{})
	for i := 0; i < 30; i++ {
		m.Update()
	}
	assert.Equal(t, 10.0, c.Stamina.Current)
}

func TestMovementFollowsYaw(t *testing.T) {
	m, c, in := newMachine(t, locomotion())
	in.Set(input.Frame{Move: input.Axis{Y: 1}})
	m.Update()
	m.Update()
	m.Update()
	assert.InDelta(t, 2, c.Body.Velocity.X, 1e-9)
	assert.InDelta(t, 0, c.Body.Velocity.Y, 1e-9)
	assert.Greater(t, c.Body.Position.X, 0.0)
}

func TestStrafeIsRightHanded(t *testing.T) {
	tests := []struct {
		name   string
		yaw    float64
		wantVX float64
		wantVY float64
	}{
		{name: "facing +x", yaw: 0, wantVX: 0, wantVY: -2},
		{name: "facing +y", yaw: math.Pi / 2, wantVX: 2, wantVY: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, c, in := newMachine(t, locomotion())
			c.Body.Yaw = tc.yaw
			in.Set(input.Frame{Move: input.Axis{X: 1}})
			m.Update()
			m.Update()
			m.Update()
			assert.InDelta(t, tc.wantVX, c.Body.Velocity.X, 1e-9)
			assert.InDelta(t, tc.wantVY, c.Body.Velocity.Y, 1e-9)
		})
	}
}

func fullGroup() prefabs.StatesGroupSpec {
	return prefabs.StatesGroupSpec{
		Name:    "player",
		Initial: "idle",
		States: []prefabs.StateSpec{
			{Key: "idle", Type: "Idle"},
			{Key: "walk", Type: "Walk"},
			{Key: "run", Type: "Run"},
			{Key: "crouch", Type: "Crouch", Transitions: []prefabs.TransitionSpec{
				{To: "Walk", When: "move > 0 && run_held"},
			}},
			{Key: "jump", Type: "Jump"},
			{Key: "death", Type: "Death"},
		},
	}
}

func TestCrouchToggle(t *testing.T) {
	m, c, in := newMachine(t, fullGroup())
	in.Set(input.Frame{})
	m.Update()

	in.Set(input.Frame{Pressed: []input.Control{input.Crouch}})
	m.Update()
	cur, _ := keys(t, m)
	require.Equal(t, fsm.Key("crouch"), cur)

	in.Set(input.Frame{})
	m.Update()
	assert.True(t, c.Animator.Bool("Crouch"))

	in.Set(input.Frame{Pressed: []input.Control{input.Crouch}})
	m.Update()
	cur, _ = keys(t, m)
	assert.Equal(t, fsm.Key("idle"), cur)
	assert.False(t, c.Animator.Bool("Crouch"), "exit clears the crouch flag")
}

func TestCrouchSprintOutFromAsset(t *testing.T) {
	m, _, in := newMachine(t, fullGroup())
	in.Set(input.Frame{})
	m.Update()
	in.Set(input.Frame{Pressed: []input.Control{input.Crouch}})
	m.Update()
	in.Set(input.Frame{})
	m.Update()

	in.Set(input.Frame{Move: input.Axis{Y: 1}, Held: []input.Control{input.Run}})
	m.Update()
	cur, prev := keys(t, m)
	assert.Equal(t, fsm.Key("walk"), cur)
	assert.Equal(t, fsm.Key("crouch"), prev)
}

func TestJumpLands(t *testing.T) {
	m, c, in := newMachine(t, fullGroup())
	in.Set(input.Frame{})
	m.Update()

	in.Set(input.Frame{Pressed: []input.Control{input.Jump}})
	m.Update()
	cur, _ := keys(t, m)
	require.Equal(t, fsm.Key("jump"), cur)

	in.Set(input.Frame{})
	m.Update()
	assert.Greater(t, c.Body.Height, 0.0)

	for i := 0; i < 120 && m.IsCurrent(Jump); i++ {
		m.Update()
	}
	cur, prev := keys(t, m)
	assert.Equal(t, fsm.Key("idle"), cur)
	assert.Equal(t, fsm.Key("jump"), prev)
	assert.True(t, c.Body.Grounded())
}

func TestDeathFromAnyStateAndRevive(t *testing.T) {
	m, c, in := newMachine(t, fullGroup())
	in.Set(input.Frame{Move: input.Axis{Y: 1}})
	m.Update()
	m.Update()
	require.True(t, m.IsCurrent(Walk))

	c.Health.Kill()
	m.Update()
	m.Update()
	require.True(t, m.IsCurrent(Death))
	m.Update()
	assert.Zero(t, c.Body.Velocity.Length())
	assert.True(t, c.Animator.Float("Speed") == 0)

	m.Update()
	assert.True(t, m.IsCurrent(Death), "the dead stay dead")

	c.Health.Revive()
	m.Update()
	assert.True(t, m.IsCurrent(Idle))
}

func TestUnknownStateType(t *testing.T) {
	spec := prefabs.StatesGroupSpec{States: []prefabs.StateSpec{{Key: "fly", Type: "Fly"}}}
	_, err := Group(spec)
	assert.ErrorIs(t, err, prefabs.ErrUnknownStateType)
}

func TestLoadEmbeddedAsset(t *testing.T) {
	c := NewController(input.NewScripted(input.Tape{}), nil, nil)
	m, err := Load("player", "player_states.yaml", c)
	require.NoError(t, err)
	assert.Equal(t, "player", m.Kind())
	assert.Equal(t, 6, m.Registry().Len())
}
