package nav

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaypointsMutualExclusion(t *testing.T) {
	ws := NewWaypoints()
	near := ws.Add("hall", "hall-1", cp.Vector{X: 1})
	ws.Add("hall", "hall-2", cp.Vector{X: 5})

	// both agents stand at the same spot and query in the same tick
	from := cp.Vector{}
	first, ok := ws.ReserveNearest("zombie-a", from, nil)
	require.True(t, ok)
	second, ok := ws.ReserveNearest("zombie-b", from, nil)
	require.True(t, ok)

	assert.Same(t, near, first)
	assert.NotSame(t, first, second)
	assert.Empty(t, ws.FreeWaypoints("hall"))

	_, ok = ws.ReserveNearest("zombie-c", from, nil)
	assert.False(t, ok)
}

func TestWaypointsAcrossGroups(t *testing.T) {
	ws := NewWaypoints()
	ws.Add("hall", "hall-1", cp.Vector{X: 10})
	cellar := ws.Add("cellar", "cellar-1", cp.Vector{X: 2})

	wp, ok := ws.ReserveNearest("zombie-a", cp.Vector{}, nil)
	require.True(t, ok)
	assert.Same(t, cellar, wp)
	assert.Equal(t, 1, ws.Reserved("cellar"))
	assert.Equal(t, 0, ws.Reserved("hall"))
}

func TestWaypointsExceptAndRelease(t *testing.T) {
	ws := NewWaypoints()
	a := ws.Add("hall", "a", cp.Vector{X: 1})
	b := ws.Add("hall", "b", cp.Vector{X: 8})

	var changes []int
	ws.OnChange = func(group string, reserved int) {
		assert.Equal(t, "hall", group)
		changes = append(changes, reserved)
	}

	got, ok := ws.ReserveNearest("z", cp.Vector{}, a)
	require.True(t, ok)
	assert.Same(t, b, got, "the excluded waypoint is skipped while others are free")

	assert.False(t, ws.Reserve("other", b))
	ws.Release("other", b)
	assert.Equal(t, "z", b.ReservedBy, "only the holder can release")

	ws.Release("z", b)
	assert.True(t, b.Free())

	require.True(t, ws.Reserve("y", b))
	got, ok = ws.ReserveNearest("z", cp.Vector{}, a)
	require.True(t, ok)
	assert.Same(t, a, got, "the excluded waypoint is used when nothing else is free")

	ws.ReleaseAll("z")
	ws.ReleaseAll("y")
	assert.Len(t, ws.FreeWaypoints("hall"), 2)
	assert.Equal(t, []int{1, 0, 1, 2, 1, 0}, changes)
	assert.Nil(t, ws.FreeWaypoints("attic"))
}
