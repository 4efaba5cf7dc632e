package component

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFindPath(t *testing.T) {
	// .....
	// .###.
	// .....
	g := NewGrid(5, 3, 1, cp.Vector{})
	for x := 1; x <= 3; x++ {
		g.SetBlocked(Cell{X: x, Y: 1}, true)
	}

	tests := []struct {
		name      string
		from, to  Cell
		wantLen   int
		wantFound bool
	}{
		{name: "same_cell", from: Cell{0, 0}, to: Cell{0, 0}, wantLen: 1, wantFound: true},
		{name: "straight", from: Cell{0, 0}, to: Cell{4, 0}, wantLen: 5, wantFound: true},
		{name: "around_wall", from: Cell{2, 0}, to: Cell{2, 2}, wantLen: 7, wantFound: true},
		{name: "blocked_goal", from: Cell{0, 0}, to: Cell{2, 1}},
		{name: "out_of_bounds", from: Cell{0, 0}, to: Cell{9, 9}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := g.FindPath(tc.from, tc.to, 0)
			if !tc.wantFound {
				assert.Nil(t, path)
				return
			}
			require.Len(t, path, tc.wantLen)
			assert.Equal(t, tc.from, path[0])
			assert.Equal(t, tc.to, path[len(path)-1])
			for i := 1; i < len(path); i++ {
				d := heuristic(path[i-1], path[i])
				assert.Equal(t, 1.0, d, "step %d is not 4-way adjacent", i)
				assert.False(t, g.Blocked(path[i]))
			}
		})
	}
}

func TestGridWorldMapping(t *testing.T) {
	g := NewGrid(10, 10, 2, cp.Vector{X: -10, Y: -10})
	assert.Equal(t, Cell{X: 5, Y: 5}, g.CellAt(cp.Vector{X: 0.5, Y: 1.9}))
	assert.Equal(t, cp.Vector{X: 1, Y: 1}, g.Center(Cell{X: 5, Y: 5}))

	g.BlockRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 4, Y: 2})
	assert.True(t, g.Blocked(Cell{X: 5, Y: 5}))
	assert.True(t, g.Blocked(Cell{X: 6, Y: 5}))
	assert.False(t, g.Blocked(Cell{X: 7, Y: 5}))
	assert.False(t, g.Blocked(Cell{X: 5, Y: 6}))
}
