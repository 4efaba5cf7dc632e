package component

import (
	"container/heap"
	"math"

	"github.com/jakecoffman/cp"
)

// Cell is a grid coordinate.
type Cell struct {
	X int
	Y int
}

// Grid is the walkable floor plan navigation searches on. World coordinates
// map to cells of CellSize starting at Origin.
type Grid struct {
	Width    int
	Height   int
	CellSize float64
	Origin   cp.Vector

	blocked []bool
}

func NewGrid(width, height int, cellSize float64, origin cp.Vector) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		Origin:   origin,
		blocked:  make([]bool, width*height),
	}
}

func (g *Grid) InBounds(c Cell) bool {
	return g != nil && c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

func (g *Grid) Blocked(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.blocked[c.Y*g.Width+c.X]
}

func (g *Grid) SetBlocked(c Cell, blocked bool) {
	if !g.InBounds(c) {
		return
	}
	g.blocked[c.Y*g.Width+c.X] = blocked
}

// BlockRect blocks every cell overlapping the world-space rectangle.
func (g *Grid) BlockRect(lo, hi cp.Vector) {
	from := g.CellAt(lo)
	to := g.CellAt(cp.Vector{X: hi.X - 1e-9, Y: hi.Y - 1e-9})
	for y := from.Y; y <= to.Y; y++ {
		for x := from.X; x <= to.X; x++ {
			g.SetBlocked(Cell{X: x, Y: y}, true)
		}
	}
}

// CellAt returns the cell containing p.
func (g *Grid) CellAt(p cp.Vector) Cell {
	local := p.Sub(g.Origin)
	return Cell{
		X: int(math.Floor(local.X / g.CellSize)),
		Y: int(math.Floor(local.Y / g.CellSize)),
	}
}

// Center returns the world position of the middle of c.
func (g *Grid) Center(c Cell) cp.Vector {
	return g.Origin.Add(cp.Vector{
		X: (float64(c.X) + 0.5) * g.CellSize,
		Y: (float64(c.Y) + 0.5) * g.CellSize,
	})
}

// FindPath finds a path from start to goal on a 4-way grid, both ends
// included. maxNodes limits the number of processed nodes to avoid runaway
// searches; nil means no path.
func (g *Grid) FindPath(start, goal Cell, maxNodes int) []Cell {
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		return nil
	}
	if !g.InBounds(start) || g.Blocked(goal) {
		return nil
	}
	if start == goal {
		return []Cell{start}
	}
	if maxNodes <= 0 {
		maxNodes = g.Width * g.Height
	}

	idx := func(c Cell) int { return c.Y*g.Width + c.X }

	open := &cellQueue{}
	heap.Push(open, &queued{cell: start, f: heuristic(start, goal)})

	cameFrom := make(map[int]int, 128)
	gScore := map[int]float64{idx(start): 0}
	closed := make(map[int]bool, 128)

	neighbors := [4]Cell{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	for processed := 0; open.Len() > 0 && processed < maxNodes; {
		current := heap.Pop(open).(*queued).cell
		ci := idx(current)
		if closed[ci] {
			continue
		}
		closed[ci] = true
		processed++

		if current == goal {
			return reconstructPath(cameFrom, ci, idx(start), g.Width)
		}

		for _, d := range neighbors {
			next := Cell{X: current.X + d.X, Y: current.Y + d.Y}
			if g.Blocked(next) {
				continue
			}
			ni := idx(next)
			tentative := gScore[ci] + 1
			if prev, seen := gScore[ni]; seen && tentative >= prev {
				continue
			}
			cameFrom[ni] = ci
			gScore[ni] = tentative
			heap.Push(open, &queued{cell: next, f: tentative + heuristic(next, goal)})
		}
	}

	return nil
}

func reconstructPath(cameFrom map[int]int, currentIdx, startIdx, width int) []Cell {
	path := make([]Cell, 0, 32)
	for {
		path = append(path, Cell{X: currentIdx % width, Y: currentIdx / width})
		if currentIdx == startIdx {
			break
		}
		prev, ok := cameFrom[currentIdx]
		if !ok {
			return nil
		}
		currentIdx = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func heuristic(a, b Cell) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}

type queued struct {
	cell Cell
	f    float64
}

type cellQueue []*queued

func (q cellQueue) Len() int           { return len(q) }
func (q cellQueue) Less(i, j int) bool { return q[i].f < q[j].f }
func (q cellQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *cellQueue) Push(x any)        { *q = append(*q, x.(*queued)) }
func (q *cellQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
