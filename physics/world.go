// Package physics answers the spatial queries AI perception needs.
package physics

import (
	"github.com/jakecoffman/cp"
)

// Layer is a collision category bit. Queries pass a mask of the layers that
// block them.
type Layer uint

const (
	LayerWall Layer = 1 << iota
	LayerProp
	LayerDoor
	LayerPlayer
	LayerNPC

	// LayerSight is what blocks line of sight by default.
	LayerSight = LayerWall | LayerDoor
)

// Hit is the first shape a segment query touched.
type Hit struct {
	Point  cp.Vector
	Normal cp.Vector
	Alpha  float64
	Layer  Layer
	Name   string
}

// World wraps a chipmunk space holding static level geometry.
type World struct {
	space  *cp.Space
	shapes []*cp.Shape
	names  map[*cp.Shape]string
	layers map[*cp.Shape]Layer
}

func NewWorld() *World {
	return &World{
		space:  cp.NewSpace(),
		names:  make(map[*cp.Shape]string),
		layers: make(map[*cp.Shape]Layer),
	}
}

// AddBox adds a static axis-aligned box spanning lo to hi.
func (w *World) AddBox(name string, lo, hi cp.Vector, layer Layer) *cp.Shape {
	shape := cp.NewBox2(w.space.StaticBody, cp.BB{L: lo.X, B: lo.Y, R: hi.X, T: hi.Y}, 0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(layer), cp.ALL_CATEGORIES))
	w.space.AddShape(shape)

	w.shapes = append(w.shapes, shape)
	w.names[shape] = name
	w.layers[shape] = layer
	return shape
}

// SetLayer moves an existing shape to another layer, e.g. an opened door no
// longer blocking sight.
func (w *World) SetLayer(shape *cp.Shape, layer Layer) {
	if _, ok := w.layers[shape]; !ok {
		return
	}
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(layer), cp.ALL_CATEGORIES))
	w.layers[shape] = layer
}

// Len returns the number of shapes in the world.
func (w *World) Len() int {
	return len(w.shapes)
}

// Raycast returns the first shape on any layer of mask between from and to.
func (w *World) Raycast(from, to cp.Vector, mask Layer) (Hit, bool) {
	if w == nil || mask == 0 {
		return Hit{}, false
	}
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(mask))
	info := w.space.SegmentQueryFirst(from, to, 0, filter)
	if info.Shape == nil {
		return Hit{}, false
	}
	return Hit{
		Point:  info.Point,
		Normal: info.Normal,
		Alpha:  info.Alpha,
		Layer:  w.layers[info.Shape],
		Name:   w.names[info.Shape],
	}, true
}

// LineOfSight reports whether nothing on mask lies between from and to.
func (w *World) LineOfSight(from, to cp.Vector, mask Layer) bool {
	_, hit := w.Raycast(from, to, mask)
	return !hit
}

// Bounds returns the box of every shape, for debug drawing.
func (w *World) Bounds() []Box {
	out := make([]Box, 0, len(w.shapes))
	for _, s := range w.shapes {
		bb := s.BB()
		out = append(out, Box{
			Name:  w.names[s],
			Layer: w.layers[s],
			Min:   cp.Vector{X: bb.L, Y: bb.B},
			Max:   cp.Vector{X: bb.R, Y: bb.T},
		})
	}
	return out
}

type Box struct {
	Name  string
	Layer Layer
	Min   cp.Vector
	Max   cp.Vector
}
