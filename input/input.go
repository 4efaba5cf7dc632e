// Package input exposes the control state the player states poll each tick.
package input

import "github.com/jakecoffman/cp"

// Control names a logical control, independent of the device behind it.
type Control string

const (
	Move     Control = "move"
	Look     Control = "look"
	Run      Control = "run"
	Crouch   Control = "crouch"
	Jump     Control = "jump"
	Interact Control = "interact"
)

// Reader is polled by states. Nothing is pushed into a machine from input.
type Reader interface {
	// ReadButton reports whether the control is held this tick.
	ReadButton(c Control) bool
	// ReadButtonOnce reports whether the control went down this tick.
	ReadButtonOnce(c Control) bool
	// ReadAxis returns a two-axis control, each component in [-1, 1].
	ReadAxis(c Control) cp.Vector
}

// Frame is one tick of control state as authored in an input tape.
type Frame struct {
	Move    Axis      `yaml:"move"`
	Look    Axis      `yaml:"look"`
	Held    []Control `yaml:"held"`
	Pressed []Control `yaml:"pressed"`
	// Repeat plays the frame this many times; zero and one both mean once.
	Repeat int `yaml:"repeat"`
}

type Axis struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (a Axis) Vector() cp.Vector {
	v := cp.Vector{X: clampUnit(a.X), Y: clampUnit(a.Y)}
	if v.Length() > 1 {
		return v.Normalize()
	}
	return v
}

// Tape is a recorded or hand-written sequence of frames.
type Tape struct {
	Name   string  `yaml:"name"`
	Loop   bool    `yaml:"loop"`
	Frames []Frame `yaml:"frames"`
}

// Len returns the number of ticks the tape covers once repeats are expanded.
func (t Tape) Len() int {
	n := 0
	for _, f := range t.Frames {
		n += max(f.Repeat, 1)
	}
	return n
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
