package input

import (
	"slices"

	"github.com/jakecoffman/cp"
)

// Scripted replays a Tape one frame per Advance. Once the tape runs out every
// control reads as released unless the tape loops.
type Scripted struct {
	tape   Tape
	frames []Frame
	cursor int

	axes    map[Control]cp.Vector
	held    map[Control]bool
	pressed map[Control]bool
}

func NewScripted(tape Tape) *Scripted {
	s := &Scripted{
		tape:    tape,
		axes:    make(map[Control]cp.Vector),
		held:    make(map[Control]bool),
		pressed: make(map[Control]bool),
	}
	for _, f := range tape.Frames {
		for i := 0; i < max(f.Repeat, 1); i++ {
			s.frames = append(s.frames, f)
		}
	}
	return s
}

// Advance loads the next frame and reports whether one was available.
func (s *Scripted) Advance() bool {
	if s == nil {
		return false
	}
	if s.cursor >= len(s.frames) {
		if !s.tape.Loop || len(s.frames) == 0 {
			s.Set(Frame{})
			return false
		}
		s.cursor = 0
	}
	s.Set(s.frames[s.cursor])
	s.cursor++
	return true
}

// Set replaces the current control state with f.
func (s *Scripted) Set(f Frame) {
	clear(s.axes)
	clear(s.held)
	clear(s.pressed)

	s.axes[Move] = f.Move.Vector()
	s.axes[Look] = f.Look.Vector()
	for _, c := range f.Held {
		s.held[c] = true
	}
	for _, c := range f.Pressed {
		s.held[c] = true
		s.pressed[c] = true
	}
}

// Done reports whether a non-looping tape has been fully played.
func (s *Scripted) Done() bool {
	return s == nil || (!s.tape.Loop && s.cursor >= len(s.frames))
}

// Remaining returns the number of frames left before the tape ends.
func (s *Scripted) Remaining() int {
	if s == nil {
		return 0
	}
	return len(s.frames) - s.cursor
}

func (s *Scripted) ReadButton(c Control) bool {
	return s != nil && s.held[c]
}

func (s *Scripted) ReadButtonOnce(c Control) bool {
	return s != nil && s.pressed[c]
}

func (s *Scripted) ReadAxis(c Control) cp.Vector {
	if s == nil {
		return cp.Vector{}
	}
	return s.axes[c]
}

// Pressed lists the controls that went down this tick, sorted.
func (s *Scripted) Pressed() []Control {
	out := make([]Control, 0, len(s.pressed))
	for c := range s.pressed {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
