package component

import "github.com/milk9111/nightshade/input"

// Input feeds a player entity. A taped input is advanced by the input system
// every tick; a live one is written by the viewer and left alone.
type Input struct {
	Source *input.Scripted
	Live   bool
}

var InputComponent = NewComponent[Input]()
