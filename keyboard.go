package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/nightshade/input"
)

const stickDeadzone = 0.3

// keyState is the slice of ebiten's input polling the viewer needs.
type keyState struct {
	held        func(ebiten.Key) bool
	justPressed func(ebiten.Key) bool
}

var ebitenKeys = keyState{
	held:        ebiten.IsKeyPressed,
	justPressed: inpututil.IsKeyJustPressed,
}

// keyboardReader polls the keyboard (and the first gamepad, if any) once per
// tick and writes the result into a live input source the scene reads.
type keyboardReader struct {
	keys   keyState
	target *input.Scripted
}

func newKeyboardReader(target *input.Scripted) *keyboardReader {
	return &keyboardReader{keys: ebitenKeys, target: target}
}

func (k *keyboardReader) Update() {
	f := frameFromKeys(k.keys)
	if ids := ebiten.GamepadIDs(); len(ids) > 0 {
		applyGamepad(&f, ids[0])
	}
	k.target.Set(f)
}

func frameFromKeys(keys keyState) input.Frame {
	var f input.Frame

	// W walks forward, S back, A/D strafe
	if keys.held(ebiten.KeyW) {
		f.Move.Y++
	}
	if keys.held(ebiten.KeyS) {
		f.Move.Y--
	}
	if keys.held(ebiten.KeyA) {
		f.Move.X--
	}
	if keys.held(ebiten.KeyD) {
		f.Move.X++
	}
	if keys.held(ebiten.KeyLeft) {
		f.Look.X--
	}
	if keys.held(ebiten.KeyRight) {
		f.Look.X++
	}

	if keys.held(ebiten.KeyShiftLeft) || keys.held(ebiten.KeyShiftRight) {
		f.Held = append(f.Held, input.Run)
	}
	if keys.justPressed(ebiten.KeySpace) {
		f.Pressed = append(f.Pressed, input.Jump)
	}
	if keys.justPressed(ebiten.KeyC) || keys.justPressed(ebiten.KeyControlLeft) {
		f.Pressed = append(f.Pressed, input.Crouch)
	}
	if keys.justPressed(ebiten.KeyE) {
		f.Pressed = append(f.Pressed, input.Interact)
	}
	return f
}

func applyGamepad(f *input.Frame, id ebiten.GamepadID) {
	lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	if lx*lx+ly*ly > stickDeadzone*stickDeadzone {
		// stick up is negative
		f.Move = input.Axis{X: lx, Y: -ly}
	}
	if rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal); rx < -stickDeadzone || rx > stickDeadzone {
		f.Look.X = rx
	}
	if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontBottomLeft) {
		f.Held = append(f.Held, input.Run)
	}
	if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom) {
		f.Pressed = append(f.Pressed, input.Jump)
	}
	if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightRight) {
		f.Pressed = append(f.Pressed, input.Crouch)
	}
}
