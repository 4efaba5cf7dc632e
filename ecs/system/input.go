package system

import (
	"github.com/milk9111/nightshade/ecs"
	"github.com/milk9111/nightshade/ecs/component"
)

// InputSystem plays taped input one frame per tick. Live sources are set by
// the viewer before the tick and skipped here.
type InputSystem struct{}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

func (s *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, in *component.Input) {
		if in.Source == nil || in.Live {
			return
		}
		in.Source.Advance()
	})
}
