package system

import (
	engine "github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/ecs"
	"github.com/milk9111/nightshade/ecs/component"
)

// AnimationSystem advances animators. Frame events fire from inside Step and
// reach the owning machine's bus synchronously.
type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (s *AnimationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.AnimatorComponent.Kind(), func(e ecs.Entity, a *engine.Animator) {
		a.Step()
	})
}
