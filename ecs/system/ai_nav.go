package system

import (
	"github.com/milk9111/nightshade/ecs"
	"github.com/milk9111/nightshade/ecs/component"
	"github.com/milk9111/nightshade/nav"
)

// NavigationSystem resolves requested paths and moves agents along them.
type NavigationSystem struct {
	dt float64
}

func NewNavigationSystem(dt float64) *NavigationSystem {
	if dt <= 0 {
		dt = 1.0 / 60
	}
	return &NavigationSystem{dt: dt}
}

func (s *NavigationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.NavAgentComponent.Kind(), func(e ecs.Entity, a *nav.GridAgent) {
		a.Step(s.dt)
	})
}
