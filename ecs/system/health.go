package system

import (
	engine "github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/ecs"
	"github.com/milk9111/nightshade/ecs/component"
)

// HealthSystem turns changes of the dead flag into world events. It runs
// last so damage dealt anywhere in the tick is reported in that tick.
type HealthSystem struct {
	dead map[ecs.Entity]bool
}

func NewHealthSystem() *HealthSystem {
	return &HealthSystem{dead: make(map[ecs.Entity]bool)}
}

func (s *HealthSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for e := range s.dead {
		if !ecs.IsAlive(w, e) {
			delete(s.dead, e)
		}
	}
	ecs.ForEach(w, component.HealthComponent.Kind(), func(e ecs.Entity, h *engine.Health) {
		dead := h.IsDead()
		was := s.dead[e]
		s.dead[e] = dead
		switch {
		case dead && !was:
			w.Events().Push(ecs.Event{Kind: ecs.EventDied, Entity: e})
		case !dead && was:
			w.Events().Push(ecs.Event{Kind: ecs.EventRevived, Entity: e})
		}
	})
}
