package system

import (
	"github.com/milk9111/nightshade/ai"
	"github.com/milk9111/nightshade/ecs"
	"github.com/milk9111/nightshade/ecs/component"
)

// AISystem ticks every NPC machine after the player has moved, so the
// player-death edge is seen in the same tick it happens.
type AISystem struct{}

func NewAISystem() *AISystem {
	return &AISystem{}
}

func (s *AISystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.AIComponent.Kind(), func(e ecs.Entity, m *ai.Machine) {
		m.Update()
	})
}
