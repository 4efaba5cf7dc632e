package scene

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/ecs"
	ecscomp "github.com/milk9111/nightshade/ecs/component"
	"github.com/milk9111/nightshade/fsm"
)

// EntitySnapshot is the inspector view of one machine-driven entity.
type EntitySnapshot struct {
	Name    string       `json:"name"`
	Kind    string       `json:"kind"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Health  float64      `json:"health"`
	Dead    bool         `json:"dead"`
	Machine fsm.Snapshot `json:"machine"`
}

// Snapshot is published after every tick. Readers on other goroutines get
// a copy and never touch the machines.
type Snapshot struct {
	Scene     string           `json:"scene"`
	Tick      uint64           `json:"tick"`
	Session   string           `json:"session"`
	Countdown int              `json:"countdown,omitempty"`
	Entities  []EntitySnapshot `json:"entities"`
}

// Find returns the entity snapshot called name.
func (s Snapshot) Find(name string) (EntitySnapshot, bool) {
	i := slices.IndexFunc(s.Entities, func(e EntitySnapshot) bool { return e.Name == name })
	if i < 0 {
		return EntitySnapshot{}, false
	}
	return s.Entities[i], true
}

func (s *Scene) publish() {
	snap := Snapshot{
		Scene:     s.spec.Name,
		Tick:      s.tick,
		Session:   string(s.session.State()),
		Countdown: s.session.Countdown(),
		Entities:  make([]EntitySnapshot, 0, len(s.machines)),
	}
	for _, ref := range s.machines {
		es := EntitySnapshot{Name: ref.name, Kind: ref.kind, Machine: ref.m.Snapshot()}
		if h, ok := ecs.Get(s.world, ref.entity, ecscomp.HealthComponent.Kind()); ok {
			es.Health = h.Current
			es.Dead = h.IsDead()
		}
		pos := s.position(ref)
		es.X, es.Y = pos.X, pos.Y
		snap.Entities = append(snap.Entities, es)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *Scene) position(ref machineRef) cp.Vector {
	if ref.entity == s.playerEntity {
		return s.controller.Body.Position
	}
	if a, ok := ecs.Get(s.world, ref.entity, ecscomp.NavAgentComponent.Kind()); ok {
		return a.Position()
	}
	return cp.Vector{}
}

// Snapshot returns the state published after the last tick. Safe for
// concurrent use.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Entities = slices.Clone(s.snap.Entities)
	return out
}
