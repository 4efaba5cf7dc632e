package ai

import (
	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/internal/metrics"
	"github.com/milk9111/nightshade/prefabs"
)

// PlayerDeathListener is implemented by states that react to the player
// dying while they are active.
type PlayerDeathListener interface {
	OnPlayerDeath()
}

// Machine is the NPC variant of fsm.Machine.
type Machine struct {
	*fsm.Machine[*NPC]

	targetDead bool
}

func New(name string, npc *NPC, group fsm.Group[*NPC], opts ...fsm.Option) (*Machine, error) {
	opts = append([]fsm.Option{fsm.WithKind("npc")}, opts...)
	m, err := fsm.New(name, npc, group, opts...)
	if err != nil {
		return nil, err
	}
	return &Machine{Machine: m}, nil
}

// Load builds an NPC machine from a states-group asset.
func Load(name, asset string, npc *NPC, opts ...fsm.Option) (*Machine, error) {
	group, err := prefabs.LoadGroup(asset, Factories, (*NPC).Vars)
	if err != nil {
		return nil, err
	}
	return New(name, npc, group, opts...)
}

// Group builds a group from a parsed states-group asset.
func Group(spec prefabs.StatesGroupSpec) (fsm.Group[*NPC], error) {
	return prefabs.BuildGroup(spec, Factories, (*NPC).Vars)
}

// Update samples the player-death edge, then ticks the machine. The edge is
// delivered to the active state once per death, only after that state has
// been entered, and re-arms when the target is alive again.
func (m *Machine) Update() {
	if m == nil || m.Destroyed() {
		return
	}
	npc := m.Owner()

	dead := npc.Target != nil && npc.Target.IsDead()
	switch {
	case dead && !m.targetDead && m.Entered():
		m.targetDead = true
		m.dispatchPlayerDeath()
	case !dead:
		m.targetDead = false
	}

	m.Machine.Update()
	npc.faceMovement()
}

func (m *Machine) dispatchPlayerDeath() {
	cur, ok := m.Current()
	if !ok {
		return
	}
	listener, ok := cur.State.(PlayerDeathListener)
	if !ok {
		return
	}
	m.Logger().Debug().Str("state", string(cur.Key)).Msg("player death edge")
	metrics.PlayerDeathEdge()
	listener.OnPlayerDeath()
}

// Destroy releases the NPC's waypoints and tears the machine down.
func (m *Machine) Destroy() error {
	if m == nil || m.Destroyed() {
		return nil
	}
	if npc := m.Owner(); npc.Waypoints != nil {
		npc.Waypoints.ReleaseAll(npc.ID)
	}
	return m.Machine.Destroy()
}
