package prefabs

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/component"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownStateType = errors.New("prefabs: unknown state type")
	ErrUnknownLayer     = errors.New("prefabs: unknown layer")
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// DecodeComponentSpec re-decodes a loosely typed settings block into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// StatesGroupSpec is the authored blueprint of a machine.
type StatesGroupSpec struct {
	Name    string      `yaml:"name"`
	Initial string      `yaml:"initial"`
	States  []StateSpec `yaml:"states"`
}

type StateSpec struct {
	Key         string           `yaml:"key"`
	Type        string           `yaml:"type"`
	Enabled     *bool            `yaml:"enabled"`
	Settings    map[string]any   `yaml:"settings"`
	Transitions []TransitionSpec `yaml:"transitions"`
}

// IsEnabled defaults to true when the asset leaves enabled out.
func (s StateSpec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// TransitionSpec is an extra transition authored in the asset. When is a
// condition compiled by package script.
type TransitionSpec struct {
	To   string `yaml:"to"`
	When string `yaml:"when"`
}

type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec2) V() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

// SceneSpec describes a playable level.
type SceneSpec struct {
	Name          string                            `yaml:"name"`
	TickRate      int                               `yaml:"tick_rate"`
	GameOverDelay int                               `yaml:"game_over_delay"`
	Input         string                            `yaml:"input"`
	Grid          GridSpec                          `yaml:"grid"`
	Walls         []WallSpec                        `yaml:"walls"`
	Animators     map[string]component.AnimatorSpec `yaml:"animators"`
	Player        PlayerSpec                        `yaml:"player"`
	NPCs          []NPCSpec                         `yaml:"npcs"`
	Waypoints     []WaypointGroupSpec               `yaml:"waypoints"`
}

type GridSpec struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	CellSize float64 `yaml:"cell"`
	Origin   Vec2    `yaml:"origin"`
}

type WallSpec struct {
	Name  string `yaml:"name"`
	Min   Vec2   `yaml:"min"`
	Max   Vec2   `yaml:"max"`
	Layer string `yaml:"layer"`
	// Walkable walls block sight but not navigation, e.g. a curtain.
	Walkable bool `yaml:"walkable"`
}

type StaminaSpec struct {
	Max   float64 `yaml:"max"`
	Regen float64 `yaml:"regen"`
}

type PlayerSpec struct {
	States    string      `yaml:"states"`
	Position  Vec2        `yaml:"position"`
	Yaw       float64     `yaml:"yaw"`
	Health    float64     `yaml:"health"`
	TurnSpeed float64     `yaml:"turn_speed"`
	Stamina   StaminaSpec `yaml:"stamina"`
	Animator  string      `yaml:"animator"`
}

type NPCSpec struct {
	Name     string  `yaml:"name"`
	States   string  `yaml:"states"`
	Position Vec2    `yaml:"position"`
	Facing   Vec2    `yaml:"facing"`
	Health   float64 `yaml:"health"`
	Speed    float64 `yaml:"speed"`
	Stopping float64 `yaml:"stopping"`
	Animator string  `yaml:"animator"`
}

type WaypointGroupSpec struct {
	Group  string         `yaml:"group"`
	Points []WaypointSpec `yaml:"points"`
}

type WaypointSpec struct {
	ID       string `yaml:"id"`
	Position Vec2   `yaml:"position"`
}

// Validate reports every authoring problem of the scene at once.
func (s SceneSpec) Validate() error {
	var errs []error
	if s.Grid.Width <= 0 || s.Grid.Height <= 0 || s.Grid.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("scene %q: grid must have a positive size", s.Name))
	}
	if s.TickRate < 0 || s.GameOverDelay < 0 {
		errs = append(errs, fmt.Errorf("scene %q: negative tick settings", s.Name))
	}
	for _, w := range s.Walls {
		if w.Min.X >= w.Max.X || w.Min.Y >= w.Max.Y {
			errs = append(errs, fmt.Errorf("scene %q: wall %q is empty", s.Name, w.Name))
		}
		switch w.Layer {
		case "", "wall", "prop", "door":
		default:
			errs = append(errs, fmt.Errorf("scene %q: wall %q: %w %q", s.Name, w.Name, ErrUnknownLayer, w.Layer))
		}
	}
	if s.Player.States == "" {
		errs = append(errs, fmt.Errorf("scene %q: player has no states group", s.Name))
	}
	names := make(map[string]bool, len(s.NPCs))
	for i, n := range s.NPCs {
		if n.Name == "" {
			errs = append(errs, fmt.Errorf("scene %q: npc #%d has no name", s.Name, i))
		} else if names[n.Name] {
			errs = append(errs, fmt.Errorf("scene %q: duplicate npc %q", s.Name, n.Name))
		}
		names[n.Name] = true
		if n.States == "" {
			errs = append(errs, fmt.Errorf("scene %q: npc %q has no states group", s.Name, n.Name))
		}
	}
	ids := make(map[string]bool)
	for _, g := range s.Waypoints {
		for _, p := range g.Points {
			if ids[p.ID] {
				errs = append(errs, fmt.Errorf("scene %q: duplicate waypoint %q", s.Name, p.ID))
			}
			ids[p.ID] = true
		}
	}
	for _, ref := range append([]string{s.Player.Animator}, npcAnimators(s.NPCs)...) {
		if ref == "" {
			continue
		}
		if _, ok := s.Animators[ref]; !ok {
			errs = append(errs, fmt.Errorf("scene %q: unknown animator %q", s.Name, ref))
		}
	}
	return errors.Join(errs...)
}

func npcAnimators(npcs []NPCSpec) []string {
	out := make([]string, 0, len(npcs))
	for _, n := range npcs {
		out = append(out, n.Animator)
	}
	return out
}
