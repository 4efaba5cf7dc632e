package main

import (
	"errors"
	"fmt"
	"path"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/ai"
	"github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/input"
	"github.com/milk9111/nightshade/nav"
	"github.com/milk9111/nightshade/player"
	"github.com/milk9111/nightshade/prefabs"
	"github.com/milk9111/nightshade/scene"
	"github.com/spf13/cobra"
)

var errNotAsset = errors.New("not a scene, states group or input tape")

func (a *App) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [asset...]",
		Short: "Build every asset to surface setup errors",
		Long: `Validate loads assets and builds what they describe without ticking:

  - states groups: every state is instantiated and every transition target,
    including asset-authored conditions, is resolved
  - scenes: the whole world is built, every machine included
  - input tapes: frames are decoded

With no arguments every embedded asset is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				var err error
				if names, err = embeddedAssets(); err != nil {
					return err
				}
			}

			var errs []error
			for _, name := range names {
				kind, err := validateAsset(name)
				if err != nil {
					a.printf("✗ %s: %v\n", name, err)
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					continue
				}
				a.printf("✓ %s (%s)\n", name, kind)
			}
			if len(errs) > 0 {
				return fmt.Errorf("validation failed: %w", errors.Join(errs...))
			}
			return nil
		},
	}
}

func embeddedAssets() ([]string, error) {
	var out []string
	for _, dir := range []string{".", "tapes"} {
		names, err := prefabs.Names(dir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		out = append(out, names...)
	}
	return out, nil
}

// assetProbe decodes just enough of any asset to tell what it is.
type assetProbe struct {
	Grid   *prefabs.GridSpec `yaml:"grid"`
	States []yamlNode        `yaml:"states"`
	Frames []yamlNode        `yaml:"frames"`
}

type yamlNode = map[string]any

func validateAsset(name string) (string, error) {
	probe, err := prefabs.LoadSpec[assetProbe](name)
	if err != nil {
		return "", err
	}

	switch {
	case probe.Grid != nil:
		sc, err := scene.Load(name)
		if err != nil {
			return "scene", err
		}
		return "scene", sc.Close()
	case len(probe.States) > 0:
		spec, err := prefabs.LoadSpec[prefabs.StatesGroupSpec](name)
		if err != nil {
			return "states", err
		}
		return validateGroup(spec)
	case len(probe.Frames) > 0 || path.Dir(name) == "tapes":
		tape, err := prefabs.LoadSpec[input.Tape](name)
		if err != nil {
			return "tape", err
		}
		if tape.Len() == 0 {
			return "tape", errors.New("tape has no frames")
		}
		return "tape", nil
	}
	return "", errNotAsset
}

// validateGroup builds a throwaway machine from spec, first as a player
// group and, when it names types the player does not know, as an NPC group.
func validateGroup(spec prefabs.StatesGroupSpec) (string, error) {
	if group, err := player.Group(spec); err == nil {
		c := player.NewController(input.NewScripted(input.Tape{}), component.NewHealth(100), component.NewAnimator(component.AnimatorSpec{}))
		m, err := player.New(spec.Name, c, group)
		if err != nil {
			return "player states", err
		}
		return "player states", m.Destroy()
	} else if !errors.Is(err, prefabs.ErrUnknownStateType) {
		return "player states", err
	}

	group, err := ai.Group(spec)
	if err != nil {
		return "npc states", err
	}
	grid := component.NewGrid(1, 1, 1, cp.Vector{})
	npc := ai.NewNPC(spec.Name, nav.NewGridAgent(grid, cp.Vector{}, 1, 0.1), nil, nil)
	m, err := ai.New(spec.Name, npc, group)
	if err != nil {
		return "npc states", err
	}
	return "npc states", m.Destroy()
}
