package prefabs

import (
	"fmt"

	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/script"
)

// BuildGroup turns a states-group asset into an fsm.Group using factories to
// instantiate each state type. vars exposes the owner to asset-authored
// transition conditions; it may be nil when the asset declares none.
func BuildGroup[O any](spec StatesGroupSpec, factories map[fsm.TypeID]fsm.Factory[O], vars func(O) script.Vars) (fsm.Group[O], error) {
	group := fsm.Group[O]{Name: spec.Name, Initial: fsm.Key(spec.Initial)}
	if len(spec.States) == 0 {
		return group, fmt.Errorf("prefabs: states group %q: %w", spec.Name, fsm.ErrEmptyGroup)
	}

	for _, st := range spec.States {
		typeID := fsm.TypeID(st.Type)
		factory, ok := factories[typeID]
		if !ok {
			return group, fmt.Errorf("prefabs: states group %q: state %q: %w %q", spec.Name, st.Key, ErrUnknownStateType, st.Type)
		}
		key := st.Key
		if key == "" {
			key = st.Type
		}

		def := fsm.Definition[O]{
			Key:      fsm.Key(key),
			Type:     typeID,
			Enabled:  st.IsEnabled(),
			Settings: st.Settings,
			New:      factory,
		}
		if len(st.Transitions) > 0 {
			if vars == nil {
				return group, fmt.Errorf("prefabs: states group %q: state %q has transitions but owner exposes no variables", spec.Name, key)
			}
			def.Extra = scriptedTransitions(st.Transitions, vars)
		}
		group.States = append(group.States, def)
	}
	return group, nil
}

// LoadGroup loads and builds a states-group asset.
func LoadGroup[O any](filename string, factories map[fsm.TypeID]fsm.Factory[O], vars func(O) script.Vars) (fsm.Group[O], error) {
	spec, err := LoadSpec[StatesGroupSpec](filename)
	if err != nil {
		return fsm.Group[O]{}, err
	}
	return BuildGroup(spec, factories, vars)
}

func scriptedTransitions[O any](specs []TransitionSpec, vars func(O) script.Vars) func(m *fsm.Machine[O]) ([]fsm.Transition, error) {
	return func(m *fsm.Machine[O]) ([]fsm.Transition, error) {
		owner := m.Owner()
		env := func() script.Vars { return vars(owner) }

		out := make([]fsm.Transition, 0, len(specs))
		for _, ts := range specs {
			p, err := script.Compile(ts.When, env())
			if err != nil {
				return nil, err
			}
			out = append(out, fsm.To(fsm.TypeID(ts.To), p.Func(env, m.Logger())))
		}
		return out, nil
	}
}
