package component

import "math"

// Clip is one animation of an animator layer. Frames advance on the fixed
// 60 Hz tick; FPS is converted to ticks per frame.
type Clip struct {
	Name   string            `yaml:"name"`
	Frames int               `yaml:"frames"`
	FPS    int               `yaml:"fps"`
	Loop   bool              `yaml:"loop"`
	Events AnimationEventMap `yaml:"events"`
}

func (c Clip) ticksPerFrame() int {
	fps := c.FPS
	if fps <= 0 {
		fps = 12
	}
	return int(math.Max(1, math.Round(60.0/float64(fps))))
}

// Duration returns the clip length in ticks.
func (c Clip) Duration() int {
	return max(c.Frames, 1) * c.ticksPerFrame()
}

// AnimatorLayer describes one layer: the looping clip it rests on and the
// bool parameters that swap that resting clip.
type AnimatorLayer struct {
	Default string            `yaml:"default"`
	Bools   map[string]string `yaml:"bools"`
}

// AnimatorSpec is the authored animation graph of an entity.
type AnimatorSpec struct {
	Clips    []Clip            `yaml:"clips"`
	Layers   []AnimatorLayer   `yaml:"layers"`
	Triggers map[string]string `yaml:"triggers"`
}

type layerState struct {
	spec     AnimatorLayer
	clip     Clip
	frame    int
	tick     int
	oneShot  bool
	finished bool
}

// Animator is the side-effect sink the states write parameters into. States
// only query it through IsAnimation and Finished.
type Animator struct {
	clips    map[string]Clip
	triggers map[string]string
	layers   []*layerState

	bools  map[string]bool
	floats map[string]float64

	Events AnimationEventEmitter
}

// NewAnimator builds an animator and starts each layer on its default clip.
func NewAnimator(spec AnimatorSpec) *Animator {
	a := &Animator{
		clips:    make(map[string]Clip, len(spec.Clips)),
		triggers: make(map[string]string, len(spec.Triggers)),
		bools:    make(map[string]bool),
		floats:   make(map[string]float64),
	}
	for _, c := range spec.Clips {
		a.clips[c.Name] = c
	}
	for k, v := range spec.Triggers {
		a.triggers[k] = v
	}
	layers := spec.Layers
	if len(layers) == 0 {
		layers = []AnimatorLayer{{}}
	}
	for i, l := range layers {
		ls := &layerState{spec: l}
		a.layers = append(a.layers, ls)
		a.start(i, a.clips[l.Default], false)
	}
	return a
}

func (a *Animator) layer(i int) *layerState {
	if a == nil || i < 0 || i >= len(a.layers) {
		return nil
	}
	return a.layers[i]
}

func (a *Animator) SetBool(name string, v bool) {
	if a == nil {
		return
	}
	a.bools[name] = v
}

func (a *Animator) Bool(name string) bool {
	return a != nil && a.bools[name]
}

func (a *Animator) SetFloat(name string, v float64) {
	if a == nil {
		return
	}
	a.floats[name] = v
}

func (a *Animator) Float(name string) float64 {
	if a == nil {
		return 0
	}
	return a.floats[name]
}

// SetTrigger plays the one-shot clip bound to name on layer 0. Unknown
// triggers are ignored.
func (a *Animator) SetTrigger(name string) {
	if a == nil {
		return
	}
	clip, ok := a.triggers[name]
	if !ok {
		return
	}
	a.Play(0, clip)
}

// HasTrigger reports whether a clip is bound to trigger name.
func (a *Animator) HasTrigger(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a.triggers[name]
	return ok
}

// Play starts clip on layer from its first frame.
func (a *Animator) Play(layer int, clip string) bool {
	c, ok := a.clips[clip]
	if !ok || a.layer(layer) == nil {
		return false
	}
	a.start(layer, c, !c.Loop)
	return true
}

func (a *Animator) start(layer int, c Clip, oneShot bool) {
	ls := a.layers[layer]
	ls.clip = c
	ls.frame = 0
	ls.tick = 0
	ls.oneShot = oneShot
	if oneShot {
		ls.finished = false
	}
	a.emit(layer, ls)
}

// IsAnimation reports whether layer is currently playing clip.
func (a *Animator) IsAnimation(layer int, clip string) bool {
	ls := a.layer(layer)
	return ls != nil && ls.clip.Name != "" && ls.clip.Name == clip
}

// Finished reports whether the last one-shot clip played on layer has run to
// its end. It stays true until another one-shot starts.
func (a *Animator) Finished(layer int) bool {
	ls := a.layer(layer)
	return ls != nil && ls.finished
}

// Clip returns the name of the clip playing on layer.
func (a *Animator) Clip(layer int) string {
	if ls := a.layer(layer); ls != nil {
		return ls.clip.Name
	}
	return ""
}

// Frame returns the current frame index of layer.
func (a *Animator) Frame(layer int) int {
	if ls := a.layer(layer); ls != nil {
		return ls.frame
	}
	return 0
}

// Step advances every layer by one tick.
func (a *Animator) Step() {
	if a == nil {
		return
	}
	for i, ls := range a.layers {
		if !ls.oneShot {
			if want := a.restingClip(ls); want != ls.clip.Name {
				a.start(i, a.clips[want], false)
				continue
			}
		}
		if ls.clip.Name == "" {
			continue
		}

		ls.tick++
		if ls.tick < ls.clip.ticksPerFrame() {
			continue
		}
		ls.tick = 0
		ls.frame++
		if ls.frame >= max(ls.clip.Frames, 1) {
			if ls.oneShot {
				ls.finished = true
				ls.oneShot = false
				a.start(i, a.clips[a.restingClip(ls)], false)
				continue
			}
			ls.frame = 0
		}
		a.emit(i, ls)
	}
}

func (a *Animator) restingClip(ls *layerState) string {
	// bool overrides are checked in key order so the choice is stable
	best := ""
	for param := range ls.spec.Bools {
		if a.bools[param] && (best == "" || param < best) {
			best = param
		}
	}
	if best != "" {
		return ls.spec.Bools[best]
	}
	return ls.spec.Default
}

func (a *Animator) emit(layer int, ls *layerState) {
	if ls.clip.Name == "" {
		return
	}
	for _, name := range ls.clip.Events[ls.frame] {
		a.Events.Emit(AnimationEvent{Layer: layer, Clip: ls.clip.Name, Frame: ls.frame, Name: name})
	}
}
