package component

// AnimationEvent is emitted when a clip reaches a frame that carries events.
// Name is forwarded verbatim as a machine bus topic ("Attack", "Footstep").
type AnimationEvent struct {
	Layer int
	Clip  string
	Frame int
	Name  string
}

// AnimationEventHandler handles animation frame events.
type AnimationEventHandler func(evt AnimationEvent)

// AnimationEventEmitter dispatches animation frame events to handlers.
type AnimationEventEmitter struct {
	Handlers []AnimationEventHandler
}

// Emit sends a frame event to all handlers.
func (e *AnimationEventEmitter) Emit(evt AnimationEvent) {
	if e == nil || len(e.Handlers) == 0 {
		return
	}
	for _, h := range e.Handlers {
		if h != nil {
			h(evt)
		}
	}
}

// AnimationEventMap stores per-frame event names.
type AnimationEventMap map[int][]string

// Add adds an event for a frame.
func (m AnimationEventMap) Add(frame int, name string) {
	if m == nil || frame < 0 || name == "" {
		return
	}
	m[frame] = append(m[frame], name)
}
