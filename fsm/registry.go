package fsm

import "sync"

// Registry maps state keys and type tags to the same runtime entry.
// It is filled once while a machine is built and only read afterwards.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[Key]*Entry
	byType map[TypeID]*Entry
	order  []*Entry
}

func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[Key]*Entry),
		byType: make(map[TypeID]*Entry),
	}
}

// Add registers a state under key and typeID. The state's transitions are
// requested here, once, and cached on the entry.
func (r *Registry) Add(key Key, typeID TypeID, state State, enabled bool) (*Entry, error) {
	return r.add(key, typeID, state, enabled, nil)
}

func (r *Registry) add(key Key, typeID TypeID, state State, enabled bool, extra []Transition) (*Entry, error) {
	if state == nil {
		return nil, &RegistrationError{Key: key, Type: typeID, Err: ErrNilState}
	}

	own := state.Transitions()
	ts := make([]Transition, 0, len(own)+len(extra))
	ts = append(ts, own...)
	ts = append(ts, extra...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[key]; ok {
		return nil, &RegistrationError{Key: key, Type: typeID, Err: ErrDuplicateKey}
	}
	if _, ok := r.byType[typeID]; ok {
		return nil, &RegistrationError{Key: key, Type: typeID, Err: ErrDuplicateType}
	}

	entry := &Entry{
		Key:         key,
		Type:        typeID,
		State:       state,
		Enabled:     enabled,
		transitions: NewTransitionSet(ts...),
	}
	r.byKey[key] = entry
	r.byType[typeID] = entry
	r.order = append(r.order, entry)
	return entry, nil
}

// Lookup finds an entry by key.
func (r *Registry) Lookup(key Key) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byKey[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	return entry, nil
}

// LookupType finds an entry by type tag.
func (r *Registry) LookupType(typeID TypeID) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byType[typeID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return entry, nil
}

// IsEnabled reports whether the state registered under key can be entered.
func (r *Registry) IsEnabled(key Key) (bool, error) {
	entry, err := r.Lookup(key)
	if err != nil {
		return false, err
	}
	return entry.Enabled, nil
}

// Len returns the number of registered states.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Entries returns the entries in registration order.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Entry(nil), r.order...)
}
