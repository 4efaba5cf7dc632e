package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/nightshade/ecs/component"
)

func intPtr(i int) *int {
	return &i
}

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
		wantAlive    int
	}{
		{"single", 1, 0, 0},
		{"three_destroy_middle", 3, 1, 2},
		{"none_destroyed", 2, -1, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for a live entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("second destroy should report false")
				}
			}
			if got := len(Entities(w)); got != c.wantAlive {
				t.Fatalf("expected %d entities, got %d", c.wantAlive, got)
			}
		})
	}
}

func TestSlotReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	old := CreateEntity(w)
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot %d to be reused, got %d", old.id(), fresh.id())
	}
	if fresh == old {
		t.Fatalf("reused slot must not produce the same handle")
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle reported alive")
	}
	if !fresh.Valid() || Entity(0).Valid() {
		t.Fatalf("validity mismatch")
	}
}

func TestComponents(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := CreateEntity(w)

	if err := Add(w, e, h.Kind(), intPtr(10)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	v, ok := Get(w, e, h.Kind())
	if !ok || *v != 10 {
		t.Fatalf("expected 10, got %v ok=%v", v, ok)
	}

	*v = 11
	if v2, _ := Get(w, e, h.Kind()); *v2 != 11 {
		t.Fatalf("components are stored by pointer, got %d", *v2)
	}

	if err := Add(w, e, h.Kind(), nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	if err := Add(w, e, component.ComponentKind[int]{}, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}

	if !Remove(w, e, h.Kind()) || Has(w, e, h.Kind()) {
		t.Fatalf("remove failed")
	}
	if Remove(w, e, h.Kind()) {
		t.Fatalf("second remove should report false")
	}

	DestroyEntity(w, e)
	if err := Add(w, e, h.Kind(), intPtr(1)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestDestroyDropsComponents(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := CreateEntity(w)
	_ = Add(w, e, h.Kind(), intPtr(1))

	DestroyEntity(w, e)
	reused := CreateEntity(w)
	if Has(w, reused, h.Kind()) {
		t.Fatalf("new entity in a reused slot inherited a component")
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	_ = Add(w, e1, h.Kind(), intPtr(1))
	_ = Add(w, e3, h.Kind(), intPtr(3))

	sum := 0
	var seen []Entity
	ForEach(w, h.Kind(), func(e Entity, v *int) {
		seen = append(seen, e)
		sum += *v
		// destroying during iteration is allowed
		DestroyEntity(w, e3)
	})
	if sum != 1 || len(seen) != 1 || seen[0] != e1 {
		t.Fatalf("expected only e1 after e3 was destroyed mid-iteration, got %v", seen)
	}
	if Has(w, e2, h.Kind()) {
		t.Fatalf("e2 never had the component")
	}
}

func TestForEach2(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[string]()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				_ = Add(w, e1, ka, intPtr(1))
				_ = Add(w, e2, ka, intPtr(2))
				s := "b"
				_ = Add(w, e2, kb, &s)

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, _ *int, _ *string) { res = append(res, e) })
				if len(res) != 1 || res[0] != e2 {
					t.Fatalf("expected only e2, got %v", res)
				}
			},
		},
		{
			name: "missing_store",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				_ = Add(w, CreateEntity(w), ka, intPtr(1))

				called := false
				ForEach2(w, ka, kb, func(Entity, *int, *int) { called = true })
				if called {
					t.Fatalf("expected no match when the other store is missing")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func TestFirst(t *testing.T) {
	w := NewWorld()
	tag := component.NewComponent[struct{}]()
	if _, ok := First(w, tag.Kind()); ok {
		t.Fatalf("empty world has no tagged entity")
	}
	CreateEntity(w)
	e := CreateEntity(w)
	_ = Add(w, e, tag.Kind(), &struct{}{})
	if got, ok := First(w, tag.Kind()); !ok || got != e {
		t.Fatalf("expected %v, got %v", e, got)
	}
}

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) Update(w *World) {
	*r.log = append(*r.log, r.name)
	w.Events().Push(Event{Kind: EventKind(r.name)})
}

func TestSchedulerOrderAndEvents(t *testing.T) {
	var log []string
	s := NewScheduler(recorder{"input", &log}, nil, recorder{"player", &log})
	s.Add(recorder{"ai", &log})
	s.Add(nil)

	w := NewWorld()
	s.Update(w)

	if len(s.Systems()) != 3 {
		t.Fatalf("nil systems must be skipped")
	}
	want := []string{"input", "player", "ai"}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, log)
		}
	}
	events := w.Events().Drain()
	if len(events) != 3 || events[0].Kind != "input" {
		t.Fatalf("unexpected events %v", events)
	}
	if w.Events().Len() != 0 || w.Events().Drain() != nil {
		t.Fatalf("drain must clear the queue")
	}
}
