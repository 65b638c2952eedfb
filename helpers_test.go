package depot

import (
	"errors"
	"testing"

	"github.com/TheBitDrifter/table"
)

// Test component types
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

type Dead struct{}

type Name struct {
	Value string
}

type testComponents struct {
	position AccessibleComponent[Position]
	velocity AccessibleComponent[Velocity]
	health   AccessibleComponent[Health]
	dead     AccessibleComponent[Dead]
	name     AccessibleComponent[Name]
}

func newTestComponents() testComponents {
	return testComponents{
		position: FactoryNewComponent[Position](),
		velocity: FactoryNewComponent[Velocity](),
		health:   FactoryNewComponent[Health](),
		dead:     FactoryNewComponent[Dead](),
		name:     FactoryNewComponent[Name](),
	}
}

func newTestWorld(t testing.TB, cfg Config) *World {
	t.Helper()
	schema := table.Factory.NewSchema()
	return Factory.NewWorld(schema, cfg)
}

// mustPanic runs fn and returns the fault it panicked with.
func mustPanic[E error](t *testing.T, fn func()) E {
	t.Helper()
	var fault E
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatalf("expected panic with %T, got none", fault)
			}
			err, ok := r.(error)
			if !ok {
				t.Fatalf("expected panic with %T, got %v", fault, r)
			}
			if !errors.As(err, &fault) {
				t.Fatalf("expected panic with %T, got %T: %v", fault, err, err)
			}
		}()
		fn()
	}()
	return fault
}

// assertMembership checks every live entity of w against every filter by
// brute force.
func assertMembership(t *testing.T, w *World) {
	t.Helper()
	for _, f := range w.filters {
		if len(f.indices) != len(f.entities) {
			t.Fatalf("filter %v: %d indices for %d entities", f.include, len(f.indices), len(f.entities))
		}
		for i, e := range f.entities {
			if pos, ok := f.indices[e.id]; !ok || pos != i {
				t.Fatalf("filter %v: entity %v at %d indexed at %d (%v)", f.include, e, i, pos, ok)
			}
		}
		for id := range w.entities {
			rec := &w.entities[id]
			e := Entity{id: int32(id), gen: rec.gen, world: w}
			want := rec.countX2 > 0 && bruteForceMatch(f, rec.components)
			if got := f.Contains(e); got != want {
				t.Fatalf("filter include=%v exclude=%v: entity %v membership %v, want %v", f.include, f.exclude, e, got, want)
			}
		}
	}
}

func bruteForceMatch(f *Filter, pairs []int32) bool {
	types := map[int32]bool{}
	for i := 0; i < len(pairs); i += 2 {
		types[pairs[i]] = true
	}
	for _, typ := range f.include {
		if !types[typ] {
			return false
		}
	}
	for _, typ := range f.exclude {
		if types[typ] {
			return false
		}
	}
	return true
}
