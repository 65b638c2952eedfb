package depot

import (
	"testing"
)

func TestFilterSinglePositionScenario(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())

	e := w.NewEntity()
	comps.position.Replace(e, Position{X: 0, Y: 0})

	f := w.Filter(Factory.NewQuery().And(comps.position))
	if f.Len() != 1 || f.Entity(0) != e {
		t.Fatalf("filter should contain exactly the entity, got %v", f.Entities())
	}

	e.Remove(comps.position)
	if f.Len() != 0 {
		t.Errorf("filter should be empty after removal, got %d", f.Len())
	}
	if e.Alive() {
		t.Errorf("entity should be recycled")
	}
	if w.entities[e.id].countX2 >= 0 {
		t.Errorf("recycled record should carry a negative component count")
	}
}

func TestFilterHealthDeadScenario(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())

	e1 := w.NewEntity()
	e2 := w.NewEntity()
	e3 := w.NewEntity()
	comps.health.Replace(e1, Health{Current: 10})
	comps.name.Replace(e2, Name{Value: "bystander"})
	comps.health.Replace(e3, Health{Current: 30})

	alive := w.Filter(Factory.NewQuery().And(comps.health).Not(comps.dead))
	if alive.Len() != 2 || !alive.Contains(e1) || !alive.Contains(e3) {
		t.Fatalf("filter = %v, want {e1, e3}", alive.Entities())
	}

	comps.dead.Replace(e1, Dead{})
	if alive.Contains(e1) {
		t.Errorf("e1 should leave the filter once Dead is attached")
	}
	if !alive.Contains(e3) || alive.Len() != 1 {
		t.Errorf("e3 should be unaffected, got %v", alive.Entities())
	}

	e1.Remove(comps.dead)
	if !alive.Contains(e1) {
		t.Errorf("e1 should rejoin once Dead is removed")
	}
	if comps.health.GetFromFilter(alive, mustIndex(t, alive, e1)).Current != 10 {
		t.Errorf("slot index of rejoined entity is wrong")
	}
	assertMembership(t, w)
}

func mustIndex(t *testing.T, f *Filter, e Entity) int {
	t.Helper()
	i, ok := f.IndexOf(e)
	if !ok {
		t.Fatalf("%v not in filter", e)
	}
	return i
}

func TestFilterPopulatesFromExistingEntities(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())

	for i := 0; i < 10; i++ {
		e := w.NewEntity()
		comps.position.Replace(e, Position{X: float64(i)})
		if i%2 == 0 {
			comps.velocity.Replace(e, Velocity{X: 1})
		}
	}

	f := w.Filter(Factory.NewQuery().And(comps.position, comps.velocity))
	if f.Len() != 5 {
		t.Errorf("filter created late holds %d entities, want 5", f.Len())
	}
	for i := range f.All() {
		if int(comps.position.GetFromFilter(f, i).X)%2 != 0 {
			t.Errorf("unexpected entity %v in filter", f.Entity(i))
		}
	}
}

func TestFilterRegistry(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())

	a := w.Filter(Factory.NewQuery().And(comps.position, comps.velocity).Not(comps.dead))
	b := w.Filter(Factory.NewQuery().And(comps.position, comps.velocity).Not(comps.dead))
	if a != b {
		t.Errorf("same query shape must return the same filter")
	}
	c := w.Filter(Factory.NewQuery().And(comps.position, comps.velocity))
	if c == a {
		t.Errorf("different exclude set must create a new filter")
	}
	if w.Stats().Filters != 2 {
		t.Errorf("Stats().Filters = %d, want 2", w.Stats().Filters)
	}
}

func TestFilterShapeFaults(t *testing.T) {
	comps := newTestComponents()

	tests := []struct {
		name  string
		query func(w *World) Query
	}{
		{
			name: "No included component",
			query: func(w *World) Query {
				return Factory.NewQuery().Not(comps.dead)
			},
		},
		{
			name: "Duplicate include",
			query: func(w *World) Query {
				return Factory.NewQuery().And(comps.position, comps.position)
			},
		},
		{
			name: "Included and excluded",
			query: func(w *World) Query {
				return Factory.NewQuery().And(comps.position).Not(comps.position)
			},
		},
		{
			name: "Same shape, different order",
			query: func(w *World) Query {
				w.Filter(Factory.NewQuery().And(comps.position, comps.velocity))
				return Factory.NewQuery().And(comps.velocity, comps.position)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, DefaultConfig())
			q := tt.query(w)
			mustPanic[FilterShapeError](t, func() { w.Filter(q) })
		})
	}
}

func TestQueryRejectsUnknownItems(t *testing.T) {
	fault := mustPanic[QueryItemError](t, func() {
		Factory.NewQuery().And("position")
	})
	if fault.Op != OpAnd {
		t.Errorf("fault op = %v, want OpAnd", fault.Op)
	}
}

func TestQueryAcceptsComponentSlices(t *testing.T) {
	comps := newTestComponents()
	q := Factory.NewQuery().
		And([]Component{comps.position, comps.velocity}, comps.health).
		Not(comps.dead)
	if len(q.Included()) != 3 || len(q.Excluded()) != 1 {
		t.Errorf("query = %d included / %d excluded, want 3 / 1", len(q.Included()), len(q.Excluded()))
	}
}

func TestFilterSwapRemoveIntegrity(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())
	f := w.Filter(Factory.NewQuery().And(comps.health))

	entities := make([]Entity, 6)
	for i := range entities {
		entities[i] = w.NewEntity()
		comps.health.Replace(entities[i], Health{Current: i})
	}

	for _, i := range []int{0, 3, 5} {
		entities[i].Destroy()
		if len(f.indices) != f.Len() {
			t.Fatalf("index map has %d ids for %d entities", len(f.indices), f.Len())
		}
		for pos, e := range f.Entities() {
			if f.indices[e.id] != pos {
				t.Fatalf("entity %v at %d indexed at %d", e, pos, f.indices[e.id])
			}
			if comps.health.GetFromFilter(f, pos).Current != int(e.id) {
				t.Fatalf("slot array misaligned at %d", pos)
			}
		}
	}
	if f.Len() != 3 {
		t.Errorf("filter holds %d entities, want 3", f.Len())
	}
}

func TestFilterColumn(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())
	f := w.Filter(Factory.NewQuery().And(comps.position, comps.velocity))

	for i := 0; i < 300; i++ {
		e := w.NewEntity()
		comps.position.Replace(e, Position{})
		comps.velocity.Replace(e, Velocity{X: 1, Y: 2})
	}

	pos := comps.position.Column(f)
	vel := comps.velocity.Column(f)
	for i := range f.All() {
		p, v := pos.Get(i), vel.Get(i)
		p.X += v.X
		p.Y += v.Y
	}
	for i := 0; i < f.Len(); i++ {
		if *pos.Get(i) != (Position{X: 1, Y: 2}) {
			t.Fatalf("entity %d position = %+v", i, *pos.Get(i))
		}
	}

	mustPanic[ComponentNotIncludedError](t, func() { comps.health.Column(f) })
	mustPanic[ComponentNotIncludedError](t, func() { comps.health.GetFromFilter(f, 0) })
}

func TestFilterLockDefersChanges(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())
	f := w.Filter(Factory.NewQuery().And(comps.position))

	e := w.NewEntity()
	comps.position.Replace(e, Position{})

	f.Lock()
	f.Lock()
	added := w.NewEntity()
	comps.position.Replace(added, Position{})
	e.Remove(comps.position)

	if f.Len() != 1 || f.Entity(0) != e {
		t.Errorf("locked filter must not change, got %v", f.Entities())
	}
	if f.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", f.Pending())
	}

	f.Unlock()
	if !f.Locked() || f.Pending() != 2 {
		t.Errorf("nested lock released too early")
	}
	f.Unlock()
	if f.Locked() || f.Pending() != 0 {
		t.Errorf("queue not drained after final unlock")
	}
	if f.Len() != 1 || f.Entity(0) != added {
		t.Errorf("filter = %v, want only %v", f.Entities(), added)
	}
	assertMembership(t, w)

	mustPanic[LockBalanceError](t, func() { f.Unlock() })
}

func TestFilterReentrantMutation(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())
	f := w.Filter(Factory.NewQuery().And(comps.health))

	const n = 20
	for i := 0; i < n; i++ {
		e := w.NewEntity()
		comps.health.Replace(e, Health{Current: i})
		comps.name.Replace(e, Name{})
	}

	seen := map[Entity]int{}
	spawned := 0
	for i, e := range f.All() {
		seen[e]++
		if i >= n {
			t.Fatalf("iteration ran past the locked length: index %d", i)
		}
		switch i % 3 {
		case 0:
			e.Remove(comps.health)
		case 1:
			e.Destroy()
		case 2:
			child := w.NewEntity()
			comps.health.Replace(child, Health{Current: -1})
			spawned++
		}
	}

	if len(seen) != n {
		t.Errorf("visited %d distinct entities, want %d", len(seen), n)
	}
	for e, count := range seen {
		if count != 1 {
			t.Errorf("%v visited %d times", e, count)
		}
	}
	removed := 0
	for i := 0; i < n; i++ {
		if i%3 != 2 {
			removed++
		}
	}
	if want := n - removed + spawned; f.Len() != want {
		t.Errorf("filter holds %d entities after iteration, want %d", f.Len(), want)
	}
	assertMembership(t, w)
}

func TestFilterAllUnlocksOnBreak(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())
	f := w.Filter(Factory.NewQuery().And(comps.position))
	for i := 0; i < 3; i++ {
		comps.position.Replace(w.NewEntity(), Position{})
	}

	for _, e := range f.All() {
		e.Destroy()
		break
	}
	if f.Locked() {
		t.Errorf("filter still locked after break")
	}
	if f.Len() != 2 {
		t.Errorf("filter holds %d entities, want 2", f.Len())
	}
}

func TestFilterExcludeOnlyTransitions(t *testing.T) {
	comps := newTestComponents()
	w := newTestWorld(t, DefaultConfig())
	f := w.Filter(Factory.NewQuery().And(comps.position).Not(comps.dead, comps.velocity))

	e := w.NewEntity()
	comps.position.Replace(e, Position{})
	comps.dead.Replace(e, Dead{})
	comps.velocity.Replace(e, Velocity{})

	e.Remove(comps.dead)
	if f.Contains(e) {
		t.Errorf("entity with velocity must stay excluded")
	}
	e.Remove(comps.velocity)
	if !f.Contains(e) {
		t.Errorf("entity should match once both excluded components are gone")
	}
	assertMembership(t, w)
}
