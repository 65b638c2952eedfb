package depot

import (
	"github.com/TheBitDrifter/table"
)

var _ Component = AccessibleComponent[struct{}]{}

// AccessibleComponent pairs a component identity with typed access into
// the pools of any World it is used with.
type AccessibleComponent[T any] struct {
	table.ElementType
	name  string
	reset func(*T)
}

func (c AccessibleComponent[T]) elementType() table.ElementType {
	return c.ElementType
}

func (c AccessibleComponent[T]) newPool(w *World, typeIndex int32) ComponentPool {
	reset := c.reset
	if reset == nil {
		var probe T
		if _, ok := any(&probe).(AutoReset); ok {
			reset = func(v *T) { any(v).(AutoReset).Reset() }
		}
	}
	return newPool(w, typeIndex, c.name, w.cfg.PoolCapacity, reset)
}

// TypeName returns the Go type name of T.
func (c AccessibleComponent[T]) TypeName() string {
	return c.name
}

// Pool returns the pool backing this component in w, creating it on
// first use.
func (c AccessibleComponent[T]) Pool(w *World) *Pool[T] {
	return w.pools[w.typeIndex(c)].(*Pool[T])
}

// Replace overwrites the component on e, attaching it first if e does not
// have it yet.
func (c AccessibleComponent[T]) Replace(e Entity, value T) {
	w := e.world
	rec := e.record("Replace")
	typ := w.typeIndex(c)
	pool := w.pools[typ].(*Pool[T])
	if slot, ok := rec.slotOf(typ); ok {
		pool.items[slot] = value
		return
	}
	slot := pool.allocate()
	pool.items[slot] = value
	w.attach(e, rec, typ, slot)
}

// GetOrAdd returns the component on e, attaching a default value first if
// e does not have it yet.
func (c AccessibleComponent[T]) GetOrAdd(e Entity) *T {
	w := e.world
	rec := e.record("GetOrAdd")
	typ := w.typeIndex(c)
	pool := w.pools[typ].(*Pool[T])
	if slot, ok := rec.slotOf(typ); ok {
		return &pool.items[slot]
	}
	slot := pool.allocate()
	w.attach(e, rec, typ, slot)
	return &pool.items[slot]
}

// GetFromEntity returns the component on e, or nil if e does not have it.
func (c AccessibleComponent[T]) GetFromEntity(e Entity) *T {
	w := e.world
	rec := e.record("GetFromEntity")
	typ, ok := w.lookupType(c)
	if !ok {
		return nil
	}
	slot, ok := rec.slotOf(typ)
	if !ok {
		return nil
	}
	return &w.pools[typ].(*Pool[T]).items[slot]
}

func (c AccessibleComponent[T]) Has(e Entity) bool {
	return e.Has(c)
}

// GetFromFilter returns the component of the i-th entity of f. T must be
// one of the filter's included types.
func (c AccessibleComponent[T]) GetFromFilter(f *Filter, i int) *T {
	typ, k := f.includePosition(c)
	return &f.world.pools[typ].(*Pool[T]).items[f.slots[k][i]]
}

// GetFromCursor returns the component of the entity at the cursor position.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.GetFromFilter(cursor.filter, cursor.entityIndex-1)
}

// Column binds c to f for repeated access during an iteration.
func (c AccessibleComponent[T]) Column(f *Filter) Column[T] {
	typ, k := f.includePosition(c)
	return Column[T]{
		filter: f,
		pool:   f.world.pools[typ].(*Pool[T]),
		k:      k,
	}
}

// Column resolves one included component type of a filter by position.
// Every access goes through the pool, so it stays valid across pool growth.
type Column[T any] struct {
	filter *Filter
	pool   *Pool[T]
	k      int
}

func (col Column[T]) Get(i int) *T {
	return &col.pool.items[col.filter.slots[col.k][i]]
}

// Slot returns the pool slot of the i-th entity.
func (col Column[T]) Slot(i int) int32 {
	return col.filter.slots[col.k][i]
}
