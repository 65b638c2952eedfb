package depot

import (
	"iter"
)

// Filter is the cached result set of one include/exclude query shape. It
// is kept up to date by the World on every component transition.
//
// entities and every slots[k] are index-aligned: slots[k][i] is the pool
// slot of the k-th included component of entities[i].
type Filter struct {
	world     *World
	include   []int32
	exclude   []int32
	entities  []Entity
	slots     [][]int32
	indices   map[int32]int
	lockCount int
	queue     opQueue
}

func newFilter(w *World, include, exclude []int32, capacity int) *Filter {
	f := &Filter{
		world:    w,
		include:  include,
		exclude:  exclude,
		entities: make([]Entity, 0, capacity),
		slots:    make([][]int32, len(include)),
		indices:  make(map[int32]int, capacity),
		queue:    newOpQueue(),
	}
	for k := range f.slots {
		f.slots[k] = make([]int32, 0, capacity)
	}
	return f
}

// typeOverride lets compatible answer for the instant a single component
// transition is in flight: typ is treated as present or absent regardless
// of what the pair list says.
type typeOverride struct {
	typ     int32
	present bool
	active  bool
}

var noOverride = typeOverride{}

func present(typ int32) typeOverride {
	return typeOverride{typ: typ, present: true, active: true}
}

func absent(typ int32) typeOverride {
	return typeOverride{typ: typ, present: false, active: true}
}

func hasType(pairs []int32, typ int32) bool {
	for i := 0; i < len(pairs); i += 2 {
		if pairs[i] == typ {
			return true
		}
	}
	return false
}

func (f *Filter) compatible(pairs []int32, ov typeOverride) bool {
	for _, typ := range f.include {
		if ov.active && ov.typ == typ {
			if !ov.present {
				return false
			}
			continue
		}
		if !hasType(pairs, typ) {
			return false
		}
	}
	for _, typ := range f.exclude {
		if ov.active && ov.typ == typ {
			if ov.present {
				return false
			}
			continue
		}
		if hasType(pairs, typ) {
			return false
		}
	}
	return true
}

func (f *Filter) onAdd(e Entity) {
	if f.lockCount > 0 {
		f.queue.enqueue(opAdd, e)
		return
	}
	if f.world.cfg.Debug {
		if _, ok := f.indices[e.id]; ok {
			panic(FilterMembershipError{Entity: e, Include: f.include, Exclude: f.exclude, Reason: "entity already in filter"})
		}
	}
	for k := range f.slots {
		f.slots[k] = append(f.slots[k], -1)
	}
	pos := len(f.entities)
	f.entities = append(f.entities, e)
	f.indices[e.id] = pos

	pairs := f.world.entities[e.id].components
	found := 0
	for i := 0; i < len(pairs) && found < len(f.include); i += 2 {
		for k, typ := range f.include {
			if pairs[i] == typ {
				f.slots[k][pos] = pairs[i+1]
				found++
				break
			}
		}
	}
}

func (f *Filter) onRemove(e Entity) {
	if f.lockCount > 0 {
		f.queue.enqueue(opRemove, e)
		return
	}
	pos, ok := f.indices[e.id]
	if !ok {
		if f.world.cfg.Debug {
			panic(FilterMembershipError{Entity: e, Include: f.include, Exclude: f.exclude, Reason: "entity not in filter"})
		}
		return
	}
	delete(f.indices, e.id)
	last := len(f.entities) - 1
	if pos < last {
		moved := f.entities[last]
		f.entities[pos] = moved
		for k := range f.slots {
			f.slots[k][pos] = f.slots[k][last]
		}
		f.indices[moved.id] = pos
	}
	f.entities = f.entities[:last]
	for k := range f.slots {
		f.slots[k] = f.slots[k][:last]
	}
}

// Lock defers structural changes to the filter until the matching Unlock.
// Locks nest.
func (f *Filter) Lock() {
	f.lockCount++
}

// Unlock releases one lock. When the last lock is released, changes that
// arrived while locked are applied in order.
func (f *Filter) Unlock() {
	if f.lockCount == 0 {
		panic(LockBalanceError{Include: f.include, Exclude: f.exclude, Op: "Unlock"})
	}
	f.lockCount--
	if f.lockCount == 0 {
		f.queue.drain(f)
	}
}

func (f *Filter) Locked() bool {
	return f.lockCount > 0
}

// Pending returns the number of queued membership changes.
func (f *Filter) Pending() int {
	return f.queue.len()
}

// Len returns the number of matched entities.
func (f *Filter) Len() int {
	return len(f.entities)
}

func (f *Filter) Entity(i int) Entity {
	return f.entities[i]
}

// Entities exposes the dense entity list. The slice is owned by the filter
// and changes with membership.
func (f *Filter) Entities() []Entity {
	return f.entities
}

func (f *Filter) IndexOf(e Entity) (int, bool) {
	pos, ok := f.indices[e.id]
	if !ok || f.entities[pos] != e {
		return -1, false
	}
	return pos, true
}

func (f *Filter) Contains(e Entity) bool {
	_, ok := f.IndexOf(e)
	return ok
}

// Include returns the included type indices in declared order.
func (f *Filter) Include() []int32 {
	return f.include
}

// Exclude returns the excluded type indices in declared order.
func (f *Filter) Exclude() []int32 {
	return f.exclude
}

func (f *Filter) World() *World {
	return f.world
}

// All yields every matched entity with its index. The filter stays locked
// for the duration of the loop, so the body may add and remove components
// freely.
func (f *Filter) All() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		f.Lock()
		defer f.Unlock()
		for i := 0; i < len(f.entities); i++ {
			if !yield(i, f.entities[i]) {
				return
			}
		}
	}
}

func (f *Filter) includePosition(c Component) (int32, int) {
	if typ, ok := f.world.lookupType(c); ok {
		for k, inc := range f.include {
			if inc == typ {
				return typ, k
			}
		}
	}
	panic(ComponentNotIncludedError{Component: c, Include: f.include})
}
