package depot

import "go.uber.org/zap"

var _ ComponentPool = &Pool[struct{}]{}

// Pool is the dense store for one component type inside a World.
// Slots are either live (referenced by exactly one entity) or on the
// free-list, never both.
type Pool[T any] struct {
	world     *World
	typeIndex int32
	name      string
	items     []T
	used      int32
	free      []int32
	reset     func(*T)
}

func newPool[T any](w *World, typeIndex int32, name string, capacity int, reset func(*T)) *Pool[T] {
	return &Pool[T]{
		world:     w,
		typeIndex: typeIndex,
		name:      name,
		items:     make([]T, capacity),
		free:      make([]int32, 0, capacity),
		reset:     reset,
	}
}

func (p *Pool[T]) allocate() int32 {
	if n := len(p.free); n > 0 {
		slot := p.free[n-1]
		p.free = p.free[:n-1]
		return slot
	}
	if int(p.used) == len(p.items) {
		p.grow()
	}
	slot := p.used
	p.used++
	if p.reset != nil {
		p.reset(&p.items[slot])
	}
	return slot
}

func (p *Pool[T]) grow() {
	newCap := max(2*len(p.items), 1)
	items := make([]T, newCap)
	copy(items, p.items)
	p.items = items
	if p.world != nil {
		p.world.logger.Debug("component pool grown",
			zap.String("component", p.name),
			zap.Int("capacity", newCap),
		)
	}
}

func (p *Pool[T]) release(slot int32) {
	if p.reset != nil {
		p.reset(&p.items[slot])
	} else {
		var zero T
		p.items[slot] = zero
	}
	p.free = append(p.free, slot)
}

func (p *Pool[T]) copySlot(src, dst int32) {
	p.items[dst] = p.items[src]
}

// Get returns the value stored at slot. The pointer is only valid until
// the pool grows.
func (p *Pool[T]) Get(slot int32) *T {
	return &p.items[slot]
}

func (p *Pool[T]) Value(slot int32) any {
	return p.items[slot]
}

func (p *Pool[T]) TypeIndex() int32 {
	return p.typeIndex
}

func (p *Pool[T]) Name() string {
	return p.name
}

// Len reports the number of live slots.
func (p *Pool[T]) Len() int {
	return int(p.used) - len(p.free)
}

func (p *Pool[T]) Cap() int {
	return len(p.items)
}

func (p *Pool[T]) Free() int {
	return len(p.free)
}

func (p *Pool[T]) freeSlots() []int32 {
	return p.free
}
