package depot

import (
	"fmt"
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// Entity is a generation-checked handle to an entity record of a World.
// The zero value is the null entity.
type Entity struct {
	id    int32
	gen   uint16
	world *World
}

// entityData is the record behind an Entity. components holds
// (type index, pool slot) pairs; countX2 is their flattened length, or
// negative while the record sits on the free stack.
type entityData struct {
	gen        uint16
	countX2    int32
	components []int32
}

func (d *entityData) slotOf(typ int32) (int32, bool) {
	for i := 0; i < len(d.components); i += 2 {
		if d.components[i] == typ {
			return d.components[i+1], true
		}
	}
	return -1, false
}

func (d *entityData) pairOf(typ int32) int {
	for i := 0; i < len(d.components); i += 2 {
		if d.components[i] == typ {
			return i
		}
	}
	return -1
}

func (e Entity) ID() int32 {
	return e.id
}

func (e Entity) Gen() uint16 {
	return e.gen
}

func (e Entity) World() *World {
	return e.world
}

func (e Entity) IsNull() bool {
	return e.id == 0 && e.gen == 0
}

// Alive reports whether the handle still refers to a live record.
func (e Entity) Alive() bool {
	if e.world == nil || e.world.destroyed || int(e.id) >= len(e.world.entities) {
		return false
	}
	rec := &e.world.entities[e.id]
	return rec.gen == e.gen && rec.countX2 >= 0
}

func (e Entity) String() string {
	if e.IsNull() {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d:%d)", e.id, e.gen)
}

// record resolves the live record of e or panics with a fault naming op.
func (e Entity) record(op string) *entityData {
	if e.world == nil {
		panic(NullEntityError{Op: op})
	}
	if e.world.destroyed {
		panic(WorldDestroyedError{Op: op})
	}
	if e.id < 0 || int(e.id) >= len(e.world.entities) {
		panic(StaleEntityError{Op: op, Entity: e})
	}
	rec := &e.world.entities[e.id]
	if rec.gen != e.gen || rec.countX2 < 0 {
		panic(StaleEntityError{Op: op, Entity: e, Current: rec.gen})
	}
	return rec
}

func (e Entity) Has(c Component) bool {
	rec := e.record("Has")
	typ, ok := e.world.lookupType(c)
	if !ok {
		return false
	}
	_, ok = rec.slotOf(typ)
	return ok
}

// Remove detaches c from e. Removing the last component destroys e.
func (e Entity) Remove(c Component) {
	rec := e.record("Remove")
	typ, ok := e.world.lookupType(c)
	if !ok {
		return
	}
	if i := rec.pairOf(typ); i >= 0 {
		e.world.detach(e, rec, i)
	}
}

func (e Entity) ComponentCount() int {
	return len(e.record("ComponentCount").components) / 2
}

// Components yields every attached component type with a copy of its value.
func (e Entity) Components() iter.Seq2[Component, any] {
	e.record("Components")
	w := e.world
	return func(yield func(Component, any) bool) {
		rec := &w.entities[e.id]
		for i := 0; i < len(rec.components); i += 2 {
			typ, slot := rec.components[i], rec.components[i+1]
			if !yield(w.components[typ], w.pools[typ].Value(slot)) {
				return
			}
		}
	}
}

func (e Entity) ComponentTypes() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for c := range e.Components() {
			if !yield(c) {
				return
			}
		}
	}
}

func (e Entity) Types() []Component {
	return iter_util.Collect(e.ComponentTypes())
}

// Copy creates a new entity holding value copies of every component of e.
func (e Entity) Copy() Entity {
	e.record("Copy")
	w := e.world
	dst := w.NewEntity()
	src := &w.entities[e.id]
	rec := &w.entities[dst.id]
	for i := 0; i < len(src.components); i += 2 {
		typ, slot := src.components[i], src.components[i+1]
		pool := w.pools[typ]
		copied := pool.allocate()
		pool.copySlot(slot, copied)
		w.attach(dst, rec, typ, copied)
	}
	return dst
}

// MoveTo copies every component of e onto target, overwriting components
// target already has, then destroys e.
func (e Entity) MoveTo(target Entity) {
	if e == target {
		panic(EntityMoveError{Source: e, Target: target, Reason: "source and target are the same entity"})
	}
	if e.world != target.world {
		panic(EntityMoveError{Source: e, Target: target, Reason: "entities belong to different worlds"})
	}
	src := e.record("MoveTo")
	dst := target.record("MoveTo")
	w := e.world
	for i := 0; i < len(src.components); i += 2 {
		typ, slot := src.components[i], src.components[i+1]
		pool := w.pools[typ]
		if existing, ok := dst.slotOf(typ); ok {
			pool.copySlot(slot, existing)
			continue
		}
		copied := pool.allocate()
		pool.copySlot(slot, copied)
		w.attach(target, dst, typ, copied)
	}
	e.Destroy()
}

// Destroy detaches every component of e and recycles its record.
func (e Entity) Destroy() {
	rec := e.record("Destroy")
	if len(rec.components) == 0 {
		e.world.recycle(e, rec)
		return
	}
	for len(rec.components) > 0 {
		e.world.detach(e, rec, len(rec.components)-2)
	}
}
