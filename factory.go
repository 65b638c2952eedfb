package depot

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

type factory struct{}

var Factory factory

// NewWorld creates a world whose component type indices are assigned by
// schema.
func (f factory) NewWorld(schema table.Schema, cfg Config) *World {
	return newWorld(schema, cfg)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(filter *Filter) *Cursor {
	return newCursor(filter)
}

func (f factory) NewSystems(world *World, name string) *Systems {
	return newSystems(world, name)
}

func FactoryNewComponent[T any]() AccessibleComponent[T] {
	return AccessibleComponent[T]{
		ElementType: table.FactoryNewElementType[T](),
		name:        reflect.TypeFor[T]().String(),
	}
}

// FactoryNewComponentWithReset creates a component whose pool slots are
// prepared by reset on first allocation and on every recycle, instead of
// being zeroed.
func FactoryNewComponentWithReset[T any](reset func(*T)) AccessibleComponent[T] {
	c := FactoryNewComponent[T]()
	c.reset = reset
	return c
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
