package depot

import (
	"iter"

	"github.com/TheBitDrifter/table"
)

// Component identifies a registered component type.
// Only values built by FactoryNewComponent satisfy it.
type Component interface {
	table.ElementType
	elementType() table.ElementType
	newPool(w *World, typeIndex int32) ComponentPool
}

// ComponentPool is the type-erased view of a Pool[T].
type ComponentPool interface {
	TypeIndex() int32
	Name() string
	Len() int
	Cap() int
	Free() int
	Value(slot int32) any
	allocate() int32
	release(slot int32)
	copySlot(src, dst int32)
}

// AutoReset is implemented by component types that need custom cleanup
// when their pool slot is recycled.
type AutoReset interface {
	Reset()
}

type Query interface {
	And(items ...interface{}) Query
	Not(items ...interface{}) Query
	Included() []Component
	Excluded() []Component
}

type iCursor interface {
	Entities() iter.Seq2[int, Entity]
	Next() bool
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Len() int
}

// System is any value registered with Systems. It participates in the
// phases whose capability interfaces it implements.
type System interface{}

type PreInitSystem interface {
	PreInit()
}

type InitSystem interface {
	Init()
}

type RunSystem interface {
	Run()
}

type DestroySystem interface {
	Destroy()
}

type PostDestroySystem interface {
	PostDestroy()
}

// Wirer is implemented by systems that declare their dependencies
// explicitly. Wire is called once, before any PreInit.
type Wirer interface {
	Wire(r *Resolver)
}

type WorldDebugListener interface {
	OnEntityCreated(e Entity)
	OnEntityDestroyed(e Entity)
	OnComponentListChanged(e Entity)
	OnFilterCreated(f *Filter)
	OnWorldDestroyed(w *World)
}

type SystemsDebugListener interface {
	OnSystemsDestroyed(s *Systems)
}

// WorldStats is a snapshot of world bookkeeping.
type WorldStats struct {
	ActiveEntities   int
	ReservedEntities int
	Filters          int
	Components       int
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}
