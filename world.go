package depot

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"go.uber.org/zap"
)

// World owns the entity table, the component pools and the filters. Every
// structural change to an entity goes through it so filters stay in sync.
type World struct {
	cfg    Config
	logger *zap.Logger
	schema table.Schema

	entities []entityData
	freeIDs  []int32

	components []Component
	pools      []ComponentPool
	types      map[table.ElementType]int32

	filters          []*Filter
	filtersByShape   map[filterShape]*Filter
	filtersByInclude [][]*Filter
	filtersByExclude [][]*Filter

	listeners []WorldDebugListener
	leaked    []Entity
	destroyed bool
}

type filterShape struct {
	include mask.Mask
	exclude mask.Mask
}

func newWorld(schema table.Schema, cfg Config) *World {
	cfg = cfg.withDefaults()
	logger := cfg.Logger
	if logger == nil {
		built, err := newLogger(cfg.Logging)
		if err != nil {
			built = zap.NewNop()
		}
		logger = built
	}
	w := &World{
		cfg:            cfg,
		logger:         logger,
		schema:         schema,
		entities:       make([]entityData, 0, cfg.EntitiesCapacity),
		freeIDs:        make([]int32, 0, cfg.EntitiesCapacity),
		components:     make([]Component, 0, cfg.PoolsCapacity),
		pools:          make([]ComponentPool, 0, cfg.PoolsCapacity),
		types:          make(map[table.ElementType]int32, cfg.PoolsCapacity),
		filters:        make([]*Filter, 0, cfg.FiltersCapacity),
		filtersByShape: make(map[filterShape]*Filter, cfg.FiltersCapacity),
	}
	if cfg.Debug {
		w.leaked = make([]Entity, 0, 256)
	}
	return w
}

func (w *World) Config() Config {
	return w.cfg
}

func (w *World) Logger() *zap.Logger {
	return w.logger
}

// Alive reports whether Destroy has not been called yet.
func (w *World) Alive() bool {
	return !w.destroyed
}

func (w *World) checkAlive(op string) {
	if w.destroyed {
		panic(WorldDestroyedError{Op: op})
	}
}

// NewEntity returns an empty entity, reusing a recycled record when one is
// available. An entity that never receives a component is a leak.
func (w *World) NewEntity() Entity {
	w.checkAlive("NewEntity")
	var e Entity
	if n := len(w.freeIDs); n > 0 {
		id := w.freeIDs[n-1]
		w.freeIDs = w.freeIDs[:n-1]
		rec := &w.entities[id]
		rec.countX2 = 0
		e = Entity{id: id, gen: rec.gen, world: w}
	} else {
		id := int32(len(w.entities))
		w.entities = append(w.entities, entityData{
			gen:        1,
			components: make([]int32, 0, 2*w.cfg.EntityComponentsCapacity),
		})
		e = Entity{id: id, gen: 1, world: w}
	}
	if w.cfg.Debug {
		w.leaked = append(w.leaked, e)
	}
	for _, l := range w.listeners {
		l.OnEntityCreated(e)
	}
	return e
}

// Entity returns a handle to the live entity with the given id.
func (w *World) Entity(id int32) (Entity, bool) {
	if id < 0 || int(id) >= len(w.entities) {
		return Entity{}, false
	}
	rec := &w.entities[id]
	if rec.countX2 < 0 {
		return Entity{}, false
	}
	return Entity{id: id, gen: rec.gen, world: w}, true
}

func (w *World) lookupType(c Component) (int32, bool) {
	typ, ok := w.types[c.elementType()]
	return typ, ok
}

// typeIndex returns the numeric index of c, registering c and creating its
// pool on first use.
func (w *World) typeIndex(c Component) int32 {
	if typ, ok := w.types[c.elementType()]; ok {
		return typ
	}
	w.checkAlive("RegisterComponent")
	et := c.elementType()
	w.schema.Register(et)
	typ := int32(w.schema.RowIndexFor(et))
	for int(typ) >= len(w.pools) {
		w.pools = append(w.pools, nil)
		w.components = append(w.components, nil)
	}
	w.types[et] = typ
	// Another component value of the same Go type shares the schema row.
	if w.pools[typ] != nil {
		return typ
	}
	w.pools[typ] = c.newPool(w, typ)
	w.components[typ] = c
	return typ
}

// Pool returns the type-erased pool of c, creating it on first use.
func (w *World) Pool(c Component) ComponentPool {
	return w.pools[w.typeIndex(c)]
}

// ComponentByIndex returns the component registered under typ.
func (w *World) ComponentByIndex(typ int32) (Component, bool) {
	if typ < 0 || int(typ) >= len(w.components) || w.components[typ] == nil {
		return nil, false
	}
	return w.components[typ], true
}

func (w *World) attach(e Entity, rec *entityData, typ, slot int32) {
	rec.components = append(rec.components, typ, slot)
	rec.countX2 += 2
	w.updateFilters(e, rec, typ, true)
	for _, l := range w.listeners {
		l.OnComponentListChanged(e)
	}
}

// detach removes the pair at offset i. Filters are updated while the
// component is still physically present.
func (w *World) detach(e Entity, rec *entityData, i int) {
	typ, slot := rec.components[i], rec.components[i+1]
	w.updateFilters(e, rec, typ, false)
	w.pools[typ].release(slot)
	last := len(rec.components) - 2
	rec.components[i] = rec.components[last]
	rec.components[i+1] = rec.components[last+1]
	rec.components = rec.components[:last]
	rec.countX2 -= 2
	for _, l := range w.listeners {
		l.OnComponentListChanged(e)
	}
	if rec.countX2 == 0 {
		w.recycle(e, rec)
	}
}

func (w *World) recycle(e Entity, rec *entityData) {
	rec.components = rec.components[:0]
	rec.countX2 = -2
	rec.gen++
	if rec.gen == 0 {
		rec.gen = 1
	}
	w.freeIDs = append(w.freeIDs, e.id)
	for _, l := range w.listeners {
		l.OnEntityDestroyed(e)
	}
}

// updateFilters flips filter membership of e for a single component
// transition. Only filters that include or exclude typ are visited.
func (w *World) updateFilters(e Entity, rec *entityData, typ int32, added bool) {
	var includes, excludes []*Filter
	if int(typ) < len(w.filtersByInclude) {
		includes = w.filtersByInclude[typ]
	}
	if int(typ) < len(w.filtersByExclude) {
		excludes = w.filtersByExclude[typ]
	}
	if added {
		for _, f := range includes {
			if f.compatible(rec.components, present(typ)) {
				f.onAdd(e)
			}
		}
		for _, f := range excludes {
			if f.compatible(rec.components, absent(typ)) {
				f.onRemove(e)
			}
		}
		return
	}
	for _, f := range includes {
		if f.compatible(rec.components, present(typ)) {
			f.onRemove(e)
		}
	}
	for _, f := range excludes {
		if f.compatible(rec.components, absent(typ)) {
			f.onAdd(e)
		}
	}
}

// Filter returns the filter for q, creating and populating it on first
// request.
func (w *World) Filter(q Query) *Filter {
	w.checkAlive("Filter")
	include := w.resolveTypes(q.Included())
	exclude := w.resolveTypes(q.Excluded())
	shape := filterShape{}
	for _, typ := range include {
		shape.include.Mark(uint32(typ))
	}
	for _, typ := range exclude {
		shape.exclude.Mark(uint32(typ))
	}
	if f, ok := w.filtersByShape[shape]; ok {
		if !sameOrder(f.include, include) || !sameOrder(f.exclude, exclude) {
			panic(FilterShapeError{Include: include, Exclude: exclude, Reason: "shape already registered with a different declared order"})
		}
		return f
	}
	validateShape(shape, include, exclude)

	f := newFilter(w, include, exclude, w.cfg.FilterEntitiesCapacity)
	w.filters = append(w.filters, f)
	w.filtersByShape[shape] = f
	for _, typ := range include {
		w.filtersByInclude = growFilterIndex(w.filtersByInclude, typ)
		w.filtersByInclude[typ] = append(w.filtersByInclude[typ], f)
	}
	for _, typ := range exclude {
		w.filtersByExclude = growFilterIndex(w.filtersByExclude, typ)
		w.filtersByExclude[typ] = append(w.filtersByExclude[typ], f)
	}
	for id := range w.entities {
		rec := &w.entities[id]
		if rec.countX2 > 0 && f.compatible(rec.components, noOverride) {
			f.onAdd(Entity{id: int32(id), gen: rec.gen, world: w})
		}
	}
	w.logger.Debug("filter created",
		zap.Int32s("include", include),
		zap.Int32s("exclude", exclude),
		zap.Int("entities", f.Len()),
	)
	for _, l := range w.listeners {
		l.OnFilterCreated(f)
	}
	return f
}

func (w *World) resolveTypes(components []Component) []int32 {
	types := make([]int32, len(components))
	for i, c := range components {
		types[i] = w.typeIndex(c)
	}
	return types
}

func validateShape(shape filterShape, include, exclude []int32) {
	if len(include) == 0 {
		panic(FilterShapeError{Include: include, Exclude: exclude, Reason: "at least one included component is required"})
	}
	if hasDuplicates(include) || hasDuplicates(exclude) {
		panic(FilterShapeError{Include: include, Exclude: exclude, Reason: "component listed twice"})
	}
	if shape.include.ContainsAny(shape.exclude) {
		panic(FilterShapeError{Include: include, Exclude: exclude, Reason: "component both included and excluded"})
	}
}

func hasDuplicates(types []int32) bool {
	for i := range types {
		for j := i + 1; j < len(types); j++ {
			if types[i] == types[j] {
				return true
			}
		}
	}
	return false
}

func sameOrder(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func growFilterIndex(index [][]*Filter, typ int32) [][]*Filter {
	for int(typ) >= len(index) {
		index = append(index, nil)
	}
	return index
}

// Filters returns every filter created so far, in creation order.
func (w *World) Filters() []*Filter {
	return w.filters
}

func (w *World) Stats() WorldStats {
	components := 0
	for _, pool := range w.pools {
		if pool != nil {
			components++
		}
	}
	return WorldStats{
		ActiveEntities:   len(w.entities) - len(w.freeIDs),
		ReservedEntities: len(w.freeIDs),
		Filters:          len(w.filters),
		Components:       components,
	}
}

func (w *World) AddDebugListener(l WorldDebugListener) {
	w.listeners = append(w.listeners, l)
}

func (w *World) RemoveDebugListener(l WorldDebugListener) {
	for i, existing := range w.listeners {
		if existing == l {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

// CheckLeaks reports entities created since the previous check that are
// still alive without any component. Leaks are logged, not repaired.
func (w *World) CheckLeaks() []Entity {
	if !w.cfg.Debug || len(w.leaked) == 0 {
		return nil
	}
	var leaks []Entity
	for _, e := range w.leaked {
		rec := &w.entities[e.id]
		if rec.gen == e.gen && rec.countX2 == 0 {
			leaks = append(leaks, e)
			w.logger.Warn("leaked entity",
				zap.Int32("entity", e.id),
				zap.Uint16("gen", e.gen),
			)
		}
	}
	w.leaked = w.leaked[:0]
	return leaks
}

func (w *World) lockedFilter() *Filter {
	for _, f := range w.filters {
		if f.lockCount > 0 {
			return f
		}
	}
	return nil
}

// Destroy removes every entity, drops all filters and pools and marks the
// world unusable.
func (w *World) Destroy() {
	w.checkAlive("Destroy")
	for id := range w.entities {
		rec := &w.entities[id]
		if rec.countX2 >= 0 {
			Entity{id: int32(id), gen: rec.gen, world: w}.Destroy()
		}
	}
	for _, l := range w.listeners {
		l.OnWorldDestroyed(w)
	}
	w.logger.Debug("world destroyed",
		zap.Int("entities", len(w.entities)),
		zap.Int("filters", len(w.filters)),
	)
	w.destroyed = true
	w.filters = nil
	w.filtersByShape = nil
	w.filtersByInclude = nil
	w.filtersByExclude = nil
	w.pools = nil
	w.components = nil
	w.types = nil
	w.leaked = nil
	w.listeners = nil
}
