package depot

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	_ PreInitSystem     = &Systems{}
	_ InitSystem        = &Systems{}
	_ RunSystem         = &Systems{}
	_ DestroySystem     = &Systems{}
	_ PostDestroySystem = &Systems{}
)

// Systems runs an ordered group of systems through their lifecycle:
//
//	Add... → Init (Wire, PreInit, Init) → Run* → Destroy (Destroy, PostDestroy)
//
// Registration order is execution order, except for the destroy phases
// which run in reverse. A Systems value can be added to another one; it
// then receives the parent's services and is driven phase by phase.
type Systems struct {
	world    *World
	name     string
	all      []System
	runs     []runEntry
	names    Cache[int]
	services []service

	listeners []SystemsDebugListener

	nested         bool
	wired          bool
	preInitialized bool
	initialized    bool
	destroyed      bool
	postDestroyed  bool
}

type runEntry struct {
	system RunSystem
	active bool
	name   string
}

// RunEntry describes one run-capable system of a group.
type RunEntry struct {
	System RunSystem
	Active bool
	Name   string
}

func newSystems(world *World, name string) *Systems {
	return &Systems{
		world: world,
		name:  name,
		names: FactoryNewCache[int](0),
	}
}

func (s *Systems) Name() string {
	return s.name
}

func (s *Systems) World() *World {
	return s.world
}

// Add registers system. Adding is only allowed before Init.
func (s *Systems) Add(system System) *Systems {
	s.add(system, "")
	return s
}

// AddNamed registers a run-capable system under a unique name, so it can
// be toggled through RunSystemIndex.
func (s *Systems) AddNamed(system System, name string) *Systems {
	s.add(system, name)
	return s
}

func (s *Systems) add(system System, name string) {
	if s.wired || s.initialized {
		panic(SystemsStateError{Systems: s.name, Op: "Add", State: "systems already initialized"})
	}
	if s.destroyed {
		panic(SystemsStateError{Systems: s.name, Op: "Add", State: "systems destroyed"})
	}
	rs, isRun := system.(RunSystem)
	if name != "" {
		if !isRun {
			panic(SystemNameError{Systems: s.name, Name: name, Reason: fmt.Sprintf("%T does not implement RunSystem", system)})
		}
		if _, exists := s.names.GetIndex(name); exists {
			panic(SystemNameError{Systems: s.name, Name: name, Reason: "name already used"})
		}
	}
	if child, ok := system.(*Systems); ok {
		if child == s {
			panic(SystemsStateError{Systems: s.name, Op: "Add", State: "group cannot contain itself"})
		}
		if child.wired || child.initialized {
			panic(SystemsStateError{Systems: child.name, Op: "Add", State: "nested systems already initialized"})
		}
		child.nested = true
	}
	s.all = append(s.all, system)
	if isRun {
		if name != "" {
			if _, err := s.names.Register(name, len(s.runs)); err != nil {
				panic(SystemNameError{Systems: s.name, Name: name, Reason: err.Error()})
			}
		}
		s.runs = append(s.runs, runEntry{system: rs, active: true, name: name})
	}
}

// OneFrame registers a system that, at this point of every Run, removes c
// from every entity holding it.
func (s *Systems) OneFrame(c Component) *Systems {
	return s.Add(&oneFrameSystem{component: c})
}

// Init wires dependencies, then calls PreInit and Init on every capable
// system in registration order. Registration is frozen afterwards.
func (s *Systems) Init() {
	if s.initialized {
		panic(SystemsStateError{Systems: s.name, Op: "Init", State: "systems already initialized"})
	}
	if s.destroyed {
		panic(SystemsStateError{Systems: s.name, Op: "Init", State: "systems destroyed"})
	}
	if !s.wired {
		s.wire()
		s.PreInit()
	}
	for _, system := range s.all {
		if is, ok := system.(InitSystem); ok {
			is.Init()
			s.checkWorld(system)
		}
	}
	s.initialized = true
}

// PreInit runs the PreInit phase only. A parent group calls it on nested
// groups; top-level callers use Init.
func (s *Systems) PreInit() {
	if s.preInitialized {
		return
	}
	s.preInitialized = true
	for _, system := range s.all {
		if ps, ok := system.(PreInitSystem); ok {
			ps.PreInit()
			s.checkWorld(system)
		}
	}
}

func (s *Systems) wire() {
	if s.wired {
		return
	}
	s.wired = true
	r := &Resolver{systems: s}
	for _, system := range s.all {
		switch v := system.(type) {
		case *Systems:
			for _, svc := range s.services {
				v.inject(svc.typ, svc.value, true)
			}
			v.wire()
		case Wirer:
			v.Wire(r)
		}
	}
}

// Run calls every active run-capable system in registration order.
func (s *Systems) Run() {
	if !s.initialized {
		panic(SystemsStateError{Systems: s.name, Op: "Run", State: "systems not initialized"})
	}
	if s.destroyed {
		panic(SystemsStateError{Systems: s.name, Op: "Run", State: "systems destroyed"})
	}
	for i := range s.runs {
		entry := &s.runs[i]
		if !entry.active {
			continue
		}
		entry.system.Run()
		s.checkWorld(entry.system)
	}
}

// Destroy calls Destroy on every capable system in reverse registration
// order, then PostDestroy the same way. It can only be called once.
func (s *Systems) Destroy() {
	if s.destroyed {
		panic(SystemsStateError{Systems: s.name, Op: "Destroy", State: "systems already destroyed"})
	}
	s.destroyed = true
	for i := len(s.all) - 1; i >= 0; i-- {
		if ds, ok := s.all[i].(DestroySystem); ok {
			ds.Destroy()
		}
	}
	if !s.nested {
		s.PostDestroy()
	}
}

// PostDestroy runs the PostDestroy phase only. A parent group calls it on
// nested groups; top-level callers use Destroy.
func (s *Systems) PostDestroy() {
	if s.postDestroyed {
		return
	}
	s.postDestroyed = true
	for i := len(s.all) - 1; i >= 0; i-- {
		if ps, ok := s.all[i].(PostDestroySystem); ok {
			ps.PostDestroy()
		}
	}
	s.world.logger.Debug("systems destroyed", zap.String("systems", s.name))
	for _, l := range s.listeners {
		l.OnSystemsDestroyed(s)
	}
}

// checkWorld reports leaked entities and fails on filters left locked by
// system. It only runs in debug mode.
func (s *Systems) checkWorld(system System) {
	if !s.world.cfg.Debug || s.world.destroyed {
		return
	}
	if leaks := s.world.CheckLeaks(); len(leaks) > 0 {
		s.world.logger.Warn("system leaked entities",
			zap.String("systems", s.name),
			zap.String("system", fmt.Sprintf("%T", system)),
			zap.Int("count", len(leaks)),
		)
	}
	if f := s.world.lockedFilter(); f != nil {
		panic(LockBalanceError{Include: f.include, Exclude: f.exclude, Op: fmt.Sprintf("%T", system)})
	}
}

// RunSystemIndex resolves a name given to AddNamed.
func (s *Systems) RunSystemIndex(name string) (int, bool) {
	idx, ok := s.names.GetIndex(name)
	if !ok {
		return -1, false
	}
	return *s.names.GetItem(idx), true
}

// SetRunSystemState enables or disables the run system at idx. The change
// applies from the next Run.
func (s *Systems) SetRunSystemState(idx int, active bool) {
	s.runs[idx].active = active
}

func (s *Systems) RunSystemState(idx int) bool {
	return s.runs[idx].active
}

func (s *Systems) RunSystems() []RunEntry {
	entries := make([]RunEntry, len(s.runs))
	for i, entry := range s.runs {
		entries[i] = RunEntry{System: entry.system, Active: entry.active, Name: entry.name}
	}
	return entries
}

// AllSystems returns every registered system in registration order.
func (s *Systems) AllSystems() []System {
	return s.all
}

func (s *Systems) AddDebugListener(l SystemsDebugListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Systems) RemoveDebugListener(l SystemsDebugListener) {
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}
