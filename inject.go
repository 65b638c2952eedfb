package depot

import (
	"reflect"
)

type service struct {
	typ   reflect.Type
	value any
}

// Inject makes service available to Resolve under its dynamic type.
func (s *Systems) Inject(service any) *Systems {
	s.inject(reflect.TypeOf(service), service, false)
	return s
}

// InjectAs makes service available to Resolve under T, which is typically
// an interface the service implements.
func InjectAs[T any](s *Systems, service T) *Systems {
	s.inject(reflect.TypeFor[T](), service, false)
	return s
}

func (s *Systems) inject(typ reflect.Type, value any, fromParent bool) {
	if s.wired && !fromParent {
		panic(SystemsStateError{Systems: s.name, Op: "Inject", State: "systems already initialized"})
	}
	for i := range s.services {
		if s.services[i].typ == typ {
			s.services[i].value = value
			return
		}
	}
	s.services = append(s.services, service{typ: typ, value: value})
}

// Resolver is handed to Wirer systems during Init. It is the only way a
// system obtains its world, filters and injected services.
type Resolver struct {
	systems *Systems
}

func (r *Resolver) World() *World {
	return r.systems.world
}

func (r *Resolver) Systems() *Systems {
	return r.systems
}

// Filter returns the world's filter for q.
func (r *Resolver) Filter(q Query) *Filter {
	return r.systems.world.Filter(q)
}

// Resolve returns the service injected under T, or the first injected
// service assignable to T. It panics when none exists.
func Resolve[T any](r *Resolver) T {
	v, ok := TryResolve[T](r)
	if !ok {
		panic(MissingServiceError{Type: reflect.TypeFor[T]().String()})
	}
	return v
}

func TryResolve[T any](r *Resolver) (T, bool) {
	typ := reflect.TypeFor[T]()
	for _, svc := range r.systems.services {
		if svc.typ == typ {
			v, ok := svc.value.(T)
			return v, ok
		}
	}
	for _, svc := range r.systems.services {
		if v, ok := svc.value.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
