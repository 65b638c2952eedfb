package depot

var (
	_ Wirer     = &oneFrameSystem{}
	_ RunSystem = &oneFrameSystem{}
)

// oneFrameSystem strips a marker component from every holder once per
// Run. Entities are visited from the back because removal swaps the last
// entity into the freed position.
type oneFrameSystem struct {
	component Component
	filter    *Filter
}

func (s *oneFrameSystem) Wire(r *Resolver) {
	s.filter = r.Filter(Factory.NewQuery().And(s.component))
}

func (s *oneFrameSystem) Run() {
	for i := s.filter.Len() - 1; i >= 0; i-- {
		s.filter.entities[i].Remove(s.component)
	}
}
