// Profiling:
// go build ./cmd/depotprof
// ./depotprof -mode mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./depotprof mem.pprof

package main

import (
	"flag"
	"log"

	"github.com/TheBitDrifter/depot"
	"github.com/TheBitDrifter/table"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

type comp1 struct{ V, W int64 }
type comp2 struct{ V, W int64 }
type comp3 struct{ V, W int64 }
type comp4 struct{ V, W int64 }
type comp5 struct{ V, W int64 }
type spawned struct{}

var (
	c1 = depot.FactoryNewComponent[comp1]()
	c2 = depot.FactoryNewComponent[comp2]()
	c3 = depot.FactoryNewComponent[comp3]()
	c4 = depot.FactoryNewComponent[comp4]()
	c5 = depot.FactoryNewComponent[comp5]()
	cs = depot.FactoryNewComponent[spawned]()
)

type accumulate struct {
	filter *depot.Filter
}

func (s *accumulate) Wire(r *depot.Resolver) {
	s.filter = r.Filter(depot.Factory.NewQuery().And(c1, c2))
}

func (s *accumulate) Run() {
	a := c1.Column(s.filter)
	b := c2.Column(s.filter)
	for i := range s.filter.All() {
		x, y := a.Get(i), b.Get(i)
		x.V += y.V
		x.W += y.W
	}
}

// churn toggles comp3 on half of the population and respawns entities, so
// filters see a steady stream of membership changes.
type churn struct {
	world  *depot.World
	filter *depot.Filter
	tick   int
	batch  int
}

func (s *churn) Wire(r *depot.Resolver) {
	s.world = r.World()
	s.filter = r.Filter(depot.Factory.NewQuery().And(c1).Not(c5))
	s.batch = depot.Resolve[*settings](r).batch
}

func (s *churn) Run() {
	s.tick++
	for i, e := range s.filter.All() {
		if i%2 == s.tick%2 {
			c3.GetOrAdd(e)
		} else {
			e.Remove(c3)
		}
		if i%16 == 0 {
			e.Destroy()
		}
	}
	spawn(s.world, s.batch/16)
}

type settings struct {
	batch int
}

func spawn(w *depot.World, n int) {
	for range n {
		e := w.NewEntity()
		c1.GetOrAdd(e).V = 1
		c2.GetOrAdd(e).W = 1
		c4.GetOrAdd(e)
		cs.GetOrAdd(e)
	}
}

func main() {
	mode := flag.String("mode", "cpu", "profile mode: cpu or mem")
	rounds := flag.Int("rounds", 20, "number of worlds to build")
	ticks := flag.Int("ticks", 2000, "system runs per world")
	entities := flag.Int("entities", 1000, "initial entities per world")
	config := flag.String("config", "", "optional world config (.toml, .yaml)")
	flag.Parse()

	cfg := depot.DefaultConfig()
	if *config != "" {
		loaded, err := depot.LoadConfig(*config)
		if err != nil {
			log.Fatalf("%+v", err)
		}
		cfg = loaded
	}

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
	run(cfg, *rounds, *ticks, *entities)
	p.Stop()
}

func run(cfg depot.Config, rounds, ticks, entities int) {
	for round := range rounds {
		w := depot.Factory.NewWorld(table.Factory.NewSchema(), cfg)
		spawn(w, entities)

		systems := depot.Factory.NewSystems(w, "profile").
			Inject(&settings{batch: entities}).
			Add(&accumulate{}).
			Add(&churn{}).
			OneFrame(cs)
		systems.Init()
		for range ticks {
			systems.Run()
		}
		w.Logger().Info("round finished",
			zap.Int("round", round),
			zap.Int("entities", w.Stats().ActiveEntities),
		)
		systems.Destroy()
		w.Destroy()
	}
}
