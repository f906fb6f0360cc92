package main

import (
	"math/rand"

	"github.com/plus3/loom/ecs"
)

// scalar is the payload shared by all stress components. The methods let the
// generic systems below touch the value without knowing the concrete type.
type scalar struct{ Value float64 }

func (s *scalar) bump(d float64) { s.Value += d }
func (s *scalar) read() float64  { return s.Value }

type bumper interface {
	bump(float64)
	read() float64
}

// Component pool for the stress run. Every generated system reads or writes
// a random subset of these, which produces a dense, irregular conflict graph.
type StressA struct{ scalar }
type StressB struct{ scalar }
type StressC struct{ scalar }
type StressD struct{ scalar }
type StressE struct{ scalar }
type StressF struct{ scalar }
type StressG struct{ scalar }
type StressH struct{ scalar }

func registerStressComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[StressA](registry)
	ecs.RegisterComponent[StressB](registry)
	ecs.RegisterComponent[StressC](registry)
	ecs.RegisterComponent[StressD](registry)
	ecs.RegisterComponent[StressE](registry)
	ecs.RegisterComponent[StressF](registry)
	ecs.RegisterComponent[StressG](registry)
	ecs.RegisterComponent[StressH](registry)
}

type stressComponent interface {
	StressA | StressB | StressC | StressD | StressE | StressF | StressG | StressH
}

// stressWriter mutates every instance of its component each tick.
type stressWriter[T stressComponent] struct {
	Entities ecs.Query[struct{ Item *T }]
}

func (s *stressWriter[T]) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Entities.Iter() {
		any(item.Item).(bumper).bump(frame.DeltaTime)
	}
}

// stressReader sums every instance of its component each tick.
type stressReader[T stressComponent] struct {
	Entities ecs.Query[struct {
		Item *T `ecs:"read"`
	}]
	Sum float64
}

func (s *stressReader[T]) Execute(frame *ecs.UpdateFrame) {
	s.Sum = 0
	for _, item := range s.Entities.Iter() {
		s.Sum += any(item.Item).(bumper).read()
	}
}

// stressSpawner occasionally spawns entities through the command buffer to
// keep structural changes in the mix.
type stressSpawner struct {
	Entities ecs.Query[struct {
		Item *StressA `ecs:"read"`
	}]
	rng *rand.Rand
}

func (s *stressSpawner) Execute(frame *ecs.UpdateFrame) {
	if s.rng.Intn(10) == 0 {
		frame.Commands.Spawn(StressA{})
	}
}

type systemSpec struct {
	system ecs.System
	name   string
}

var systemFactories = []func() systemSpec{
	func() systemSpec { return systemSpec{&stressWriter[StressA]{}, "write-a"} },
	func() systemSpec { return systemSpec{&stressWriter[StressB]{}, "write-b"} },
	func() systemSpec { return systemSpec{&stressWriter[StressC]{}, "write-c"} },
	func() systemSpec { return systemSpec{&stressWriter[StressD]{}, "write-d"} },
	func() systemSpec { return systemSpec{&stressWriter[StressE]{}, "write-e"} },
	func() systemSpec { return systemSpec{&stressWriter[StressF]{}, "write-f"} },
	func() systemSpec { return systemSpec{&stressWriter[StressG]{}, "write-g"} },
	func() systemSpec { return systemSpec{&stressWriter[StressH]{}, "write-h"} },
	func() systemSpec { return systemSpec{&stressReader[StressA]{}, "read-a"} },
	func() systemSpec { return systemSpec{&stressReader[StressB]{}, "read-b"} },
	func() systemSpec { return systemSpec{&stressReader[StressC]{}, "read-c"} },
	func() systemSpec { return systemSpec{&stressReader[StressD]{}, "read-d"} },
	func() systemSpec { return systemSpec{&stressReader[StressE]{}, "read-e"} },
	func() systemSpec { return systemSpec{&stressReader[StressF]{}, "read-f"} },
	func() systemSpec { return systemSpec{&stressReader[StressG]{}, "read-g"} },
	func() systemSpec { return systemSpec{&stressReader[StressH]{}, "read-h"} },
}

func randomSystems(rng *rand.Rand, count int) []systemSpec {
	specs := make([]systemSpec, 0, count)
	for i := 0; i < count; i++ {
		factory := systemFactories[rng.Intn(len(systemFactories))]
		specs = append(specs, factory())
	}
	specs = append(specs, systemSpec{&stressSpawner{rng: rng}, "spawner"})
	return specs
}

// spawnRandomEntity creates an entity carrying 1 to 5 random components from
// the pool.
func spawnRandomEntity(storage *ecs.Storage, rng *rand.Rand) {
	pool := []any{
		StressA{}, StressB{}, StressC{}, StressD{},
		StressE{}, StressF{}, StressG{}, StressH{},
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	storage.Spawn(pool[:rng.Intn(5)+1]...)
}
