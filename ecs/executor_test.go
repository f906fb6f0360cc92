package ecs_test

import (
	"testing"
	"time"

	"github.com/plus3/loom/ecs"
	"github.com/stretchr/testify/assert"
)

// slowPositionWriter holds its access window open long enough that an
// overlapping conflicting execution would be caught by the tracker.
type slowPositionWriter struct {
	Entities ecs.Query[struct{ *Position }]
}

func (s *slowPositionWriter) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Entities.Iter() {
		item.Position.X++
	}
	time.Sleep(5 * time.Millisecond)
}

// handshakeSystem proves two systems were in flight at the same time: each
// side announces itself and then waits for its peer.
type handshakeSystem struct {
	started chan struct{}
	peer    chan struct{}
	Met     bool
}

func (s *handshakeSystem) Execute(frame *ecs.UpdateFrame) {
	close(s.started)
	select {
	case <-s.peer:
		s.Met = true
	case <-time.After(2 * time.Second):
	}
}

func TestParallelExecutor(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)

	t.Run("non-conflicting systems run concurrently", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		tracker := storage.EnableAccessTracking()
		scheduler := ecs.NewScheduler(storage, ecs.WithStrategy(ecs.Parallel))

		aStarted := make(chan struct{})
		bStarted := make(chan struct{})
		a := &handshakeSystem{started: aStarted, peer: bStarted}
		b := &handshakeSystem{started: bStarted, peer: aStarted}

		idA, _ := scheduler.Register(a, ecs.WithName("HandshakeA"))
		idB, _ := scheduler.Register(b, ecs.WithName("HandshakeB"))

		graph := scheduler.Graph()
		assert.Len(t, graph.Levels, 1)
		assert.ElementsMatch(t, []ecs.SystemId{idA, idB}, graph.Levels[0])

		assert.NoError(t, scheduler.Tick(1.0))
		assert.True(t, a.Met)
		assert.True(t, b.Met)
		assert.Equal(t, 2, tracker.MaxConcurrent())
	})

	t.Run("conflicting systems never overlap", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		tracker := storage.EnableAccessTracking()
		scheduler := ecs.NewScheduler(storage, ecs.WithStrategy(ecs.Parallel))

		storage.Spawn(Position{})

		scheduler.Register(&slowPositionWriter{}, ecs.WithName("SlowA"))
		scheduler.Register(&slowPositionWriter{}, ecs.WithName("SlowB"))
		scheduler.Register(&slowPositionWriter{}, ecs.WithName("SlowC"))

		for i := 0; i < 5; i++ {
			assert.NoError(t, scheduler.Tick(1.0))
		}

		assert.Empty(t, tracker.Violations())
		assert.Equal(t, 1, tracker.MaxConcurrent())
	})

	t.Run("bounded workers preserve correctness", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		tracker := storage.EnableAccessTracking()
		scheduler := ecs.NewScheduler(storage,
			ecs.WithStrategy(ecs.Parallel), ecs.WithWorkers(1))

		id := storage.Spawn(Position{}, Velocity{DX: 1})

		scheduler.Register(&MovementSystem{})
		scheduler.Register(&positionReader{})

		assert.NoError(t, scheduler.Tick(1.0))
		assert.Empty(t, tracker.Violations())
		assert.Equal(t, float32(1), ecs.ReadComponent[Position](storage, id).X)
	})

	t.Run("failure drains in-flight siblings and halts later levels", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage, ecs.WithStrategy(ecs.Parallel))

		siblingDone := make(chan struct{})
		sibling := &signallingSystem{done: siblingDone}
		bomb := &gatedPanicSystem{gate: siblingDone}
		downstream := &countingSystem{}

		scheduler.Register(bomb, ecs.WithLabel("bomb"))
		scheduler.Register(sibling)
		scheduler.Register(downstream, ecs.WithName("downstreamSystem"), ecs.After("bomb"))

		err := scheduler.Tick(1.0)

		var execErr *ecs.ExecutionError
		assert.ErrorAs(t, err, &execErr)
		assert.Equal(t, "gatedPanicSystem", execErr.System)
		assert.True(t, sibling.Ran, "in-flight sibling must finish before the tick fails")
		assert.Equal(t, 0, downstream.Ticks, "later levels must not start after a failure")
	})
}

// signallingSystem records completion and unblocks whoever waits on done.
type signallingSystem struct {
	done chan struct{}
	Ran  bool
}

func (s *signallingSystem) Execute(frame *ecs.UpdateFrame) {
	s.Ran = true
	close(s.done)
}

// gatedPanicSystem waits until gate closes, then fails.
type gatedPanicSystem struct {
	gate chan struct{}
}

func (s *gatedPanicSystem) Execute(frame *ecs.UpdateFrame) {
	select {
	case <-s.gate:
	case <-time.After(2 * time.Second):
	}
	panic("gated failure")
}

func TestStrategyDeterminism(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)

	runWorld := func(strategy ecs.Strategy) ([]Position, []Health) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage, ecs.WithStrategy(strategy), ecs.WithWorkers(4))

		for i := 0; i < 16; i++ {
			storage.Spawn(
				Position{X: float32(i), Y: float32(-i)},
				Velocity{DX: float32(i % 3), DY: 1},
				Health{Current: 100 - i, Max: 100},
			)
		}

		scheduler.Register(&MovementSystem{})
		scheduler.Register(&decaySystem{})
		scheduler.Register(&positionReader{})

		for tick := 0; tick < 8; tick++ {
			if err := scheduler.Tick(0.25); err != nil {
				t.Fatalf("tick failed: %v", err)
			}
		}

		positions := make([]Position, 0, 16)
		healths := make([]Health, 0, 16)
		view := ecs.NewView[struct {
			*Position
			*Health
		}](storage)
		for _, item := range view.Iter() {
			positions = append(positions, *item.Position)
			healths = append(healths, *item.Health)
		}
		return positions, healths
	}

	seqPos, seqHealth := runWorld(ecs.Sequential)
	parPos, parHealth := runWorld(ecs.Parallel)

	assert.ElementsMatch(t, seqPos, parPos)
	assert.ElementsMatch(t, seqHealth, parHealth)
}

type decaySystem struct {
	Entities ecs.Query[struct{ *Health }]
}

func (s *decaySystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Entities.Iter() {
		if item.Health.Current > 0 {
			item.Health.Current--
		}
	}
}

// TestConflictImpliedFreshness is the Move/Render scenario: Render carries a
// conflict-implied edge from Move, so it always observes the positions Move
// produced this tick.
func TestConflictImpliedFreshness(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)

	for _, strategy := range []ecs.Strategy{ecs.Sequential, ecs.Parallel} {
		t.Run(strategy.String(), func(t *testing.T) {
			storage := ecs.NewStorage(registry)
			scheduler := ecs.NewScheduler(storage, ecs.WithStrategy(strategy))

			storage.Spawn(Position{X: 0}, Velocity{DX: 1})

			render := &captureSystem{}
			scheduler.Register(&MovementSystem{})
			scheduler.Register(render)

			for tick := 1; tick <= 3; tick++ {
				assert.NoError(t, scheduler.Tick(1.0))
				assert.Equal(t, float32(tick), render.LastX,
					"render must observe this tick's movement, not stale state")
			}
		})
	}
}

type captureSystem struct {
	Entities ecs.Query[struct {
		Pos *Position `ecs:"read"`
	}]
	LastX float32
}

func (s *captureSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Entities.Iter() {
		s.LastX = item.Pos.X
	}
}
