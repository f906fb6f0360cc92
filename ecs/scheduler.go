package ecs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Id             SystemId
	Name           string
	Label          string
	Level          int
	ExecutionCount int64
	SkipCount      int64
	LastSkipReason string
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// SystemInfo describes one container's placement in the current schedule.
type SystemInfo struct {
	Id     SystemId
	Name   string
	Label  string
	Level  int
	Reads  []Partition
	Writes []Partition
}

// EdgeInfo is one directed ordering requirement between two systems.
// Kind is "explicit" for declared constraints, "conflict" for edges inserted
// by access-conflict detection.
type EdgeInfo struct {
	From SystemId
	To   SystemId
	Kind string
}

// GraphInfo is a read-only snapshot of the current ordering graph, exposed
// for tooling.
type GraphInfo struct {
	Systems []SystemInfo
	Edges   []EdgeInfo
	Levels  [][]SystemId
}

// Scheduler manages registered systems and executes them tick over tick,
// respecting the ordering graph built from declared constraints and access
// conflicts. The ordering graph is rebuilt only when the registered set
// changes, never mid-tick.
type Scheduler struct {
	storage  *Storage
	log      *zap.Logger
	strategy Strategy
	workers  int
	exec     executor

	nextId     SystemId
	containers []*container
	schedule   *schedule
	tick       uint64
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

// WithStrategy selects the execution strategy. Defaults to Sequential.
func WithStrategy(strategy Strategy) Option {
	return func(s *Scheduler) { s.strategy = strategy }
}

// WithWorkers bounds the Parallel strategy's worker pool. Zero or negative
// means unbounded within a level. Ignored by the Sequential strategy.
func WithWorkers(n int) Option {
	return func(s *Scheduler) { s.workers = n }
}

// WithLogger sets the logger for rebuilds, skips and tick failures.
// Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage, opts ...Option) *Scheduler {
	s := &Scheduler{
		storage:  storage,
		log:      zap.NewNop(),
		strategy: Sequential,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.exec = newExecutor(s.strategy, s.workers)

	// An empty container set always builds.
	if err := s.Rebuild(); err != nil {
		panic("ecs: empty schedule failed to build: " + err.Error())
	}
	return s
}

// Strategy returns the execution strategy the scheduler was built with.
func (s *Scheduler) Strategy() Strategy {
	return s.strategy
}

// Register adds a system to the scheduler, derives its access descriptor from
// its Query and Singleton fields, and rebuilds the schedule. On a
// configuration error the registration is rolled back, the previous valid
// schedule stays in force, and the error is returned.
func (s *Scheduler) Register(system System, opts ...SystemOption) (SystemId, error) {
	s.nextId++
	c := newContainer(s.nextId, len(s.containers), system, s.storage, opts...)

	s.containers = append(s.containers, c)
	if err := s.Rebuild(); err != nil {
		s.containers = s.containers[:len(s.containers)-1]
		return 0, err
	}

	s.log.Debug("system registered",
		zap.String("system", c.name),
		zap.Uint64("id", uint64(c.id)),
		zap.Int("level", c.level))
	return c.id, nil
}

// Unregister removes a previously registered system and rebuilds the
// schedule. Removing a system that other constraints point at (by label or
// name) fails the rebuild and is rolled back.
func (s *Scheduler) Unregister(id SystemId) error {
	old := s.containers
	next := make([]*container, 0, len(old))
	for _, c := range old {
		if c.id != id {
			next = append(next, c)
		}
	}
	if len(next) == len(old) {
		return fmt.Errorf("no system registered with id %d", id)
	}

	s.containers = next
	for i, c := range next {
		c.order = i
	}
	if err := s.Rebuild(); err != nil {
		s.containers = old
		for i, c := range old {
			c.order = i
		}
		return err
	}
	return nil
}

// Rebuild recomputes the ordering graph and the executor's cached dispatch
// data from the current container set. Idempotent for an unchanged set. On
// failure the previous schedule remains usable.
func (s *Scheduler) Rebuild() error {
	graph, err := buildOrderingGraph(s.containers)
	if err != nil {
		s.log.Error("schedule rebuild failed", zap.Error(err))
		return err
	}

	s.schedule = &schedule{containers: s.containers, graph: graph}
	s.exec.rebuild(s.schedule)

	s.log.Debug("schedule rebuilt",
		zap.Int("systems", len(s.containers)),
		zap.Int("levels", len(graph.levels)),
		zap.Int("edges", len(graph.edges)))
	return nil
}

// Tick executes one tick with the given delta time: run conditions are
// evaluated first against pre-tick state, then runnable systems execute under
// the chosen strategy, then every container's command buffer is flushed in
// registration order. A system failure is returned after in-flight work has
// drained; the command buffers of systems that did run are still flushed.
func (s *Scheduler) Tick(dt float64) error {
	sched := s.schedule
	s.tick++
	t := Tick{Number: s.tick, DeltaTime: dt, Storage: s.storage}

	for _, c := range sched.containers {
		c.evalShouldRun(t, s.log)
	}

	tickErr := s.exec.runTick(sched, t)

	st := newFlushState()
	for _, c := range sched.containers {
		if !c.commands.empty() {
			c.commands.flushInto(s.storage, st)
		}
	}

	if tickErr != nil {
		s.log.Error("tick failed", zap.Uint64("tick", t.Number), zap.Error(tickErr))
	}
	return tickErr
}

// Run executes ticks repeatedly at the given interval until the context is
// cancelled or a tick fails. Whether a failed tick should be retried is the
// caller's policy; the scheduler never retries on its own.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Tick(dt); err != nil {
				return err
			}
		}
	}
}

// Graph returns a read-only snapshot of the current ordering graph: each
// system's level placement and access sets, every edge with its provenance,
// and the dependency levels the Parallel strategy dispatches.
func (s *Scheduler) Graph() GraphInfo {
	sched := s.schedule
	info := GraphInfo{
		Systems: make([]SystemInfo, len(sched.containers)),
		Edges:   make([]EdgeInfo, 0, len(sched.graph.edges)),
		Levels:  make([][]SystemId, len(sched.graph.levels)),
	}

	for i, c := range sched.containers {
		info.Systems[i] = SystemInfo{
			Id:     c.id,
			Name:   c.name,
			Label:  c.label,
			Level:  c.level,
			Reads:  c.access.ReadSet(),
			Writes: c.access.WriteSet(),
		}
	}
	for _, e := range sched.graph.edges {
		info.Edges = append(info.Edges, EdgeInfo{
			From: sched.containers[e.from].id,
			To:   sched.containers[e.to].id,
			Kind: e.kind.String(),
		})
	}
	for lvl, members := range sched.graph.levels {
		ids := make([]SystemId, 0, len(members))
		for _, idx := range members {
			ids = append(ids, sched.containers[idx].id)
		}
		info.Levels[lvl] = ids
	}
	return info
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.containers),
		Systems:     make([]SystemStats, len(s.containers)),
	}

	var totalExecs int64
	for i, c := range s.containers {
		internal := c.stats

		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Id:             c.id,
			Name:           c.name,
			Label:          c.label,
			Level:          c.level,
			ExecutionCount: internal.executionCount,
			SkipCount:      internal.skipCount,
			LastSkipReason: c.skipReason,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
