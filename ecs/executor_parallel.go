package ecs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallelExecutor dispatches each dependency level across a bounded worker
// pool. Containers within a level are mutually non-conflicting by
// construction of the ordering graph, so no locking beyond the level barrier
// is needed. The next level starts only once the current one has fully
// retired.
type parallelExecutor struct {
	workers int
	levels  [][]*container
}

func (e *parallelExecutor) rebuild(s *schedule) {
	e.levels = e.levels[:0]
	for _, level := range s.graph.levels {
		batch := make([]*container, 0, len(level))
		for _, idx := range level {
			batch = append(batch, s.containers[idx])
		}
		e.levels = append(e.levels, batch)
	}
}

func (e *parallelExecutor) runTick(s *schedule, t Tick) error {
	for _, level := range e.levels {
		g, ctx := errgroup.WithContext(context.Background())
		if e.workers > 0 {
			g.SetLimit(e.workers)
		}

		for _, c := range level {
			if !c.shouldRun {
				continue
			}
			g.Go(func() error {
				// A sibling in this level already failed; in-flight
				// systems finish, undispatched ones stand down.
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				return c.execute(t)
			})
		}

		// Wait drains every started system before reporting the first
		// failure; a failed level halts all subsequent levels.
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
