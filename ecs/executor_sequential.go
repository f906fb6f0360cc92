package ecs

// sequentialExecutor processes containers inline, in topological order broken
// by registration order. Used as the baseline and as the fallback when no
// concurrency is requested.
type sequentialExecutor struct {
	runOrder []*container
}

func (e *sequentialExecutor) rebuild(s *schedule) {
	e.runOrder = e.runOrder[:0]
	for _, idx := range s.graph.order {
		e.runOrder = append(e.runOrder, s.containers[idx])
	}
}

func (e *sequentialExecutor) runTick(s *schedule, t Tick) error {
	for _, c := range e.runOrder {
		if !c.shouldRun {
			continue
		}
		if err := c.execute(t); err != nil {
			return err
		}
	}
	return nil
}
