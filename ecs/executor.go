package ecs

// Strategy selects how a scheduler executes the systems of a tick. The set is
// closed: every strategy obeys the same conflict rule, differing only in how
// non-conflicting work overlaps.
type Strategy int

const (
	// Sequential runs systems one at a time in topological order. Trivially
	// correct; the default.
	Sequential Strategy = iota
	// Parallel runs each dependency level under a bounded worker pool,
	// with a barrier between levels.
	Parallel
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "Sequential"
	case Parallel:
		return "Parallel"
	default:
		return "Unknown"
	}
}

// schedule is the executable snapshot produced by one successful rebuild.
// It is immutable for its lifetime; a new registration produces a new one.
type schedule struct {
	containers []*container // registration order
	graph      *orderingGraph
}

// executor consumes the ordering graph and invokes systems each tick.
// rebuild recomputes cached dispatch data and must be idempotent for an
// unchanged schedule. runTick returns only once all dispatched work has
// retired; no concurrent work escapes the call.
type executor interface {
	rebuild(s *schedule)
	runTick(s *schedule, t Tick) error
}

func newExecutor(strategy Strategy, workers int) executor {
	switch strategy {
	case Parallel:
		return &parallelExecutor{workers: workers}
	default:
		return &sequentialExecutor{}
	}
}
