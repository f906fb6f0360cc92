package ecs

import (
	"fmt"
	"sort"
)

type edgeKind uint8

const (
	// edgeExplicit comes from a declared Before/After constraint.
	edgeExplicit edgeKind = iota
	// edgeConflict was inserted because two systems' access descriptors
	// conflict and no explicit ordering related them.
	edgeConflict
)

func (k edgeKind) String() string {
	if k == edgeConflict {
		return "conflict"
	}
	return "explicit"
}

// graphEdge is a directed ordering requirement: from must complete before to
// starts. Endpoints are indices into the registration-ordered container slice.
type graphEdge struct {
	from, to int
	kind     edgeKind
}

// orderingGraph is the acyclic topology over the registered containers,
// rebuilt whenever the system set changes and treated as an immutable
// snapshot within a tick.
type orderingGraph struct {
	containers []*container
	edges      []graphEdge
	adj        [][]int
	order      []int   // topological order, registration order among ties
	levels     [][]int // dependency levels, each sorted by registration order
}

// buildOrderingGraph computes the schedule topology for the given containers:
// explicit edges from declared constraints, implicit edges between conflicting
// pairs not already ordered (tie-broken by registration order), then a cycle
// check and dependency levels. The build is deterministic and idempotent for
// an unchanged container set.
func buildOrderingGraph(containers []*container) (*orderingGraph, error) {
	g := &orderingGraph{
		containers: containers,
		adj:        make([][]int, len(containers)),
	}

	if err := g.addExplicitEdges(); err != nil {
		return nil, err
	}
	g.addConflictEdges()

	if err := g.sortTopologically(); err != nil {
		return nil, err
	}
	g.computeLevels()
	return g, nil
}

func (g *orderingGraph) addEdge(from, to int, kind edgeKind) {
	for _, e := range g.edges {
		if e.from == from && e.to == to {
			return
		}
	}
	g.edges = append(g.edges, graphEdge{from: from, to: to, kind: kind})
	g.adj[from] = append(g.adj[from], to)
}

func (g *orderingGraph) addExplicitEdges() error {
	for i, c := range g.containers {
		for _, target := range c.before {
			resolved, err := g.resolveTarget(i, target)
			if err != nil {
				return err
			}
			for _, j := range resolved {
				g.addEdge(i, j, edgeExplicit)
			}
		}
		for _, target := range c.after {
			resolved, err := g.resolveTarget(i, target)
			if err != nil {
				return err
			}
			for _, j := range resolved {
				g.addEdge(j, i, edgeExplicit)
			}
		}
	}
	return nil
}

// resolveTarget maps a constraint target to container indices, excluding the
// constrained container itself. A target matching nothing is a configuration
// error surfaced with the offending system's name.
func (g *orderingGraph) resolveTarget(self int, target string) ([]int, error) {
	var resolved []int
	for j, other := range g.containers {
		if j != self && other.matchesTarget(target) {
			resolved = append(resolved, j)
		}
	}
	if len(resolved) == 0 {
		return nil, &ConfigurationError{
			Reason:  fmt.Sprintf("ordering constraint %q resolves to no registered system", target),
			Systems: []string{g.containers[self].name},
		}
	}
	return resolved, nil
}

// addConflictEdges inserts an edge for every conflicting pair with no path
// between them in either direction. Pairs are visited in registration order
// and the edge always points from the earlier registration to the later one,
// so conflicting systems execute in a stable, reproducible order.
func (g *orderingGraph) addConflictEdges() {
	for i := 0; i < len(g.containers); i++ {
		for j := i + 1; j < len(g.containers); j++ {
			if !g.containers[i].access.ConflictsWith(g.containers[j].access) {
				continue
			}
			if g.reachable(i, j) || g.reachable(j, i) {
				continue
			}
			g.addEdge(i, j, edgeConflict)
		}
	}
}

// reachable reports whether a path from exists to to over the current edges.
func (g *orderingGraph) reachable(from, to int) bool {
	if from == to {
		return true
	}
	visited := make([]bool, len(g.containers))
	stack := []int{from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v == to {
			return true
		}
		if visited[v] {
			continue
		}
		visited[v] = true
		stack = append(stack, g.adj[v]...)
	}
	return false
}

// sortTopologically runs Kahn's algorithm, always dispatching the ready node
// with the lowest registration order. A leftover means a cycle; the error
// names exactly the containers participating in one.
func (g *orderingGraph) sortTopologically() error {
	n := len(g.containers)
	indegree := make([]int, n)
	for _, e := range g.edges {
		indegree[e.to]++
	}

	remaining := make([]bool, n)
	for i := range remaining {
		remaining[i] = true
	}

	order := make([]int, 0, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if remaining[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return g.cycleError(remaining)
		}
		remaining[next] = false
		order = append(order, next)
		for _, to := range g.adj[next] {
			indegree[to]--
		}
	}

	g.order = order
	return nil
}

// cycleError trims leftover nodes that merely depend on a cycle, leaving only
// true cycle participants for the error report.
func (g *orderingGraph) cycleError(leftover []bool) error {
	// Repeatedly drop leftover nodes with no outgoing edge into the leftover
	// set; what survives lies on at least one cycle.
	for changed := true; changed; {
		changed = false
		for i, in := range leftover {
			if !in {
				continue
			}
			hasOut := false
			for _, to := range g.adj[i] {
				if leftover[to] {
					hasOut = true
					break
				}
			}
			if !hasOut {
				leftover[i] = false
				changed = true
			}
		}
	}

	var names []string
	for i, in := range leftover {
		if in {
			names = append(names, g.containers[i].name)
		}
	}
	sort.Strings(names)
	return &ConfigurationError{Reason: "ordering cycle detected", Systems: names}
}

// computeLevels assigns each container the length of its longest predecessor
// chain. Containers sharing a level are mutually non-conflicting by
// construction: every conflicting pair carries an edge, and an edge's
// endpoints always land on different levels.
func (g *orderingGraph) computeLevels() {
	pred := make([][]int, len(g.containers))
	for _, e := range g.edges {
		pred[e.to] = append(pred[e.to], e.from)
	}

	level := make([]int, len(g.containers))
	maxLevel := 0
	for _, v := range g.order {
		for _, p := range pred[v] {
			if level[p]+1 > level[v] {
				level[v] = level[p] + 1
			}
		}
		if level[v] > maxLevel {
			maxLevel = level[v]
		}
	}

	levels := make([][]int, maxLevel+1)
	for i, c := range g.containers {
		levels[level[i]] = append(levels[level[i]], i)
		c.level = level[i]
	}
	if len(g.containers) == 0 {
		levels = nil
	}
	g.levels = levels
}
