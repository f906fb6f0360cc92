package ecs

import "sync"

// AccessViolation records two systems whose access windows overlapped in time
// while their descriptors conflicted. A correctly built ordering graph never
// produces one.
type AccessViolation struct {
	SystemA    string
	SystemB    string
	Partitions []Partition
}

// AccessTracker observes the access windows the executors open around each
// system's execution and records conflicting overlaps. The mutex here is
// instrumentation only; it plays no part in scheduling correctness.
type AccessTracker struct {
	mu         sync.Mutex
	active     map[string]*Access
	violations []AccessViolation

	// maxActive tracks the peak number of concurrently open windows,
	// useful for asserting that parallelism actually happened.
	maxActive int
}

func newAccessTracker() *AccessTracker {
	return &AccessTracker{
		active: make(map[string]*Access),
	}
}

func (t *AccessTracker) begin(system string, access *Access) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for other, otherAccess := range t.active {
		if access.ConflictsWith(otherAccess) {
			t.violations = append(t.violations, AccessViolation{
				SystemA:    other,
				SystemB:    system,
				Partitions: access.conflictingPartitions(otherAccess),
			})
		}
	}

	t.active[system] = access
	if len(t.active) > t.maxActive {
		t.maxActive = len(t.active)
	}
}

func (t *AccessTracker) end(system string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, system)
}

// Violations returns every conflicting overlap observed so far.
func (t *AccessTracker) Violations() []AccessViolation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]AccessViolation, len(t.violations))
	copy(out, t.violations)
	return out
}

// MaxConcurrent returns the peak number of systems whose access windows were
// open at the same time.
func (t *AccessTracker) MaxConcurrent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxActive
}

// Reset clears recorded violations and the concurrency peak.
func (t *AccessTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.violations = nil
	t.maxActive = 0
}
