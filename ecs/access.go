package ecs

import (
	"reflect"
	"sort"
)

type partitionKind uint8

const (
	partitionComponent partitionKind = iota
	partitionResource
)

// Partition identifies one independently lockable slice of storage: either all
// instances of a component type, or a single global resource. Access
// descriptors are sets of partitions.
type Partition struct {
	kind partitionKind
	typ  reflect.Type
}

// ComponentPartition returns the partition covering every instance of
// component type T across all archetypes.
func ComponentPartition[T any]() Partition {
	return Partition{kind: partitionComponent, typ: reflect.TypeFor[T]()}
}

// ResourcePartition returns the partition covering the global resource of type T.
func ResourcePartition[T any]() Partition {
	return Partition{kind: partitionResource, typ: reflect.TypeFor[T]()}
}

func componentPartitionOf(t reflect.Type) Partition {
	return Partition{kind: partitionComponent, typ: t}
}

func resourcePartitionOf(t reflect.Type) Partition {
	return Partition{kind: partitionResource, typ: t}
}

func (p Partition) String() string {
	if p.typ == nil {
		return "<nil>"
	}
	switch p.kind {
	case partitionResource:
		return "resource:" + p.typ.String()
	default:
		return "component:" + p.typ.String()
	}
}

// Access declares which partitions a system reads and writes. It is computed
// once at registration and treated as immutable afterwards; the conflict rule
// in ConflictsWith is the single source of truth both executor strategies obey.
type Access struct {
	reads  map[Partition]struct{}
	writes map[Partition]struct{}
}

// NewAccess returns an empty access descriptor. Use the Reads/Writes builder
// methods to populate it.
func NewAccess() *Access {
	return &Access{
		reads:  make(map[Partition]struct{}),
		writes: make(map[Partition]struct{}),
	}
}

// Reads marks the given partitions as read by the system.
func (a *Access) Reads(parts ...Partition) *Access {
	for _, p := range parts {
		a.reads[p] = struct{}{}
	}
	return a
}

// Writes marks the given partitions as written by the system. Write access
// subsumes read access to the same partition.
func (a *Access) Writes(parts ...Partition) *Access {
	for _, p := range parts {
		a.writes[p] = struct{}{}
	}
	return a
}

// merge folds other into a.
func (a *Access) merge(other *Access) {
	if other == nil {
		return
	}
	for p := range other.reads {
		a.reads[p] = struct{}{}
	}
	for p := range other.writes {
		a.writes[p] = struct{}{}
	}
}

// normalize removes reads that are shadowed by a write of the same partition.
// Write access is exclusive, so the overlap carries no extra information.
func (a *Access) normalize() {
	for p := range a.writes {
		delete(a.reads, p)
	}
}

// demoteWritesToReads converts every declared write into a read. Used when a
// system field is tagged `ecs:"read"`.
func (a *Access) demoteWritesToReads() {
	for p := range a.writes {
		a.reads[p] = struct{}{}
		delete(a.writes, p)
	}
}

// ConflictsWith reports whether two descriptors cannot safely execute
// concurrently: either writes the same partition, or one writes a partition
// the other reads. The relation is symmetric.
func (a *Access) ConflictsWith(b *Access) bool {
	if a == nil || b == nil {
		return false
	}
	for p := range a.writes {
		if _, ok := b.writes[p]; ok {
			return true
		}
		if _, ok := b.reads[p]; ok {
			return true
		}
	}
	for p := range b.writes {
		if _, ok := a.reads[p]; ok {
			return true
		}
	}
	return false
}

// conflictingPartitions returns the partitions responsible for a conflict
// between a and b, for diagnostics.
func (a *Access) conflictingPartitions(b *Access) []Partition {
	seen := make(map[Partition]struct{})
	for p := range a.writes {
		if _, ok := b.writes[p]; ok {
			seen[p] = struct{}{}
		}
		if _, ok := b.reads[p]; ok {
			seen[p] = struct{}{}
		}
	}
	for p := range b.writes {
		if _, ok := a.reads[p]; ok {
			seen[p] = struct{}{}
		}
	}
	return sortedPartitions(seen)
}

// ReadSet returns the read partitions in a stable order.
func (a *Access) ReadSet() []Partition {
	return sortedPartitions(a.reads)
}

// WriteSet returns the written partitions in a stable order.
func (a *Access) WriteSet() []Partition {
	return sortedPartitions(a.writes)
}

func sortedPartitions(set map[Partition]struct{}) []Partition {
	parts := make([]Partition, 0, len(set))
	for p := range set {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].String() < parts[j].String()
	})
	return parts
}
