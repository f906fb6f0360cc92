package ecs_test

import (
	"testing"

	"github.com/plus3/loom/ecs"
	"github.com/stretchr/testify/assert"
)

func TestAccessConflicts(t *testing.T) {
	pos := ecs.ComponentPartition[Position]()
	vel := ecs.ComponentPartition[Velocity]()
	health := ecs.ComponentPartition[Health]()

	t.Run("write write conflicts", func(t *testing.T) {
		a := ecs.NewAccess().Writes(pos)
		b := ecs.NewAccess().Writes(pos)
		assert.True(t, a.ConflictsWith(b))
		assert.True(t, b.ConflictsWith(a))
	})

	t.Run("write read conflicts both directions", func(t *testing.T) {
		writer := ecs.NewAccess().Writes(pos)
		reader := ecs.NewAccess().Reads(pos)
		assert.True(t, writer.ConflictsWith(reader))
		assert.True(t, reader.ConflictsWith(writer))
	})

	t.Run("read read does not conflict", func(t *testing.T) {
		a := ecs.NewAccess().Reads(pos, vel)
		b := ecs.NewAccess().Reads(pos, vel)
		assert.False(t, a.ConflictsWith(b))
	})

	t.Run("disjoint partitions do not conflict", func(t *testing.T) {
		a := ecs.NewAccess().Writes(pos).Reads(vel)
		b := ecs.NewAccess().Writes(health)
		assert.False(t, a.ConflictsWith(b))
	})

	t.Run("component and resource partitions are distinct", func(t *testing.T) {
		compWriter := ecs.NewAccess().Writes(ecs.ComponentPartition[Health]())
		resWriter := ecs.NewAccess().Writes(ecs.ResourcePartition[Health]())
		assert.False(t, compWriter.ConflictsWith(resWriter))
	})
}

func TestAccessNormalization(t *testing.T) {
	pos := ecs.ComponentPartition[Position]()

	// Declaring a partition as both read and written collapses to write.
	a := ecs.NewAccess().Reads(pos).Writes(pos)

	reader := ecs.NewAccess().Reads(pos)
	assert.True(t, a.ConflictsWith(reader))

	assert.Equal(t, []ecs.Partition{pos}, a.WriteSet())
}

func TestPartitionString(t *testing.T) {
	assert.Equal(t, "component:ecs_test.Position", ecs.ComponentPartition[Position]().String())
	assert.Equal(t, "resource:ecs_test.Position", ecs.ResourcePartition[Position]().String())
}
