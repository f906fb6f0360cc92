package ecs

import "reflect"

// Commands provides a buffer for deferred ECS operations that are executed at
// the end of a tick. This prevents structural changes to the ECS storage
// during system execution. Every container owns one buffer; the scheduler
// flushes buffers in registration order once all systems have retired, so
// structural changes land identically under both executor strategies.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// empty reports whether the buffer holds no queued operations.
func (c *Commands) empty() bool {
	return len(c.spawns) == 0 && len(c.deletes) == 0 &&
		len(c.adds) == 0 && len(c.removes) == 0 && len(c.defers) == 0
}

// flushState tracks entity ids across the buffers of one tick. Structural
// changes move entities between archetypes and change their ids; commands
// queued by a later system against a pre-move id must land on the entity's
// current location, and commands against a deleted entity must be ignored.
type flushState struct {
	deleted map[EntityId]bool
	moved   map[EntityId]EntityId
}

func newFlushState() *flushState {
	return &flushState{
		deleted: make(map[EntityId]bool),
		moved:   make(map[EntityId]EntityId),
	}
}

// resolve follows the move chain to the entity's current id.
func (st *flushState) resolve(id EntityId) EntityId {
	seen := map[EntityId]bool{id: true}
	for {
		next, ok := st.moved[id]
		if !ok || seen[next] {
			return id
		}
		seen[next] = true
		id = next
	}
}

// Flush flushes all commands to the provided storage, resetting the buffer state
func (c *Commands) Flush(storage *Storage) {
	c.flushInto(storage, newFlushState())
}

// flushInto applies the buffer with a shared flush state, so the scheduler can
// chain the buffers of all containers in registration order.
func (c *Commands) flushInto(storage *Storage, st *flushState) {
	for _, id := range c.deletes {
		id = st.resolve(id)
		if st.deleted[id] {
			continue
		}
		storage.Delete(id)
		st.deleted[id] = true
	}

	for _, cmd := range c.removes {
		id := st.resolve(cmd.entity)
		if st.deleted[id] {
			continue
		}
		newId := storage.RemoveComponent(id, cmd.compType)
		if newId == 0 {
			st.deleted[id] = true
		} else if newId != id {
			st.moved[id] = newId
		}
	}

	for _, cmd := range c.adds {
		id := st.resolve(cmd.entity)
		if st.deleted[id] {
			continue
		}
		newId := storage.AddComponent(id, cmd.component)
		if newId != id {
			st.moved[id] = newId
		}
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
