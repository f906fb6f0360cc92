package ecs

// UpdateFrame is the per-system view of one tick: the delta time, the shared
// storage, and the system's own command buffer. Each container receives its
// own frame so command buffers are never shared between concurrently running
// systems; buffers are flushed in registration order once the tick retires.
type UpdateFrame struct {
	Tick      uint64
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(t Tick, commands *Commands) *UpdateFrame {
	return &UpdateFrame{
		Tick:      t.Number,
		DeltaTime: t.DeltaTime,
		Commands:  commands,
		Storage:   t.Storage,
	}
}
