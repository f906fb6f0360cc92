package debugui

import "github.com/plus3/loom/ecs"

func SpawnDebugUI(storage *ecs.Storage) {
	storage.Spawn(NewEntityBrowserComponent(100))
	storage.Spawn(NewPerformanceStatsComponent(120))
	storage.Spawn(NewScheduleInspectorComponent())
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[EntityBrowserComponent](registry)
	ecs.RegisterComponent[PerformanceStatsComponent](registry)
	ecs.RegisterComponent[ScheduleInspectorComponent](registry)
	ecs.RegisterComponent[ImguiItem](registry)
}
