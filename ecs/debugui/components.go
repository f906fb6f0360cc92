package debugui

import (
	"github.com/plus3/loom/ecs"
)

type EntityBrowserComponent struct {
	cache              *entityBrowserCache
	selectedEntityId   ecs.EntityId
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

type PerformanceStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type ScheduleInspectorComponent struct {
	showEdges      bool
	showConditions bool
}
