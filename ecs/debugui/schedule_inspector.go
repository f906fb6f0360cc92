package debugui

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/loom/ecs"
)

func NewScheduleInspectorComponent() ScheduleInspectorComponent {
	return ScheduleInspectorComponent{
		showEdges:      true,
		showConditions: true,
	}
}

// Render draws the current schedule: systems with their derived access and
// dependency level, the ordering edges between them, and per-system runtime
// statistics including skip reasons.
func (si *ScheduleInspectorComponent) Render(scheduler *ecs.Scheduler) {
	if !imgui.BeginV("Schedule Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	graph := scheduler.Graph()
	stats := scheduler.GetStats()

	imgui.Text(fmt.Sprintf("Strategy: %s", scheduler.Strategy()))
	imgui.Text(fmt.Sprintf("Systems: %d, Edges: %d, Levels: %d",
		len(graph.Systems), len(graph.Edges), len(graph.Levels)))

	names := make(map[ecs.SystemId]string, len(graph.Systems))
	for _, sys := range graph.Systems {
		names[sys.Id] = sys.Name
	}

	imgui.Separator()

	if imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ScheduleSystems", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Name")
			imgui.TableSetupColumn("Label")
			imgui.TableSetupColumn("Level")
			imgui.TableSetupColumn("Reads")
			imgui.TableSetupColumn("Writes")
			imgui.TableHeadersRow()

			for _, sys := range graph.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(sys.Label)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.Level))
				imgui.TableNextColumn()
				imgui.Text(partitionList(sys.Reads))
				imgui.TableNextColumn()
				imgui.Text(partitionList(sys.Writes))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if si.showEdges && imgui.TreeNodeStr("Ordering Edges") {
		if len(graph.Edges) == 0 {
			imgui.Text("No ordering constraints; all systems may run concurrently.")
		}
		for _, edge := range graph.Edges {
			imgui.BulletText(fmt.Sprintf("%s -> %s (%s)",
				names[edge.From], names[edge.To], edge.Kind))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Levels") {
		for i, level := range graph.Levels {
			levelNames := make([]string, len(level))
			for j, id := range level {
				levelNames[j] = names[id]
			}
			imgui.BulletText(fmt.Sprintf("Level %d: %s", i, strings.Join(levelNames, ", ")))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Runtime Stats") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ScheduleStats", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Name")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Skips")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, sys := range stats.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.SkipCount))
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
			}

			imgui.EndTable()
		}

		if si.showConditions {
			for _, sys := range stats.Systems {
				if sys.LastSkipReason != "" {
					imgui.BulletText(fmt.Sprintf("%s last skipped: %s", sys.Name, sys.LastSkipReason))
				}
			}
		}
		imgui.TreePop()
	}

	imgui.End()
}

func partitionList(partitions []ecs.Partition) string {
	if len(partitions) == 0 {
		return "-"
	}
	parts := make([]string, len(partitions))
	for i, p := range partitions {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
