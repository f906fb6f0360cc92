package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/loom/ecs"
)

type entityInfo struct {
	id             ecs.EntityId
	archetypeId    uint32
	componentTypes []string
}

type entityBrowserCache struct {
	entities           []entityInfo
	lastArchetypeCount int
	lastEntityCount    int
}

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache:              &entityBrowserCache{},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowserComponent) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(storage)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear") {
		eb.filterText = ""
		eb.currentPage = 0
	}

	filtered := eb.filteredEntities()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Archetype")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		startIdx := eb.currentPage * eb.maxEntitiesPerPage
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(filtered))

		for i := startIdx; i < endIdx; i++ {
			entity := filtered[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selectedEntityId == entity.id
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.id), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectedEntityId = entity.id
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", entity.archetypeId))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.componentTypes, ", "))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

func (eb *EntityBrowserComponent) rebuildCacheIfNeeded(storage *ecs.Storage) {
	stats := storage.CollectStats()
	if eb.cache.entities != nil &&
		eb.cache.lastArchetypeCount == stats.ArchetypeCount &&
		eb.cache.lastEntityCount == stats.TotalEntityCount {
		return
	}

	eb.cache.lastArchetypeCount = stats.ArchetypeCount
	eb.cache.lastEntityCount = stats.TotalEntityCount
	eb.cache.entities = make([]entityInfo, 0, stats.TotalEntityCount)

	for _, archetype := range storage.GetArchetypes() {
		componentTypes := make([]string, len(archetype.Types()))
		for i, t := range archetype.Types() {
			componentTypes[i] = t.String()
		}

		for entityId := range archetype.Iter() {
			eb.cache.entities = append(eb.cache.entities, entityInfo{
				id:             entityId,
				archetypeId:    archetype.ID(),
				componentTypes: componentTypes,
			})
		}
	}

	sort.Slice(eb.cache.entities, func(i, j int) bool {
		return eb.cache.entities[i].id < eb.cache.entities[j].id
	})
}

func (eb *EntityBrowserComponent) filteredEntities() []entityInfo {
	if eb.filterText == "" {
		return eb.cache.entities
	}

	filterLower := strings.ToLower(eb.filterText)
	filtered := make([]entityInfo, 0, len(eb.cache.entities))

	for _, entity := range eb.cache.entities {
		idStr := fmt.Sprintf("%d", entity.id)
		archStr := fmt.Sprintf("0x%x", entity.archetypeId)
		componentsStr := strings.ToLower(strings.Join(entity.componentTypes, " "))

		if strings.Contains(idStr, filterLower) ||
			strings.Contains(archStr, filterLower) ||
			strings.Contains(componentsStr, filterLower) {
			filtered = append(filtered, entity)
		}
	}

	return filtered
}

func (eb *EntityBrowserComponent) GetSelectedEntity() ecs.EntityId {
	return eb.selectedEntityId
}
