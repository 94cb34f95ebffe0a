package tui

import (
	"fmt"
	"strings"
)

// renderPalette renders the component type picker.
func renderPalette(m *Model) string {
	var title string
	switch m.action {
	case actionAddChild:
		id, _ := m.currentID()
		title = "Add child to " + shortID(id, 16)
	case actionInsert:
		title = fmt.Sprintf("Insert at position %d", m.rootIndex())
	default:
		title = "Add component"
	}

	var lines []string
	lines = append(lines, panelTitleStyle.Render(title), "")

	cat := m.session.Catalog()
	for i, def := range cat.Definitions() {
		label := fmt.Sprintf("%-10s %s", def.Name, paletteCategoryStyle.Render(string(def.Category)))
		if i == m.paletteCursor {
			lines = append(lines, nodeSelectedStyle.Render(fmt.Sprintf("› %-10s %s", def.Name, def.Category)))
			continue
		}
		lines = append(lines, "  "+typeStyle(cat, def.Type).Render(label))
	}

	return overlayStyle.Render(strings.Join(lines, "\n"))
}
