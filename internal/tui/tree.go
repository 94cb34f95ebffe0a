package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/lowcode/pkg/jsonutil"
)

// renderTree renders the component tree in the left pane.
func renderTree(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneTree {
		titleStyle = panelTitleStyle
	}

	title := titleStyle.Render("Components")
	title += dimStyle.Render(fmt.Sprintf("  %d", len(m.rows)))

	if len(m.rows) == 0 {
		return title + "\n\n" +
			emptyStateStyle.Render("Empty page. Press a to add a component.")
	}

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	contentHeight := max(height-3, 1)

	// Scroll so the cursor is visible
	scrollStart := 0
	if m.cursor >= contentHeight {
		scrollStart = m.cursor - contentHeight + 1
	}
	end := min(scrollStart+contentHeight, len(m.rows))

	cat := m.session.Catalog()
	for i := scrollStart; i < end; i++ {
		row := m.rows[i]

		indent := strings.Repeat("  ", row.depth)
		connector := "├─"
		if row.last {
			connector = "└─"
		}

		name := row.node.Name
		if name == "" {
			name = string(row.node.Type)
		}
		maxNameLen := max(width-(row.depth*2+24), 8)
		name = jsonutil.TruncateString(name, maxNameLen)

		if i == m.cursor {
			line := fmt.Sprintf("%s%s %s %s %s", indent, connector, row.node.Type, name, shortID(row.node.ID, 12))
			lines = append(lines, nodeSelectedStyle.Width(width).Render(line))
			continue
		}

		line := fmt.Sprintf("%s%s %s %s %s",
			indent,
			treeBranchStyle.Render(connector),
			typeTag(cat, row.node.Type),
			nodeNormalStyle.Render(name),
			treeIDStyle.Render(shortID(row.node.ID, 12)))
		lines = append(lines, line)
	}

	// Scroll indicator
	if len(m.rows) > contentHeight {
		pct := 0
		if len(m.rows) > 1 {
			pct = m.cursor * 100 / (len(m.rows) - 1)
		}
		lines = append(lines, dimStyle.Render(
			fmt.Sprintf(" %d/%d (%d%%)", m.cursor+1, len(m.rows), pct)))
	}

	return strings.Join(lines, "\n")
}

// renderTreePanel wraps the tree in a styled panel.
func renderTreePanel(m *Model, width, height int) string {
	content := renderTree(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneTree {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}
