package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/lowcode/pkg/jsonutil"
	"github.com/Mr-Dark-debug/lowcode/pkg/timeutil"
)

// renderProjectList renders the project selection screen.
func renderProjectList(m *Model) string {
	if len(m.projects) == 0 {
		empty := emptyStateStyle.Render(
			"No projects yet.\n\n" +
				"Press n to start a new page,\n" +
				"then ctrl+s to save it.")
		return lipgloss.Place(
			m.width,
			m.height-3, // minus header + footer
			lipgloss.Center,
			lipgloss.Center,
			empty,
		)
	}

	title := panelTitleStyle.Render("Projects")
	count := dimStyle.Render(fmt.Sprintf("  %d total", len(m.projects)))
	heading := title + count

	var lines []string
	lines = append(lines, heading)
	lines = append(lines, "")

	// Visible range for scrolling
	maxVisible := max(m.height-6, 5)

	startIdx := 0
	if m.selectedProject >= maxVisible {
		startIdx = m.selectedProject - maxVisible + 1
	}
	endIdx := min(startIdx+maxVisible, len(m.projects))

	now := m.now()
	for i := startIdx; i < endIdx; i++ {
		p := m.projects[i]

		id := dimStyle.Render(fmt.Sprintf("#%d", p.ID))
		updated := dimStyle.Render("updated " + timeutil.RelativeTime(p.UpdatedAt, now))
		desc := ""
		if p.Description != "" {
			desc = dimStyle.Render("  " + jsonutil.TruncateString(p.Description, 40))
		}

		content := fmt.Sprintf("%s  %s  %s%s", id, p.Name, updated, desc)

		if i == m.selectedProject {
			lines = append(lines, projectSelectedStyle.Width(m.width-4).Render(content))
		} else {
			lines = append(lines, projectItemStyle.Width(m.width-4).Render(content))
		}
	}

	return strings.Join(lines, "\n")
}
