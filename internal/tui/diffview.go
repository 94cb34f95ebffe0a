package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/lowcode/internal/editor"
	"github.com/Mr-Dark-debug/lowcode/pkg/jsonutil"
)

// overrides lists how node's props and styles differ from the catalog
// defaults of its type. Paths are prefixed with "props." or "styles.".
func overrides(m *Model, node *editor.Node) ([]jsonutil.Change, error) {
	def, ok := m.session.Catalog().Lookup(node.Type)
	if !ok {
		return nil, fmt.Errorf("no catalog entry for %q", node.Type)
	}

	defStyles, err := jsonutil.ToMap(def.DefaultStyles)
	if err != nil {
		return nil, err
	}
	nodeStyles, err := jsonutil.ToMap(node.Styles)
	if err != nil {
		return nil, err
	}

	changes := jsonutil.Diff(
		map[string]any{"props": def.DefaultProps, "styles": defStyles},
		map[string]any{"props": node.Props, "styles": nodeStyles},
	)
	return changes, nil
}

// renderDiffView renders the overrides pane (bottom).
func renderDiffView(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneOverrides {
		titleStyle = panelTitleStyle
	}

	title := titleStyle.Render("Overrides")

	id, ok := m.currentID()
	if !ok {
		return title
	}
	node, ok := m.session.Locate(id)
	if !ok {
		return title
	}

	changes, err := overrides(m, node)
	if err != nil {
		return title + "\n" + diffDelStyle.Render(err.Error())
	}
	if len(changes) == 0 {
		return title + "\n" +
			diffContextStyle.Render("Matches the "+string(node.Type)+" defaults.")
	}

	title += dimStyle.Render(fmt.Sprintf("  %d changes", len(changes)))

	var lines []string
	valWidth := max(width-len("~ ")-24, 8)
	for _, c := range changes {
		switch c.Type {
		case "add":
			lines = append(lines,
				diffAddStyle.Render("+ "+c.Path+": "+jsonutil.TruncateString(c.NewValue, valWidth)))
		case "delete":
			lines = append(lines,
				diffDelStyle.Render("- "+c.Path+": "+jsonutil.TruncateString(c.OldValue, valWidth)))
		case "update":
			lines = append(lines, diffModStyle.Render("~ "+c.Path))
			lines = append(lines,
				"  "+diffDelStyle.Render("- "+jsonutil.TruncateString(c.OldValue, width-10)))
			lines = append(lines,
				"  "+diffAddStyle.Render("+ "+jsonutil.TruncateString(c.NewValue, width-10)))
		}
	}

	// Apply scroll offset
	contentHeight := height - 2
	if m.diffScroll > 0 && m.diffScroll < len(lines) {
		lines = lines[m.diffScroll:]
	}
	if len(lines) > contentHeight {
		lines = lines[:max(contentHeight, 0)]
	}

	return title + "\n" + strings.Join(lines, "\n")
}

// renderDiffPanel wraps the diff view in a styled panel.
func renderDiffPanel(m *Model, width, height int) string {
	content := renderDiffView(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneOverrides {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}
