package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader produces the top bar:
//
//	LOWCODE  |  Landing page  |  12 components  |  unsaved
func renderHeader(m *Model) string {
	brand := headerBrandStyle.Render("LOWCODE")
	sep := headerSepStyle.Render(" │ ")

	var parts []string
	parts = append(parts, brand)

	if !m.showProjects && m.session != nil {
		name := "Untitled"
		if m.adapter != nil && m.adapter.Name() != "" {
			name = m.adapter.Name()
		}
		parts = append(parts, sep, headerMetaStyle.Render(name))
		parts = append(parts, sep, headerMetaStyle.Render(
			fmt.Sprintf("%d components", m.session.Len())))
		if n := m.assets.Len(); n > 0 {
			parts = append(parts, sep, headerMetaStyle.Render(
				fmt.Sprintf("%d local assets", n)))
		}
		if m.session.IsPreview() {
			parts = append(parts, sep, headerMetaStyle.Render("preview"))
		}
		if m.dirty {
			parts = append(parts, sep, dirtyStyle.Render("unsaved"))
		}
	} else {
		parts = append(parts, sep, headerMetaStyle.Render("Projects"))
	}

	content := strings.Join(parts, "")

	return headerBarStyle.Width(m.width).Render(content)
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left, right string
	k := m.keys

	switch {
	case m.mode == modeRename || m.mode == modeUpload:
		left = statusStyle.Render(m.input.View())
		right = renderHints([]hint{{"enter", "apply"}, {"esc", "cancel"}})
	case m.mode == modePalette:
		right = renderHints(bindingHints(k.Up, k.Down, k.Open, k.Back))
	case m.showProjects:
		right = renderHints(bindingHints(k.Up, k.Down, k.Open, k.New, k.Quit))
	case m.session.IsPreview():
		right = renderHints(bindingHints(k.Preview, k.Quit))
	default:
		right = renderHints(bindingHints(
			k.AddRoot, k.AddChild, k.Insert, k.Delete, k.Duplicate,
			k.MoveUp, k.MoveDown, k.Rename, k.Upload, k.Preview, k.Save, k.Back))
	}

	if left == "" && m.statusMsg != "" {
		left = statusStyle.Render(m.statusMsg)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(bar)
}

type hint struct {
	key  string
	desc string
}

func bindingHints(bindings ...key.Binding) []hint {
	hints := make([]hint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, hint{h.Key, h.Desc})
	}
	return hints
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
