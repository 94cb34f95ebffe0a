package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
	"github.com/Mr-Dark-debug/lowcode/pkg/jsonutil"
)

// renderPreview draws the page as plain terminal blocks, without any
// editor chrome.
func renderPreview(m *Model, width, height int) string {
	forest := m.session.Forest()
	if len(forest) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			emptyStateStyle.Render("Nothing to preview."))
	}

	inner := max(width-4, 10)
	blocks := make([]string, 0, len(forest))
	for _, n := range forest {
		blocks = append(blocks, previewNode(n, inner))
	}

	out := previewStyle.Width(width).Render(strings.Join(blocks, "\n"))
	lines := strings.Split(out, "\n")
	if len(lines) > height {
		lines = lines[:max(height, 0)]
	}
	return strings.Join(lines, "\n")
}

// previewNode renders one node and its children within width columns.
func previewNode(n *editor.Node, width int) string {
	str := func(key string) string {
		s, _ := n.Props[key].(string)
		return s
	}

	switch n.Type {
	case catalog.TypeText:
		text := str("content")
		if tag := str("tag"); strings.HasPrefix(tag, "h") {
			return lipgloss.NewStyle().Bold(true).Width(width).Render(text)
		}
		return lipgloss.NewStyle().Width(width).Render(text)

	case catalog.TypeButton:
		return lipgloss.NewStyle().Reverse(true).Padding(0, 2).Render(str("text"))

	case catalog.TypeInput:
		return fieldBox(str("placeholder"), 1, width)

	case catalog.TypeTextarea:
		rows := 3
		if r, ok := n.Props["rows"].(float64); ok && r > 0 {
			rows = int(r)
		}
		return fieldBox(str("placeholder"), rows, width)

	case catalog.TypeImage:
		label := str("alt")
		if label == "" {
			label = "image"
		}
		src := jsonutil.TruncateString(str("src"), max(width-len(label)-6, 8))
		return dimStyle.Render(fmt.Sprintf("[▣ %s] %s", label, src))

	case catalog.TypeLink:
		return lipgloss.NewStyle().Underline(true).Foreground(colorBlue).Render(str("text")) +
			dimStyle.Render(" → "+str("href"))

	case catalog.TypeDivider:
		return treeBranchStyle.Render(strings.Repeat("─", width))

	case catalog.TypeRow:
		if len(n.Children) == 0 {
			return ""
		}
		cell := max(width/len(n.Children)-1, 4)
		cols := make([]string, 0, len(n.Children)*2)
		for i, c := range n.Children {
			if i > 0 {
				cols = append(cols, " ")
			}
			cols = append(cols, lipgloss.NewStyle().Width(cell).Render(previewNode(c, cell)))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	case catalog.TypeCard:
		body := previewChildren(n, width-4)
		if title := str("title"); title != "" {
			body = lipgloss.NewStyle().Bold(true).Render(title) + "\n" + body
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDivider).
			Padding(0, 1).
			Width(width - 2).
			Render(strings.TrimRight(body, "\n"))

	default:
		return previewChildren(n, width)
	}
}

func previewChildren(n *editor.Node, width int) string {
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, previewNode(c, width))
	}
	return strings.Join(parts, "\n")
}

func fieldBox(placeholder string, rows, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorTextMuted).
		Foreground(colorTextDim).
		Width(max(min(width-2, 40), 8)).
		Height(rows).
		Render(placeholder)
}
