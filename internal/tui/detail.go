package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/lowcode/internal/assets"
	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/pkg/jsonutil"
	"github.com/Mr-Dark-debug/lowcode/pkg/timeutil"
)

// renderDetail renders the selected node's fields (right side).
func renderDetail(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneDetail {
		titleStyle = panelTitleStyle
	}
	title := titleStyle.Render("Detail")

	id, ok := m.currentID()
	if !ok {
		return title + "\n\n" +
			emptyStateStyle.Render("Select a component to view details.")
	}
	node, ok := m.session.Locate(id)
	if !ok {
		return title
	}

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	// ── Identity ──

	lines = append(lines, detailRow("Type", string(node.Type)))
	lines = append(lines, detailRow("Name", node.Name))
	lines = append(lines, detailRow("ID", node.ID))
	if parent, ok := m.session.Parent(id); ok && parent != "" {
		lines = append(lines, detailRow("Parent", parent))
	}
	if i, ok := m.session.Index(id); ok {
		lines = append(lines, detailRow("Position", fmt.Sprintf("%d", i)))
	}
	if node.Children != nil {
		lines = append(lines, detailRow("Children", fmt.Sprintf("%d", len(node.Children))))
	}

	// ── Props ──

	def, hasDef := m.session.Catalog().Lookup(node.Type)
	if len(node.Props) > 0 {
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render("Props"))

		labels := map[string]string{}
		if hasDef {
			for _, ps := range def.PropSchema {
				labels[ps.Name] = ps.Label
			}
		}
		for _, k := range sortedKeys(node.Props) {
			label := k
			if l, ok := labels[k]; ok && l != "" {
				label = l
			}
			lines = append(lines, detailRow(label, jsonutil.TruncateString(formatValue(node.Props[k]), width-len(label)-4)))
		}
	}

	// ── Asset ──

	if node.Type == catalog.TypeImage {
		if src, _ := node.Props["src"].(string); assets.IsLocalReference(src) {
			lines = append(lines, "")
			lines = append(lines, detailSectionStyle.Render("Asset"))
			if a, ok := m.assets.Lookup(src); ok {
				lines = append(lines, detailRow("File", a.Filename))
				lines = append(lines, detailRow("MIME", a.MimeType))
				lines = append(lines, detailRow("Size", timeutil.FormatBytes(int64(a.Size()))))
				lines = append(lines, detailRow("Added", timeutil.RelativeTime(a.CreatedAt, m.now())))
			} else {
				lines = append(lines, diffDelStyle.Render("missing local asset "+src))
			}
		}
	}

	// ── Styles ──

	if styles, err := jsonutil.ToMap(node.Styles); err == nil && len(styles) > 0 {
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render("Styles"))
		for _, k := range sortedKeys(styles) {
			lines = append(lines, detailRow(k, formatValue(styles[k])))
		}
	}

	// ── Page summary ──

	if len(m.rows) > 0 {
		barWidth := min(width-16, 40)
		if barWidth > 4 {
			counts := map[catalog.Category]int{}
			for _, r := range m.rows {
				if d, ok := m.session.Catalog().Lookup(r.node.Type); ok {
					counts[d.Category]++
				}
			}
			lines = append(lines, "")
			lines = append(lines, detailSectionStyle.Render("Page"))
			lines = append(lines, renderUsageBar("Layout", counts[catalog.CategoryLayout], len(m.rows), barWidth, colorCyan))
			lines = append(lines, renderUsageBar("Basic", counts[catalog.CategoryBasic], len(m.rows), barWidth, colorGreen))
			lines = append(lines, renderUsageBar("Advanced", counts[catalog.CategoryAdvanced], len(m.rows), barWidth, colorPurple))
		}
	}

	// Truncate to available height
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// renderDetailPanel wraps detail in a styled panel.
func renderDetailPanel(m *Model, width, height int) string {
	content := renderDetail(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneDetail {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}

// ── helpers ──

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + "  " + detailValueStyle.Render(value)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderUsageBar(label string, count, total, barWidth int, color lipgloss.Color) string {
	if total == 0 {
		return ""
	}
	pct := count * 100 / total
	filled := barWidth * count / total
	if filled < 1 && count > 0 {
		filled = 1
	}
	empty := barWidth - filled

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("%-8s %s %d%%", label, bar, pct)
}
