package tui

import (
	"fmt"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
	"github.com/charmbracelet/lipgloss"
)

// ============================================================
// Tree flattening
// ============================================================

// treeRow is one visible line of the component tree.
type treeRow struct {
	node  *editor.Node // shallow: Children is nil
	depth int
	last  bool // last child of its parent
}

// flattenForest lists every node depth-first with its depth.
func flattenForest(s *editor.Session) []treeRow {
	var rows []treeRow
	s.Walk(func(n *editor.Node, depth int) bool {
		rows = append(rows, treeRow{node: n, depth: depth})
		return true
	})

	// A row is last when no later row shares its depth before the
	// tree climbs above it.
	for i := range rows {
		rows[i].last = true
		for j := i + 1; j < len(rows); j++ {
			if rows[j].depth < rows[i].depth {
				break
			}
			if rows[j].depth == rows[i].depth {
				rows[i].last = false
				break
			}
		}
	}
	return rows
}

// rowIndex returns the row showing id, or -1.
func rowIndex(rows []treeRow, id string) int {
	for i, r := range rows {
		if r.node.ID == id {
			return i
		}
	}
	return -1
}

// ============================================================
// Component type rendering
// ============================================================

// typeStyle colors a node by its catalog category.
func typeStyle(cat *catalog.Catalog, t catalog.ComponentType) lipgloss.Style {
	def, ok := cat.Lookup(t)
	if !ok {
		return nodeUnknownStyle
	}
	switch def.Category {
	case catalog.CategoryLayout:
		return nodeLayoutStyle
	case catalog.CategoryAdvanced:
		return nodeAdvancedStyle
	default:
		return nodeBasicStyle
	}
}

// typeTag returns a short colored label for a component type.
func typeTag(cat *catalog.Catalog, t catalog.ComponentType) string {
	return typeStyle(cat, t).Render(string(t))
}

// ============================================================
// String helpers
// ============================================================

// shortID returns first n characters of an ID string.
func shortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// clamp restricts val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// formatValue renders a prop or style value on one line.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		return fmt.Sprintf("%q", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
