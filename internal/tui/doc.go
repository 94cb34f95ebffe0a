// Package tui implements the lowcode terminal page editor.
//
// It is built with Charmbracelet's BubbleTea, Lipgloss, and Bubbles
// libraries and drives an editor.Session directly; every key that edits
// the page maps to one Session operation.
//
// Component architecture:
//
//	model.go       root model, message routing, Init/Update
//	keys.go        key bindings
//	theme.go       centralized color + style definitions
//	header.go      top bar and footer hints
//	tree.go        component tree with depth-aware rendering
//	detail.go      props and styles of the selected node
//	diffview.go    overrides of the selected node against its defaults
//	palette.go     component type picker
//	preview.go     plain text rendering of the page
//	projectlist.go project selector (initial screen)
//	helpers.go     tree flattening, truncation, etc.
package tui
