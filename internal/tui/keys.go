package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the editor reacts to. Help text is used by
// the footer hints.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Pane      key.Binding
	Open      key.Binding
	New       key.Binding
	AddRoot   key.Binding
	AddChild  key.Binding
	Insert    key.Binding
	Delete    key.Binding
	Duplicate key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Rename    key.Binding
	Upload    key.Binding
	Preview   key.Binding
	Clear     key.Binding
	Save      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Pane:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "pane")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		AddRoot:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		AddChild:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "child")),
		Insert:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Duplicate: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dup")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Rename:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Upload:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "file")),
		Preview:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
