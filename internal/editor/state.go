package editor

import "github.com/Mr-Dark-debug/lowcode/internal/catalog"

// SelectComponent sets the selection. The id is not validated; an empty id
// clears the selection.
func (s *Session) SelectComponent(id string) {
	s.selected = id
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	s.selected = ""
}

// SelectedID returns the selected id, if any.
func (s *Session) SelectedID() (string, bool) {
	return s.selected, s.selected != ""
}

// Selected returns a snapshot of the selected node. ok is false when
// nothing is selected or the selected id no longer resolves.
func (s *Session) Selected() (*Node, bool) {
	if s.selected == "" {
		return nil, false
	}
	return s.Locate(s.selected)
}

// TogglePreview flips preview mode and returns the new state. Entering
// preview clears the selection; leaving it does not restore it.
func (s *Session) TogglePreview() bool {
	s.preview = !s.preview
	if s.preview {
		s.selected = ""
	}
	return s.preview
}

// IsPreview reports whether the session is in preview mode.
func (s *Session) IsPreview() bool {
	return s.preview
}

// Drag state is independent of preview mode.

// StartDrag records that a palette item of type t is being dragged.
func (s *Session) StartDrag(t catalog.ComponentType) {
	s.dragging = true
	s.dragType = t
}

// EndDrag clears the drag state.
func (s *Session) EndDrag() {
	s.dragging = false
	s.dragType = ""
}

// SetDragging sets the dragging flag without touching the drag payload.
func (s *Session) SetDragging(v bool) {
	s.dragging = v
}

// IsDragging reports whether a drag is in progress.
func (s *Session) IsDragging() bool {
	return s.dragging
}

// DragData returns the type being dragged.
func (s *Session) DragData() (catalog.ComponentType, bool) {
	return s.dragType, s.dragType != ""
}

// DropAt inserts the dragged type at index of the root list and ends the
// drag. With no drag payload it reports UnknownType and changes nothing.
func (s *Session) DropAt(index int) (*Node, Result) {
	t, ok := s.DragData()
	if !ok {
		return nil, UnknownType
	}
	n, res := s.InsertAt(t, index)
	s.EndDrag()
	return n, res
}
