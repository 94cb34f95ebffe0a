package editor

import (
	"github.com/sirupsen/logrus"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
)

// ============================================================
// Creation
// ============================================================

// AddNode creates a node of type t from its catalog defaults and appends it
// to the children of parentID, or to the root list when parentID is empty.
// The new node becomes the selection. Unknown types and unresolved parents
// leave the session unchanged.
func (s *Session) AddNode(t catalog.ComponentType, parentID string) (*Node, Result) {
	def, ok := s.catalog.Lookup(t)
	if !ok {
		s.log.WithField("type", t).Debug("add: unknown component type")
		return nil, UnknownType
	}

	var parent *entry
	if parentID != "" {
		if parent, ok = s.nodes[parentID]; !ok {
			s.log.WithField("parent", parentID).Debug("add: parent not found")
			return nil, NotFound
		}
	}

	e := s.newEntry(def)
	if parent != nil {
		e.parent = parent.id
		parent.children = append(parent.children, e.id)
		parent.hasChildren = true
	} else {
		s.roots = append(s.roots, e.id)
	}
	s.nodes[e.id] = e
	s.selected = e.id

	s.log.WithFields(logrus.Fields{"id": e.id, "type": t, "parent": parentID}).Debug("node added")
	return s.materialize(e), OK
}

// AddChild is AddNode with the parent first.
func (s *Session) AddChild(parentID string, t catalog.ComponentType) (*Node, Result) {
	if parentID == "" {
		return nil, NotFound
	}
	return s.AddNode(t, parentID)
}

// InsertAt creates a node of type t at position index of the root list.
// The index is clamped to [0, RootCount()]. The new node becomes the
// selection.
func (s *Session) InsertAt(t catalog.ComponentType, index int) (*Node, Result) {
	def, ok := s.catalog.Lookup(t)
	if !ok {
		s.log.WithField("type", t).Debug("insert: unknown component type")
		return nil, UnknownType
	}

	index = max(0, min(index, len(s.roots)))
	e := s.newEntry(def)
	s.nodes[e.id] = e
	s.roots = insertAt(s.roots, index, e.id)
	s.selected = e.id

	s.log.WithFields(logrus.Fields{"id": e.id, "type": t, "index": index}).Debug("node inserted")
	return s.materialize(e), OK
}

func (s *Session) newEntry(def catalog.Definition) *entry {
	return &entry{
		id:     s.freshID(),
		typ:    def.Type,
		name:   def.Name,
		props:  def.NewProps(),
		styles: def.NewStyles(),
	}
}

// ============================================================
// Updates
// ============================================================

// UpdateNode applies patch to the node. Supplied fields replace the node's
// values; a Type outside the catalog rejects the whole patch.
func (s *Session) UpdateNode(id string, patch NodePatch) Result {
	e, ok := s.nodes[id]
	if !ok {
		s.log.WithField("id", id).Debug("update: node not found")
		return NotFound
	}
	if patch.Type != nil && !s.catalog.Has(*patch.Type) {
		s.log.WithField("type", *patch.Type).Debug("update: unknown component type")
		return UnknownType
	}

	if patch.Name != nil {
		e.name = *patch.Name
	}
	if patch.Type != nil {
		e.typ = *patch.Type
	}
	if patch.Props != nil {
		e.props = catalog.CloneProps(patch.Props)
	}
	if patch.Styles != nil {
		e.styles = patch.Styles.Clone()
	}
	return OK
}

// Rename sets the node's display name.
func (s *Session) Rename(id, name string) Result {
	return s.UpdateNode(id, NodePatch{Name: &name})
}

// UpdateProps shallow-merges patch into the node's props.
func (s *Session) UpdateProps(id string, patch map[string]any) Result {
	e, ok := s.nodes[id]
	if !ok {
		s.log.WithField("id", id).Debug("update props: node not found")
		return NotFound
	}
	if e.props == nil {
		e.props = make(map[string]any, len(patch))
	}
	for k, v := range catalog.CloneProps(patch) {
		e.props[k] = v
	}
	return OK
}

// UpdateStyles shallow-merges patch into the node's styles.
func (s *Session) UpdateStyles(id string, patch catalog.Styles) Result {
	e, ok := s.nodes[id]
	if !ok {
		s.log.WithField("id", id).Debug("update styles: node not found")
		return NotFound
	}
	e.styles = e.styles.Merge(patch)
	return OK
}

// ============================================================
// Structural edits
// ============================================================

// DeleteNode removes the node and its subtree. The selection is cleared
// when it pointed anywhere inside the removed subtree.
func (s *Session) DeleteNode(id string) Result {
	e, ok := s.nodes[id]
	if !ok {
		s.log.WithField("id", id).Debug("delete: node not found")
		return NotFound
	}

	list := s.siblings(e)
	if i := indexOf(*list, id); i >= 0 {
		*list = append((*list)[:i], (*list)[i+1:]...)
	}

	removed := 0
	s.walkEntries([]string{id}, func(d *entry) {
		if d.id == s.selected {
			s.selected = ""
		}
		removed++
	})
	s.dropSubtree(e)

	s.log.WithFields(logrus.Fields{"id": id, "removed": removed}).Debug("node deleted")
	return OK
}

func (s *Session) dropSubtree(e *entry) {
	for _, cid := range e.children {
		s.dropSubtree(s.nodes[cid])
	}
	delete(s.nodes, e.id)
}

// DuplicateNode deep-copies the subtree rooted at id with fresh ids on
// every copied node, places the copy right after the original in the same
// list and selects it.
func (s *Session) DuplicateNode(id string) (*Node, Result) {
	e, ok := s.nodes[id]
	if !ok {
		s.log.WithField("id", id).Debug("duplicate: node not found")
		return nil, NotFound
	}

	cp := s.copySubtree(e, e.parent)
	list := s.siblings(e)
	*list = insertAt(*list, indexOf(*list, id)+1, cp.id)
	s.selected = cp.id

	s.log.WithFields(logrus.Fields{"source": id, "copy": cp.id}).Debug("node duplicated")
	return s.materialize(cp), OK
}

// copySubtree registers a copy of e under parent and returns it. The copy
// is not yet linked into any sibling list.
func (s *Session) copySubtree(e *entry, parent string) *entry {
	cp := &entry{
		id:          s.freshID(),
		typ:         e.typ,
		name:        e.name,
		props:       catalog.CloneProps(e.props),
		styles:      e.styles.Clone(),
		parent:      parent,
		hasChildren: e.hasChildren,
	}
	s.nodes[cp.id] = cp
	if e.hasChildren {
		cp.children = make([]string, 0, len(e.children))
		for _, cid := range e.children {
			child := s.copySubtree(s.nodes[cid], cp.id)
			cp.children = append(cp.children, child.id)
		}
	}
	return cp
}

// MoveUp swaps the node with its previous sibling. Nodes already first in
// their list stay put and still report OK.
func (s *Session) MoveUp(id string) Result {
	return s.shift(id, -1)
}

// MoveDown swaps the node with its next sibling. Nodes already last in
// their list stay put and still report OK.
func (s *Session) MoveDown(id string) Result {
	return s.shift(id, +1)
}

func (s *Session) shift(id string, delta int) Result {
	e, ok := s.nodes[id]
	if !ok {
		s.log.WithField("id", id).Debug("move: node not found")
		return NotFound
	}
	list := *s.siblings(e)
	i := indexOf(list, id)
	j := i + delta
	if i < 0 || j < 0 || j >= len(list) {
		return OK
	}
	list[i], list[j] = list[j], list[i]
	return OK
}

// ============================================================
// Whole forest
// ============================================================

// ClearCanvas empties the forest and clears the selection.
func (s *Session) ClearCanvas() {
	s.nodes = make(map[string]*entry)
	s.roots = nil
	s.selected = ""
}

// Load replaces the forest with a copy of forest and clears the selection.
// The forest must use unique, non-empty ids and catalog types; otherwise
// the session is left unchanged and an error is returned.
func (s *Session) Load(forest []*Node) error {
	nodes := make(map[string]*entry)
	roots := make([]string, 0, len(forest))

	var add func(n *Node, parent string) error
	add = func(n *Node, parent string) error {
		if n == nil {
			return ErrEmptyID
		}
		if n.ID == "" {
			return ErrEmptyID
		}
		if _, dup := nodes[n.ID]; dup {
			return &LoadError{ID: n.ID, Err: ErrDuplicateID}
		}
		if !s.catalog.Has(n.Type) {
			return &LoadError{ID: n.ID, Err: ErrUnknownType}
		}
		e := &entry{
			id:          n.ID,
			typ:         n.Type,
			name:        n.Name,
			props:       catalog.CloneProps(n.Props),
			styles:      n.Styles.Clone(),
			parent:      parent,
			hasChildren: n.Children != nil,
		}
		if e.props == nil {
			e.props = map[string]any{}
		}
		nodes[n.ID] = e
		for _, c := range n.Children {
			if err := add(c, n.ID); err != nil {
				return err
			}
			e.children = append(e.children, c.ID)
		}
		return nil
	}

	for _, n := range forest {
		if err := add(n, ""); err != nil {
			return err
		}
		roots = append(roots, n.ID)
	}

	s.nodes = nodes
	s.roots = roots
	s.selected = ""
	return nil
}

// LoadError reports which node made Load reject a forest.
type LoadError struct {
	ID  string
	Err error
}

func (e *LoadError) Error() string {
	return "loading node " + e.ID + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }
