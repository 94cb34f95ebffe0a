// Package editor implements the component-tree editing engine: an ordered
// forest of typed UI nodes plus selection, preview and drag state.
//
// The forest is stored as an arena. Every node lives in one map keyed by
// id; each entry records its parent id and the ordered ids of its children,
// and the top-level order is kept in a separate root list. Lookups are O(1)
// and moves only touch the sibling list that contains the node. Callers
// only ever see materialized *Node snapshots.
//
// All mutators follow a do-nothing policy for bad input: an unknown id or
// component type leaves the forest untouched and is reported through the
// returned Result, never through a panic or error.
package editor

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
)

// entry is the arena record for one node.
type entry struct {
	id     string
	typ    catalog.ComponentType
	name   string
	props  map[string]any
	styles catalog.Styles

	parent      string // "" for roots
	children    []string
	hasChildren bool // children list exists, possibly empty
}

// Session owns one editing session: the forest, the selection and the
// mode flags. A Session is not safe for concurrent use; commands are
// expected to run one at a time to completion.
type Session struct {
	catalog *catalog.Catalog
	newID   func() string
	log     logrus.FieldLogger

	nodes map[string]*entry
	roots []string

	selected string
	preview  bool
	dragging bool
	dragType catalog.ComponentType
}

// Option configures a Session.
type Option func(*Session)

// WithCatalog replaces the built-in component catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Session) { s.catalog = c }
}

// WithIDFunc replaces the node id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// WithLogger sets the logger used for no-op diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		catalog: catalog.Default(),
		newID:   NewID,
		log:     discardLogger(),
		nodes:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh component id.
func NewID() string {
	return "cmp_" + uuid.NewString()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Catalog returns the component catalog the session creates nodes from.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// freshID returns an id not used anywhere in the forest.
func (s *Session) freshID() string {
	for i := 0; i < 8; i++ {
		id := s.newID()
		if _, taken := s.nodes[id]; !taken && id != "" {
			return id
		}
	}
	// The configured generator keeps colliding; fall back to uuids.
	for {
		id := NewID()
		if _, taken := s.nodes[id]; !taken {
			return id
		}
	}
}

// ============================================================
// Lookup
// ============================================================

// Locate returns a snapshot of the node with the given id and its subtree.
func (s *Session) Locate(id string) (*Node, bool) {
	e, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	return s.materialize(e), true
}

// Has reports whether id is in the forest.
func (s *Session) Has(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Parent returns the id of the node's parent. ok is false for unknown ids;
// roots report an empty parent.
func (s *Session) Parent(id string) (parent string, ok bool) {
	e, ok := s.nodes[id]
	if !ok {
		return "", false
	}
	return e.parent, true
}

// Index returns the node's position within the list that owns it.
func (s *Session) Index(id string) (int, bool) {
	e, ok := s.nodes[id]
	if !ok {
		return 0, false
	}
	return indexOf(*s.siblings(e), id), true
}

// Len returns the number of nodes at every depth.
func (s *Session) Len() int {
	return len(s.nodes)
}

// RootCount returns the number of top-level nodes.
func (s *Session) RootCount() int {
	return len(s.roots)
}

// Forest returns a deep copy of the whole forest.
func (s *Session) Forest() []*Node {
	out := make([]*Node, 0, len(s.roots))
	for _, id := range s.roots {
		out = append(out, s.materialize(s.nodes[id]))
	}
	return out
}

// Walk visits every node depth-first in document order. The node passed to
// fn carries no children; depth is 0 for roots. Returning false stops the
// walk.
func (s *Session) Walk(fn func(n *Node, depth int) bool) {
	var visit func(ids []string, depth int) bool
	visit = func(ids []string, depth int) bool {
		for _, id := range ids {
			e := s.nodes[id]
			if !fn(s.shallow(e), depth) {
				return false
			}
			if !visit(e.children, depth+1) {
				return false
			}
		}
		return true
	}
	visit(s.roots, 0)
}

// ImageSources returns the props.src string of every image node, in
// document order. Nodes whose src is missing or not a string are skipped.
func (s *Session) ImageSources() []string {
	var out []string
	s.walkEntries(s.roots, func(e *entry) {
		if e.typ != catalog.TypeImage {
			return
		}
		if src, ok := e.props["src"].(string); ok {
			out = append(out, src)
		}
	})
	return out
}

func (s *Session) walkEntries(ids []string, fn func(e *entry)) {
	for _, id := range ids {
		e := s.nodes[id]
		fn(e)
		s.walkEntries(e.children, fn)
	}
}

func (s *Session) shallow(e *entry) *Node {
	return &Node{
		ID:     e.id,
		Type:   e.typ,
		Name:   e.name,
		Props:  catalog.CloneProps(e.props),
		Styles: e.styles.Clone(),
	}
}

func (s *Session) materialize(e *entry) *Node {
	n := s.shallow(e)
	if e.hasChildren {
		n.Children = make([]*Node, 0, len(e.children))
		for _, cid := range e.children {
			n.Children = append(n.Children, s.materialize(s.nodes[cid]))
		}
	}
	return n
}

// siblings returns the list that owns e: the root list or its parent's
// children.
func (s *Session) siblings(e *entry) *[]string {
	if e.parent == "" {
		return &s.roots
	}
	return &s.nodes[e.parent].children
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

func insertAt(list []string, i int, id string) []string {
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = id
	return list
}
