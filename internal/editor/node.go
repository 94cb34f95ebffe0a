package editor

import (
	"encoding/json"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
)

// Node is one component instance, materialized with its whole subtree.
//
// Nodes handed out by a Session are snapshots: changing them does not
// change the session. Children == nil means the node has no children list
// at all, which is distinct from an empty list.
type Node struct {
	ID       string                `json:"id"`
	Type     catalog.ComponentType `json:"type"`
	Name     string                `json:"name"`
	Props    map[string]any        `json:"props"`
	Styles   catalog.Styles        `json:"styles"`
	Children []*Node               `json:"children,omitempty"`
}

// nodeJSON keeps "children": [] distinct from a missing key.
type nodeJSON struct {
	ID       string                `json:"id"`
	Type     catalog.ComponentType `json:"type"`
	Name     string                `json:"name"`
	Props    map[string]any        `json:"props"`
	Styles   catalog.Styles        `json:"styles"`
	Children *[]*Node              `json:"children,omitempty"`
}

// MarshalJSON encodes the node, writing "children" only when the list exists.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:     n.ID,
		Type:   n.Type,
		Name:   n.Name,
		Props:  n.Props,
		Styles: n.Styles,
	}
	if out.Props == nil {
		out.Props = map[string]any{}
	}
	if n.Children != nil {
		children := n.Children
		out.Children = &children
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node. A missing or null "children" leaves
// Children nil; "children": [] yields an empty, non-nil slice.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node{
		ID:     in.ID,
		Type:   in.Type,
		Name:   in.Name,
		Props:  in.Props,
		Styles: in.Styles,
	}
	if n.Props == nil {
		n.Props = map[string]any{}
	}
	if in.Children != nil {
		n.Children = *in.Children
		if n.Children == nil {
			n.Children = []*Node{}
		}
	}
	return nil
}

// Clone deep-copies the node and its subtree, ids included.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:     n.ID,
		Type:   n.Type,
		Name:   n.Name,
		Props:  catalog.CloneProps(n.Props),
		Styles: n.Styles.Clone(),
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// NodePatch is a partial update for UpdateNode. Nil fields are left alone;
// set fields replace the node's value wholesale. The id is immutable and
// cannot be patched.
type NodePatch struct {
	Name   *string
	Type   *catalog.ComponentType
	Props  map[string]any
	Styles *catalog.Styles
}
