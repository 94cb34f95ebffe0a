// Package catalog is the static table of component kinds the editor can
// place on a page, with the default props and styles each kind starts with.
//
// The built-in definitions are embedded from definitions.yaml and decoded
// once per process. A Catalog is read-only after construction: every
// accessor hands out copies.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed definitions.yaml
var definitionsYAML []byte

// ComponentType tags a component kind.
type ComponentType string

const (
	TypeText      ComponentType = "text"
	TypeButton    ComponentType = "button"
	TypeInput     ComponentType = "input"
	TypeTextarea  ComponentType = "textarea"
	TypeImage     ComponentType = "image"
	TypeContainer ComponentType = "container"
	TypeRow       ComponentType = "row"
	TypeDivider   ComponentType = "divider"
	TypeCard      ComponentType = "card"
	TypeLink      ComponentType = "link"
)

// AllTypes is the closed set of component kinds, in palette order.
var AllTypes = []ComponentType{
	TypeText, TypeButton, TypeInput, TypeTextarea, TypeImage,
	TypeContainer, TypeRow, TypeDivider, TypeCard, TypeLink,
}

// Valid reports whether t is one of the known component kinds.
func (t ComponentType) Valid() bool {
	for _, k := range AllTypes {
		if k == t {
			return true
		}
	}
	return false
}

// ParseType converts s to a ComponentType.
func ParseType(s string) (ComponentType, error) {
	t := ComponentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Category groups definitions in the palette.
type Category string

const (
	CategoryBasic    Category = "basic"
	CategoryLayout   Category = "layout"
	CategoryAdvanced Category = "advanced"
)

// Option is one choice of a select-type field.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// PropSchema describes one editable prop.
type PropSchema struct {
	Name    string   `json:"name" yaml:"name"`
	Label   string   `json:"label" yaml:"label"`
	Type    string   `json:"type" yaml:"type"` // text, number, boolean, select, color, textarea
	Default any      `json:"default,omitempty" yaml:"default,omitempty"`
	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// StyleSchema describes one editable style key.
type StyleSchema struct {
	Name     string   `json:"name" yaml:"name"`
	Label    string   `json:"label" yaml:"label"`
	Category string   `json:"category" yaml:"category"`
	Type     string   `json:"type" yaml:"type"`
	Unit     string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Options  []Option `json:"options,omitempty" yaml:"options,omitempty"`
	Min      *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Definition is the template a new component is created from.
type Definition struct {
	Type          ComponentType  `json:"type" yaml:"type"`
	Name          string         `json:"name" yaml:"name"`
	Icon          string         `json:"icon" yaml:"icon"`
	Category      Category       `json:"category" yaml:"category"`
	DefaultProps  map[string]any `json:"defaultProps" yaml:"defaultProps"`
	DefaultStyles Styles         `json:"defaultStyles" yaml:"defaultStyles"`
	PropSchema    []PropSchema   `json:"propSchema" yaml:"propSchema"`
	StyleSchema   []StyleSchema  `json:"styleSchema" yaml:"styleSchema"`
}

// NewProps returns a fresh copy of the default props.
func (d Definition) NewProps() map[string]any {
	return CloneProps(d.DefaultProps)
}

// NewStyles returns a fresh copy of the default styles.
func (d Definition) NewStyles() Styles {
	return d.DefaultStyles.Clone()
}

func (d Definition) clone() Definition {
	out := d
	out.DefaultProps = CloneProps(d.DefaultProps)
	out.DefaultStyles = d.DefaultStyles.Clone()
	out.PropSchema = append([]PropSchema(nil), d.PropSchema...)
	out.StyleSchema = append([]StyleSchema(nil), d.StyleSchema...)
	return out
}

var (
	// ErrUnknownType is returned when a type tag is not in the catalog.
	ErrUnknownType = errors.New("catalog: unknown component type")

	// ErrDuplicateType is returned when two definitions share a type.
	ErrDuplicateType = errors.New("catalog: duplicate component type")
)

// Catalog maps component types to their definitions.
type Catalog struct {
	order []ComponentType
	defs  map[ComponentType]Definition
}

// New builds a catalog from defs, keeping their order.
func New(defs []Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[ComponentType]Definition, len(defs))}
	for _, d := range defs {
		if !d.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, d.Type)
		}
		if _, exists := c.defs[d.Type]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, d.Type)
		}
		d = d.clone()
		d.DefaultProps = normalizeProps(d.DefaultProps)
		c.defs[d.Type] = d
		c.order = append(c.order, d.Type)
	}
	return c, nil
}

// Parse decodes a YAML list of definitions into a catalog.
func Parse(data []byte) (*Catalog, error) {
	var defs []Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("decoding component definitions: %w", err)
	}
	return New(defs)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. It panics if the embedded
// definitions are malformed, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(definitionsYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded definitions: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup returns a copy of the definition for t.
func (c *Catalog) Lookup(t ComponentType) (Definition, bool) {
	d, ok := c.defs[t]
	if !ok {
		return Definition{}, false
	}
	return d.clone(), true
}

// Has reports whether t is defined.
func (c *Catalog) Has(t ComponentType) bool {
	_, ok := c.defs[t]
	return ok
}

// Types returns the defined types in catalog order.
func (c *Catalog) Types() []ComponentType {
	return append([]ComponentType(nil), c.order...)
}

// Definitions returns copies of all definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.defs[t].clone())
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.order)
}

// CloneProps deep-copies a props map. Nested maps and slices (as produced
// by JSON decoding) are copied too.
func CloneProps(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return CloneProps(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// normalizeProps converts YAML scalars into the types encoding/json would
// produce, so a freshly created node equals its own JSON round trip.
func normalizeProps(p map[string]any) map[string]any {
	out := maps.Clone(p)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range out {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case map[string]any:
		return normalizeProps(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
