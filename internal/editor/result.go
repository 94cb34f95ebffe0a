package editor

import (
	"errors"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
)

var (
	// ErrNotFound is returned when an id does not resolve to a node.
	ErrNotFound = errors.New("editor: node not found")

	// ErrUnknownType is returned when a type is absent from the catalog.
	ErrUnknownType = catalog.ErrUnknownType

	// ErrDuplicateID is returned when a loaded forest reuses an id.
	ErrDuplicateID = errors.New("editor: duplicate node id")

	// ErrEmptyID is returned when a loaded forest has a node without an id.
	ErrEmptyID = errors.New("editor: node has no id")
)

// Result reports the outcome of a tree mutation. Mutators never fail
// loudly: a NotFound or UnknownType result means the forest is unchanged,
// and callers that don't care can ignore it.
type Result int

const (
	OK Result = iota
	NotFound
	UnknownType
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case NotFound:
		return "not found"
	case UnknownType:
		return "unknown type"
	default:
		return "unknown"
	}
}

// Ok reports whether the mutation was applied.
func (r Result) Ok() bool {
	return r == OK
}

// Err converts the result to an error for strict callers. OK maps to nil.
func (r Result) Err() error {
	switch r {
	case OK:
		return nil
	case NotFound:
		return ErrNotFound
	case UnknownType:
		return ErrUnknownType
	default:
		return errors.New("editor: " + r.String())
	}
}
