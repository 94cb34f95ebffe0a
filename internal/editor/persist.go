package editor

import (
	"context"
	"encoding/json"
	"fmt"
)

// Persister stores serialized forests. Save returns an opaque record id
// that Load accepts.
type Persister interface {
	Save(ctx context.Context, forest string) (string, error)
	Load(ctx context.Context, id string) (string, error)
}

// MarshalForest encodes a forest as a JSON array. A nil forest encodes as [].
func MarshalForest(forest []*Node) ([]byte, error) {
	if forest == nil {
		forest = []*Node{}
	}
	data, err := json.Marshal(forest)
	if err != nil {
		return nil, fmt.Errorf("encoding forest: %w", err)
	}
	return data, nil
}

// UnmarshalForest decodes a JSON array of nodes.
func UnmarshalForest(data []byte) ([]*Node, error) {
	var forest []*Node
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("decoding forest: %w", err)
	}
	if forest == nil {
		forest = []*Node{}
	}
	return forest, nil
}

// SaveTo serializes the forest and hands it to p, returning the record id.
func (s *Session) SaveTo(ctx context.Context, p Persister) (string, error) {
	data, err := MarshalForest(s.Forest())
	if err != nil {
		return "", err
	}
	id, err := p.Save(ctx, string(data))
	if err != nil {
		return "", fmt.Errorf("saving forest: %w", err)
	}
	s.log.WithField("record", id).Debug("forest saved")
	return id, nil
}

// LoadFrom fetches record id from p and replaces the forest with it.
func (s *Session) LoadFrom(ctx context.Context, p Persister, id string) error {
	raw, err := p.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading record %s: %w", id, err)
	}
	forest, err := UnmarshalForest([]byte(raw))
	if err != nil {
		return err
	}
	return s.Load(forest)
}
