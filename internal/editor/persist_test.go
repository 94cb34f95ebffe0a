package editor

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
)

type memPersister struct {
	records map[string]string
	fail    error
}

func (m *memPersister) Save(_ context.Context, forest string) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	if m.records == nil {
		m.records = map[string]string{}
	}
	id := "rec-" + strconv.Itoa(len(m.records)+1)
	m.records[id] = forest
	return id, nil
}

func (m *memPersister) Load(_ context.Context, id string) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	f, ok := m.records[id]
	if !ok {
		return "", ErrNotFound
	}
	return f, nil
}

func TestChildrenPresenceSurvivesJSON(t *testing.T) {
	raw := `[
		{"id":"a","type":"container","name":"Box","props":{},"styles":{},"children":[]},
		{"id":"b","type":"text","name":"Copy","props":{"content":"hi"},"styles":{"fontSize":14}}
	]`

	forest, err := UnmarshalForest([]byte(raw))
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.NotNil(t, forest[0].Children)
	assert.Empty(t, forest[0].Children)
	assert.Nil(t, forest[1].Children)
	require.NotNil(t, forest[1].Styles.FontSize)
	assert.Equal(t, 14.0, *forest[1].Styles.FontSize)

	out, err := MarshalForest(forest)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"a","type":"container","name":"Box","props":{},"styles":{},"children":[]},
		{"id":"b","type":"text","name":"Copy","props":{"content":"hi"},"styles":{"fontSize":14}}
	]`, string(out))
}

func TestMarshalEmptyForest(t *testing.T) {
	out, err := MarshalForest(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	forest, err := UnmarshalForest([]byte("null"))
	require.NoError(t, err)
	assert.Empty(t, forest)

	_, err = UnmarshalForest([]byte("{"))
	assert.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestSession()
	card, _ := s.AddNode(catalog.TypeCard, "")
	row, _ := s.AddNode(catalog.TypeRow, card.ID)
	s.AddNode(catalog.TypeButton, row.ID)
	tmp, _ := s.AddNode(catalog.TypeText, row.ID)
	s.DeleteNode(tmp.ID)
	s.AddNode(catalog.TypeTextarea, "")
	s.UpdateProps(card.ID, map[string]any{"tags": []any{"a", 1.5}})

	p := &memPersister{}
	ctx := context.Background()
	id, err := s.SaveTo(ctx, p)
	require.NoError(t, err)

	other := NewSession()
	require.NoError(t, other.LoadFrom(ctx, p, id))
	assert.Equal(t, s.Forest(), other.Forest())

	_, ok := other.SelectedID()
	assert.False(t, ok)

	// Loaded ids are live: the loaded tree can be edited.
	assert.Equal(t, OK, other.MoveUp(row.ID))
	_, res := other.AddNode(catalog.TypeText, row.ID)
	assert.Equal(t, OK, res)
}

func TestLoadFromErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestSession()
	s.AddNode(catalog.TypeText, "")
	before := s.Forest()

	err := s.LoadFrom(ctx, &memPersister{}, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("disk on fire")
	_, err = s.SaveTo(ctx, &memPersister{fail: boom})
	assert.ErrorIs(t, err, boom)

	p := &memPersister{records: map[string]string{"bad": "not json"}}
	assert.Error(t, s.LoadFrom(ctx, p, "bad"))

	assert.Equal(t, before, s.Forest())
}

func TestLoadValidates(t *testing.T) {
	s := newTestSession()
	s.AddNode(catalog.TypeText, "")
	before := s.Forest()

	tests := []struct {
		name   string
		forest []*Node
		want   error
	}{
		{
			name:   "duplicate id across levels",
			forest: []*Node{{ID: "x", Type: catalog.TypeCard, Children: []*Node{{ID: "x", Type: catalog.TypeText}}}},
			want:   ErrDuplicateID,
		},
		{
			name:   "unknown type",
			forest: []*Node{{ID: "x", Type: "spinner"}},
			want:   ErrUnknownType,
		},
		{
			name:   "missing id",
			forest: []*Node{{Type: catalog.TypeText}},
			want:   ErrEmptyID,
		},
		{
			name:   "nil node",
			forest: []*Node{nil},
			want:   ErrEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Load(tt.forest)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s.Forest())
		})
	}
}

func TestLoadCopiesInput(t *testing.T) {
	forest := []*Node{{ID: "r", Type: catalog.TypeContainer, Props: map[string]any{"k": "v"}, Children: []*Node{}}}
	s := newTestSession()
	require.NoError(t, s.Load(forest))

	forest[0].Props["k"] = "changed"
	forest[0].Children = append(forest[0].Children, &Node{ID: "late"})

	got, _ := s.Locate("r")
	assert.Equal(t, "v", got.Props["k"])
	assert.NotNil(t, got.Children)
	assert.Empty(t, got.Children)

	// Freshly generated ids never collide with loaded ones.
	n, _ := s.AddNode(catalog.TypeText, "r")
	assert.NotEqual(t, "r", n.ID)
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, OK.Err())
	assert.True(t, OK.Ok())
	assert.False(t, NotFound.Ok())
	assert.ErrorIs(t, NotFound.Err(), ErrNotFound)
	assert.ErrorIs(t, UnknownType.Err(), catalog.ErrUnknownType)
	assert.Equal(t, "not found", NotFound.String())
}
