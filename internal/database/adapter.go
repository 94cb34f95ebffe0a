package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProjectAdapter stores an editing session's forest as one project row.
// The first Save creates the project; later saves update it in place. It
// satisfies editor.Persister.
type ProjectAdapter struct {
	store       Store
	name        string
	description string
	id          int64
}

// NewProjectAdapter returns an adapter that saves under the given project
// name.
func NewProjectAdapter(store Store, name, description string) *ProjectAdapter {
	return &ProjectAdapter{store: store, name: name, description: description}
}

// ProjectID returns the id of the bound project, or 0 before the first
// Save or Load.
func (a *ProjectAdapter) ProjectID() int64 {
	return a.id
}

// Name returns the project name used for the first Save, or the name of
// the loaded project.
func (a *ProjectAdapter) Name() string {
	return a.name
}

// Save writes forest to the bound project and returns its id.
func (a *ProjectAdapter) Save(ctx context.Context, forest string) (string, error) {
	components := json.RawMessage(forest)
	if a.id == 0 {
		p, err := a.store.CreateProject(ctx, NewProject{
			Name:        a.name,
			Description: a.description,
			Components:  components,
		})
		if err != nil {
			return "", err
		}
		a.id = p.ID
		return FormatID(p.ID), nil
	}

	if _, err := a.store.UpdateProject(ctx, a.id, ProjectPatch{Components: components}); err != nil {
		return "", err
	}
	return FormatID(a.id), nil
}

// Load reads the forest of project id and binds the adapter to it, so the
// next Save updates that project.
func (a *ProjectAdapter) Load(ctx context.Context, id string) (string, error) {
	pid, err := ParseID(id)
	if err != nil {
		return "", err
	}
	p, err := a.store.GetProject(ctx, pid)
	if err != nil {
		return "", err
	}
	a.id = p.ID
	a.name = p.Name
	a.description = p.Description
	return string(p.Components), nil
}

// TemplateAdapter reads forests from templates and saves forests as new
// templates. It satisfies editor.Persister.
type TemplateAdapter struct {
	store     Store
	name      string
	thumbnail string
}

// NewTemplateAdapter returns an adapter whose saves create templates
// named name.
func NewTemplateAdapter(store Store, name, thumbnail string) *TemplateAdapter {
	return &TemplateAdapter{store: store, name: name, thumbnail: thumbnail}
}

// Save creates a new template from forest.
func (a *TemplateAdapter) Save(ctx context.Context, forest string) (string, error) {
	t, err := a.store.CreateTemplate(ctx, NewTemplate{
		Name:       a.name,
		Components: json.RawMessage(forest),
		Thumbnail:  a.thumbnail,
	})
	if err != nil {
		return "", err
	}
	return FormatID(t.ID), nil
}

// Load returns the forest of template id.
func (a *TemplateAdapter) Load(ctx context.Context, id string) (string, error) {
	tid, err := ParseID(id)
	if err != nil {
		return "", err
	}
	t, err := a.store.GetTemplate(ctx, tid)
	if err != nil {
		return "", err
	}
	return string(t.Components), nil
}

// ParseID converts a record id string to its numeric form. Ids that are
// not positive integers cannot exist and report ErrNotFound.
func ParseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("record %q: %w", id, ErrNotFound)
	}
	return n, nil
}

// FormatID renders a record id.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
