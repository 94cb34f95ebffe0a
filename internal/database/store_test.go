package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
)

func newTestService(t *testing.T) *DBService {
	t.Helper()
	svc, err := NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

// TestNewDBService verifies that the database initializes correctly
// and seeds the default templates.
func TestNewDBService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	templates, err := svc.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 seeded templates, got %d", len(templates))
	}
	if templates[0].Name != "Blank page" || templates[1].Name != "Login page" {
		t.Errorf("unexpected seed order: %q, %q", templates[0].Name, templates[1].Name)
	}
	if string(templates[0].Components) != "[]" {
		t.Errorf("blank template components = %s, want []", templates[0].Components)
	}
}

// TestSeededLoginTemplateLoads verifies the seed forest is accepted by an
// editing session.
func TestSeededLoginTemplateLoads(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	s := editor.NewSession()
	if err := s.LoadFrom(ctx, NewTemplateAdapter(svc, "", ""), "2"); err != nil {
		t.Fatalf("LoadFrom(template 2) failed: %v", err)
	}
	if s.RootCount() != 4 {
		t.Fatalf("expected 4 root nodes, got %d", s.RootCount())
	}
	btn, ok := s.Locate("button-1")
	if !ok {
		t.Fatal("button-1 not found")
	}
	if btn.Type != catalog.TypeButton || btn.Props["text"] != "Sign in" {
		t.Errorf("unexpected button: %+v", btn)
	}
}

// TestSeedRunsOnce verifies that reopening a database does not duplicate
// the seed templates.
func TestSeedRunsOnce(t *testing.T) {
	path := t.TempDir() + "/pages.db"

	for i := 0; i < 2; i++ {
		svc, err := NewDBService(path)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		templates, err := svc.ListTemplates(context.Background())
		svc.Close()
		if err != nil {
			t.Fatalf("ListTemplates failed: %v", err)
		}
		if len(templates) != 2 {
			t.Fatalf("open %d: expected 2 templates, got %d", i, len(templates))
		}
	}
}

// TestProjectLifecycle verifies create → get → update → list → delete.
func TestProjectLifecycle(t *testing.T) {
	svc := newTestService(t)
	svc.now = stepClock()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, NewProject{
		Name:        "Landing",
		Description: "marketing page",
		Components:  json.RawMessage(`[{"id":"a","type":"text","name":"Text","props":{},"styles":{}}]`),
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected a non-zero id")
	}
	if !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Errorf("created_at %v != updated_at %v on insert", p.CreatedAt, p.UpdatedAt)
	}

	got, err := svc.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if got.Name != "Landing" || got.Description != "marketing page" {
		t.Errorf("unexpected project: %+v", got)
	}

	name := "Landing v2"
	updated, err := svc.UpdateProject(ctx, p.ID, ProjectPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("name = %q, want %q", updated.Name, name)
	}
	if updated.Description != "marketing page" {
		t.Errorf("description changed to %q by a name-only patch", updated.Description)
	}
	if string(updated.Components) != string(p.Components) {
		t.Errorf("components changed by a name-only patch: %s", updated.Components)
	}
	if !updated.UpdatedAt.After(p.UpdatedAt) {
		t.Errorf("updated_at not bumped: %v <= %v", updated.UpdatedAt, p.UpdatedAt)
	}

	second, err := svc.CreateProject(ctx, NewProject{Name: "Blog"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if string(second.Components) != "[]" {
		t.Errorf("missing components stored as %s, want []", second.Components)
	}

	list, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected most recently updated first, got %d rows", len(list))
	}

	if err := svc.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := svc.GetProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject after delete: got %v, want ErrNotFound", err)
	}
}

// TestMissingRecords verifies that every id-based operation reports
// ErrNotFound for absent rows.
func TestMissingRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetProject(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject: got %v", err)
	}
	name := "x"
	if _, err := svc.UpdateProject(ctx, 42, ProjectPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProject: got %v", err)
	}
	if err := svc.DeleteProject(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProject: got %v", err)
	}
	if _, err := svc.GetTemplate(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTemplate: got %v", err)
	}
}

// TestCreateTemplate verifies template insertion and thumbnail storage.
func TestCreateTemplate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tpl, err := svc.CreateTemplate(ctx, NewTemplate{
		Name:       "Pricing",
		Components: json.RawMessage(`[]`),
		Thumbnail:  "pricing.png",
	})
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	got, err := svc.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.Thumbnail != "pricing.png" || got.Name != "Pricing" {
		t.Errorf("unexpected template: %+v", got)
	}
}

// TestSearchProjects verifies substring matching over name and description.
func TestSearchProjects(t *testing.T) {
	svc := newTestService(t)
	svc.now = stepClock()
	ctx := context.Background()

	for i, name := range []string{"Checkout", "Shop front", "About us"} {
		desc := fmt.Sprintf("page %d", i)
		if name == "About us" {
			desc = "company shop history"
		}
		if _, err := svc.CreateProject(ctx, NewProject{Name: name, Description: desc}); err != nil {
			t.Fatalf("CreateProject failed: %v", err)
		}
	}

	got, err := svc.SearchProjects(ctx, "shop", 10)
	if err != nil {
		t.Fatalf("SearchProjects failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Name != "About us" || got[1].Name != "Shop front" {
		t.Errorf("unexpected order: %q, %q", got[0].Name, got[1].Name)
	}

	got, _ = svc.SearchProjects(ctx, "", 1)
	if len(got) != 1 {
		t.Errorf("limit not applied: %d rows", len(got))
	}
}

// TestStats verifies row counts.
func TestStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Projects != 0 || st.Templates != 2 || st.LastUpdatedAt != nil {
		t.Errorf("unexpected empty stats: %+v", st)
	}

	if _, err := svc.CreateProject(ctx, NewProject{Name: "p"}); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	st, _ = svc.Stats(ctx)
	if st.Projects != 1 || st.LastUpdatedAt == nil {
		t.Errorf("unexpected stats: %+v", st)
	}
}

// TestProjectAdapterRoundTrip verifies that a session saved through the
// adapter loads back as an identical forest, and that later saves update
// the same row.
func TestProjectAdapterRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	s := editor.NewSession()
	box, _ := s.AddNode(catalog.TypeContainer, "")
	s.AddNode(catalog.TypeImage, box.ID)
	s.AddNode(catalog.TypeDivider, "")

	adapter := NewProjectAdapter(svc, "Gallery", "")
	id, err := s.SaveTo(ctx, adapter)
	if err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	s.AddNode(catalog.TypeLink, "")
	id2, err := s.SaveTo(ctx, adapter)
	if err != nil {
		t.Fatalf("second SaveTo failed: %v", err)
	}
	if id != id2 {
		t.Errorf("second save created a new record: %s != %s", id, id2)
	}

	loaded := editor.NewSession()
	if err := loaded.LoadFrom(ctx, NewProjectAdapter(svc, "", ""), id); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	want, _ := editor.MarshalForest(s.Forest())
	got, _ := editor.MarshalForest(loaded.Forest())
	if string(want) != string(got) {
		t.Errorf("forest mismatch:\nwant %s\ngot  %s", want, got)
	}

	projects, _ := svc.ListProjects(ctx)
	if len(projects) != 1 {
		t.Errorf("expected exactly one project row, got %d", len(projects))
	}
}

// TestAdapterBadIDs verifies that malformed ids are reported as missing.
func TestAdapterBadIDs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"", "abc", "0", "-3", "999"} {
		if _, err := NewProjectAdapter(svc, "", "").Load(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q): got %v, want ErrNotFound", id, err)
		}
	}
}
