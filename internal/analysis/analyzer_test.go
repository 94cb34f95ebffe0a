package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/lowcode/internal/assets"
	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
)

type fakeAssets map[string]bool

func (f fakeAssets) Lookup(id string) (*assets.LocalAsset, bool) {
	if f[id] {
		return &assets.LocalAsset{ID: id}, true
	}
	return nil, false
}

func leaf(id string, t catalog.ComponentType) *editor.Node {
	return &editor.Node{ID: id, Type: t, Props: map[string]any{}}
}

func image(id, src string) *editor.Node {
	return &editor.Node{ID: id, Type: catalog.TypeImage, Props: map[string]any{"src": src}}
}

func TestAnalyzeCounts(t *testing.T) {
	forest := []*editor.Node{
		{
			ID: "box", Type: catalog.TypeContainer,
			Children: []*editor.Node{
				{ID: "row", Type: catalog.TypeRow, Children: []*editor.Node{
					image("i1", "img_1"),
					image("i2", "https://cdn/x.png"),
				}},
				image("i3", "img_2"),
				image("i4", "img_1"),
			},
		},
		{ID: "card", Type: catalog.TypeCard, Children: []*editor.Node{}},
		leaf("t", catalog.TypeText),
	}

	r := Analyze(forest, fakeAssets{"img_1": true})

	if r.Nodes != 8 {
		t.Errorf("expected 8 nodes, got %d", r.Nodes)
	}
	if r.Roots != 3 {
		t.Errorf("expected 3 roots, got %d", r.Roots)
	}
	if r.MaxDepth != 3 {
		t.Errorf("expected max depth 3, got %d", r.MaxDepth)
	}
	if r.TypeCounts[0].Type != catalog.TypeImage || r.TypeCounts[0].Count != 4 {
		t.Errorf("expected image to lead type counts, got %+v", r.TypeCounts[0])
	}
	if r.TypeCounts[0].Percentage != 50 {
		t.Errorf("expected 50%% images, got %.2f", r.TypeCounts[0].Percentage)
	}
	if got := strings.Join(r.LocalReferences, ","); got != "img_1,img_2" {
		t.Errorf("local references = %s", got)
	}
	if got := strings.Join(r.DanglingReferences, ","); got != "img_2" {
		t.Errorf("dangling references = %s", got)
	}
	if len(r.EmptyContainers) != 1 || r.EmptyContainers[0].ID != "card" {
		t.Errorf("expected card to be the only empty container, got %+v", r.EmptyContainers)
	}
	// box has 3 children, row has 2; card's list is present but empty.
	if r.BranchingFactor != 2.5 {
		t.Errorf("expected branching factor 2.5, got %.2f", r.BranchingFactor)
	}
}

func TestAnalyzeEmptyForest(t *testing.T) {
	r := Analyze(nil, nil)
	if r.Nodes != 0 || r.MaxDepth != 0 || len(r.Warnings) != 0 {
		t.Errorf("unexpected report for empty forest: %+v", r)
	}
}

func TestAnalyzeUnknownTypes(t *testing.T) {
	r := Analyze([]*editor.Node{leaf("x", "carousel")}, nil)
	if len(r.UnknownTypes) != 1 {
		t.Fatalf("expected 1 unknown type, got %d", len(r.UnknownTypes))
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a warning for unknown types")
	}
}

func TestDetectHotspots(t *testing.T) {
	big := &editor.Node{ID: "big", Type: catalog.TypeContainer}
	for i := 0; i < 30; i++ {
		big.Children = append(big.Children, leaf("c"+string(rune('a'+i%26))+string(rune('0'+i/26)), catalog.TypeText))
	}
	forest := []*editor.Node{big}
	for i := 0; i < 15; i++ {
		forest = append(forest, leaf(string(rune('a'+i)), catalog.TypeText))
	}

	hotspots := DetectHotspots(forest)
	if len(hotspots) != 1 {
		t.Fatalf("expected 1 hotspot, got %d", len(hotspots))
	}
	if hotspots[0].ID != "big" || hotspots[0].Size != 31 {
		t.Errorf("unexpected hotspot: %+v", hotspots[0])
	}
	if hotspots[0].Severity != "high" {
		t.Errorf("expected high severity, got %s (z=%.2f)", hotspots[0].Severity, hotspots[0].ZScore)
	}
}

func TestDetectHotspotsUniform(t *testing.T) {
	forest := []*editor.Node{leaf("a", catalog.TypeText), leaf("b", catalog.TypeText), leaf("c", catalog.TypeText)}
	if h := DetectHotspots(forest); h != nil {
		t.Errorf("expected no hotspots for uniform sections, got %+v", h)
	}
	if h := DetectHotspots(forest[:1]); h != nil {
		t.Errorf("expected no hotspots for a single section, got %+v", h)
	}
}

func TestDeepNestingWarning(t *testing.T) {
	root := leaf("d0", catalog.TypeContainer)
	cur := root
	for i := 1; i <= DeepNestingThreshold; i++ {
		next := leaf("d"+string(rune('0'+i)), catalog.TypeContainer)
		cur.Children = []*editor.Node{next}
		cur = next
	}
	r := Analyze([]*editor.Node{root}, nil)
	if r.MaxDepth != DeepNestingThreshold+1 {
		t.Fatalf("expected depth %d, got %d", DeepNestingThreshold+1, r.MaxDepth)
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "nesting depth") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a nesting warning, got %v", r.Warnings)
	}
}

func TestAnalyzeProjectAndFormat(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	s := editor.NewSession()
	box, _ := s.AddNode(catalog.TypeContainer, "")
	img, _ := s.AddNode(catalog.TypeImage, box.ID)
	s.UpdateProps(img.ID, map[string]any{"src": "img_9"})
	s.AddNode(catalog.TypeRow, "")
	data, _ := editor.MarshalForest(s.Forest())

	p, err := store.CreateProject(ctx, database.NewProject{Name: "Gallery", Components: json.RawMessage(data)})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	a := NewAnalyzer(store)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	r, err := a.AnalyzeProject(ctx, p.ID, fakeAssets{})
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}
	if r.Nodes != 3 {
		t.Errorf("expected 3 nodes, got %d", r.Nodes)
	}

	out := FormatReport(r)
	for _, want := range []string{
		"# Page Inspection Report",
		"project 1 (Gallery)",
		"2026-03-01T00:00:00Z",
		"| Container | 1 |",
		"img_9",
		"empty layout container",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	if _, err := a.AnalyzeProject(ctx, 404, nil); err == nil {
		t.Error("expected an error for a missing project")
	}

	tr, err := a.AnalyzeTemplate(ctx, 2)
	if err != nil {
		t.Fatalf("AnalyzeTemplate failed: %v", err)
	}
	if tr.Nodes != 4 {
		t.Errorf("expected 4 nodes in login template, got %d", tr.Nodes)
	}
}
