// Package analysis inspects saved page forests and reports on their shape.
// All checks are deterministic and run on the decoded component tree.
//
// Key capabilities:
//   - Size and depth statistics per page
//   - Component type distribution
//   - Oversized section detection via Z-score analysis
//   - Empty layout containers and dangling asset references
package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Mr-Dark-debug/lowcode/internal/assets"
	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
)

// DeepNestingThreshold is the depth past which a page is flagged.
const DeepNestingThreshold = 8

// AssetIndex resolves local asset ids. *assets.Registry satisfies it.
type AssetIndex interface {
	Lookup(id string) (*assets.LocalAsset, bool)
}

// Analyzer loads pages from a store and analyzes them.
type Analyzer struct {
	store database.Store
	now   func() time.Time
}

// NewAnalyzer creates a new analysis engine backed by the given store.
func NewAnalyzer(store database.Store) *Analyzer {
	return &Analyzer{store: store, now: time.Now}
}

// ============================================================
// Report
// ============================================================

// TypeCount is the number of nodes of one component type.
type TypeCount struct {
	Type       catalog.ComponentType `json:"type"`
	Count      int                   `json:"count"`
	Percentage float64               `json:"percentage"`
}

// NodeRef points at one node in the forest.
type NodeRef struct {
	ID    string                `json:"id"`
	Name  string                `json:"name"`
	Type  catalog.ComponentType `json:"type"`
	Depth int                   `json:"depth"`
}

// Hotspot is a top-level section holding a disproportionate share of the
// page's nodes.
type Hotspot struct {
	NodeRef
	Size     int     `json:"size"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"` // "low", "medium", "high"
}

// Report is the output of `lowcode inspect`.
type Report struct {
	Source             string      `json:"source"`
	GeneratedAt        string      `json:"generated_at"`
	Nodes              int         `json:"nodes"`
	Roots              int         `json:"roots"`
	MaxDepth           int         `json:"max_depth"`
	AverageDepth       float64     `json:"average_depth"`
	BranchingFactor    float64     `json:"branching_factor"`
	TypeCounts         []TypeCount `json:"type_counts"`
	Hotspots           []Hotspot   `json:"hotspots"`
	EmptyContainers    []NodeRef   `json:"empty_containers"`
	UnknownTypes       []NodeRef   `json:"unknown_types"`
	LocalReferences    []string    `json:"local_references"`
	DanglingReferences []string    `json:"dangling_references"`
	Warnings           []string    `json:"warnings"`
}

// layoutTypes hold other components; empty ones render as blank boxes.
var layoutTypes = map[catalog.ComponentType]bool{
	catalog.TypeContainer: true,
	catalog.TypeRow:       true,
	catalog.TypeCard:      true,
}

// Analyze computes the report for forest. idx may be nil, in which case
// dangling references are not computed.
func Analyze(forest []*editor.Node, idx AssetIndex) *Report {
	r := &Report{Roots: len(forest)}

	counts := map[catalog.ComponentType]int{}
	seenRefs := map[string]bool{}
	var depthSum, parents, childSum int

	var walk func(n *editor.Node, depth int)
	walk = func(n *editor.Node, depth int) {
		if n == nil {
			return
		}
		r.Nodes++
		depthSum += depth
		r.MaxDepth = max(r.MaxDepth, depth+1)
		counts[n.Type]++

		ref := NodeRef{ID: n.ID, Name: n.Name, Type: n.Type, Depth: depth}
		if !n.Type.Valid() {
			r.UnknownTypes = append(r.UnknownTypes, ref)
		}
		if layoutTypes[n.Type] && len(n.Children) == 0 {
			r.EmptyContainers = append(r.EmptyContainers, ref)
		}
		if n.Type == catalog.TypeImage {
			if src, ok := n.Props["src"].(string); ok && assets.IsLocalReference(src) && !seenRefs[src] {
				seenRefs[src] = true
				r.LocalReferences = append(r.LocalReferences, src)
			}
		}
		if len(n.Children) > 0 {
			parents++
			childSum += len(n.Children)
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, n := range forest {
		walk(n, 0)
	}

	if r.Nodes > 0 {
		r.AverageDepth = round2(float64(depthSum) / float64(r.Nodes))
	}
	if parents > 0 {
		r.BranchingFactor = round2(float64(childSum) / float64(parents))
	}

	for t, c := range counts {
		r.TypeCounts = append(r.TypeCounts, TypeCount{
			Type:       t,
			Count:      c,
			Percentage: round2(float64(c) / float64(r.Nodes) * 100),
		})
	}
	sort.Slice(r.TypeCounts, func(i, j int) bool {
		if r.TypeCounts[i].Count != r.TypeCounts[j].Count {
			return r.TypeCounts[i].Count > r.TypeCounts[j].Count
		}
		return r.TypeCounts[i].Type < r.TypeCounts[j].Type
	})

	if idx != nil {
		for _, ref := range r.LocalReferences {
			if _, ok := idx.Lookup(ref); !ok {
				r.DanglingReferences = append(r.DanglingReferences, ref)
			}
		}
	}

	r.Hotspots = DetectHotspots(forest)
	r.Warnings = warnings(r)
	return r
}

// DetectHotspots calculates the Z-score of subtree size across the
// top-level sections, flagging sections that hold far more nodes than
// their siblings.
//
// A Z-score > 2.0 is "medium" severity; > 3.0 is "high".
func DetectHotspots(forest []*editor.Node) []Hotspot {
	if len(forest) < 2 {
		// Not enough sections for a meaningful Z-score
		return nil
	}

	sizes := make([]float64, len(forest))
	var sum, sumSq float64
	for i, n := range forest {
		size := float64(n.Count())
		sizes[i] = size
		sum += size
		sumSq += size * size
	}

	n := float64(len(forest))
	mean := sum / n
	variance := (sumSq / n) - (mean * mean)
	stddev := math.Sqrt(math.Max(variance, 0))
	if stddev == 0 {
		return nil
	}

	var hotspots []Hotspot
	for i, root := range forest {
		z := (sizes[i] - mean) / stddev
		if z <= 1.5 {
			continue
		}
		severity := "low"
		if z > 3.0 {
			severity = "high"
		} else if z > 2.0 {
			severity = "medium"
		}
		hotspots = append(hotspots, Hotspot{
			NodeRef:  NodeRef{ID: root.ID, Name: root.Name, Type: root.Type},
			Size:     int(sizes[i]),
			ZScore:   round2(z),
			Severity: severity,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		return hotspots[i].ZScore > hotspots[j].ZScore
	})
	return hotspots
}

func warnings(r *Report) []string {
	var out []string
	if len(r.UnknownTypes) > 0 {
		out = append(out, fmt.Sprintf("%d node(s) use component types this build does not know", len(r.UnknownTypes)))
	}
	if len(r.DanglingReferences) > 0 {
		out = append(out, fmt.Sprintf("images reference missing local assets: %s", strings.Join(r.DanglingReferences, ", ")))
	}
	if len(r.EmptyContainers) > 0 {
		out = append(out, fmt.Sprintf("%d empty layout container(s)", len(r.EmptyContainers)))
	}
	if r.MaxDepth > DeepNestingThreshold {
		out = append(out, fmt.Sprintf("nesting depth %d exceeds %d", r.MaxDepth, DeepNestingThreshold))
	}
	for _, h := range r.Hotspots {
		if h.Severity == "high" {
			out = append(out, fmt.Sprintf("section %s holds %d nodes (Z-score: %.2f); consider splitting it", h.ID, h.Size, h.ZScore))
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ============================================================
// Store-backed analysis
// ============================================================

// AnalyzeProject loads project id and analyzes its forest.
func (a *Analyzer) AnalyzeProject(ctx context.Context, id int64, idx AssetIndex) (*Report, error) {
	p, err := a.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading project for analysis: %w", err)
	}
	forest, err := editor.UnmarshalForest(p.Components)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", id, err)
	}

	r := Analyze(forest, idx)
	r.Source = fmt.Sprintf("project %d (%s)", p.ID, p.Name)
	r.GeneratedAt = a.now().Format(time.RFC3339)
	return r, nil
}

// AnalyzeTemplate loads template id and analyzes its forest.
func (a *Analyzer) AnalyzeTemplate(ctx context.Context, id int64) (*Report, error) {
	t, err := a.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading template for analysis: %w", err)
	}
	forest, err := editor.UnmarshalForest(t.Components)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", id, err)
	}

	r := Analyze(forest, nil)
	r.Source = fmt.Sprintf("template %d (%s)", t.ID, t.Name)
	r.GeneratedAt = a.now().Format(time.RFC3339)
	return r, nil
}

// FormatReport generates a human-readable markdown report.
func FormatReport(report *Report) string {
	var b strings.Builder
	title := cases.Title(language.English)

	b.WriteString("# Page Inspection Report\n\n")
	if report.Source != "" {
		fmt.Fprintf(&b, "**Source:** %s\n", report.Source)
	}
	if report.GeneratedAt != "" {
		fmt.Fprintf(&b, "**Generated:** %s\n", report.GeneratedAt)
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Nodes | %d |\n", report.Nodes)
	fmt.Fprintf(&b, "| Top-level sections | %d |\n", report.Roots)
	fmt.Fprintf(&b, "| Max depth | %d |\n", report.MaxDepth)
	fmt.Fprintf(&b, "| Average depth | %.2f |\n", report.AverageDepth)
	fmt.Fprintf(&b, "| Branching factor | %.2f |\n", report.BranchingFactor)
	fmt.Fprintf(&b, "| Local asset references | %d |\n\n", len(report.LocalReferences))

	if len(report.TypeCounts) > 0 {
		b.WriteString("## Components\n\n")
		b.WriteString("| Type | Count | % |\n")
		b.WriteString("|------|-------|---|\n")
		for _, tc := range report.TypeCounts {
			fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", title.String(string(tc.Type)), tc.Count, tc.Percentage)
		}
		b.WriteString("\n")
	}

	if len(report.Hotspots) > 0 {
		b.WriteString("## Heavy Sections\n\n")
		b.WriteString("| Section | Type | Nodes | Z-Score | Severity |\n")
		b.WriteString("|---------|------|-------|---------|----------|\n")
		for _, h := range report.Hotspots {
			fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %s |\n",
				h.ID, title.String(string(h.Type)), h.Size, h.ZScore, h.Severity)
		}
		b.WriteString("\n")
	}

	if len(report.EmptyContainers) > 0 {
		b.WriteString("## Empty Containers\n\n")
		for _, n := range report.EmptyContainers {
			fmt.Fprintf(&b, "- `%s` %s (depth %d)\n", n.ID, title.String(string(n.Type)), n.Depth)
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
