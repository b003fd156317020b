package sink

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/render/styles"
	"github.com/matzehuels/teamtree/pkg/tree"
)

func scenario(t *testing.T) (layout.Layout, []connector.Path) {
	t.Helper()
	root := &tree.Node{
		ID: "1", Name: "Ann", Package: "Gold",
		Left: &tree.Node{ID: "2", Name: "Bob & Co"},
	}
	l, err := layout.Compute(root, layout.Options{Depth: 3})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return l, connector.Static(l)
}

func TestRenderSVG(t *testing.T) {
	l, paths := scenario(t)
	svg := string(RenderSVG(l, paths, WithTitle("Team of Ann")))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document")
	}
	if got := strings.Count(svg, `class="card"`); got != 2 {
		t.Errorf("cards = %d, want 2", got)
	}
	if got := strings.Count(svg, `class="placeholder"`); got != 5 {
		t.Errorf("placeholders = %d, want 5", got)
	}
	if got := strings.Count(svg, `class="connector"`); got != len(paths) {
		t.Errorf("connectors = %d, want %d", got, len(paths))
	}
	if got := strings.Count(svg, `class="anchor"`); got != 2*len(paths) {
		t.Errorf("anchors = %d, want %d", got, 2*len(paths))
	}
	if !strings.Contains(svg, "Bob &amp; Co") {
		t.Errorf("names should be escaped")
	}
	if !strings.Contains(svg, "<title>Team of Ann</title>") {
		t.Errorf("missing title")
	}
	if strings.Contains(svg, "<script") {
		t.Errorf("interaction should be opt-in")
	}
}

func TestRenderSVG_ConnectorsBelowCards(t *testing.T) {
	l, paths := scenario(t)
	svg := string(RenderSVG(l, paths))
	if strings.Index(svg, `class="connector"`) > strings.Index(svg, `class="card"`) {
		t.Errorf("connectors should be drawn before cards")
	}
}

func TestRenderSVG_Styles(t *testing.T) {
	l, paths := scenario(t)
	for _, name := range []string{"simple", "handdrawn"} {
		t.Run(name, func(t *testing.T) {
			s, err := styles.Lookup(name)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			a := RenderSVG(l, paths, WithStyle(s), WithInteraction())
			b := RenderSVG(l, paths, WithStyle(s), WithInteraction())
			if string(a) != string(b) {
				t.Errorf("rendering should be deterministic")
			}
			if !strings.Contains(string(a), "<script") {
				t.Errorf("missing interaction script")
			}
		})
	}
}

func TestRenderSVG_EmptyTree(t *testing.T) {
	l, err := layout.Compute(nil, layout.Options{Depth: 2})
	if err != nil {
		t.Fatal(err)
	}
	svg := string(RenderSVG(l, connector.Static(l)))
	if strings.Count(svg, `class="placeholder"`) != 3 {
		t.Errorf("empty tree should render three placeholders")
	}
	if strings.Contains(svg, `class="connector"`) {
		t.Errorf("empty tree should have no connectors")
	}
}

func TestRenderJSON(t *testing.T) {
	l, paths := scenario(t)
	fetched := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := RenderJSON(l, paths,
		WithJSONKind(tree.KindUser),
		WithJSONStyle("simple"),
		WithJSONStats(tree.Stats{"total": 2}),
		WithJSONFetchedAt(fetched),
	)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Kind != "user" || out.Style != "simple" || out.Depth != 3 {
		t.Errorf("header = %+v", out)
	}
	if out.FetchedAt == nil || !out.FetchedAt.Equal(fetched) {
		t.Errorf("fetched_at = %v", out.FetchedAt)
	}
	if len(out.Cards) != 7 {
		t.Fatalf("cards = %d, want 7", len(out.Cards))
	}
	if out.Cards[0].Member == nil || out.Cards[0].Member.Name != "Ann" {
		t.Errorf("root card = %+v", out.Cards[0])
	}
	if !out.Cards[2].Placeholder || out.Cards[2].Member != nil {
		t.Errorf("slot R should be a placeholder: %+v", out.Cards[2])
	}
	if len(out.Connectors) != 1 || out.Connectors[0].Child != "L" {
		t.Errorf("connectors = %+v", out.Connectors)
	}
}
