package sink

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	kind      tree.Kind
	style     string
	stats     tree.Stats
	fetchedAt time.Time
}

// WithJSONKind records which tree (user or franchise) the layout shows.
func WithJSONKind(k tree.Kind) JSONOption { return func(r *jsonRenderer) { r.kind = k } }

// WithJSONStyle records the style name for round-trip rendering.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONStats includes the backend's summary statistics.
func WithJSONStats(s tree.Stats) JSONOption { return func(r *jsonRenderer) { r.stats = s } }

// WithJSONFetchedAt records when the tree was fetched.
func WithJSONFetchedAt(t time.Time) JSONOption { return func(r *jsonRenderer) { r.fetchedAt = t } }

type jsonOutput struct {
	Kind       string          `json:"kind,omitempty"`
	Style      string          `json:"style,omitempty"`
	FetchedAt  *time.Time      `json:"fetched_at,omitempty"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Depth      int             `json:"depth"`
	Options    layout.Options  `json:"options"`
	Cards      []jsonCard      `json:"cards"`
	Connectors []jsonConnector `json:"connectors"`
	Stats      tree.Stats      `json:"stats,omitempty"`
}

type jsonCard struct {
	Slot        string      `json:"slot"`
	Depth       int         `json:"depth"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Member      *jsonMember `json:"member,omitempty"`
}

type jsonMember struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Package string            `json:"package,omitempty"`
	Leader  bool              `json:"leader,omitempty"`
	Metrics tree.Metrics      `json:"metrics"`
	Extra   map[string]string `json:"extra,omitempty"`
}

type jsonConnector struct {
	Parent string  `json:"parent"`
	Child  string  `json:"child"`
	D      string  `json:"d"`
	MidY   float64 `json:"mid_y"`
}

// RenderJSON exports the layout and connectors as an indented JSON document.
// Card coordinates are container-relative, matching the connector paths.
func RenderJSON(l layout.Layout, paths []connector.Path, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Kind:       string(r.kind),
		Style:      r.style,
		Width:      l.Width,
		Height:     l.Height,
		Depth:      l.Depth,
		Options:    l.Options,
		Cards:      make([]jsonCard, 0, len(l.Cards)),
		Connectors: make([]jsonConnector, 0, len(paths)),
		Stats:      r.stats,
	}
	if !r.fetchedAt.IsZero() {
		t := r.fetchedAt.UTC()
		out.FetchedAt = &t
	}

	for _, c := range l.Cards {
		rect := c.Rect.Translate(-l.Container.Left, -l.Container.Top)
		jc := jsonCard{
			Slot:        c.Slot,
			Depth:       c.Depth,
			X:           rect.Left,
			Y:           rect.Top,
			Width:       rect.Width,
			Height:      rect.Height,
			Placeholder: c.Placeholder,
		}
		if n := c.Node; n != nil {
			jc.Member = &jsonMember{
				ID:      n.ID,
				Name:    n.Name,
				Package: n.Package,
				Leader:  n.Leader,
				Metrics: n.Metrics,
				Extra:   n.Extra,
			}
		}
		out.Cards = append(out.Cards, jc)
	}
	for _, p := range paths {
		out.Connectors = append(out.Connectors, jsonConnector{
			Parent: p.ParentSlot,
			Child:  p.ChildSlot,
			D:      p.D,
			MidY:   p.MidY,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
