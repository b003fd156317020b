package styles

import (
	"bytes"
	"strconv"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
)

// Style defines the visual appearance of a rendered tree.
// Implementations control how cards, connectors and text are drawn.
type Style interface {
	// Name is the identifier used on the command line ("simple", "handdrawn").
	Name() string
	// RenderDefs writes SVG <defs> content (filters, patterns, markers).
	RenderDefs(buf *bytes.Buffer)
	// RenderCard writes the SVG for a populated card's frame.
	RenderCard(buf *bytes.Buffer, c Card)
	// RenderPlaceholder writes the SVG for an empty slot. It must occupy
	// exactly the same footprint as a populated card.
	RenderPlaceholder(buf *bytes.Buffer, c Card)
	// RenderConnector writes the SVG for a parent-child connector, including
	// its two anchor dots.
	RenderConnector(buf *bytes.Buffer, c Connector)
	// RenderText writes a populated card's text.
	RenderText(buf *bytes.Buffer, c Card)
}

// Card contains all data needed to render one slot.
type Card struct {
	Slot        string  // Slot path ("" for the root)
	X, Y, W, H  float64 // Position (container-relative) and size
	CX          float64 // Horizontal center
	Title       string  // Member name
	Subtitle    string  // Package / plan
	Lines       []Line  // Metric rows
	Leader      bool    // Leadership badge
	Placeholder bool    // Empty slot
}

// Line is one label/value row on a card.
type Line struct {
	Label string
	Value string
}

// Connector contains positioning data for one connector.
type Connector struct {
	ParentSlot, ChildSlot string
	D                     string  // SVG path data
	X1, Y1, X2, Y2        float64 // Parent and child anchors
	MidY                  float64 // Height of the horizontal traverse
}

// NewCard converts a laid-out slot into render data. Coordinates are made
// relative to the layout container.
func NewCard(l layout.Layout, c layout.Card) Card {
	r := c.Rect.Translate(-l.Container.Left, -l.Container.Top)
	card := Card{
		Slot:        c.Slot,
		X:           r.Left,
		Y:           r.Top,
		W:           r.Width,
		H:           r.Height,
		CX:          r.CenterX(),
		Placeholder: c.Placeholder,
	}
	if c.Node == nil {
		card.Title = "Empty"
		return card
	}
	n := c.Node
	card.Title = n.Name
	card.Subtitle = n.Package
	card.Leader = n.Leader
	card.Lines = []Line{
		{"Earnings", FormatAmount(n.Metrics.Earnings)},
		{"Left", strconv.Itoa(n.Metrics.LeftCount)},
		{"Right", strconv.Itoa(n.Metrics.RightCount)},
		{"Team", strconv.Itoa(n.Metrics.TeamSize)},
	}
	return card
}

// Cards converts every slot of l.
func Cards(l layout.Layout) []Card {
	cards := make([]Card, 0, len(l.Cards))
	for _, c := range l.Cards {
		cards = append(cards, NewCard(l, c))
	}
	return cards
}

// NewConnector converts a computed path.
func NewConnector(p connector.Path) Connector {
	return Connector{
		ParentSlot: p.ParentSlot,
		ChildSlot:  p.ChildSlot,
		D:          p.D,
		X1:         p.From.X,
		Y1:         p.From.Y,
		X2:         p.To.X,
		Y2:         p.To.Y,
		MidY:       p.MidY,
	}
}
