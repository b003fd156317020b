package styles

import (
	"bytes"
	"fmt"
)

// Simple is a flat, print-friendly style: white cards with a thin outline,
// dashed placeholders and grey elbow connectors.
type Simple struct{}

// Colors used by Simple.
const (
	simpleStroke      = "#333333"
	simplePlaceholder = "#b0b0b0"
	simpleConnector   = "#8a8a8a"
	simpleLeader      = "#d4a017"
	simpleMuted       = "#666666"
	anchorRadius      = 3.0
	cardRadius        = 8.0
)

func (Simple) Name() string { return "simple" }

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderCard(buf *bytes.Buffer, c Card) {
	fmt.Fprintf(buf, `  <rect class="card" data-slot="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" fill="white" stroke="%s" stroke-width="1.5"/>`+"\n",
		EscapeXML(c.Slot), F(c.X), F(c.Y), F(c.W), F(c.H), F(cardRadius), simpleStroke)
	if c.Leader {
		fmt.Fprintf(buf, `  <circle class="leader" cx="%s" cy="%s" r="5" fill="%s"/>`+"\n",
			F(c.X+c.W-12), F(c.Y+12), simpleLeader)
	}
}

func (Simple) RenderPlaceholder(buf *bytes.Buffer, c Card) {
	fmt.Fprintf(buf, `  <rect class="placeholder" data-slot="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="6 4"/>`+"\n",
		EscapeXML(c.Slot), F(c.X), F(c.Y), F(c.W), F(c.H), F(cardRadius), simplePlaceholder)
	fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%s" fill="%s">%s</text>`+"\n",
		F(c.CX), F(c.Y+c.H/2), F(BodyFontSize(c)), simplePlaceholder, EscapeXML(c.Title))
}

func (Simple) RenderConnector(buf *bytes.Buffer, c Connector) {
	RenderElbow(buf, c, simpleConnector, "")
}

func (Simple) RenderText(buf *bytes.Buffer, c Card) {
	RenderCardText(buf, c, "sans-serif", simpleStroke, simpleMuted)
}

// RenderElbow writes a connector path and its two anchor dots. extra is
// appended verbatim to the path element's attributes.
func RenderElbow(buf *bytes.Buffer, c Connector, color, extra string) {
	fmt.Fprintf(buf, `  <path class="connector" data-parent="%s" data-child="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5"%s/>`+"\n",
		EscapeXML(c.ParentSlot), EscapeXML(c.ChildSlot), c.D, color, extra)
	fmt.Fprintf(buf, `  <circle class="anchor" cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n", F(c.X1), F(c.Y1), F(anchorRadius), color)
	fmt.Fprintf(buf, `  <circle class="anchor" cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n", F(c.X2), F(c.Y2), F(anchorRadius), color)
}

// RenderCardText writes the title, subtitle and metric rows of a card.
func RenderCardText(buf *bytes.Buffer, c Card, font, color, muted string) {
	title := FontSize(c)
	body := BodyFontSize(c)
	pad := c.W * 0.06
	avail := c.W - 2*pad

	y := c.Y + pad + title
	fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="middle" font-family="%s" font-size="%s" font-weight="bold" fill="%s">%s</text>`+"\n",
		F(c.CX), F(y), font, F(title), color, EscapeXML(TruncateLabel(c.Title, avail, title)))
	if c.Subtitle != "" {
		y += body * 1.3
		fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="middle" font-family="%s" font-size="%s" fill="%s">%s</text>`+"\n",
			F(c.CX), F(y), font, F(body), muted, EscapeXML(TruncateLabel(c.Subtitle, avail, body)))
	}
	for _, ln := range c.Lines {
		y += body * 1.3
		if y > c.Y+c.H-pad/2 {
			break
		}
		fmt.Fprintf(buf, `  <text x="%s" y="%s" font-family="%s" font-size="%s" fill="%s">%s</text>`+"\n",
			F(c.X+pad), F(y), font, F(body), muted, EscapeXML(ln.Label))
		fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="end" font-family="%s" font-size="%s" fill="%s">%s</text>`+"\n",
			F(c.X+c.W-pad), F(y), font, F(body), color, EscapeXML(ln.Value))
	}
}
