// Package handdrawn provides a sketch-like SVG style: wobbly card outlines,
// softly curved connectors and a handwriting font.
package handdrawn

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/teamtree/pkg/render/styles"
)

const (
	fontFamily  = "'Patrick Hand', 'Comic Neue', 'Comic Sans MS', cursive"
	strokeColor = "#2b2b2b"
	mutedColor  = "#555555"
	lineColor   = "#4a4a4a"
	leaderColor = "#c0392b"
)

func init() {
	styles.Register("handdrawn", func() styles.Style { return New(0) })
}

// HandDrawn renders cards with deterministic, seed-dependent wobble.
type HandDrawn struct {
	seed uint64
}

// New returns a HandDrawn style. Different seeds produce different but
// reproducible wobble.
func New(seed uint64) HandDrawn { return HandDrawn{seed: seed} }

func (HandDrawn) Name() string { return "handdrawn" }

func (HandDrawn) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <filter id="paper"><feTurbulence type="fractalNoise" baseFrequency="0.9" numOctaves="2" result="n"/><feColorMatrix in="n" type="saturate" values="0"/><feBlend in="SourceGraphic" mode="multiply"/></filter>` + "\n")
}

func (h HandDrawn) RenderCard(buf *bytes.Buffer, c styles.Card) {
	fmt.Fprintf(buf, `  <path class="card" data-slot="%s" d="%s" fill="%s" stroke="%s" stroke-width="2" stroke-linejoin="round"/>`+"\n",
		styles.EscapeXML(c.Slot), wobbledRect(c.X, c.Y, c.W, c.H, h.seed, "card:"+c.Slot), greyForID(c.Slot), strokeColor)
	if c.Leader {
		fmt.Fprintf(buf, `  <path class="leader" d="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
			wobbledRect(c.X+c.W-20, c.Y+6, 12, 12, h.seed, "leader:"+c.Slot), leaderColor)
	}
}

func (h HandDrawn) RenderPlaceholder(buf *bytes.Buffer, c styles.Card) {
	fmt.Fprintf(buf, `  <path class="placeholder" data-slot="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="7 5"/>`+"\n",
		styles.EscapeXML(c.Slot), wobbledRect(c.X, c.Y, c.W, c.H, h.seed, "placeholder:"+c.Slot), mutedColor)
	fmt.Fprintf(buf, `  <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%s" fill="%s">%s</text>`+"\n",
		styles.F(c.CX), styles.F(c.Y+c.H/2), fontFamily, styles.F(styles.BodyFontSize(c)), mutedColor, styles.EscapeXML(c.Title))
}

func (HandDrawn) RenderConnector(buf *bytes.Buffer, c styles.Connector) {
	sketched := c
	sketched.D = elbow(c)
	styles.RenderElbow(buf, sketched, lineColor, ` stroke-linecap="round"`)
}

func (HandDrawn) RenderText(buf *bytes.Buffer, c styles.Card) {
	rot := rotationFor(c.Slot, c.W, c.H)
	fmt.Fprintf(buf, `  <g transform="rotate(%s %s %s)">`+"\n", f(rot), styles.F(c.CX), styles.F(c.Y+c.H/2))
	styles.RenderCardText(buf, c, fontFamily, strokeColor, mutedColor)
	buf.WriteString("  </g>\n")
}
