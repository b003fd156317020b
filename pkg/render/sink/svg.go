package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/render/styles"
	_ "github.com/matzehuels/teamtree/pkg/render/styles/handdrawn"
)

const cardInteractionCSS = `
    .card { transition: stroke-width 0.2s ease; }
    .card.highlight { stroke-width: 3; }
    .connector.highlight { stroke-width: 2.5; }`

// Hovering a card highlights the path from the root down to it.
const cardInteractionJS = `
    function lineage(slot) {
      const out = [];
      for (let i = 0; i <= slot.length; i++) out.push(slot.slice(0, i));
      return out;
    }
    function highlight(slot) {
      const keep = lineage(slot);
      document.querySelectorAll('.card').forEach(c => c.classList.toggle('highlight', keep.includes(c.dataset.slot)));
      document.querySelectorAll('.connector').forEach(p => p.classList.toggle('highlight', keep.includes(p.dataset.child)));
    }
    function clearHighlight() {
      document.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.card').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.slot));
      el.addEventListener('mouseleave', clearHighlight);
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	title       string
	interactive bool
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithTitle(t string) SVGOption       { return func(r *svgRenderer) { r.title = t } }

// WithInteraction embeds hover highlighting. Leave it off for output that
// will be converted to PNG or PDF.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws every slot of l and the given connector paths. Paths are
// expected in container-relative coordinates, as produced by the connector
// package. Connectors are drawn below the cards so anchors sit on card edges.
func RenderSVG(l layout.Layout, paths []connector.Path, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	cards := styles.Cards(l)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", styles.EscapeXML(r.title))
	}

	buf.WriteString("  <defs>\n")
	r.style.RenderDefs(&buf)
	buf.WriteString("  </defs>\n")

	for _, p := range paths {
		r.style.RenderConnector(&buf, styles.NewConnector(p))
	}
	for _, c := range cards {
		if c.Placeholder {
			r.style.RenderPlaceholder(&buf, c)
			continue
		}
		r.style.RenderCard(&buf, c)
	}
	for _, c := range cards {
		if !c.Placeholder {
			r.style.RenderText(&buf, c)
		}
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cardInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", cardInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
