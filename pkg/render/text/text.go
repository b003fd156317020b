// Package text renders a team tree as box-drawing art for terminals.
//
// Cards are laid out by the layout package in character units (see
// [Geometry]) and joined by the same elbow connectors the SVG output uses,
// drawn with ┬ ┴ ┌ ┐ └ ┘ junctions.
package text

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/render/styles"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// Card geometry in character cells. Even widths and gaps keep every center
// on a whole column.
const (
	CardWidth  = 22
	CardHeight = 6
	HGap       = 2
	VGap       = 4
	Padding    = 1
)

// Geometry returns layout options measured in character cells.
func Geometry(depth int) layout.Options {
	return layout.Options{
		Depth:      depth,
		CardWidth:  CardWidth,
		CardHeight: CardHeight,
		HGap:       HGap,
		VGap:       VGap,
		Padding:    Padding,
	}
}

type Option func(*renderer)

type renderer struct {
	color bool
}

// WithColor styles borders, names and placeholders with lipgloss.
func WithColor() Option { return func(r *renderer) { r.color = true } }

var palette = map[class]lipgloss.Style{
	classLine:        lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	classBorder:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	classPlaceholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true),
	classTitle:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
	classBody:        lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
	classLeader:      lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
}

// Render lays out root at the given depth and draws it.
func Render(root *tree.Node, depth int, opts ...Option) (string, error) {
	l, err := layout.Compute(root, Geometry(depth))
	if err != nil {
		return "", err
	}
	return Draw(l, connector.Static(l), opts...), nil
}

// Draw renders a layout computed with [Geometry] (or any layout whose
// coordinates are whole character cells) together with its connectors.
func Draw(l layout.Layout, paths []connector.Path, opts ...Option) string {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}

	c := newCanvas(cells(l.Width), cells(l.Height))
	for _, card := range l.Cards {
		rect := card.Rect.Translate(-l.Container.Left, -l.Container.Top)
		x, y, w, h := cells(rect.Left), cells(rect.Top), cells(rect.Width), cells(rect.Height)
		if card.Placeholder {
			drawPlaceholder(c, x, y, w, h)
			continue
		}
		drawCard(c, x, y, w, h, card.Node)
	}
	for _, p := range paths {
		drawConnector(c, p)
	}

	if r.color {
		return c.String(palette)
	}
	return c.String(nil)
}

func cells(v float64) int { return int(math.Round(v)) }

func drawBox(c *canvas, x, y, w, h int, tl, tr, bl, br, hz, vt rune, cl class) {
	if w < 2 || h < 2 {
		return
	}
	for i := x + 1; i < x+w-1; i++ {
		c.set(i, y, hz, cl)
		c.set(i, y+h-1, hz, cl)
	}
	for j := y + 1; j < y+h-1; j++ {
		c.set(x, j, vt, cl)
		c.set(x+w-1, j, vt, cl)
	}
	c.set(x, y, tl, cl)
	c.set(x+w-1, y, tr, cl)
	c.set(x, y+h-1, bl, cl)
	c.set(x+w-1, y+h-1, br, cl)
}

func drawCard(c *canvas, x, y, w, h int, n *tree.Node) {
	drawBox(c, x, y, w, h, '╭', '╮', '╰', '╯', '─', '│', classBorder)
	if n.Leader {
		c.set(x+w-3, y, '★', classLeader)
	}

	inner := w - 4
	rows := []struct {
		s  string
		cl class
	}{
		{n.Name, classTitle},
		{n.Package, classBody},
		{"Earn " + styles.FormatAmount(n.Metrics.Earnings), classBody},
		{fmt.Sprintf("L %d  R %d  T %d", n.Metrics.LeftCount, n.Metrics.RightCount, n.Metrics.TeamSize), classBody},
	}
	for i, row := range rows {
		ry := y + 1 + i
		if ry >= y+h-1 {
			break
		}
		c.write(x+2, ry, truncate(row.s, inner), inner, row.cl)
	}
}

func drawPlaceholder(c *canvas, x, y, w, h int) {
	drawBox(c, x, y, w, h, '┌', '┐', '└', '┘', '┄', '┆', classPlaceholder)
	const label = "Empty"
	c.write(x+(w-len(label))/2, y+h/2, label, w-4, classPlaceholder)
}

// drawConnector traces an elbow: down from the parent, across at MidY, and
// down into the child. The card borders get ┬ and ┴ where the line attaches.
func drawConnector(c *canvas, p connector.Path) {
	x1, y1 := cells(p.From.X), cells(p.From.Y)
	x2, y2 := cells(p.To.X), cells(p.To.Y)
	mid := cells(p.MidY)

	c.vline(x1, y1, mid-1)
	c.mark(x1, mid, up)
	c.hline(mid, x1, x2)
	c.mark(x2, mid, down)
	c.vline(x2, mid+1, y2-1)

	c.set(x1, y1-1, '┬', classBorder)
	c.set(x2, y2, '┴', classBorder)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// Size reports the rendered width and height in cells for a tree of the
// given depth.
func Size(depth int) (w, h int) {
	leaves := 1 << (max(depth, 1) - 1)
	w = 2*Padding + leaves*CardWidth + (leaves-1)*HGap
	h = 2*Padding + depth*CardHeight + (depth-1)*VGap
	return w, h
}
