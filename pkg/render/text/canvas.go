package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Line directions for box-drawing junctions.
const (
	up uint8 = 1 << iota
	down
	left
	right
)

var junctions = map[uint8]rune{
	up:                       '│',
	down:                     '│',
	up | down:                '│',
	left:                     '─',
	right:                    '─',
	left | right:             '─',
	down | right:             '┌',
	down | left:              '┐',
	up | right:               '└',
	up | left:                '┘',
	up | down | right:        '├',
	up | down | left:         '┤',
	left | right | down:      '┬',
	left | right | up:        '┴',
	up | down | left | right: '┼',
}

// class tags a cell for optional coloring.
type class uint8

const (
	classNone class = iota
	classLine
	classBorder
	classPlaceholder
	classTitle
	classBody
	classLeader
)

type cell struct {
	r     rune
	lines uint8
	class class
}

// canvas is a fixed-size grid of cells addressed as (x, y).
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return nil
	}
	return &c.cells[y*c.w+x]
}

func (c *canvas) set(x, y int, r rune, cl class) {
	if p := c.at(x, y); p != nil {
		p.r, p.class = r, cl
	}
}

// write places s starting at (x, y), clipped to max runes.
func (c *canvas) write(x, y int, s string, max int, cl class) {
	i := 0
	for _, r := range s {
		if i >= max {
			return
		}
		c.set(x+i, y, r, cl)
		i++
	}
}

// mark adds line directions to a cell and redraws its junction glyph.
func (c *canvas) mark(x, y int, dirs uint8) {
	p := c.at(x, y)
	if p == nil || dirs == 0 {
		return
	}
	p.lines |= dirs
	p.r = junctions[p.lines]
	p.class = classLine
}

// vline marks every cell from y0 to y1 inclusive as a vertical run. Both
// ends stay open.
func (c *canvas) vline(x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		c.mark(x, y, up|down)
	}
}

// hline draws a horizontal run from x0 to x1 inclusive at y. Only the
// interior is marked left|right; the ends get the inward direction.
func (c *canvas) hline(y, x0, x1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		var d uint8
		if x > x0 {
			d |= left
		}
		if x < x1 {
			d |= right
		}
		c.mark(x, y, d)
	}
}

// String renders the grid. When styled is true, runs of cells sharing a
// class are wrapped in the matching lipgloss style.
func (c *canvas) String(palette map[class]lipgloss.Style) string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		row := c.cells[y*c.w : (y+1)*c.w]
		end := len(row)
		for end > 0 && row[end-1].r == ' ' {
			end--
		}
		row = row[:end]

		if palette == nil {
			for _, p := range row {
				b.WriteRune(p.r)
			}
		} else {
			writeStyled(&b, row, palette)
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeStyled(b *strings.Builder, row []cell, palette map[class]lipgloss.Style) {
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].class == row[i].class {
			run.WriteRune(row[j].r)
			j++
		}
		if st, ok := palette[row[i].class]; ok {
			b.WriteString(st.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		i = j
	}
}
