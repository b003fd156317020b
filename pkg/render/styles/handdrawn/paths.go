package handdrawn

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/teamtree/pkg/render/styles"
)

const (
	wobble         = 1.8
	straightCutoff = 40.0
	maxRotation    = 1.2
)

// wobbledRect traces a rectangle with slightly bowed sides.
func wobbledRect(x, y, w, h float64, seed uint64, id string) string {
	r := newRNG(hash(id, seed))
	amp := min(wobble, min(w, h)/8)

	corners := [4][2]float64{
		{x + r.jitter(amp), y + r.jitter(amp)},
		{x + w + r.jitter(amp), y + r.jitter(amp)},
		{x + w + r.jitter(amp), y + h + r.jitter(amp)},
		{x + r.jitter(amp), y + h + r.jitter(amp)},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s", f(corners[0][0]), f(corners[0][1]))
	for i := 1; i <= 4; i++ {
		from, to := corners[i-1], corners[i%4]
		mx := (from[0]+to[0])/2 + r.jitter(amp*1.5)
		my := (from[1]+to[1])/2 + r.jitter(amp*1.5)
		fmt.Fprintf(&b, " Q %s %s %s %s", f(mx), f(my), f(to[0]), f(to[1]))
	}
	b.WriteString(" Z")
	return b.String()
}

// curvedEdge draws a single hand-drawn stroke. Short strokes stay straight.
func curvedEdge(x1, y1, x2, y2 float64) string {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < straightCutoff {
		return fmt.Sprintf("M %s %s L %s %s", f(x1), f(y1), f(x2), f(y2))
	}
	return fmt.Sprintf("M %s %s", f(x1), f(y1)) + curveTo(x1, y1, x2, y2)
}

func curveTo(x1, y1, x2, y2 float64) string {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < straightCutoff {
		return fmt.Sprintf(" L %s %s", f(x2), f(y2))
	}
	// Bow perpendicular to the stroke by a small, length-dependent amount.
	nx, ny := -dy/length, dx/length
	bow := min(4, length*0.02)
	c1x, c1y := x1+dx/3+nx*bow, y1+dy/3+ny*bow
	c2x, c2y := x1+2*dx/3-nx*bow, y1+2*dy/3-ny*bow
	return fmt.Sprintf(" C %s %s %s %s %s %s", f(c1x), f(c1y), f(c2x), f(c2y), f(x2), f(y2))
}

// elbow redraws a connector's three segments as hand-drawn strokes while
// keeping the same corner points.
func elbow(c styles.Connector) string {
	pts := [4][2]float64{
		{c.X1, c.Y1},
		{c.X1, c.MidY},
		{c.X2, c.MidY},
		{c.X2, c.Y2},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s", f(pts[0][0]), f(pts[0][1]))
	for i := 1; i < len(pts); i++ {
		b.WriteString(curveTo(pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1]))
	}
	return b.String()
}

// rotationFor returns a small tilt in degrees for text on a card.
func rotationFor(id string, w, h float64) float64 {
	r := newRNG(hash(id, 99))
	limit := maxRotation
	if w > 0 && h > 0 && w/h > 4 {
		limit /= 2
	}
	return r.jitter(limit)
}

func f(v float64) string {
	return styles.F(math.Round(v*100) / 100)
}
