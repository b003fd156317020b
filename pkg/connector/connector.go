package connector

import (
	"strconv"
	"strings"

	"github.com/matzehuels/teamtree/pkg/layout"
)

// Point is a coordinate relative to the container.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is one parent-to-child connector.
type Path struct {
	// D is the path data, suitable for an SVG path element.
	D string `json:"d"`

	// From is the parent's bottom-center anchor, To the child's top-center.
	From Point   `json:"from"`
	To   Point   `json:"to"`
	MidY float64 `json:"mid_y"`

	// Index is the position of the child in the input slice.
	Index int `json:"index"`

	// ParentSlot and ChildSlot are set by [ForLayout].
	ParentSlot string `json:"parent_slot,omitempty"`
	ChildSlot  string `json:"child_slot,omitempty"`
}

// Compute returns one path per non-nil child. It returns an empty slice when
// the container or the parent is nil. Compute is pure: identical inputs
// always produce identical output.
func Compute(container, parent *layout.Rect, children []*layout.Rect) []Path {
	if container == nil || parent == nil {
		return []Path{}
	}

	px := parent.CenterX() - container.Left
	py := parent.Bottom() - container.Top

	paths := make([]Path, 0, len(children))
	for i, child := range children {
		if child == nil {
			continue
		}
		cx := child.CenterX() - container.Left
		cy := child.Top - container.Top
		midY := (py + cy) / 2

		paths = append(paths, Path{
			D:     elbow(px, py, cx, cy, midY),
			From:  Point{X: px, Y: py},
			To:    Point{X: cx, Y: cy},
			MidY:  midY,
			Index: i,
		})
	}
	return paths
}

func elbow(px, py, cx, cy, midY float64) string {
	var b strings.Builder
	b.Grow(64)
	b.WriteString("M ")
	writePair(&b, px, py)
	b.WriteString(" L ")
	writePair(&b, px, midY)
	b.WriteString(" L ")
	writePair(&b, cx, midY)
	b.WriteString(" L ")
	writePair(&b, cx, cy)
	return b.String()
}

func writePair(b *strings.Builder, x, y float64) {
	b.WriteString(formatCoord(x))
	b.WriteByte(' ')
	b.WriteString(formatCoord(y))
}

// formatCoord prints the shortest representation that round-trips.
func formatCoord(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
