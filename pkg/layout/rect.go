package layout

// Rect is an axis-aligned rectangle. Y grows downwards, as on screen.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge of the rectangle.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge of the rectangle.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Overlaps reports whether two rectangles share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right() && o.Left < r.Right() && r.Top < o.Bottom() && o.Top < r.Bottom()
}

// SameSize reports whether two rectangles have the same footprint.
func (r Rect) SameSize(o Rect) bool {
	return r.Width == o.Width && r.Height == o.Height
}
