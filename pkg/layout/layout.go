package layout

import (
	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/tree"
)

const (
	DefaultDepth      = 3
	MaxDepth          = 6
	DefaultCardWidth  = 200.0
	DefaultCardHeight = 112.0
	DefaultHGap       = 24.0
	DefaultVGap       = 64.0
	DefaultPadding    = 24.0
)

// Options controls the layout geometry. Zero values are replaced by defaults
// in [Options.WithDefaults].
type Options struct {
	Depth      int     `json:"depth"`
	CardWidth  float64 `json:"card_width"`
	CardHeight float64 `json:"card_height"`
	HGap       float64 `json:"h_gap"`
	VGap       float64 `json:"v_gap"`
	Padding    float64 `json:"padding"`
	OriginX    float64 `json:"origin_x,omitempty"`
	OriginY    float64 `json:"origin_y,omitempty"`
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	if o.CardWidth == 0 {
		o.CardWidth = DefaultCardWidth
	}
	if o.CardHeight == 0 {
		o.CardHeight = DefaultCardHeight
	}
	if o.HGap == 0 {
		o.HGap = DefaultHGap
	}
	if o.VGap == 0 {
		o.VGap = DefaultVGap
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	return o
}

// Validate checks the options after defaults have been applied.
func (o Options) Validate() error {
	if o.Depth < 1 || o.Depth > MaxDepth {
		return errors.New(errors.ErrCodeInvalidDepth, "depth must be between 1 and %d, got %d", MaxDepth, o.Depth)
	}
	if o.CardWidth <= 0 || o.CardHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "card size must be positive, got %gx%g", o.CardWidth, o.CardHeight)
	}
	if o.HGap < 0 || o.VGap < 0 || o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "gaps and padding cannot be negative")
	}
	return nil
}

// Card is one laid-out slot. Node is nil for placeholders.
type Card struct {
	Slot        string     `json:"slot"`
	Depth       int        `json:"depth"`
	Rect        Rect       `json:"rect"`
	Node        *tree.Node `json:"-"`
	Placeholder bool       `json:"placeholder"`
}

// Layout is the result of a layout pass.
type Layout struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Depth     int     `json:"depth"`
	Container Rect    `json:"container"`
	Cards     []Card  `json:"cards"`
	Options   Options `json:"options"`

	index map[string]int
}

// Compute lays out root as a complete binary tree of opts.Depth levels.
// Nodes below the depth limit are not laid out.
func Compute(root *tree.Node, opts Options) (Layout, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}

	leaves := 1 << (opts.Depth - 1)
	l := Layout{
		Width:   2*opts.Padding + float64(leaves)*opts.CardWidth + float64(leaves-1)*opts.HGap,
		Height:  2*opts.Padding + float64(opts.Depth)*opts.CardHeight + float64(opts.Depth-1)*opts.VGap,
		Depth:   opts.Depth,
		Options: opts,
		Cards:   make([]Card, 0, 2*leaves-1),
	}
	l.Container = Rect{Left: opts.OriginX, Top: opts.OriginY, Width: l.Width, Height: l.Height}

	p := placer{opts: opts, layout: &l}
	p.place(root, "", 0, opts.Padding)

	l.sortCards()
	return l, nil
}

type placer struct {
	opts   Options
	layout *Layout
}

// subtreeWidth is the horizontal span of a slot at the given level.
func (p placer) subtreeWidth(level int) float64 {
	leaves := 1 << (p.opts.Depth - 1 - level)
	return float64(leaves)*p.opts.CardWidth + float64(leaves-1)*p.opts.HGap
}

// place lays out the slot and its descendants starting at x0 (container
// coordinates) and returns the slot's center x.
func (p placer) place(n *tree.Node, slot string, level int, x0 float64) float64 {
	var center float64
	if level == p.opts.Depth-1 {
		center = x0 + p.opts.CardWidth/2
	} else {
		span := p.subtreeWidth(level + 1)
		lc := p.place(n.Child(tree.PositionLeft), slot+string(tree.PositionLeft), level+1, x0)
		rc := p.place(n.Child(tree.PositionRight), slot+string(tree.PositionRight), level+1, x0+span+p.opts.HGap)
		center = (lc + rc) / 2
	}

	top := p.opts.Padding + float64(level)*(p.opts.CardHeight+p.opts.VGap)
	rect := Rect{
		Left:   center - p.opts.CardWidth/2,
		Top:    top,
		Width:  p.opts.CardWidth,
		Height: p.opts.CardHeight,
	}.Translate(p.opts.OriginX, p.opts.OriginY)

	p.layout.Cards = append(p.layout.Cards, Card{
		Slot:        slot,
		Depth:       level,
		Rect:        rect,
		Node:        n,
		Placeholder: n == nil,
	})
	return center
}
