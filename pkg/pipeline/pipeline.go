// Package pipeline provides the fetch → layout → render pipeline for teamtree.
//
// The CLI and the HTTP server both run trees through a [Runner], so caching,
// logging and observability behave the same on every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Download the member's tree from the backend and map it to nodes
//  2. Layout: Place a fixed-depth grid of cards and compute connector paths
//  3. Render: Generate output in various formats (SVG, JSON, text, DOT, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, apiClient, pipeline.Options{
//	    Kind:    "user",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/teamtree/pkg/cache"
	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/render/styles"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultKind is the tree fetched when none is given.
	DefaultKind = string(tree.KindUser)

	// DefaultStyle is the default visual style.
	DefaultStyle = "simple"

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatText     = "txt"
	FormatDOT      = "dot"
	FormatNodelink = "dot.svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatText:     true,
	FormatDOT:      true,
	FormatNodelink: true,
	FormatPNG:      true,
	FormatPDF:      true,
}

// ContentTypes maps each format to its HTTP content type.
var ContentTypes = map[string]string{
	FormatSVG:      "image/svg+xml",
	FormatJSON:     "application/json",
	FormatText:     "text/plain; charset=utf-8",
	FormatDOT:      "text/vnd.graphviz",
	FormatNodelink: "image/svg+xml",
	FormatPNG:      "image/png",
	FormatPDF:      "application/pdf",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Fetch options
	Kind    string `json:"kind,omitempty"`
	Member  string `json:"member,omitempty"` // Cache scope; usually the logged-in username
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	Depth      int     `json:"depth,omitempty"`
	CardWidth  float64 `json:"card_width,omitempty"`
	CardHeight float64 `json:"card_height,omitempty"`
	HGap       float64 `json:"h_gap,omitempty"`
	VGap       float64 `json:"v_gap,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"` // Node-link labels with metrics
	Interactive bool     `json:"interactive,omitempty"`
	Color       bool     `json:"color,omitempty"` // Text output with ANSI colors
	Scale       float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the fetched tree; nil when the member has no downline data.
	Root *tree.Node

	// TreeStats are the summary figures the backend sent with the tree.
	TreeStats tree.Stats

	// TreeHash is the content hash of the mapped tree.
	TreeHash string

	// FetchedAt is when the tree was downloaded (not when it was read from
	// cache).
	FetchedAt time.Time

	// Layout is the card grid.
	Layout layout.Layout

	// Paths are the connectors for Layout.
	Paths []connector.Path

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	CardCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit   bool // Whether the tree came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, txt, dot, dot.svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is registered.
func ValidateStyle(style string) error {
	_, err := styles.Lookup(style)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks the tree kind.
func (o *Options) ValidateForFetch() error {
	if o.Kind == "" {
		o.Kind = DefaultKind
	}
	if _, err := tree.ParseKind(o.Kind); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForLayout applies layout defaults and checks the geometry.
func (o *Options) ValidateForLayout() error {
	o.setLogger()
	return o.LayoutOptions().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// TreeKind returns the parsed kind, falling back to the default.
func (o *Options) TreeKind() tree.Kind {
	k, err := tree.ParseKind(o.Kind)
	if err != nil {
		return tree.KindUser
	}
	return k
}

// LayoutOptions returns the layout geometry with defaults applied.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Depth:      o.Depth,
		CardWidth:  o.CardWidth,
		CardHeight: o.CardHeight,
		HGap:       o.HGap,
		VGap:       o.VGap,
	}.WithDefaults()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	lo := o.LayoutOptions()
	return cache.LayoutKeyOpts{
		Depth:      lo.Depth,
		CardWidth:  lo.CardWidth,
		CardHeight: lo.CardHeight,
		HGap:       lo.HGap,
		VGap:       lo.VGap,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Style:       o.Style,
		Kind:        o.Kind,
		Detailed:    o.Detailed,
		Interactive: o.Interactive,
		Color:       o.Color,
		Scale:       o.Scale,
	}
}
