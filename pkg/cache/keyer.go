package cache

import "strings"

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	Depth      int     `json:"depth"`
	CardWidth  float64 `json:"card_width"`
	CardHeight float64 `json:"card_height"`
	HGap       float64 `json:"h_gap"`
	VGap       float64 `json:"v_gap"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Style       string  `json:"style"`
	Kind        string  `json:"kind"`
	Detailed    bool    `json:"detailed,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Color       bool    `json:"color,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// TreeKey identifies the tree fetched from baseURL for member and kind.
	TreeKey(baseURL, kind, member string) string

	// LayoutKey identifies a layout of the tree with the given hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendering of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) TreeKey(baseURL, kind, member string) string {
	return hashKey("tree", strings.TrimRight(baseURL, "/"), kind, member)
}

func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
