package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/render/nodelink"
	"github.com/matzehuels/teamtree/pkg/render/sink"
	"github.com/matzehuels/teamtree/pkg/render/styles"
	"github.com/matzehuels/teamtree/pkg/render/text"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// Input is everything the render stage draws from.
type Input struct {
	Root      *tree.Node
	Stats     tree.Stats
	FetchedAt time.Time
	TreeHash  string
	Layout    layout.Layout
	Paths     []connector.Path
}

// Render generates output artifacts in the requested formats.
func Render(in Input, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	style, err := styles.Lookup(opts.Style)
	if err != nil {
		return nil, err
	}

	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if in.Root != nil {
		svgOpts = append(svgOpts, sink.WithTitle("Team of "+in.Root.Name))
	}
	// PNG and PDF conversion ignores scripts; keep them out of those.
	staticOpts := svgOpts
	if opts.Interactive {
		svgOpts = append(svgOpts[:len(svgOpts):len(svgOpts)], sink.WithInteraction())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(in.Layout, in.Paths, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(in.Layout, in.Paths,
				sink.WithJSONKind(opts.TreeKind()),
				sink.WithJSONStyle(style.Name()),
				sink.WithJSONStats(in.Stats),
				sink.WithJSONFetchedAt(in.FetchedAt),
			)
		case FormatText:
			var s string
			var textOpts []text.Option
			if opts.Color {
				textOpts = append(textOpts, text.WithColor())
			}
			s, err = text.Render(in.Root, in.Layout.Depth, textOpts...)
			data = []byte(s + "\n")
		case FormatDOT:
			data = []byte(nodelink.ToDOT(in.Root, nodelinkOptions(in, opts)))
		case FormatNodelink:
			data, err = nodelink.RenderSVG(nodelink.ToDOT(in.Root, nodelinkOptions(in, opts)))
		case FormatPNG:
			data, err = sink.RenderPNG(in.Layout, in.Paths, sink.WithScale(opts.Scale), sink.WithPNGSVGOptions(staticOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(in.Layout, in.Paths, sink.WithPDFSVGOptions(staticOpts...))
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func nodelinkOptions(in Input, opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Depth: in.Layout.Depth}
}
