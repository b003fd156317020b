// Package render turns laid-out team trees into documents.
//
// # Overview
//
// The layout and connector packages produce geometry; the subpackages here
// draw it:
//
//   - [sink]: SVG, JSON, PNG and PDF output of the card view
//   - [styles]: Visual styles for cards and connectors (simple, handdrawn)
//   - [text]: Terminal rendering with box-drawing characters
//   - [nodelink]: Graphviz node-link diagrams of the raw tree
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). Both the card view and node-link diagrams use them.
//
//	svg := sink.RenderSVG(l, paths)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/teamtree/pkg/render/sink
// [styles]: github.com/matzehuels/teamtree/pkg/render/styles
// [text]: github.com/matzehuels/teamtree/pkg/render/text
// [nodelink]: github.com/matzehuels/teamtree/pkg/render/nodelink
package render
