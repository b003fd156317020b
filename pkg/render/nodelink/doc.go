// Package nodelink renders team trees as Graphviz node-link diagrams.
//
// The card view in [sink] places members on a fixed grid. Node-link
// diagrams instead let Graphviz arrange the tree, which suits deep or very
// lopsided downlines that would not fit a fixed-depth grid.
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: true, Depth: 4})
//	svg, err := nodelink.RenderSVG(dot)
//
// Rendering uses the WebAssembly build of Graphviz from go-graphviz, so no
// system Graphviz install is needed. PDF and PNG go through rsvg-convert.
//
// [sink]: github.com/matzehuels/teamtree/pkg/render/sink
package nodelink
