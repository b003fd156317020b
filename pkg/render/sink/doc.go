// Package sink renders a computed card layout into output documents.
//
// A sink takes a [layout.Layout] plus the connector paths computed for it and
// produces:
//
//   - SVG: cards, dashed placeholders and elbow connectors with anchor dots
//   - JSON: layout data for external tools and for caching
//   - PDF and PNG: via rsvg-convert
//
// Basic usage:
//
//	paths := connector.Static(l)
//	svg := sink.RenderSVG(l, paths,
//	    sink.WithStyle(handdrawn.New(seed)),
//	    sink.WithInteraction(),
//	)
//
// Importing sink registers every built-in style with [styles.Lookup].
//
// [layout.Layout]: github.com/matzehuels/teamtree/pkg/layout.Layout
// [styles.Lookup]: github.com/matzehuels/teamtree/pkg/render/styles.Lookup
package sink
