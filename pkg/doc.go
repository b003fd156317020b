// Package pkg provides the core libraries for Teamtree team-tree views.
//
// # Overview
//
// Teamtree draws the binary downline of an MLM member (or a franchise
// network) as a fixed-depth grid of cards joined by elbow connectors. The pkg
// directory is organized into four main areas:
//
//  1. Domain - [tree] (backend payload to binary node), [layout] (card grid),
//     [connector] (elbow paths and live surfaces)
//  2. Rendering - [render/sink], [render/styles], [render/text],
//     [render/nodelink]
//  3. Infrastructure - [client], [cache], [session], [poller], [config],
//     [observability]
//  4. Orchestration - [pipeline] (fetch → layout → render with caching)
//
// # Architecture
//
// The typical data flow:
//
//	Back-office tree endpoint
//	         ↓
//	    [client] package (authenticated fetch, retries)
//	         ↓
//	    [tree] package (position-tagged payload → left/right nodes)
//	         ↓
//	    [layout] package (complete grid of 2^depth - 1 slots)
//	         ↓
//	    [connector] package (parent → child elbows)
//	         ↓
//	    SVG/JSON/text/DOT/PNG/PDF output
//
// # Quick Start
//
// Fetch a tree and render it as SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/teamtree/pkg/client"
//	    "github.com/matzehuels/teamtree/pkg/connector"
//	    "github.com/matzehuels/teamtree/pkg/layout"
//	    "github.com/matzehuels/teamtree/pkg/render/sink"
//	    "github.com/matzehuels/teamtree/pkg/tree"
//	)
//
//	// 1. Fetch
//	c, _ := client.New("https://backoffice.example.com", client.WithCredential(cred))
//	root, _, _ := c.FetchTree(context.Background(), tree.KindUser)
//
//	// 2. Lay out three levels of cards
//	l, _ := layout.Compute(root, layout.Options{Depth: 3})
//
//	// 3. Connect and render
//	svg := sink.RenderSVG(l, connector.Static(l))
//
// Most callers go through [pipeline.Runner] instead, which adds caching and
// the observability hooks.
//
// # Main Packages
//
// [tree] - Maps the backend's position-tagged children ("L"/"R") onto a
// binary node. Display fields are read through a [tree.Profile] so user and
// franchise endpoints share one mapper.
//
// [layout] - Places one card per slot of a complete binary tree of the
// requested depth. Missing members become placeholders so the grid never
// shifts.
//
// [connector] - Computes elbow paths between parent and child cards. A
// [connector.Surface] tracks mounted cards and a [connector.Observer]
// recomputes paths when they move.
//
// [poller] - Refetches the tree on an interval and publishes snapshots until
// stopped.
//
// [render/sink] - Output formats for the card grid (SVG, JSON, PNG, PDF).
//
// [render/styles] - Visual styles (simple, hand-drawn).
//
// [render/text] - Box-drawing rendering for terminals.
//
// [render/nodelink] - Node-link diagrams using Graphviz.
//
// [cache] - File, Redis and MongoDB caches for trees, layouts and artifacts.
//
// [session] - Stored credentials and login confirmation codes.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/layout
// [connector]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/connector
// [poller]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/poller
// [client]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/client
// [cache]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/pipeline#Runner
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/render/sink
// [render/styles]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/render/styles
// [render/text]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/render/text
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/teamtree/pkg/render/nodelink
package pkg
