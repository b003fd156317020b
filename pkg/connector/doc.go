// Package connector computes the elbow paths that join parent cards to their
// children.
//
// # Paths
//
// [Compute] is a pure function over measured rectangles. For each present
// child it emits
//
//	M px py L px midY L cx midY L cx cy
//
// where (px, py) is the bottom-center of the parent, (cx, cy) the top-center
// of the child and midY the vertical midpoint between them. All coordinates
// are relative to the container's top-left corner.
//
// # Surfaces
//
// A [Surface] is the registry of mounted elements: the container plus one
// rectangle per rendered card. Cards come and go (mount/unmount) and change
// size (resize); the surface notifies subscribers of every change. After
// [Surface.Teardown] it holds no references and emits nothing.
//
// # Observers
//
// An [Observer] keeps a connector set in sync with a surface. It recomputes
// immediately on start, once more after each settle delay, on every surface
// notification and on every window resize. After [Observer.Stop] every
// pending or late trigger is a no-op.
package connector
