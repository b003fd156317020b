// Package layout assigns card positions for a depth-limited binary tree.
//
// # Overview
//
// [Compute] performs an explicit layout pass: every slot of a complete binary
// tree of the requested depth (default 3 levels, root plus two) receives a
// card rectangle. Slots whose node is nil still get a card, marked as a
// placeholder, so sibling spacing stays stable regardless of which slots the
// backend filled.
//
// # Geometry
//
// All cards share one footprint (Options.CardWidth × Options.CardHeight).
// X offsets are assigned by subtree width: a bottom-row slot is one card
// wide, and a parent is centered over the midpoint of its two children.
// Rows are separated by Options.VGap and bottom-row siblings by Options.HGap.
//
// Rectangles are expressed in viewport coordinates: the container itself
// sits at (Options.OriginX, Options.OriginY). Connector computation (package
// connector) subtracts the container origin again, exactly like measuring
// rendered elements relative to their container.
//
// # Slots
//
// A slot is addressed by its path from the root: "" is the root, "L" and "R"
// its children, "LR" the right child of the left child, and so on.
package layout
