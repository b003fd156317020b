// Package tree maps backend sponsor/referral trees into a generic binary shape.
//
// The PHP backend returns each member as a JSON object with arbitrary display
// fields and an optional flat "children" list whose entries carry a
// "position" tag of "L" or "R". [Map] converts that payload into a [Node]
// with exactly two named slots, Left and Right, recursively.
//
// # Tolerance
//
// Mapping never fails. Missing names and packages become "N/A", missing or
// malformed numbers become 0 (negative values are clamped to 0), and
// missing flags become false. A nil payload maps to a nil node, which the
// layout renders as an all-placeholder tree.
//
// # Position tags
//
// Left is the first child tagged exactly "L" and Right the first child
// tagged exactly "R". Further children carrying an already-used tag are
// ignored; the backend is expected to keep tags unique.
//
// # Profiles
//
// User trees and franchise trees name their display fields differently. A
// [Profile] lists the candidate keys per field; [UserProfile] and
// [FranchiseProfile] cover the two tree kinds served by the backend.
//
//	resp, err := tree.Decode(r)
//	root := tree.Map(resp.Tree, tree.UserProfile)
package tree
