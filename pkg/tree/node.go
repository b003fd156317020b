package tree

import (
	"fmt"
	"strings"

	"github.com/matzehuels/teamtree/pkg/errors"
)

// NotAvailable is the display value used for missing text fields.
const NotAvailable = "N/A"

// Node is one member of a binary sponsor tree.
type Node struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Package string            `json:"package"`
	Metrics Metrics           `json:"metrics"`
	Leader  bool              `json:"leader"`
	Extra   map[string]string `json:"extra,omitempty"`

	Left  *Node `json:"left"`
	Right *Node `json:"right"`
}

// Metrics are the numeric figures shown on a card. All values are >= 0.
type Metrics struct {
	Earnings   float64 `json:"earnings"`
	LeftCount  int     `json:"left_count"`
	RightCount int     `json:"right_count"`
	TeamSize   int     `json:"team_size"`
}

// Child returns the child in the given position, or nil.
func (n *Node) Child(p Position) *Node {
	if n == nil {
		return nil
	}
	switch p {
	case PositionLeft:
		return n.Left
	case PositionRight:
		return n.Right
	}
	return nil
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	return 1 + n.Left.Count() + n.Right.Count()
}

// Depth returns the number of levels in the subtree rooted at n.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.Left.Depth(), n.Right.Depth())
}

// Walk visits every node in pre-order, passing the slot path ("" for the
// root, then "L", "R", "LL", ...). Returning false stops descent below that node.
func (n *Node) Walk(fn func(slot string, n *Node) bool) {
	walk(n, "", fn)
}

func walk(n *Node, slot string, fn func(string, *Node) bool) {
	if n == nil || !fn(slot, n) {
		return
	}
	walk(n.Left, slot+string(PositionLeft), fn)
	walk(n.Right, slot+string(PositionRight), fn)
}

// At returns the node at a slot path such as "LR", or nil if the path leads
// through an empty slot.
func (n *Node) At(slot string) *Node {
	cur := n
	for _, r := range slot {
		if cur == nil {
			return nil
		}
		cur = cur.Child(Position(string(r)))
	}
	return cur
}

// Truncate returns a copy of n limited to depth levels. The copy shares the
// Extra maps with the original; nodes are never mutated after mapping.
func Truncate(n *Node, depth int) *Node {
	if n == nil || depth <= 0 {
		return nil
	}
	cp := *n
	cp.Left = Truncate(n.Left, depth-1)
	cp.Right = Truncate(n.Right, depth-1)
	return &cp
}

// Position is the binary slot tag used by the backend.
type Position string

const (
	PositionLeft  Position = "L"
	PositionRight Position = "R"
)

// Kind selects which backend tree a command works with.
type Kind string

const (
	KindUser      Kind = "user"
	KindFranchise Kind = "franchise"
)

// Kinds lists the supported tree kinds.
var Kinds = []Kind{KindUser, KindFranchise}

// ParseKind converts a flag value into a Kind. Empty selects [KindUser].
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindUser, nil
	}
	names := make([]string, len(Kinds))
	for i, known := range Kinds {
		if k == known {
			return k, nil
		}
		names[i] = string(known)
	}
	return "", errors.New(errors.ErrCodeInvalidKind, "invalid tree kind: %q (must be one of %s)", s, strings.Join(names, ", "))
}

// Profile returns the field profile for the kind.
func (k Kind) Profile() Profile {
	if k == KindFranchise {
		return FranchiseProfile
	}
	return UserProfile
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Label formats a short one-line description of n for logs.
func Label(n *Node) string {
	if n == nil {
		return "(empty)"
	}
	if n.ID == "" {
		return n.Name
	}
	return fmt.Sprintf("%s (%s)", n.Name, n.ID)
}
