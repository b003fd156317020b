package tree

import "math"

// Profile names the backend keys that feed each display field. Keys are
// tried in order and the first present, non-empty value wins.
type Profile struct {
	ID         []string
	Name       []string
	Package    []string
	Earnings   []string
	LeftCount  []string
	RightCount []string
	TeamSize   []string
	Leader     []string
}

// UserProfile reads member trees from the user dashboard endpoints.
var UserProfile = Profile{
	ID:         []string{"id", "user_id", "member_id"},
	Name:       []string{"name", "full_name", "username"},
	Package:    []string{"package", "package_name", "plan"},
	Earnings:   []string{"earnings", "total_earnings", "income"},
	LeftCount:  []string{"left_count", "leftCount", "left_team"},
	RightCount: []string{"right_count", "rightCount", "right_team"},
	TeamSize:   []string{"team_size", "total_team", "downline"},
	Leader:     []string{"is_leader", "leader", "leadership"},
}

// FranchiseProfile reads franchise trees from the franchise panel endpoints.
var FranchiseProfile = Profile{
	ID:         []string{"franchise_id", "id"},
	Name:       []string{"franchise_name", "name", "owner_name"},
	Package:    []string{"franchise_type", "type", "package"},
	Earnings:   []string{"commission", "earnings", "business_volume"},
	LeftCount:  []string{"left_count", "leftCount"},
	RightCount: []string{"right_count", "rightCount"},
	TeamSize:   []string{"total_franchises", "team_size"},
	Leader:     []string{"is_master", "is_leader", "leader"},
}

const (
	keyChildren = "children"
	keyPosition = "position"
)

// Map converts a backend payload into a binary Node. It never fails: see the
// package documentation for the defaults applied to missing fields.
func Map(p Payload, profile Profile) *Node {
	if p == nil {
		return nil
	}

	n := &Node{
		ID:      pickText(p, profile.ID, ""),
		Name:    pickText(p, profile.Name, NotAvailable),
		Package: pickText(p, profile.Package, NotAvailable),
		Metrics: Metrics{
			Earnings:   pickNumber(p, profile.Earnings),
			LeftCount:  pickCount(p, profile.LeftCount),
			RightCount: pickCount(p, profile.RightCount),
			TeamSize:   pickCount(p, profile.TeamSize),
		},
		Leader: pickFlag(p, profile.Leader),
		Extra:  extras(p, profile),
	}

	children := childList(p)
	if c := findChild(children, PositionLeft); c != nil {
		n.Left = Map(c, profile)
	}
	if c := findChild(children, PositionRight); c != nil {
		n.Right = Map(c, profile)
	}
	return n
}

// findChild returns the first child tagged with pos.
func findChild(children []Payload, pos Position) Payload {
	for _, c := range children {
		if tag, ok := c[keyPosition].(string); ok && Position(tag) == pos {
			return c
		}
	}
	return nil
}

func childList(p Payload) []Payload {
	raw, ok := p[keyChildren].([]any)
	if !ok {
		return nil
	}
	out := make([]Payload, 0, len(raw))
	for _, item := range raw {
		switch c := item.(type) {
		case map[string]any:
			out = append(out, Payload(c))
		case Payload:
			out = append(out, c)
		}
	}
	return out
}

func lookup(p Payload, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func pickText(p Payload, keys []string, fallback string) string {
	if v, ok := lookup(p, keys); ok {
		if s := text(v); s != "" {
			return s
		}
	}
	return fallback
}

func pickNumber(p Payload, keys []string) float64 {
	if v, ok := lookup(p, keys); ok {
		return number(v)
	}
	return 0
}

func pickCount(p Payload, keys []string) int {
	f := pickNumber(p, keys)
	if f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func pickFlag(p Payload, keys []string) bool {
	if v, ok := lookup(p, keys); ok {
		return truthy(v)
	}
	return false
}

// extras collects the scalar display fields that no profile key consumed.
func extras(p Payload, profile Profile) map[string]string {
	used := map[string]bool{keyChildren: true, keyPosition: true}
	for _, keys := range [][]string{
		profile.ID, profile.Name, profile.Package, profile.Earnings,
		profile.LeftCount, profile.RightCount, profile.TeamSize, profile.Leader,
	} {
		for _, k := range keys {
			used[k] = true
		}
	}

	var out map[string]string
	for k, v := range p {
		if used[k] {
			continue
		}
		s := text(v)
		if s == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = s
	}
	return out
}
