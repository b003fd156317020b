package tree

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/teamtree/pkg/errors"
)

func payload(t *testing.T, s string) Payload {
	t.Helper()
	p, err := DecodePayload(strings.NewReader(s))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	return p
}

// shapes enumerates every payload of at most depth levels, including nil.
func shapes(depth int, name string) []Payload {
	out := []Payload{nil}
	if depth == 0 {
		return out
	}
	for _, l := range shapes(depth-1, name+"L") {
		for _, r := range shapes(depth-1, name+"R") {
			p := Payload{"name": name}
			var children []any
			if l != nil {
				l["position"] = "L"
				children = append(children, map[string]any(clone(l)))
			}
			if r != nil {
				r["position"] = "R"
				children = append(children, map[string]any(clone(r)))
			}
			if children != nil {
				p["children"] = children
			}
			out = append(out, p)
		}
	}
	return out
}

func clone(p Payload) Payload {
	data, _ := json.Marshal(p)
	var cp Payload
	_ = json.Unmarshal(data, &cp)
	return cp
}

func TestMapAllShapes(t *testing.T) {
	all := shapes(3, "n")
	if len(all) != 26 {
		t.Fatalf("expected 26 shapes of depth <= 3, got %d", len(all))
	}

	for i, p := range all {
		t.Run(fmt.Sprintf("shape-%02d", i), func(t *testing.T) {
			n := Map(p, UserProfile)
			if p == nil {
				if n != nil {
					t.Fatalf("Map(nil) = %+v, want nil", n)
				}
				return
			}
			if n == nil {
				t.Fatal("Map returned nil for non-nil payload")
			}
			checkSlots(t, p, n)
		})
	}
}

// checkSlots asserts that the mapped slots mirror the payload's position tags.
func checkSlots(t *testing.T, p Payload, n *Node) {
	t.Helper()
	left, right := findChild(childList(p), PositionLeft), findChild(childList(p), PositionRight)
	if (left == nil) != (n.Left == nil) {
		t.Errorf("%s: left present = %v, mapped left = %v", n.Name, left != nil, n.Left != nil)
	}
	if (right == nil) != (n.Right == nil) {
		t.Errorf("%s: right present = %v, mapped right = %v", n.Name, right != nil, n.Right != nil)
	}
	if left != nil && n.Left != nil {
		checkSlots(t, left, n.Left)
	}
	if right != nil && n.Right != nil {
		checkSlots(t, right, n.Right)
	}
}

func TestMapScenarioRootWithTwoChildren(t *testing.T) {
	p := payload(t, `{"name":"Root","children":[{"position":"L","name":"Alice"},{"position":"R","name":"Bob"}]}`)
	n := Map(p, UserProfile)

	if n.Name != "Root" {
		t.Errorf("root name = %q, want Root", n.Name)
	}
	if n.Left == nil || n.Left.Name != "Alice" {
		t.Fatalf("left = %+v, want Alice", n.Left)
	}
	if n.Right == nil || n.Right.Name != "Bob" {
		t.Fatalf("right = %+v, want Bob", n.Right)
	}
	if n.Left.Left != nil || n.Left.Right != nil || n.Right.Left != nil || n.Right.Right != nil {
		t.Error("grandchildren should all be nil")
	}
	if got := n.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestMapOnlyLeftChild(t *testing.T) {
	n := Map(payload(t, `{"name":"Root","children":[{"position":"L","name":"Alice"}]}`), UserProfile)
	if n.Left == nil {
		t.Fatal("left should be mapped")
	}
	if n.Right != nil {
		t.Errorf("right = %+v, want nil", n.Right)
	}
}

func TestMapDuplicatePositionFirstWins(t *testing.T) {
	n := Map(payload(t, `{"name":"Root","children":[
		{"position":"L","name":"First"},
		{"position":"L","name":"Second"}
	]}`), UserProfile)

	if n.Left == nil || n.Left.Name != "First" {
		t.Fatalf("left = %+v, want First", n.Left)
	}
	if n.Right != nil {
		t.Errorf("right = %+v, want nil", n.Right)
	}
}

func TestMapPositionTags(t *testing.T) {
	tests := []struct {
		name      string
		children  string
		wantLeft  bool
		wantRight bool
	}{
		{"no children key", ``, false, false},
		{"empty list", `,"children":[]`, false, false},
		{"untagged", `,"children":[{"name":"x"}]`, false, false},
		{"lowercase tag", `,"children":[{"position":"l","name":"x"}]`, false, false},
		{"word tag", `,"children":[{"position":"left","name":"x"}]`, false, false},
		{"numeric tag", `,"children":[{"position":1,"name":"x"}]`, false, false},
		{"right only", `,"children":[{"position":"R","name":"x"}]`, false, true},
		{"both reversed", `,"children":[{"position":"R"},{"position":"L"}]`, true, true},
		{"children not a list", `,"children":{"L":{"name":"x"}}`, false, false},
		{"junk entries", `,"children":[1,"x",null,{"position":"L"}]`, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Map(payload(t, `{"name":"Root"`+tt.children+`}`), UserProfile)
			if (n.Left != nil) != tt.wantLeft {
				t.Errorf("left present = %v, want %v", n.Left != nil, tt.wantLeft)
			}
			if (n.Right != nil) != tt.wantRight {
				t.Errorf("right present = %v, want %v", n.Right != nil, tt.wantRight)
			}
		})
	}
}

func TestMapDefaults(t *testing.T) {
	n := Map(payload(t, `{}`), UserProfile)

	if n.Name != NotAvailable {
		t.Errorf("Name = %q, want %q", n.Name, NotAvailable)
	}
	if n.Package != NotAvailable {
		t.Errorf("Package = %q, want %q", n.Package, NotAvailable)
	}
	if n.Metrics != (Metrics{}) {
		t.Errorf("Metrics = %+v, want zero", n.Metrics)
	}
	if n.Leader {
		t.Error("Leader should default to false")
	}
	if n.Extra != nil {
		t.Errorf("Extra = %v, want nil", n.Extra)
	}
}

func TestMapFields(t *testing.T) {
	n := Map(payload(t, `{
		"user_id": 1042,
		"full_name": "Alice Example",
		"package_name": "Gold",
		"total_earnings": "12,500.50",
		"left_count": 7,
		"right_count": "-3",
		"team_size": "abc",
		"is_leader": "1",
		"rank": "Diamond",
		"joined": null
	}`), UserProfile)

	if n.ID != "1042" {
		t.Errorf("ID = %q, want 1042", n.ID)
	}
	if n.Name != "Alice Example" {
		t.Errorf("Name = %q", n.Name)
	}
	if n.Package != "Gold" {
		t.Errorf("Package = %q", n.Package)
	}
	if n.Metrics.Earnings != 12500.50 {
		t.Errorf("Earnings = %v, want 12500.5", n.Metrics.Earnings)
	}
	if n.Metrics.LeftCount != 7 {
		t.Errorf("LeftCount = %d, want 7", n.Metrics.LeftCount)
	}
	if n.Metrics.RightCount != 0 {
		t.Errorf("RightCount = %d, want 0 (negative clamps)", n.Metrics.RightCount)
	}
	if n.Metrics.TeamSize != 0 {
		t.Errorf("TeamSize = %d, want 0 (non-numeric)", n.Metrics.TeamSize)
	}
	if !n.Leader {
		t.Error("Leader should be true")
	}
	if n.Extra["rank"] != "Diamond" {
		t.Errorf("Extra[rank] = %q, want Diamond", n.Extra["rank"])
	}
	if _, ok := n.Extra["joined"]; ok {
		t.Error("null fields should not appear in Extra")
	}
}

func TestMapFranchiseProfile(t *testing.T) {
	n := Map(payload(t, `{"franchise_id":"F-9","franchise_name":"North Hub","commission":300,"is_master":true}`), FranchiseProfile)
	if n.ID != "F-9" || n.Name != "North Hub" {
		t.Errorf("got ID=%q Name=%q", n.ID, n.Name)
	}
	if n.Metrics.Earnings != 300 {
		t.Errorf("Earnings = %v, want 300", n.Metrics.Earnings)
	}
	if !n.Leader {
		t.Error("Leader should be true")
	}
}

func TestMapUnboundedDepth(t *testing.T) {
	// Five levels down the right spine, with a leaf on every left slot.
	inner := `{"name":"d5"}`
	for i := 4; i >= 1; i-- {
		inner = fmt.Sprintf(`{"name":"d%d","children":[{"position":"L","name":"x","children":[]}, %s]}`, i, strings.Replace(inner, `{"name"`, `{"position":"R","name"`, 1))
	}
	n := Map(payload(t, inner), UserProfile)
	if got := n.Depth(); got != 5 {
		t.Errorf("Depth() = %d, want 5", got)
	}
	if got := Truncate(n, 3).Depth(); got != 3 {
		t.Errorf("Truncate(3).Depth() = %d, want 3", got)
	}
	if n.Depth() != 5 {
		t.Error("Truncate must not modify the original")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSuccess bool
		wantTree    bool
		wantErr     bool
	}{
		{"bool success", `{"success":true,"tree":{"name":"Root"}}`, true, true, false},
		{"numeric success", `{"success":1,"tree":{"name":"Root"}}`, true, true, false},
		{"string success", `{"success":"true","tree":{"name":"Root"}}`, true, true, false},
		{"failure", `{"success":false,"message":"Invalid token"}`, false, false, false},
		{"null tree", `{"success":true,"tree":null}`, true, false, false},
		{"extra fields", `{"success":true,"tree":{},"stats":{"total":3},"debug":[1]}`, true, true, false},
		{"invalid json", `{success:`, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if bool(resp.Success) != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", resp.Success, tt.wantSuccess)
			}
			if (resp.Tree != nil) != tt.wantTree {
				t.Errorf("tree present = %v, want %v", resp.Tree != nil, tt.wantTree)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"", "user", "USER", " user "} {
		if k, err := ParseKind(s); err != nil || k != KindUser {
			t.Errorf("ParseKind(%q) = %v, %v", s, k, err)
		}
	}
	if k, err := ParseKind("franchise"); err != nil || k != KindFranchise {
		t.Errorf("ParseKind(franchise) = %v, %v", k, err)
	}
	_, err := ParseKind("admin")
	if !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Fatalf("ParseKind(admin) = %v, want invalid kind", err)
	}
	if !strings.Contains(err.Error(), "user, franchise") {
		t.Errorf("error %q should list the kinds", err)
	}
}

func TestNodeAtAndWalk(t *testing.T) {
	n := Map(payload(t, `{"name":"Root","children":[
		{"position":"L","name":"A","children":[{"position":"R","name":"AR"}]},
		{"position":"R","name":"B"}
	]}`), UserProfile)

	if got := n.At("LR"); got == nil || got.Name != "AR" {
		t.Errorf("At(LR) = %+v", got)
	}
	if got := n.At("RL"); got != nil {
		t.Errorf("At(RL) = %+v, want nil", got)
	}

	var slots []string
	n.Walk(func(slot string, _ *Node) bool {
		slots = append(slots, slot)
		return true
	})
	if got := strings.Join(slots, ","); got != ",L,LR,R" {
		t.Errorf("Walk order = %q, want %q", got, ",L,LR,R")
	}
}
