package layout

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/tree"
)

func leaf(id string) *tree.Node { return &tree.Node{ID: id, Name: id} }

func TestComputeRootWithTwoChildren(t *testing.T) {
	root := &tree.Node{ID: "root", Left: leaf("a"), Right: leaf("b")}

	l, err := Compute(root, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got := len(l.Cards); got != 7 {
		t.Fatalf("cards = %d, want 7", got)
	}
	if got := l.Populated(); got != 3 {
		t.Errorf("populated = %d, want 3", got)
	}
	if got := l.Placeholders(); got != 4 {
		t.Errorf("placeholders = %d, want 4", got)
	}
	for _, slot := range []string{"LL", "LR", "RL", "RR"} {
		c, ok := l.Card(slot)
		if !ok || !c.Placeholder || c.Node != nil {
			t.Errorf("slot %q: want placeholder card, got %+v (ok=%v)", slot, c, ok)
		}
	}
}

func TestComputeUniformFootprint(t *testing.T) {
	root := &tree.Node{ID: "root", Left: &tree.Node{ID: "a", Right: leaf("ar")}}

	for depth := 1; depth <= MaxDepth; depth++ {
		l, err := Compute(root, Options{Depth: depth})
		if err != nil {
			t.Fatalf("depth %d: %v", depth, err)
		}
		if want := 1<<depth - 1; len(l.Cards) != want {
			t.Fatalf("depth %d: cards = %d, want %d", depth, len(l.Cards), want)
		}
		first := l.Cards[0].Rect
		for _, c := range l.Cards {
			if !c.Rect.SameSize(first) {
				t.Errorf("depth %d slot %q: footprint %gx%g differs from %gx%g",
					depth, c.Slot, c.Rect.Width, c.Rect.Height, first.Width, first.Height)
			}
		}
	}
}

func TestComputeNoOverlapAndInsideContainer(t *testing.T) {
	l, err := Compute(nil, Options{Depth: 4, OriginX: 30, OriginY: 12})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, a := range l.Cards {
		if a.Rect.Left < l.Container.Left || a.Rect.Right() > l.Container.Right() ||
			a.Rect.Top < l.Container.Top || a.Rect.Bottom() > l.Container.Bottom() {
			t.Errorf("slot %q outside container: %+v", a.Slot, a.Rect)
		}
		for _, b := range l.Cards[i+1:] {
			if a.Rect.Overlaps(b.Rect) {
				t.Errorf("slots %q and %q overlap", a.Slot, b.Slot)
			}
		}
	}
}

func TestComputeParentsCenteredOverChildren(t *testing.T) {
	l, err := Compute(nil, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, c := range l.Cards {
		kids := l.ChildSlots(c.Slot)
		if kids == nil {
			continue
		}
		left, _ := l.Card(kids[0])
		right, _ := l.Card(kids[1])
		if mid := (left.Rect.CenterX() + right.Rect.CenterX()) / 2; mid != c.Rect.CenterX() {
			t.Errorf("slot %q center = %g, want %g", c.Slot, c.Rect.CenterX(), mid)
		}
		if left.Rect.Top <= c.Rect.Bottom() {
			t.Errorf("slot %q: child row does not start below parent", c.Slot)
		}
	}
	root, _ := l.Card("")
	if root.Rect.CenterX() != l.Width/2 {
		t.Errorf("root center = %g, want %g", root.Rect.CenterX(), l.Width/2)
	}
}

func TestComputeGeometry(t *testing.T) {
	opts := Options{Depth: 2, CardWidth: 100, CardHeight: 50, HGap: 10, VGap: 20, Padding: 5}
	l, err := Compute(nil, opts)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if l.Width != 5+100+10+100+5 || l.Height != 5+50+20+50+5 {
		t.Fatalf("size = %gx%g", l.Width, l.Height)
	}
	tests := []struct {
		slot string
		want Rect
	}{
		{"", Rect{Left: 60, Top: 5, Width: 100, Height: 50}},
		{"L", Rect{Left: 5, Top: 75, Width: 100, Height: 50}},
		{"R", Rect{Left: 115, Top: 75, Width: 100, Height: 50}},
	}
	for _, tt := range tests {
		c, ok := l.Card(tt.slot)
		if !ok {
			t.Fatalf("slot %q missing", tt.slot)
		}
		if c.Rect != tt.want {
			t.Errorf("slot %q rect = %+v, want %+v", tt.slot, c.Rect, tt.want)
		}
	}
}

func TestComputeIgnoresNodesBelowDepth(t *testing.T) {
	deep := &tree.Node{ID: "0", Right: &tree.Node{ID: "1", Right: &tree.Node{ID: "2", Right: leaf("3")}}}

	l, err := Compute(deep, Options{Depth: 2})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(l.Cards) != 3 {
		t.Fatalf("cards = %d, want 3", len(l.Cards))
	}
	if c, _ := l.Card("R"); c.Node == nil || c.Node.ID != "1" {
		t.Errorf("slot R = %+v, want node 1", c.Node)
	}
	if _, ok := l.Card("RR"); ok {
		t.Error("slot RR should not be laid out at depth 2")
	}
}

func TestCardsBreadthFirst(t *testing.T) {
	l, err := Compute(nil, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := []string{"", "L", "R", "LL", "LR", "RL", "RR"}
	for i, c := range l.Cards {
		if c.Slot != want[i] {
			t.Errorf("card %d slot = %q, want %q", i, c.Slot, want[i])
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"depth too large", Options{Depth: MaxDepth + 1}, errors.ErrCodeInvalidDepth},
		{"negative depth", Options{Depth: -1}, errors.ErrCodeInvalidDepth},
		{"negative width", Options{CardWidth: -10}, errors.ErrCodeInvalidGeometry},
		{"negative gap", Options{HGap: -1}, errors.ErrCodeInvalidGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(nil, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParentSlot(t *testing.T) {
	if _, ok := ParentSlot(""); ok {
		t.Error("root should have no parent")
	}
	if p, ok := ParentSlot("LR"); !ok || p != "L" {
		t.Errorf("ParentSlot(LR) = %q, %v", p, ok)
	}
}

func TestBindAfterJSONRoundTrip(t *testing.T) {
	root := &tree.Node{ID: "1", Name: "Ann", Right: leaf("3")}
	l, err := Compute(root, Options{Depth: 2})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Layout
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	bound := decoded.Bind(root)
	c, ok := bound.Card("R")
	if !ok || c.Node == nil || c.Node.ID != "3" || c.Placeholder {
		t.Errorf("card R = %+v", c)
	}
	if c, _ := bound.Card("L"); !c.Placeholder || c.Node != nil {
		t.Errorf("card L should stay a placeholder: %+v", c)
	}
	if bound.Populated() != 2 {
		t.Errorf("populated = %d, want 2", bound.Populated())
	}
	if decoded.Cards[2].Node != nil {
		t.Errorf("Bind should not modify the receiver's cards")
	}
}
