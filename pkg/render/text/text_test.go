package text

import (
	"strings"
	"testing"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/tree"
)

func runeAt(t *testing.T, lines []string, x, y int) rune {
	t.Helper()
	if y >= len(lines) {
		t.Fatalf("row %d out of range (%d rows)", y, len(lines))
	}
	r := []rune(lines[y])
	if x >= len(r) {
		return ' '
	}
	return r[x]
}

func TestRenderDepthTwo(t *testing.T) {
	root := &tree.Node{
		Name: "Ann", Package: "Gold", Leader: true,
		Metrics: tree.Metrics{Earnings: 1500, LeftCount: 1, TeamSize: 1},
		Left:    &tree.Node{Name: "Bob"},
	}
	out, err := Render(root, 2)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	lines := strings.Split(out, "\n")

	w, h := Size(2)
	if len(lines) != h {
		t.Fatalf("rows = %d, want %d", len(lines), h)
	}
	for i, ln := range lines {
		if n := len([]rune(ln)); n > w {
			t.Errorf("row %d is %d cells wide, max %d", i, n, w)
		}
	}

	// Root card spans columns 13..34, rows 1..6; children start at row 11.
	checks := []struct {
		x, y int
		want rune
	}{
		{13, 1, '╭'},
		{34, 6, '╯'},
		{32, 1, '★'},
		{24, 6, '┬'},
		{24, 7, '│'},
		{24, 9, '┘'},
		{12, 9, '┌'},
		{12, 10, '│'},
		{12, 11, '┴'},
		{1, 11, '╭'},
		{25, 11, '┌'},
		{26, 11, '┄'},
		{36, 9, ' '},
	}
	for _, c := range checks {
		if got := runeAt(t, lines, c.x, c.y); got != c.want {
			t.Errorf("cell (%d,%d) = %q, want %q\n%s", c.x, c.y, got, c.want, out)
		}
	}

	for _, want := range []string{"Ann", "Gold", "Earn 1,500.00", "L 1  R 0  T 1", "Bob", "Empty"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderBothChildrenJoinAtStem(t *testing.T) {
	root := &tree.Node{Name: "Ann", Left: &tree.Node{Name: "Bob"}, Right: &tree.Node{Name: "Cy"}}
	out, err := Render(root, 2)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(out, "\n")
	if got := runeAt(t, lines, 24, 9); got != '┴' {
		t.Errorf("stem junction = %q, want ┴\n%s", got, out)
	}
	if got := runeAt(t, lines, 36, 9); got != '┐' {
		t.Errorf("right corner = %q, want ┐\n%s", got, out)
	}
}

func TestRenderEmptyTree(t *testing.T) {
	out, err := Render(nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out, "Empty"); got != 7 {
		t.Errorf("placeholders = %d, want 7", got)
	}
	if strings.ContainsAny(out, "┬┴╭") {
		t.Errorf("empty tree should have no cards or connectors:\n%s", out)
	}
}

func TestRenderTruncatesLongNames(t *testing.T) {
	root := &tree.Node{Name: "Maximilian Alexander von Longname"}
	out, err := Render(root, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Maximilian Alexan…") {
		t.Errorf("name not truncated:\n%s", out)
	}
}

func TestRenderInvalidDepth(t *testing.T) {
	if _, err := Render(nil, 9); !errors.Is(err, errors.ErrCodeInvalidDepth) {
		t.Errorf("err = %v, want invalid depth", err)
	}
}

func TestRenderColor(t *testing.T) {
	root := &tree.Node{Name: "Ann"}
	plain, _ := Render(root, 1)
	colored, _ := Render(root, 1, WithColor())
	if !strings.Contains(colored, "Ann") {
		t.Errorf("colored output lost text")
	}
	if len(colored) < len(plain) {
		t.Errorf("colored output should not be shorter than plain output")
	}
}
