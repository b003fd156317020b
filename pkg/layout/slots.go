package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/teamtree/pkg/tree"
)

// sortCards orders cards breadth-first (by depth, then left to right) and
// rebuilds the slot index.
func (l *Layout) sortCards() {
	slices.SortFunc(l.Cards, func(a, b Card) int {
		if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
			return c
		}
		return cmp.Compare(a.Rect.Left, b.Rect.Left)
	})
	l.index = make(map[string]int, len(l.Cards))
	for i, c := range l.Cards {
		l.index[c.Slot] = i
	}
}

// Card returns the card laid out for slot.
func (l Layout) Card(slot string) (Card, bool) {
	if l.index == nil {
		for _, c := range l.Cards {
			if c.Slot == slot {
				return c, true
			}
		}
		return Card{}, false
	}
	i, ok := l.index[slot]
	if !ok {
		return Card{}, false
	}
	return l.Cards[i], true
}

// ChildSlots returns the two child slots of slot, or nil on the bottom row.
func (l Layout) ChildSlots(slot string) []string {
	if len(slot) >= l.Depth-1 {
		return nil
	}
	return []string{slot + "L", slot + "R"}
}

// ParentSlot returns the parent of slot. The root has no parent.
func ParentSlot(slot string) (string, bool) {
	if slot == "" {
		return "", false
	}
	return slot[:len(slot)-1], true
}

// Populated returns the number of cards that carry a node.
func (l Layout) Populated() int {
	n := 0
	for _, c := range l.Cards {
		if !c.Placeholder {
			n++
		}
	}
	return n
}

// Placeholders returns the number of placeholder cards.
func (l Layout) Placeholders() int {
	return len(l.Cards) - l.Populated()
}

// Bind reattaches the nodes of root to a layout decoded from JSON, where
// [Card.Node] is not serialized, and rebuilds the slot index. Cards whose
// slot is empty in root become placeholders.
func (l Layout) Bind(root *tree.Node) Layout {
	cards := make([]Card, len(l.Cards))
	copy(cards, l.Cards)
	l.Cards = cards
	for i := range l.Cards {
		n := root.At(l.Cards[i].Slot)
		l.Cards[i].Node = n
		l.Cards[i].Placeholder = n == nil
	}
	l.sortCards()
	return l
}
