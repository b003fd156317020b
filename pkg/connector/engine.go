package connector

import (
	"github.com/matzehuels/teamtree/pkg/layout"
)

// ForLayout computes the connectors for every parent slot of l using the
// references currently mounted on s. Parents or children that are not
// mounted contribute no paths.
func ForLayout(s *Surface, l layout.Layout) []Path {
	container := s.Container()
	if container == nil {
		return []Path{}
	}

	var paths []Path
	for _, card := range l.Cards {
		kids := l.ChildSlots(card.Slot)
		if kids == nil {
			continue
		}
		parent := s.Ref(card.Slot)
		if parent == nil {
			continue
		}
		refs := make([]*layout.Rect, len(kids))
		for i, slot := range kids {
			refs[i] = s.Ref(slot)
		}
		for _, p := range Compute(container, parent, refs) {
			p.ParentSlot = card.Slot
			p.ChildSlot = kids[p.Index]
			paths = append(paths, p)
		}
	}
	if paths == nil {
		return []Path{}
	}
	return paths
}

// Static lays out connectors for l without a live surface.
func Static(l layout.Layout) []Path {
	s := NewSurface()
	s.MountLayout(l)
	return ForLayout(s, l)
}
