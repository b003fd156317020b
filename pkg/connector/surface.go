package connector

import (
	"sync"

	"github.com/matzehuels/teamtree/pkg/layout"
)

// Surface tracks the container and the mounted card elements. It is safe for
// concurrent use. Subscribers are notified outside the surface lock.
type Surface struct {
	mu        sync.RWMutex
	container *layout.Rect
	refs      map[string]layout.Rect
	subs      map[int]func()
	nextSub   int
	torn      bool
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{
		refs: make(map[string]layout.Rect),
		subs: make(map[int]func()),
	}
}

// SetContainer records the container's rectangle.
func (s *Surface) SetContainer(r layout.Rect) {
	if !s.update(func() { s.container = &r }) {
		return
	}
	s.notify()
}

// Mount records the rectangle of the card in slot.
func (s *Surface) Mount(slot string, r layout.Rect) {
	if !s.update(func() { s.refs[slot] = r }) {
		return
	}
	s.notify()
}

// Resize updates a mounted card. Unmounted slots are ignored.
func (s *Surface) Resize(slot string, r layout.Rect) {
	changed := s.update(func() {
		if _, ok := s.refs[slot]; ok {
			s.refs[slot] = r
		}
	})
	if changed {
		s.notify()
	}
}

// Unmount drops the reference for slot.
func (s *Surface) Unmount(slot string) {
	if !s.update(func() { delete(s.refs, slot) }) {
		return
	}
	s.notify()
}

// MountLayout replaces the surface contents with a computed layout. Only
// populated cards become references; placeholders keep their space in the
// layout but never anchor a connector.
func (s *Surface) MountLayout(l layout.Layout) {
	changed := s.update(func() {
		c := l.Container
		s.container = &c
		clear(s.refs)
		for _, card := range l.Cards {
			if !card.Placeholder {
				s.refs[card.Slot] = card.Rect
			}
		}
	})
	if changed {
		s.notify()
	}
}

// Container returns a copy of the container rectangle, or nil if unset.
func (s *Surface) Container() *layout.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.container == nil {
		return nil
	}
	c := *s.container
	return &c
}

// Ref returns a copy of the rectangle mounted at slot, or nil.
func (s *Surface) Ref(slot string) *layout.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.refs[slot]
	if !ok {
		return nil
	}
	return &r
}

// Len returns the number of mounted cards.
func (s *Surface) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refs)
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (s *Surface) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Teardown releases every reference and subscription. Later mutations are
// ignored.
func (s *Surface) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torn = true
	s.container = nil
	clear(s.refs)
	clear(s.subs)
}

// TornDown reports whether Teardown has been called.
func (s *Surface) TornDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.torn
}

func (s *Surface) update(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn {
		return false
	}
	fn()
	return true
}

func (s *Surface) notify() {
	s.mu.RLock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}
