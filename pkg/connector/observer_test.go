package connector

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/tree"
)

func observedLayout(t *testing.T) (*Surface, layout.Layout) {
	t.Helper()
	root := &tree.Node{ID: "r", Left: &tree.Node{ID: "a"}, Right: &tree.Node{ID: "b"}}
	l, err := layout.Compute(root, layout.Options{})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	s := NewSurface()
	s.MountLayout(l)
	return s, l
}

func TestObserverStartRecomputesImmediately(t *testing.T) {
	s, l := observedLayout(t)
	var got []Path
	o := NewObserver(s, func(s *Surface) []Path { return ForLayout(s, l) },
		func(p []Path) { got = p }, WithSettleDelays())
	o.Start()
	defer o.Stop()

	if o.Runs() != 1 {
		t.Fatalf("runs = %d, want 1", o.Runs())
	}
	if len(got) != 2 {
		t.Errorf("paths = %d, want 2", len(got))
	}
}

func TestObserverSettleDelays(t *testing.T) {
	s, l := observedLayout(t)
	done := make(chan struct{})
	var runs atomic.Int32
	o := NewObserver(s, func(s *Surface) []Path { return ForLayout(s, l) },
		func([]Path) {
			if runs.Add(1) == 5 {
				close(done)
			}
		},
		WithSettleDelays(time.Millisecond, 2*time.Millisecond, 3*time.Millisecond, 4*time.Millisecond))
	o.Start()
	defer o.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("runs = %d, want 5", runs.Load())
	}
}

func TestObserverFollowsSurfaceChanges(t *testing.T) {
	s, l := observedLayout(t)
	var mu sync.Mutex
	var latest []Path
	o := NewObserver(s, func(s *Surface) []Path { return ForLayout(s, l) },
		func(p []Path) {
			mu.Lock()
			latest = p
			mu.Unlock()
		}, WithSettleDelays())
	o.Start()
	defer o.Stop()

	s.Unmount("R")
	mu.Lock()
	n := len(latest)
	mu.Unlock()
	if n != 1 {
		t.Errorf("paths after unmount = %d, want 1", n)
	}

	card, _ := l.Card("L")
	s.Resize("L", card.Rect.Translate(0, 40))
	mu.Lock()
	to := latest[0].To
	mu.Unlock()
	if want := card.Rect.Top + 40 - l.Container.Top; to.Y != want {
		t.Errorf("child anchor y = %g, want %g", to.Y, want)
	}

	before := o.Runs()
	o.WindowResized()
	if o.Runs() != before+1 {
		t.Error("WindowResized did not recompute")
	}
}

func TestObserverStopCancelsPendingWork(t *testing.T) {
	s, l := observedLayout(t)
	var runs atomic.Int32
	o := NewObserver(s, func(s *Surface) []Path { return ForLayout(s, l) },
		func([]Path) { runs.Add(1) },
		WithSettleDelays(20*time.Millisecond, 40*time.Millisecond))
	o.Start()
	o.Stop()

	s.Resize("", layout.Rect{Width: 1, Height: 1})
	o.WindowResized()
	o.Recompute()
	time.Sleep(80 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want only the initial recompute", got)
	}
}

func TestObserverTeardownMakesRecomputeNoop(t *testing.T) {
	s, l := observedLayout(t)
	var runs atomic.Int32
	o := NewObserver(s, func(s *Surface) []Path { return ForLayout(s, l) },
		func([]Path) { runs.Add(1) },
		WithSettleDelays(10*time.Millisecond))
	o.Start()
	s.Teardown()

	o.Recompute()
	o.WindowResized()
	time.Sleep(30 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
	o.Stop()
}

func TestObserverStartAfterStop(t *testing.T) {
	s, l := observedLayout(t)
	o := NewObserver(s, func(s *Surface) []Path { return ForLayout(s, l) }, nil, WithSettleDelays())
	o.Stop()
	o.Start()
	if o.Runs() != 0 {
		t.Errorf("runs = %d, want 0", o.Runs())
	}
}
