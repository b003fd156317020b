// Package poller refreshes a tree snapshot on a fixed interval.
//
// A [Poller] fetches immediately, then once per interval, and publishes each
// result as a [Snapshot] through its OnUpdate callback. Failed fetches
// degrade to an empty, all-placeholder snapshot carrying the error. Once
// [Poller.Stop] returns, or the context passed to [Poller.Run] is done,
// OnUpdate is never called again, even if a fetch still in flight completes
// afterwards.
//
// Fetches started by [Poller.Refresh] may overlap the scheduled ones. Each
// fetch is stamped when it starts, and a result is dropped once a fetch that
// started later has already been published.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/observability"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// DefaultInterval is the refresh period.
const DefaultInterval = 10 * time.Second

// FetchFunc loads the current tree and the backend stats that came with it.
// A nil node with a nil error is a valid empty tree.
type FetchFunc func(ctx context.Context) (*tree.Node, tree.Stats, error)

// Snapshot is one published state of the tree view.
type Snapshot struct {
	Root       *tree.Node
	Stats      tree.Stats
	Layout     layout.Layout
	Connectors []connector.Path

	// Loading is set on the snapshot published before the first fetch
	// completes. Loading snapshots carry no layout and no connectors.
	Loading bool

	Err       error
	FetchedAt time.Time
	Seq       int
}

// Empty reports whether the snapshot has no populated cards.
func (s Snapshot) Empty() bool { return s.Root == nil }

// Poller drives periodic fetches.
type Poller struct {
	fetch    FetchFunc
	onUpdate func(Snapshot)
	interval time.Duration
	opts     layout.Options
	logger   *log.Logger

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	seq     int
	started int // fetches begun
	latest  int // start stamp of the newest published fetch
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides [DefaultInterval]. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLayout sets the layout options used for each snapshot.
func WithLayout(opts layout.Options) Option {
	return func(p *Poller) { p.opts = opts }
}

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a poller. onUpdate is called with the poller lock held and must
// not call Stop.
func New(fetch FetchFunc, onUpdate func(Snapshot), opts ...Option) *Poller {
	p := &Poller{
		fetch:    fetch,
		onUpdate: onUpdate,
		interval: DefaultInterval,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run publishes a loading snapshot, fetches immediately and then on every
// tick. It blocks until ctx is done or Stop is called. Run returns nil after
// Stop and ctx.Err() otherwise.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	p.publish(ctx, 0, Snapshot{Loading: true})
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if p.Stopped() {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Refresh performs one fetch outside the ticker schedule.
func (p *Poller) Refresh(ctx context.Context) {
	p.poll(ctx)
}

// Stop cancels any in-flight fetch and ends Run. It is safe to call more than
// once and before Run.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
}

// Stopped reports whether Stop has been called.
func (p *Poller) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *Poller) poll(ctx context.Context) {
	p.mu.Lock()
	p.started++
	stamp := p.started
	p.mu.Unlock()

	start := time.Now()
	root, stats, err := p.fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Warn("tree fetch failed, showing empty tree", "error", err)
		root, stats = nil, nil
	} else {
		p.logger.Debug("tree fetched", "nodes", root.Count(), "elapsed", time.Since(start))
	}

	l, lerr := layout.Compute(root, p.opts)
	if lerr != nil {
		p.logger.Error("layout failed", "error", lerr)
		p.publish(ctx, stamp, Snapshot{Err: lerr, FetchedAt: time.Now()})
		return
	}
	p.publish(ctx, stamp, Snapshot{
		Root:       root,
		Stats:      stats,
		Layout:     l,
		Connectors: connector.Static(l),
		Err:        err,
		FetchedAt:  time.Now(),
	})
}

// publish delivers s unless the poller is stopped or a fetch stamped after
// stamp has already been delivered. The loading snapshot uses stamp 0 and is
// only delivered before any fetch result.
func (p *Poller) publish(ctx context.Context, stamp int, s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || ctx.Err() != nil {
		return
	}
	if stamp < p.latest || (stamp == 0 && p.latest > 0) {
		p.logger.Debug("dropping superseded fetch", "fetch", stamp, "latest", p.latest)
		return
	}
	p.latest = stamp
	p.seq++
	s.Seq = p.seq
	if !s.Loading {
		observability.Poll().OnPoll(ctx, s.Seq, s.Layout.Populated(), s.Err)
	}
	if p.onUpdate != nil {
		p.onUpdate(s)
	}
}
