package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/teamtree/pkg/cache"
	"github.com/matzehuels/teamtree/pkg/connector"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/observability"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// Fetcher downloads a member's tree. [client.Client] implements it.
//
// [client.Client]: github.com/matzehuels/teamtree/pkg/client.Client
type Fetcher interface {
	BaseURL() string
	FetchTree(ctx context.Context, kind tree.Kind) (*tree.Node, tree.Stats, error)
}

// Fetched is a tree as stored in the cache.
type Fetched struct {
	Root      *tree.Node `json:"root"`
	Stats     tree.Stats `json:"stats,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, f Fetcher, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	fetched, hit, err := r.FetchWithCacheInfo(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	fetchTime := time.Since(fetchStart)

	r.Logger.Info("fetched tree",
		"kind", opts.Kind,
		"nodes", fetched.Root.Count(),
		"cached", hit,
		"duration", fetchTime)

	result, err := r.FromTree(ctx, fetched, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.FetchTime = fetchTime
	result.CacheInfo.TreeHit = hit
	return result, nil
}

// FromTree runs the layout and render stages on a tree that is already in
// hand, e.g. one decoded from a file or delivered by a poller.
func (r *Runner) FromTree(ctx context.Context, fetched Fetched, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Root:      fetched.Root,
		TreeStats: fetched.Stats,
		FetchedAt: fetched.FetchedAt,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = fetched.Root.Count()
	if h, err := cache.HashJSON(fetched.Root); err == nil {
		result.TreeHash = h
	}

	layoutStart := time.Now()
	l, paths, layoutHit, err := r.layout(ctx, fetched.Root, result.TreeHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Paths = paths
	result.Stats.CardCount = len(l.Cards)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Debug("computed layout",
		"cards", len(l.Cards),
		"populated", l.Populated(),
		"connectors", len(paths),
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	in := Input{
		Root:      fetched.Root,
		Stats:     fetched.Stats,
		FetchedAt: fetched.FetchedAt,
		TreeHash:  result.TreeHash,
		Layout:    l,
		Paths:     paths,
	}
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo downloads the tree, or reads it from cache unless
// opts.Refresh is set, and reports whether the cache was hit.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, f Fetcher, opts Options) (Fetched, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return Fetched{}, false, err
	}
	kind := opts.TreeKind()
	cacheKey := r.Keyer.TreeKey(f.BaseURL(), kind.String(), opts.Member)

	if !opts.Refresh {
		var cached Fetched
		if hit, err := cache.GetJSON(ctx, r.Cache, cacheKey, cache.KeyTypeTree, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, kind.String())
	start := time.Now()
	root, stats, err := f.FetchTree(ctx, kind)
	hooks.OnFetchComplete(ctx, kind.String(), root.Count(), time.Since(start), err)
	if err != nil {
		return Fetched{}, false, err
	}

	fetched := Fetched{Root: root, Stats: stats, FetchedAt: time.Now()}
	if err := cache.SetJSON(ctx, r.Cache, cacheKey, cache.KeyTypeTree, fetched, cache.TTLTree); err != nil {
		r.Logger.Warn("cache write failed", "key", cache.KeyTypeTree, "error", err)
	}
	return fetched, false, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, f Fetcher, opts Options) (Fetched, error) {
	fetched, _, err := r.FetchWithCacheInfo(ctx, f, opts)
	return fetched, err
}

// LayoutWithCacheInfo lays out root and computes its connectors, reading the
// card grid from cache when possible.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, root *tree.Node, opts Options) (layout.Layout, []connector.Path, bool, error) {
	treeHash, err := cache.HashJSON(root)
	if err != nil {
		return layout.Layout{}, nil, false, err
	}
	return r.layout(ctx, root, treeHash, opts)
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, root *tree.Node, opts Options) (layout.Layout, []connector.Path, error) {
	l, paths, _, err := r.LayoutWithCacheInfo(ctx, root, opts)
	return l, paths, err
}

func (r *Runner) layout(ctx context.Context, root *tree.Node, treeHash string, opts Options) (layout.Layout, []connector.Path, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, nil, false, err
	}
	lo := opts.LayoutOptions()
	cacheKey := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())

	var cached layout.Layout
	if hit, err := cache.GetJSON(ctx, r.Cache, cacheKey, cache.KeyTypeLayout, &cached); err == nil && hit && len(cached.Cards) > 0 {
		l := cached.Bind(root)
		return l, connector.Static(l), true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, lo.Depth, root.Count())
	start := time.Now()
	l, err := layout.Compute(root, lo)
	hooks.OnLayoutComplete(ctx, lo.Depth, len(l.Cards), time.Since(start), err)
	if err != nil {
		return layout.Layout{}, nil, false, err
	}

	if err := cache.SetJSON(ctx, r.Cache, cacheKey, cache.KeyTypeLayout, l, cache.TTLLayout); err != nil {
		r.Logger.Warn("cache write failed", "key", cache.KeyTypeLayout, "error", err)
	}
	return l, connector.Static(l), false, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every requested format came from cache. JSON output carries the fetch time
// and is always rendered fresh.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, in Input, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutHash, err := cache.HashJSON(struct {
		Tree   string        `json:"tree"`
		Layout layout.Layout `json:"layout"`
	}{in.TreeHash, in.Layout})
	if err != nil {
		return nil, false, fmt.Errorf("hash layout for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if format == FormatJSON {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := cache.GetBytes(ctx, r.Cache, key, cache.KeyTypeArtifact); err == nil && hit {
			artifacts[format] = data
			continue
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(in, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if format == FormatJSON {
			continue
		}
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := cache.SetBytes(ctx, r.Cache, key, cache.KeyTypeArtifact, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", cache.KeyTypeArtifact, "format", format, "error", err)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, in Input, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, in, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
