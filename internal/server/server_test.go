package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/teamtree/pkg/cache"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/pipeline"
	"github.com/matzehuels/teamtree/pkg/poller"
	"github.com/matzehuels/teamtree/pkg/tree"
)

func sampleTree() *tree.Node {
	return &tree.Node{
		ID:      "1",
		Name:    "Ada Lovelace",
		Package: "Gold",
		Metrics: tree.Metrics{Earnings: 1250.5, LeftCount: 1, RightCount: 0, TeamSize: 1},
		Leader:  true,
		Left:    &tree.Node{ID: "2", Name: "<Bo>", Package: "Silver"},
	}
}

func newTestServer(t *testing.T, c cache.Cache) *Server {
	t.Helper()
	s, err := New(Config{
		Runner: pipeline.NewRunner(c, nil, log.New(io.Discard)),
		Fetch: func(context.Context) (*tree.Node, tree.Stats, error) {
			return sampleTree(), nil, nil
		},
		Options:  pipeline.Options{Depth: 2},
		Logger:   log.New(io.Discard),
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

// ready publishes a snapshot the way the poller would.
func ready(t *testing.T, s *Server, root *tree.Node, fetchErr error) {
	t.Helper()
	l, err := layout.Compute(root, s.base.LayoutOptions())
	if err != nil {
		t.Fatalf("layout.Compute() error: %v", err)
	}
	s.onSnapshot(poller.Snapshot{
		Root:      root,
		Layout:    l,
		Err:       fetchErr,
		FetchedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Seq:       2,
	})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewRequiresRunnerAndFetch(t *testing.T) {
	if _, err := New(Config{Fetch: func(context.Context) (*tree.Node, tree.Stats, error) { return nil, nil, nil }}); err == nil {
		t.Error("New() without runner should fail")
	}
	if _, err := New(Config{Runner: pipeline.NewRunner(nil, nil, nil)}); err == nil {
		t.Error("New() without fetch should fail")
	}
}

func TestTreeBeforeFirstFetch(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/tree.svg")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("503 should carry Retry-After")
	}

	rec = get(t, s, "/healthz")
	var h healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&h); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if h.Status != "loading" {
		t.Errorf("health status = %q, want loading", h.Status)
	}
}

func TestTreeFormats(t *testing.T) {
	s := newTestServer(t, nil)
	ready(t, s, sampleTree(), nil)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/tree.svg", "image/svg+xml", "<svg"},
		{"/tree.json", "application/json", `"cards"`},
		{"/tree.txt", "text/plain; charset=utf-8", "Ada Lovelace"},
		{"/tree.dot", "text/vnd.graphviz", "digraph"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := rec.Header().Get(HeaderFetchedAt); got != "2026-03-01T12:00:00Z" {
				t.Errorf("%s = %q", HeaderFetchedAt, got)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body should contain %q", tt.contains)
			}
		})
	}
}

func TestTreeSVGEscapesNames(t *testing.T) {
	s := newTestServer(t, nil)
	ready(t, s, sampleTree(), nil)

	body := get(t, s, "/tree.svg").Body.String()
	if strings.Contains(body, "<Bo>") {
		t.Error("member names must be escaped in SVG")
	}
	if !strings.Contains(body, "&lt;Bo&gt;") {
		t.Error("escaped member name missing from SVG")
	}
}

func TestTreeQueryOverrides(t *testing.T) {
	s := newTestServer(t, nil)
	ready(t, s, sampleTree(), nil)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"handdrawn style", "/tree.svg?style=handdrawn", http.StatusOK},
		{"deeper", "/tree.svg?depth=4", http.StatusOK},
		{"unknown style", "/tree.svg?style=neon", http.StatusBadRequest},
		{"depth zero", "/tree.svg?depth=0", http.StatusBadRequest},
		{"depth negative", "/tree.json?depth=-1", http.StatusBadRequest},
		{"depth too deep", "/tree.svg?depth=9", http.StatusBadRequest},
		{"depth not a number", "/tree.txt?depth=two", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.status {
				t.Errorf("GET %s status = %d, want %d (%s)", tt.target, rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestTreeDepthChangesCardCount(t *testing.T) {
	s := newTestServer(t, nil)
	ready(t, s, sampleTree(), nil)

	count := func(target string) int {
		var out struct {
			Cards []json.RawMessage `json:"cards"`
		}
		if err := json.NewDecoder(get(t, s, target).Body).Decode(&out); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
		return len(out.Cards)
	}

	if got := count("/tree.json"); got != 3 {
		t.Errorf("depth 2 cards = %d, want 3", got)
	}
	if got := count("/tree.json?depth=3"); got != 7 {
		t.Errorf("depth 3 cards = %d, want 7", got)
	}
}

func TestTreeJSONIncludesStats(t *testing.T) {
	s := newTestServer(t, nil)
	root := sampleTree()
	l, err := layout.Compute(root, s.base.LayoutOptions())
	if err != nil {
		t.Fatal(err)
	}
	s.onSnapshot(poller.Snapshot{
		Root:      root,
		Stats:     tree.Stats{"total_left": float64(1)},
		Layout:    l,
		FetchedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Seq:       2,
	})

	var out struct {
		Stats map[string]any `json:"stats"`
	}
	if err := json.NewDecoder(get(t, s, "/tree.json").Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Stats["total_left"] != float64(1) {
		t.Errorf("stats = %v, want total_left 1", out.Stats)
	}
}

func TestTreeFetchErrorServesEmptyTree(t *testing.T) {
	s := newTestServer(t, nil)
	ready(t, s, nil, stderrors.New("backend down"))

	rec := get(t, s, "/tree.txt")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(HeaderFetchErr) == "" {
		t.Errorf("%s should report the failed fetch", HeaderFetchErr)
	}
	if n := strings.Count(rec.Body.String(), "Empty"); n != 3 {
		t.Errorf("empty tree shows %d placeholders, want 3", n)
	}

	var h healthResponse
	if err := json.NewDecoder(get(t, s, "/healthz").Body).Decode(&h); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if h.Status != "degraded" || h.Error == "" {
		t.Errorf("health = %+v, want degraded with error", h)
	}
}

func TestTreeRenderCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, fc)
	ready(t, s, sampleTree(), nil)

	if got := get(t, s, "/tree.svg").Header().Get(HeaderCache); got != "miss" {
		t.Errorf("first request cache = %q, want miss", got)
	}
	if got := get(t, s, "/tree.svg").Header().Get(HeaderCache); got != "hit" {
		t.Errorf("second request cache = %q, want hit", got)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	ready(t, s, sampleTree(), nil)
	get(t, s, "/tree.txt")

	var h healthResponse
	if err := json.NewDecoder(get(t, s, "/healthz").Body).Decode(&h); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if h.Status != "ok" || h.Members != 2 || h.Populated != 2 || h.Seq != 2 {
		t.Errorf("health = %+v", h)
	}

	body := get(t, s, "/metrics").Body.String()
	if !strings.Contains(body, `teamtree_http_requests_total{route="/tree.txt",status="200"} 1`) {
		t.Errorf("metrics should count the tree request:\n%s", body)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New(Config{
		Addr:   "127.0.0.1:0",
		Runner: pipeline.NewRunner(nil, nil, log.New(io.Discard)),
		Fetch: func(context.Context) (*tree.Node, tree.Stats, error) {
			return sampleTree(), nil, nil
		},
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.snapshot().Loading && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.snapshot().Loading {
		t.Fatal("poller never published a snapshot")
	}

	cancel()
	select {
	case err := <-done:
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !s.poller.Stopped() {
		t.Error("poller should be stopped after Run returns")
	}
}
