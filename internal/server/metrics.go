package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/teamtree/pkg/observability"
)

const namespace = "teamtree"

// Metrics holds the Prometheus collectors for the server and implements the
// observability hook interfaces, so pipeline, poller, cache and backend
// client events land in the same registry.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	treeNodes     prometheus.Gauge
	stageDuration *prometheus.HistogramVec

	polls          *prometheus.CounterVec
	cardsPopulated prometheus.Gauge
	lastPoll       prometheus.Gauge

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.PollHooks     = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served, by route and status.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time to serve a request, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tree_fetches_total",
			Help:      "Tree fetches from the backend, by kind and result.",
		}, []string{"kind", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tree_fetch_duration_seconds",
			Help:      "Time to fetch and map a tree, by kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		treeNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Members in the most recently fetched tree.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Layout and render time, by stage.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),

		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Completed poll cycles, by result.",
		}, []string{"result"}),
		cardsPopulated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cards_populated",
			Help:      "Populated cards in the latest snapshot.",
		}),
		lastPoll: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_poll_timestamp_seconds",
			Help:      "Unix time of the latest completed poll.",
		}),

		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes, by entry type and event.",
		}, []string{"type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache, by entry type.",
		}, []string{"type"}),

		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Responses from the back office, by method, path and status.",
		}, []string{"method", "path", "status"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Back-office round trip time, by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		backendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Back-office requests that failed without a response, by path.",
		}, []string{"path"}),
	}

	reg.MustRegister(
		m.requests, m.requestDuration,
		m.fetches, m.fetchDuration, m.treeNodes, m.stageDuration,
		m.polls, m.cardsPopulated, m.lastPoll,
		m.cacheEvents, m.cacheBytes,
		m.backendRequests, m.backendDuration, m.backendErrors,
	)
	return m
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetPollHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) observeRequest(route string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// =============================================================================
// Pipeline hooks
// =============================================================================

func (m *Metrics) OnFetchStart(context.Context, string) {}

func (m *Metrics) OnFetchComplete(_ context.Context, kind string, nodeCount int, d time.Duration, err error) {
	m.fetches.WithLabelValues(kind, result(err)).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.treeNodes.Set(float64(nodeCount))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, int, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _, _ int, d time.Duration, _ error) {
	m.stageDuration.WithLabelValues("layout").Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, _ error) {
	m.stageDuration.WithLabelValues("render").Observe(d.Seconds())
}

// =============================================================================
// Poll hooks
// =============================================================================

func (m *Metrics) OnPoll(_ context.Context, _ int, populated int, err error) {
	m.polls.WithLabelValues(result(err)).Inc()
	m.cardsPopulated.Set(float64(populated))
	m.lastPoll.SetToCurrentTime()
}

// =============================================================================
// Cache hooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP client hooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, _, path string, status int, d time.Duration) {
	path = trimQuery(path)
	m.backendRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.backendDuration.WithLabelValues(path).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, _, path string, _ error) {
	m.backendErrors.WithLabelValues(trimQuery(path)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func trimQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
