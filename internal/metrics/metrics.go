package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/decktree/internal/traversal"
	"github.com/kutbudev/decktree/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for traversals and HTTP requests.
type Metrics struct {
	traversals    *prometheus.CounterVec
	decksExpanded prometheus.Histogram
	depth         prometheus.Histogram
	cache         *prometheus.CounterVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		traversals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decktree_traversals_total",
				Help: "Closure walks by outcome",
			},
			[]string{"outcome"},
		),
		decksExpanded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "decktree_traversal_decks_expanded",
			Help:    "Decks expanded per closure walk",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "decktree_traversal_depth",
			Help:    "Deepest deck reached per closure walk",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decktree_closure_cache_total",
				Help: "Closure cache lookups by result",
			},
			[]string{"result"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decktree_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "decktree_http_request_duration_seconds",
				Help: "HTTP request latency by route",
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.traversals, m.decksExpanded, m.depth, m.cache, m.requests, m.latency)
	return m
}

// ObserveTraversal implements traversal.Recorder.
func (m *Metrics) ObserveTraversal(stats traversal.Stats, err error) {
	m.traversals.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.decksExpanded.Observe(float64(stats.DecksExpanded))
		m.depth.Observe(float64(stats.MaxDepth))
	}
}

// CacheHit and CacheMiss count closure cache lookups.
func (m *Metrics) CacheHit() {
	m.cache.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	m.cache.WithLabelValues("miss").Inc()
}

// GinMiddleware records request counts and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, repository.ErrCycleDetected):
		return "cycle"
	case errors.Is(err, repository.ErrDepthExceeded):
		return "depth_exceeded"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrInvalidRelation):
		return "invalid_relation"
	default:
		return "error"
	}
}
