package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/decktree/internal/traversal"
	"github.com/kutbudev/decktree/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTraversal(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTraversal(traversal.Stats{DecksExpanded: 3, MaxDepth: 2}, nil)
	m.ObserveTraversal(traversal.Stats{}, fmt.Errorf("walk: %w", repository.ErrCycleDetected))
	m.ObserveTraversal(traversal.Stats{}, fmt.Errorf("walk: %w", repository.ErrCycleDetected))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.traversals.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.traversals.WithLabelValues("cycle")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.decksExpanded))
}

func TestCacheCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cache.WithLabelValues("miss")))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/v1/decks/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/decks/abc", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/decks/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}
