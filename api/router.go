package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/decktree/api/handlers"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions carries the optional pieces of the HTTP surface.
type RouterOptions struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Health   func(*gin.Context) error
}

// NewRouter wires the v1 routes over svc.
func NewRouter(svc deck.Backend, log *logger.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.GinMiddleware())
	}

	// Ping endpoint for health check
	r.GET("/ping", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"message": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	h := handlers.New(svc, log)
	v1 := r.Group("/v1")
	{
		v1.POST("/decks", h.CreateDeck)
		v1.POST("/slides", h.CreateSlide)

		v1.GET("/nodes", h.ListNodes)
		v1.GET("/nodes/:id", h.GetNode)
		v1.PATCH("/nodes/:id", h.RenameNode)
		v1.DELETE("/nodes/:id", h.DeleteNode)
		v1.GET("/nodes/:id/parents", h.Parents)

		v1.POST("/decks/:id/children", h.AddChild)
		v1.GET("/decks/:id/children", h.Children)
		v1.GET("/decks/:id/slides", h.Slides)
		v1.GET("/decks/:id/tree", h.Tree)

		v1.DELETE("/edges/:id", h.DeleteEdge)
	}
	return r
}
