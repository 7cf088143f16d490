package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/models"
)

type Handler struct {
	svc deck.Backend
	log *logger.Logger
}

func New(svc deck.Backend, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log.With("component", "HTTPHandler")}
}

// CreateNodeInput DTO for creating a deck or slide
type CreateNodeInput struct {
	Name string `json:"name"`
}

// RenameNodeInput DTO for renaming a node. Like creation, an empty name is allowed.
type RenameNodeInput struct {
	Name string `json:"name"`
}

// AddChildInput DTO for attaching a node to a deck
type AddChildInput struct {
	ChildID string `json:"child_id" binding:"required,uuid"`
}

// ListResponse wraps list results so the body is always an object.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func list[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) createNode(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateNodeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		n, err := h.svc.CreateNode(c.Request.Context(), kind, input.Name)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, n)
	}
}

// CreateDeck creates a new deck.
func (h *Handler) CreateDeck(c *gin.Context) {
	h.createNode(models.KindDeck)(c)
}

// CreateSlide creates a new slide.
func (h *Handler) CreateSlide(c *gin.Context) {
	h.createNode(models.KindSlide)(c)
}

// ListNodes lists nodes, optionally filtered by ?kind=deck|slide.
func (h *Handler) ListNodes(c *gin.Context) {
	var kind models.Kind
	if raw := c.Query("kind"); raw != "" {
		k, err := models.ParseKind(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		kind = k
	}
	nodes, err := h.svc.ListNodes(c.Request.Context(), kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(nodes))
}

// GetNode retrieves a single node.
func (h *Handler) GetNode(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	n, err := h.svc.GetNode(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// RenameNode updates a node's name.
func (h *Handler) RenameNode(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input RenameNodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.svc.RenameNode(c.Request.Context(), id, input.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// DeleteNode removes a node that is not part of any edge.
func (h *Handler) DeleteNode(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteNode(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Parents lists the decks directly containing a node.
func (h *Handler) Parents(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	nodes, err := h.svc.Parents(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(nodes))
}

// AddChild appends a node under a deck.
func (h *Handler) AddChild(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input AddChildInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	childID, err := uuid.Parse(input.ChildID)
	if err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.svc.AddChild(c.Request.Context(), id, childID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// Children lists a deck's direct children in sequence order.
func (h *Handler) Children(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	nodes, err := h.svc.DirectChildren(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(nodes))
}

// Slides lists every slide under a deck at any depth.
func (h *Handler) Slides(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	nodes, err := h.svc.AllSlides(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(nodes))
}

// Tree returns the nested view of a deck.
func (h *Handler) Tree(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.svc.Tree(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteEdge removes one containment edge.
func (h *Handler) DeleteEdge(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveEdge(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
