package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/decktree/pkg/repository"
)

// Error codes carried in the "code" field of error responses.
const (
	CodeNotFound        = "not_found"
	CodeInvalidRelation = "invalid_relation"
	CodeInvalidKind     = "invalid_kind"
	CodeCycleDetected   = "cycle_detected"
	CodeDepthExceeded   = "depth_exceeded"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Classify maps a domain error onto an HTTP status and error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, repository.ErrCycleDetected):
		return http.StatusConflict, CodeCycleDetected
	case errors.Is(err, repository.ErrInvalidRelation):
		return http.StatusUnprocessableEntity, CodeInvalidRelation
	case errors.Is(err, repository.ErrInvalidKind):
		return http.StatusUnprocessableEntity, CodeInvalidKind
	case errors.Is(err, repository.ErrDepthExceeded):
		return http.StatusUnprocessableEntity, CodeDepthExceeded
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// SentinelFor is the inverse of Classify, used by HTTP clients.
func SentinelFor(code string) error {
	switch code {
	case CodeNotFound:
		return repository.ErrNotFound
	case CodeCycleDetected:
		return repository.ErrCycleDetected
	case CodeInvalidRelation:
		return repository.ErrInvalidRelation
	case CodeInvalidKind:
		return repository.ErrInvalidKind
	case CodeDepthExceeded:
		return repository.ErrDepthExceeded
	default:
		return nil
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := Classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	}
	c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeBadRequest})
}
