package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a node or edge id does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidRelation is returned when an edge would have a non-deck head
	ErrInvalidRelation = errors.New("invalid relation")
	// ErrInvalidKind is returned for a node kind outside {slide, deck}
	ErrInvalidKind = errors.New("invalid node kind")
	// ErrCycleDetected is returned when a traversal revisits a deck on its own path
	ErrCycleDetected = errors.New("cycle detected")
	// ErrDepthExceeded is returned when a traversal goes past the configured depth
	ErrDepthExceeded = errors.New("traversal depth exceeded")
)

// translate maps gorm's not-found onto ErrNotFound and wraps everything
// else as a storage failure.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
