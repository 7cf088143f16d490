package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Edge is a directed containment relation from a deck (head) to a node (tail).
// Ordinal is a store-wide insertion counter used to break sequence ties.
type Edge struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	HeadID    uuid.UUID `json:"head_id" gorm:"not null;type:uuid;index:idx_edges_head"`
	HeadKind  Kind      `json:"head_kind" gorm:"not null;type:varchar(16)"`
	TailID    uuid.UUID `json:"tail_id" gorm:"not null;type:uuid;index:idx_edges_tail"`
	TailKind  Kind      `json:"tail_kind" gorm:"not null;type:varchar(16)"`
	Sequence  *int      `json:"sequence,omitempty"`
	Ordinal   int64     `json:"-" gorm:"not null;default:0;index:idx_edges_ordinal"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Edge) TableName() string {
	return "edges"
}

// BeforeCreate assigns the id on the client so postgres and sqlite agree.
func (e *Edge) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Head returns the container side of the edge.
func (e *Edge) Head() Ref {
	return Ref{ID: e.HeadID, Kind: e.HeadKind}
}

// Tail returns the contained side of the edge.
func (e *Edge) Tail() Ref {
	return Ref{ID: e.TailID, Kind: e.TailKind}
}
