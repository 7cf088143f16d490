package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kind identifies the variant of a node
type Kind string

const (
	KindSlide Kind = "slide"
	KindDeck  Kind = "deck"
)

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSlide, "Slide", "SLIDE":
		return KindSlide, nil
	case KindDeck, "Deck", "DECK":
		return KindDeck, nil
	default:
		return "", fmt.Errorf("unknown node kind %q", s)
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindSlide || k == KindDeck
}

// CanContain reports whether nodes of this kind may be an edge head.
func (k Kind) CanContain() bool {
	return k == KindDeck
}

func (k Kind) String() string {
	return string(k)
}

// Node is a slide or a deck. Kind never changes after creation.
type Node struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Kind      Kind      `json:"kind" gorm:"not null;type:varchar(16);index:idx_nodes_kind"`
	Name      string    `json:"name" gorm:"not null;default:''"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Node) TableName() string {
	return "nodes"
}

// BeforeCreate assigns the id on the client so postgres and sqlite agree.
func (n *Node) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Ref returns the tagged reference for this node.
func (n *Node) Ref() Ref {
	return Ref{ID: n.ID, Kind: n.Kind}
}

// IsDeck is shorthand for Kind == KindDeck.
func (n *Node) IsDeck() bool {
	return n.Kind == KindDeck
}

// Ref is a polymorphic (kind, id) pointer to a node.
type Ref struct {
	ID   uuid.UUID `json:"id"`
	Kind Kind      `json:"kind"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
