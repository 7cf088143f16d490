package repository

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/internal/dbctx"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/models"
	"gorm.io/gorm"
)

type EdgeRepository interface {
	Create(dbc dbctx.Context, head, tail models.Ref, sequence *int) (*models.Edge, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*models.Edge, error)
	ChildrenOf(dbc dbctx.Context, deckID uuid.UUID) ([]*models.Edge, error)
	ParentsOf(dbc dbctx.Context, nodeID uuid.UUID) ([]*models.Edge, error)
	NextSequence(dbc dbctx.Context, deckID uuid.UUID) (int, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepository(db *gorm.DB, baseLog *logger.Logger) EdgeRepository {
	return &edgeRepo{db: db, log: baseLog.With("repo", "EdgeRepository")}
}

// Create appends an edge. The head must be a deck and both ends must
// exist with the kinds given.
func (r *edgeRepo) Create(dbc dbctx.Context, head, tail models.Ref, sequence *int) (*models.Edge, error) {
	if !head.Kind.CanContain() {
		return nil, fmt.Errorf("create edge: %w: head %s is not a deck", ErrInvalidRelation, head)
	}
	if !tail.Kind.Valid() {
		return nil, fmt.Errorf("create edge: %w: %q", ErrInvalidKind, tail.Kind)
	}
	t := dbc.DB(r.db)
	for _, ref := range []models.Ref{head, tail} {
		var n int64
		if err := t.Model(&models.Node{}).
			Where("id = ? AND kind = ?", ref.ID, ref.Kind).
			Count(&n).Error; err != nil {
			return nil, translate("create edge", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("create edge: node %s: %w", ref, ErrNotFound)
		}
	}

	if err := lockAppends(t); err != nil {
		return nil, translate("create edge", err)
	}
	var ordinal int64
	if err := t.Model(&models.Edge{}).
		Select("COALESCE(MAX(ordinal), 0) + 1").
		Scan(&ordinal).Error; err != nil {
		return nil, translate("create edge", err)
	}

	e := &models.Edge{
		HeadID:   head.ID,
		HeadKind: head.Kind,
		TailID:   tail.ID,
		TailKind: tail.Kind,
		Sequence: sequence,
		Ordinal:  ordinal,
	}
	if err := t.Create(e).Error; err != nil {
		return nil, translate("create edge", err)
	}
	r.log.Debug("Edge created", "id", e.ID, "head", head.ID, "tail", tail.ID)
	return e, nil
}

func (r *edgeRepo) Get(dbc dbctx.Context, id uuid.UUID) (*models.Edge, error) {
	var e models.Edge
	if err := dbc.DB(r.db).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, translate(fmt.Sprintf("get edge %s", id), err)
	}
	return &e, nil
}

// ChildrenOf returns the edges headed by deckID ordered by sequence with
// nulls last, then in insertion order.
func (r *edgeRepo) ChildrenOf(dbc dbctx.Context, deckID uuid.UUID) ([]*models.Edge, error) {
	var out []*models.Edge
	if err := dbc.DB(r.db).
		Where("head_id = ?", deckID).
		Order("CASE WHEN sequence IS NULL THEN 1 ELSE 0 END ASC").
		Order("sequence ASC").
		Order("ordinal ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, translate("children of deck", err)
	}
	return out, nil
}

// ParentsOf returns the edges whose tail is nodeID.
func (r *edgeRepo) ParentsOf(dbc dbctx.Context, nodeID uuid.UUID) ([]*models.Edge, error) {
	var out []*models.Edge
	if err := dbc.DB(r.db).
		Where("tail_id = ?", nodeID).
		Order("ordinal ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, translate("parents of node", err)
	}
	return out, nil
}

// NextSequence returns max(sequence)+1 under deckID, or 0 if none.
func (r *edgeRepo) NextSequence(dbc dbctx.Context, deckID uuid.UUID) (int, error) {
	t := dbc.DB(r.db)
	if err := lockAppends(t); err != nil {
		return 0, translate("next sequence", err)
	}
	var next int
	if err := t.
		Model(&models.Edge{}).
		Where("head_id = ?", deckID).
		Select("COALESCE(MAX(sequence), -1) + 1").
		Scan(&next).Error; err != nil {
		return 0, translate("next sequence", err)
	}
	return next, nil
}

func (r *edgeRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&models.Edge{})
	if res.Error != nil {
		return translate("delete edge", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete edge %s: %w", id, ErrNotFound)
	}
	return nil
}

// appendLockKey names the postgres advisory lock serializing edge appends.
const appendLockKey = 0x6465636b

// lockAppends serializes max+1 allocation of sequence and ordinal until the
// surrounding transaction ends. sqlite already has a single writer.
func lockAppends(t *gorm.DB) error {
	if t.Dialector.Name() != "postgres" {
		return nil
	}
	return t.Exec("SELECT pg_advisory_xact_lock(?)", appendLockKey).Error
}
