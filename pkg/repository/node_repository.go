package repository

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/internal/dbctx"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/models"
	"gorm.io/gorm"
)

type NodeRepository interface {
	Create(dbc dbctx.Context, kind models.Kind, name string) (*models.Node, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*models.Node, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*models.Node, error)
	List(dbc dbctx.Context, kind models.Kind) ([]*models.Node, error)
	Rename(dbc dbctx.Context, id uuid.UUID, name string) (*models.Node, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type nodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepository(db *gorm.DB, baseLog *logger.Logger) NodeRepository {
	return &nodeRepo{db: db, log: baseLog.With("repo", "NodeRepository")}
}

func (r *nodeRepo) Create(dbc dbctx.Context, kind models.Kind, name string) (*models.Node, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("create node: %w: %q", ErrInvalidKind, kind)
	}
	n := &models.Node{Kind: kind, Name: name}
	if err := dbc.DB(r.db).Create(n).Error; err != nil {
		return nil, translate("create node", err)
	}
	r.log.Debug("Node created", "id", n.ID, "kind", kind)
	return n, nil
}

func (r *nodeRepo) Get(dbc dbctx.Context, id uuid.UUID) (*models.Node, error) {
	var n models.Node
	if err := dbc.DB(r.db).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, translate(fmt.Sprintf("get node %s", id), err)
	}
	return &n, nil
}

// GetByIDs returns the nodes in the order of ids; missing ids are skipped.
func (r *nodeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*models.Node, error) {
	out := []*models.Node{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*models.Node
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate("get nodes", err)
	}
	byID := make(map[uuid.UUID]*models.Node, len(rows))
	for _, n := range rows {
		byID[n.ID] = n
	}
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// List returns nodes of one kind, or all nodes when kind is empty.
func (r *nodeRepo) List(dbc dbctx.Context, kind models.Kind) ([]*models.Node, error) {
	q := dbc.DB(r.db).Order("created_at ASC").Order("id ASC")
	if kind != "" {
		if !kind.Valid() {
			return nil, fmt.Errorf("list nodes: %w: %q", ErrInvalidKind, kind)
		}
		q = q.Where("kind = ?", kind)
	}
	var out []*models.Node
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list nodes", err)
	}
	return out, nil
}

func (r *nodeRepo) Rename(dbc dbctx.Context, id uuid.UUID, name string) (*models.Node, error) {
	t := dbc.DB(r.db)
	res := t.Model(&models.Node{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, translate("rename node", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("rename node %s: %w", id, ErrNotFound)
	}
	return r.Get(dbc, id)
}

// Delete removes a node that no edge references.
func (r *nodeRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.DB(r.db)
	var refs int64
	if err := t.Model(&models.Edge{}).
		Where("head_id = ? OR tail_id = ?", id, id).
		Count(&refs).Error; err != nil {
		return translate("delete node", err)
	}
	if refs > 0 {
		return fmt.Errorf("delete node %s: %w: still referenced by %d edges", id, ErrInvalidRelation, refs)
	}
	res := t.Where("id = ?", id).Delete(&models.Node{})
	if res.Error != nil {
		return translate("delete node", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete node %s: %w", id, ErrNotFound)
	}
	return nil
}
