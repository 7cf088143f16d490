// Package deck is the composition layer over the node and edge stores and
// the traversal engine. Every mutation runs in one write transaction and
// every query in one read-only snapshot.
package deck

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/internal/dbctx"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/internal/traversal"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
	"gorm.io/gorm"
)

// ClosureCache stores slide closures keyed by a generation that every
// mutation bumps.
type ClosureCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, deckID uuid.UUID) ([]uuid.UUID, bool, error)
	Put(ctx context.Context, gen int64, deckID uuid.UUID, ids []uuid.UUID) error
	Invalidate(ctx context.Context) error
}

// CacheObserver is told about cache hits and misses.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// Backend is the composition surface shared by the local Service and the
// HTTP client, so commands and tools work against either.
type Backend interface {
	CreateNode(ctx context.Context, kind models.Kind, name string) (*models.Node, error)
	GetNode(ctx context.Context, id uuid.UUID) (*models.Node, error)
	ListNodes(ctx context.Context, kind models.Kind) ([]*models.Node, error)
	RenameNode(ctx context.Context, id uuid.UUID, name string) (*models.Node, error)
	DeleteNode(ctx context.Context, id uuid.UUID) error
	AddChild(ctx context.Context, parentID, childID uuid.UUID) (*models.Edge, error)
	RemoveEdge(ctx context.Context, edgeID uuid.UUID) error
	DirectChildren(ctx context.Context, deckID uuid.UUID) ([]*models.Node, error)
	AllSlides(ctx context.Context, deckID uuid.UUID) ([]*models.Node, error)
	Parents(ctx context.Context, nodeID uuid.UUID) ([]*models.Node, error)
	Tree(ctx context.Context, deckID uuid.UUID) (*models.TreeNode, error)
}

var _ Backend = (*Service)(nil)

type Service struct {
	db         *repository.Database
	nodes      repository.NodeRepository
	edges      repository.EdgeRepository
	engine     *traversal.Engine
	engineOpts []traversal.Option
	cache      ClosureCache
	observer   CacheObserver
	log        *logger.Logger
}

type Option func(*Service)

// WithCache enables the closure cache. obs may be nil.
func WithCache(c ClosureCache, obs CacheObserver) Option {
	return func(s *Service) {
		s.cache = c
		s.observer = obs
	}
}

// WithTraversalOptions forwards options to the traversal engine.
func WithTraversalOptions(opts ...traversal.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

func NewService(db *repository.Database, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		db:    db,
		nodes: repository.NewNodeRepository(db.DB, log),
		edges: repository.NewEdgeRepository(db.DB, log),
		log:   log.With("service", "DeckService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = traversal.New(s.nodes, s.edges, log, s.engineOpts...)
	return s
}

func (s *Service) read(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return s.db.ReadSnapshot(ctx, func(tx *gorm.DB) error {
		return fn(dbctx.New(ctx).WithTx(tx))
	})
}

// write runs fn in a transaction. When the graph changes, the cache
// generation is bumped before commit, so a failed bump aborts the write,
// and once more after commit so no reader caches the pre-commit state
// under the new generation.
func (s *Service) write(ctx context.Context, graphChange bool, fn func(dbc dbctx.Context) error) error {
	err := s.db.Write(ctx, func(tx *gorm.DB) error {
		if err := fn(dbctx.New(ctx).WithTx(tx)); err != nil {
			return err
		}
		if graphChange && s.cache != nil {
			return s.cache.Invalidate(ctx)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if graphChange && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("Post-commit cache invalidation failed", "error", err)
		}
	}
	return nil
}

// CreateNode persists a new slide or deck.
func (s *Service) CreateNode(ctx context.Context, kind models.Kind, name string) (*models.Node, error) {
	var out *models.Node
	err := s.write(ctx, false, func(dbc dbctx.Context) error {
		n, err := s.nodes.Create(dbc, kind, name)
		out = n
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CreateDeck(ctx context.Context, name string) (*models.Node, error) {
	return s.CreateNode(ctx, models.KindDeck, name)
}

func (s *Service) CreateSlide(ctx context.Context, name string) (*models.Node, error) {
	return s.CreateNode(ctx, models.KindSlide, name)
}

func (s *Service) GetNode(ctx context.Context, id uuid.UUID) (*models.Node, error) {
	return s.nodes.Get(dbctx.New(ctx), id)
}

// ListNodes lists nodes of one kind, or all when kind is empty.
func (s *Service) ListNodes(ctx context.Context, kind models.Kind) ([]*models.Node, error) {
	return s.nodes.List(dbctx.New(ctx), kind)
}

// RenameNode changes a node's name. Traversal never reads names, so the
// cache is left alone.
func (s *Service) RenameNode(ctx context.Context, id uuid.UUID, name string) (*models.Node, error) {
	var out *models.Node
	err := s.write(ctx, false, func(dbc dbctx.Context) error {
		n, err := s.nodes.Rename(dbc, id, name)
		out = n
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteNode removes a node no edge references.
func (s *Service) DeleteNode(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, true, func(dbc dbctx.Context) error {
		return s.nodes.Delete(dbc, id)
	})
}

// AddChild appends child under parent with the next sequence number.
// It either fully succeeds or leaves the store unchanged.
func (s *Service) AddChild(ctx context.Context, parentID, childID uuid.UUID) (*models.Edge, error) {
	var out *models.Edge
	err := s.write(ctx, true, func(dbc dbctx.Context) error {
		parent, err := s.nodes.Get(dbc, parentID)
		if err != nil {
			return err
		}
		if !parent.IsDeck() {
			return fmt.Errorf("add child to %s: %w: only decks contain children", parentID, repository.ErrInvalidRelation)
		}
		child, err := s.nodes.Get(dbc, childID)
		if err != nil {
			return err
		}
		seq, err := s.edges.NextSequence(dbc, parent.ID)
		if err != nil {
			return err
		}
		out, err = s.edges.Create(dbc, parent.Ref(), child.Ref(), &seq)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Child added", "deck_id", parentID, "child_id", childID, "sequence", *out.Sequence)
	return out, nil
}

// RemoveEdge deletes one containment edge.
func (s *Service) RemoveEdge(ctx context.Context, edgeID uuid.UUID) error {
	return s.write(ctx, true, func(dbc dbctx.Context) error {
		return s.edges.Delete(dbc, edgeID)
	})
}

// DirectChildren returns the immediate children of deckID in sequence order.
func (s *Service) DirectChildren(ctx context.Context, deckID uuid.UUID) ([]*models.Node, error) {
	var out []*models.Node
	err := s.read(ctx, func(dbc dbctx.Context) error {
		refs, err := s.engine.ChildIDs(dbc, deckID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(refs))
		for _, r := range refs {
			ids = append(ids, r.ID)
		}
		out, err = s.nodes.GetByIDs(dbc, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChildEdges returns the edges headed by deckID in sequence order.
func (s *Service) ChildEdges(ctx context.Context, deckID uuid.UUID) ([]*models.Edge, error) {
	var out []*models.Edge
	err := s.read(ctx, func(dbc dbctx.Context) error {
		if _, err := s.engine.ChildIDs(dbc, deckID); err != nil {
			return err
		}
		var err error
		out, err = s.edges.ChildrenOf(dbc, deckID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AllSlides returns every slide reachable from deckID, each once.
func (s *Service) AllSlides(ctx context.Context, deckID uuid.UUID) ([]*models.Node, error) {
	gen, ids, cached := s.lookup(ctx, deckID)

	var out []*models.Node
	err := s.read(ctx, func(dbc dbctx.Context) error {
		if !cached {
			var err error
			if ids, err = s.engine.SlidesUnder(dbc, deckID); err != nil {
				return err
			}
		}
		var err error
		out, err = s.nodes.GetByIDs(dbc, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil && !cached && gen >= 0 {
		if err := s.cache.Put(ctx, gen, deckID, ids); err != nil {
			s.log.Warn("Closure cache write failed", "deck_id", deckID, "error", err)
		}
	}
	return out, nil
}

// lookup consults the cache. gen is -1 when the cache is off or unreachable.
func (s *Service) lookup(ctx context.Context, deckID uuid.UUID) (int64, []uuid.UUID, bool) {
	if s.cache == nil {
		return -1, nil, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("Closure cache unavailable", "error", err)
		return -1, nil, false
	}
	ids, hit, err := s.cache.Get(ctx, gen, deckID)
	if err != nil {
		s.log.Warn("Closure cache read failed", "deck_id", deckID, "error", err)
		return gen, nil, false
	}
	if s.observer != nil {
		if hit {
			s.observer.CacheHit()
		} else {
			s.observer.CacheMiss()
		}
	}
	return gen, ids, hit
}

// Parents returns the decks that directly contain nodeID.
func (s *Service) Parents(ctx context.Context, nodeID uuid.UUID) ([]*models.Node, error) {
	var out []*models.Node
	err := s.read(ctx, func(dbc dbctx.Context) error {
		if _, err := s.nodes.Get(dbc, nodeID); err != nil {
			return err
		}
		edges, err := s.edges.ParentsOf(dbc, nodeID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(edges))
		for _, e := range edges {
			ids = append(ids, e.HeadID)
		}
		out, err = s.nodes.GetByIDs(dbc, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Tree returns the nested view of deckID.
func (s *Service) Tree(ctx context.Context, deckID uuid.UUID) (*models.TreeNode, error) {
	var out *models.TreeNode
	err := s.read(ctx, func(dbc dbctx.Context) error {
		var err error
		out, err = s.engine.Tree(dbc, deckID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reset clears every node and edge.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.db.Reset(ctx); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			return fmt.Errorf("reset: invalidate cache: %w", err)
		}
	}
	return nil
}
