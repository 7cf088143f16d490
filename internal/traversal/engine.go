// Package traversal computes the closure of slides under a deck.
//
// The walk is an iterative depth-first search over the deck-to-deck
// subgraph. Every deck is in one of three states: unseen, on the current
// path, or finished. Meeting a deck that is on the current path means the
// containment graph has a cycle and the walk stops with ErrCycleDetected.
// Meeting a finished deck means two parents share it; its slides are
// already collected so it is not expanded again.
package traversal

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/internal/dbctx"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
)

// Stats describes the work done by one traversal.
type Stats struct {
	DecksExpanded int
	EdgesScanned  int
	MaxDepth      int
}

// Recorder receives the outcome of every closure walk.
type Recorder interface {
	ObserveTraversal(stats Stats, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTraversal(Stats, error) {}

type Engine struct {
	nodes    repository.NodeRepository
	edges    repository.EdgeRepository
	maxDepth int
	rec      Recorder
	log      *logger.Logger
}

type Option func(*Engine)

// WithMaxDepth bounds how many decks deep a walk may go. 0 disables the bound.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithRecorder reports per-walk stats, e.g. to prometheus.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) {
		if rec != nil {
			e.rec = rec
		}
	}
}

func New(nodes repository.NodeRepository, edges repository.EdgeRepository, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		nodes: nodes,
		edges: edges,
		rec:   nopRecorder{},
		log:   log.With("component", "TraversalEngine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

const (
	unseen = iota
	onPath
	finished
)

type frame struct {
	deckID   uuid.UUID
	children []*models.Edge
	next     int
}

// SlidesUnder returns the ids of every slide reachable from deckID, each
// once, in the order the walk first reaches them. Callers wanting a
// consistent view run it inside Database.ReadSnapshot.
func (e *Engine) SlidesUnder(dbc dbctx.Context, deckID uuid.UUID) ([]uuid.UUID, error) {
	var stats Stats
	out, err := e.slidesUnder(dbc, deckID, &stats)
	e.rec.ObserveTraversal(stats, err)
	if err != nil {
		return nil, err
	}
	e.log.Debug("Closure computed",
		"deck_id", deckID,
		"slides", len(out),
		"decks_expanded", stats.DecksExpanded,
		"edges_scanned", stats.EdgesScanned,
		"max_depth", stats.MaxDepth,
	)
	return out, nil
}

func (e *Engine) slidesUnder(dbc dbctx.Context, deckID uuid.UUID, stats *Stats) ([]uuid.UUID, error) {
	if err := e.requireDeck(dbc, deckID); err != nil {
		return nil, err
	}

	state := map[uuid.UUID]int{}
	seen := map[uuid.UUID]struct{}{}
	out := []uuid.UUID{}
	var stack []*frame

	push := func(id uuid.UUID) error {
		depth := len(stack)
		if e.maxDepth > 0 && depth > e.maxDepth {
			return fmt.Errorf("deck %s at depth %d: %w (max %d)", id, depth, repository.ErrDepthExceeded, e.maxDepth)
		}
		children, err := e.edges.ChildrenOf(dbc, id)
		if err != nil {
			return err
		}
		stats.DecksExpanded++
		stats.EdgesScanned += len(children)
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		state[id] = onPath
		stack = append(stack, &frame{deckID: id, children: children})
		return nil
	}

	if err := push(deckID); err != nil {
		return nil, err
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.children) {
			state[top.deckID] = finished
			stack = stack[:len(stack)-1]
			continue
		}
		edge := top.children[top.next]
		top.next++

		switch edge.TailKind {
		case models.KindSlide:
			if _, ok := seen[edge.TailID]; !ok {
				seen[edge.TailID] = struct{}{}
				out = append(out, edge.TailID)
			}
		case models.KindDeck:
			switch state[edge.TailID] {
			case onPath:
				return nil, fmt.Errorf("deck %s reached again from deck %s: %w", edge.TailID, top.deckID, repository.ErrCycleDetected)
			case finished:
				continue
			default:
				if err := push(edge.TailID); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("edge %s: %w: tail kind %q", edge.ID, repository.ErrInvalidKind, edge.TailKind)
		}
	}
	return out, nil
}

// ChildIDs returns the direct children of deckID, one level only, in
// sequence order.
func (e *Engine) ChildIDs(dbc dbctx.Context, deckID uuid.UUID) ([]models.Ref, error) {
	if err := e.requireDeck(dbc, deckID); err != nil {
		return nil, err
	}
	children, err := e.edges.ChildrenOf(dbc, deckID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Ref, 0, len(children))
	for _, edge := range children {
		out = append(out, edge.Tail())
	}
	return out, nil
}

func (e *Engine) requireDeck(dbc dbctx.Context, id uuid.UUID) error {
	n, err := e.nodes.Get(dbc, id)
	if err != nil {
		return err
	}
	if !n.IsDeck() {
		return fmt.Errorf("node %s: %w: slides have no children", id, repository.ErrInvalidRelation)
	}
	return nil
}
