package traversal

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/internal/dbctx"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
)

// Tree builds the nested view of deckID. A deck shared by several parents
// is expanded at its first occurrence (depth first, by sequence) and
// appears as a Shared reference everywhere else, so the view stays linear
// in the size of the graph.
func (e *Engine) Tree(dbc dbctx.Context, deckID uuid.UUID) (*models.TreeNode, error) {
	root, err := e.nodes.Get(dbc, deckID)
	if err != nil {
		return nil, err
	}
	if !root.IsDeck() {
		return nil, fmt.Errorf("node %s: %w: slides have no children", deckID, repository.ErrInvalidRelation)
	}
	t := &models.TreeNode{ID: root.ID, Kind: root.Kind, Name: root.Name}
	w := &treeWalk{path: map[uuid.UUID]bool{}, expanded: map[uuid.UUID]bool{}}
	if err := e.fill(dbc, w, t, 0); err != nil {
		return nil, err
	}
	return t, nil
}

// treeWalk tracks decks on the current path (cycle detection) and decks
// whose subtree has already been emitted.
type treeWalk struct {
	path     map[uuid.UUID]bool
	expanded map[uuid.UUID]bool
}

func (e *Engine) fill(dbc dbctx.Context, w *treeWalk, t *models.TreeNode, depth int) error {
	if e.maxDepth > 0 && depth > e.maxDepth {
		return fmt.Errorf("deck %s at depth %d: %w (max %d)", t.ID, depth, repository.ErrDepthExceeded, e.maxDepth)
	}
	w.path[t.ID] = true
	defer delete(w.path, t.ID)

	edges, err := e.edges.ChildrenOf(dbc, t.ID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.TailID)
	}
	nodes, err := e.nodes.GetByIDs(dbc, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*models.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	for _, edge := range edges {
		n, ok := byID[edge.TailID]
		if !ok {
			return fmt.Errorf("edge %s: tail %s: %w", edge.ID, edge.TailID, repository.ErrNotFound)
		}
		child := &models.TreeNode{ID: n.ID, Kind: n.Kind, Name: n.Name, Sequence: edge.Sequence}
		if n.IsDeck() {
			switch {
			case w.path[n.ID]:
				return fmt.Errorf("deck %s reached again from deck %s: %w", n.ID, t.ID, repository.ErrCycleDetected)
			case w.expanded[n.ID]:
				// a finished deck cannot reach the current path
				child.Shared = true
			default:
				if err := e.fill(dbc, w, child, depth+1); err != nil {
					return err
				}
			}
		}
		t.Children = append(t.Children, child)
	}
	w.expanded[t.ID] = true
	return nil
}
