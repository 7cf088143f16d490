package models

import "github.com/google/uuid"

// TreeNode is a nested view of a deck and everything under it. Shared
// marks a deck already expanded earlier in the same tree; its children are
// listed at that first occurrence only.
type TreeNode struct {
	ID       uuid.UUID   `json:"id" yaml:"id"`
	Kind     Kind        `json:"kind" yaml:"kind"`
	Name     string      `json:"name" yaml:"name"`
	Sequence *int        `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Shared   bool        `json:"shared,omitempty" yaml:"shared,omitempty"`
	Children []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// CountSlides returns the number of distinct slides in the tree.
func (t *TreeNode) CountSlides() int {
	seen := make(map[uuid.UUID]struct{})
	var walk func(n *TreeNode)
	walk = func(n *TreeNode) {
		if n.Kind == KindSlide {
			seen[n.ID] = struct{}{}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t)
	return len(seen)
}
