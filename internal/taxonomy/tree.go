// Package taxonomy holds an in-memory category forest built from a snapshot
// export. It serves descendant lookups without a database round trip.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"category-coupons/internal/model"
)

// ErrUnknownCategory is returned for ids missing from the snapshot.
var ErrUnknownCategory = errors.New("unknown category")

// Tree is an immutable category forest.
type Tree struct {
	categories map[int64]model.Category
	children   map[int64][]int64
}

// NewTree builds a forest from cats. A parent id that is missing from cats
// makes its child a root.
func NewTree(cats []model.Category) *Tree {
	t := &Tree{
		categories: make(map[int64]model.Category, len(cats)),
		children:   make(map[int64][]int64),
	}
	for _, c := range cats {
		t.categories[c.ID] = c
	}
	for _, c := range t.categories {
		if c.ParentID == 0 || c.ParentID == c.ID {
			continue
		}
		t.children[c.ParentID] = append(t.children[c.ParentID], c.ID)
	}
	for id := range t.children {
		sort.Slice(t.children[id], func(i, j int) bool { return t.children[id][i] < t.children[id][j] })
	}
	return t
}

// Size returns the number of categories in the tree.
func (t *Tree) Size() int {
	return len(t.categories)
}

// Get returns the category with the given id.
func (t *Tree) Get(id int64) (model.Category, bool) {
	c, ok := t.categories[id]
	return c, ok
}

// Descendants returns every transitive child of categoryID, excluding
// categoryID itself. Cycles in the parent links are walked once.
func (t *Tree) Descendants(ctx context.Context, categoryID int64) ([]int64, error) {
	if _, ok := t.categories[categoryID]; !ok {
		return nil, fmt.Errorf("category %d: %w", categoryID, ErrUnknownCategory)
	}

	seen := map[int64]struct{}{categoryID: {}}
	var out []int64
	queue := append([]int64(nil), t.children[categoryID]...)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := queue[0]
		queue = queue[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		queue = append(queue, t.children[id]...)
	}
	return out, nil
}
