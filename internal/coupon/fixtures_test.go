package coupon

import (
	"context"
	"errors"
	"fmt"

	"category-coupons/internal/model"
)

// memoryStore is an in-memory MetadataStore keyed by coupon and meta key.
type memoryStore struct {
	lists map[int64]map[MetaKey][]int64
	errs  map[MetaKey]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		lists: make(map[int64]map[MetaKey][]int64),
		errs:  make(map[MetaKey]error),
	}
}

func (s *memoryStore) set(couponID int64, key MetaKey, ids ...int64) *memoryStore {
	if s.lists[couponID] == nil {
		s.lists[couponID] = make(map[MetaKey][]int64)
	}
	s.lists[couponID][key] = ids
	return s
}

func (s *memoryStore) CategoryList(ctx context.Context, couponID int64, key MetaKey) ([]int64, error) {
	if err := s.errs[key]; err != nil {
		return nil, err
	}
	return s.lists[couponID][key], nil
}

// memoryTaxonomy is a parent map based Taxonomy.
type memoryTaxonomy struct {
	parents map[int64]int64
	fail    map[int64]bool
	calls   int
}

func (t *memoryTaxonomy) Descendants(ctx context.Context, categoryID int64) ([]int64, error) {
	t.calls++
	if t.fail[categoryID] {
		return nil, errors.New("taxonomy unavailable")
	}
	var out []int64
	frontier := []int64{categoryID}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for child, parent := range t.parents {
			if parent == current {
				out = append(out, child)
				frontier = append(frontier, child)
			}
		}
	}
	return out, nil
}

// shoeTree is Shoes(1) -> Sneakers(2) -> Running(3), with Boots(4) under
// Shoes and an unrelated root Hats(10) -> Caps(11).
func shoeTree() *memoryTaxonomy {
	return &memoryTaxonomy{
		parents: map[int64]int64{
			2:  1,
			3:  2,
			4:  1,
			11: 10,
		},
		fail: map[int64]bool{},
	}
}

// productResolver serves category ids of parent products.
type productResolver map[int64][]int64

func (r productResolver) CategoryIDs(ctx context.Context, productID int64) ([]int64, error) {
	ids, ok := r[productID]
	if !ok {
		return nil, errors.New("product not found")
	}
	return ids, nil
}

func product(id int64, categories ...int64) *model.Product {
	return &model.Product{ID: id, CategoryIDs: categories}
}

func line(p *model.Product) model.LineItem {
	return model.LineItem{Key: fmt.Sprintf("line-%d", p.ID), Product: p, Quantity: 1}
}
