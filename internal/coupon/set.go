package coupon

import "sort"

// CategorySet is a set of category ids.
type CategorySet map[int64]struct{}

// NewCategorySet creates a set holding ids.
func NewCategorySet(ids ...int64) CategorySet {
	s := make(CategorySet, len(ids))
	s.Add(ids...)
	return s
}

// Add adds ids to the set.
func (s CategorySet) Add(ids ...int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Union adds every member of other to the set.
func (s CategorySet) Union(other CategorySet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Contains checks if id is in the set.
func (s CategorySet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Intersects reports whether the two sets share at least one id.
func (s CategorySet) Intersects(other CategorySet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for id := range small {
		if large.Contains(id) {
			return true
		}
	}
	return false
}

// Size returns the number of ids in the set.
func (s CategorySet) Size() int {
	return len(s)
}

// IDs returns the members in ascending order.
func (s CategorySet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
