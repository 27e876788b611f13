package model

// Category is a node in the product category forest. Root categories have
// ParentID 0.
type Category struct {
	ID       int64  `json:"id" db:"id"`
	ParentID int64  `json:"parentId,omitempty" db:"parent_id"`
	Name     string `json:"name" db:"name"`
	Slug     string `json:"slug" db:"slug"`
}
