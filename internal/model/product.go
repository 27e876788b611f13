package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue product. Variations carry the id of their
// parent product in ParentID.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	ParentID    int64           `json:"parentId,omitempty" db:"parent_id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CategoryIDs []int64         `json:"categoryIds" db:"category_ids"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// IsVariation reports whether the product is a variation of another product.
func (p *Product) IsVariation() bool {
	return p.ParentID != 0
}
