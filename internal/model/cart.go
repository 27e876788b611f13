package model

// LineItem is a single cart or order line.
type LineItem struct {
	Key      string   `json:"key"`
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// Cart is the set of lines a shopper is checking out.
type Cart struct {
	Lines []LineItem `json:"lines"`
}

// DistinctProducts returns the cart's products in line order, each product
// appearing once.
func (c *Cart) DistinctProducts() []*Product {
	return DistinctProducts(c.Lines)
}

// DistinctProducts returns the products of lines in order, each product
// appearing once. Lines without a product are skipped.
func DistinctProducts(lines []LineItem) []*Product {
	seen := make(map[int64]struct{}, len(lines))
	products := make([]*Product, 0, len(lines))
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		if _, ok := seen[line.Product.ID]; ok {
			continue
		}
		seen[line.Product.ID] = struct{}{}
		products = append(products, line.Product)
	}
	return products
}
