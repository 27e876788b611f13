package coupon

// Tag classifies which restriction check rejected a cart or product.
type Tag string

const (
	TagAllowed       Tag = "allowed"
	TagExcluded      Tag = "excluded"
	TagAllowedExact  Tag = "allowed_exact"
	TagExcludedExact Tag = "excluded_exact"
)

// IsAllowType reports whether the tag comes from an allow-list check.
func (t Tag) IsAllowType() bool {
	return t == TagAllowed || t == TagAllowedExact
}

// Bundle is the normalised restriction configuration of one coupon. The
// configured lists keep the operator's order; the sets are what evaluation
// runs against. A nil *Bundle means no restriction is configured.
type Bundle struct {
	Allowed       []int64
	Excluded      []int64
	AllowedExact  []int64
	ExcludedExact []int64

	AllowedExpand    CategorySet
	ExcludedExpand   CategorySet
	AllowedExactSet  CategorySet
	ExcludedExactSet CategorySet
}

// Configured returns the operator-configured ids behind a tag.
func (b *Bundle) Configured(tag Tag) []int64 {
	if b == nil {
		return nil
	}
	switch tag {
	case TagAllowed:
		return b.Allowed
	case TagExcluded:
		return b.Excluded
	case TagAllowedExact:
		return b.AllowedExact
	case TagExcludedExact:
		return b.ExcludedExact
	}
	return nil
}

// Expanded returns the ids a tag's check was evaluated against. Exact lists
// are not expanded, so they return their configured ids.
func (b *Bundle) Expanded(tag Tag) []int64 {
	if b == nil {
		return nil
	}
	switch tag {
	case TagAllowed:
		return b.AllowedExpand.IDs()
	case TagExcluded:
		return b.ExcludedExpand.IDs()
	case TagAllowedExact:
		return b.AllowedExact
	case TagExcludedExact:
		return b.ExcludedExact
	}
	return nil
}
