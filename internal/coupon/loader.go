package coupon

import (
	"context"

	"github.com/rs/zerolog"
)

// RestrictionLoader builds a coupon's restriction bundle from the metadata
// store, expanding the with-children lists through the taxonomy.
type RestrictionLoader struct {
	store    MetadataStore
	taxonomy Taxonomy
	logger   zerolog.Logger
}

// NewRestrictionLoader creates a new restriction loader.
func NewRestrictionLoader(store MetadataStore, taxonomy Taxonomy, logger zerolog.Logger) *RestrictionLoader {
	return &RestrictionLoader{
		store:    store,
		taxonomy: taxonomy,
		logger:   logger.With().Str("component", "restriction-loader").Logger(),
	}
}

// Load reads the four restriction lists configured on a coupon and returns
// the expanded bundle, or nil when none of the lists is configured.
// Unreadable metadata counts as an empty list.
func (l *RestrictionLoader) Load(ctx context.Context, couponID int64) *Bundle {
	lists := make(map[MetaKey][]int64, len(MetaKeys))
	configured := false

	for _, key := range MetaKeys {
		ids, err := l.store.CategoryList(ctx, couponID, key)
		if err != nil {
			l.logger.Warn().
				Err(err).
				Int64("coupon_id", couponID).
				Str("meta_key", string(key)).
				Msg("unreadable category restriction, treating as empty")
			ids = nil
		}
		ids = dedupe(ids)
		if len(ids) > 0 {
			configured = true
		}
		lists[key] = ids
	}

	if !configured {
		return nil
	}

	b := &Bundle{
		Allowed:       lists[MetaAllowedWithChildren],
		Excluded:      lists[MetaExcludedWithChildren],
		AllowedExact:  lists[MetaAllowedExact],
		ExcludedExact: lists[MetaExcludedExact],
	}
	b.AllowedExpand = l.Expand(ctx, b.Allowed)
	b.ExcludedExpand = l.Expand(ctx, b.Excluded)
	b.AllowedExactSet = NewCategorySet(b.AllowedExact...)
	b.ExcludedExactSet = NewCategorySet(b.ExcludedExact...)

	l.logger.Debug().
		Int64("coupon_id", couponID).
		Int("allowed_expanded", b.AllowedExpand.Size()).
		Int("excluded_expanded", b.ExcludedExpand.Size()).
		Int("allowed_exact", b.AllowedExactSet.Size()).
		Int("excluded_exact", b.ExcludedExactSet.Size()).
		Msg("category restrictions loaded")

	return b
}

// Expand returns ids together with all of their descendants. A failed
// taxonomy lookup contributes only the id itself.
func (l *RestrictionLoader) Expand(ctx context.Context, ids []int64) CategorySet {
	expanded := make(CategorySet, len(ids))
	for _, id := range ids {
		if expanded.Contains(id) {
			// Already reached as a descendant of an earlier id.
			continue
		}
		expanded.Add(id)

		children, err := l.taxonomy.Descendants(ctx, id)
		if err != nil {
			l.logger.Warn().
				Err(err).
				Int64("category_id", id).
				Msg("failed to load category descendants")
			continue
		}
		expanded.Add(children...)
	}
	return expanded
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
