package coupon

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"category-coupons/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFailure(tag Tag) *Failure {
	return &Failure{
		Tag: tag,
		Bundle: &Bundle{
			Allowed:          []int64{1},
			Excluded:         []int64{2},
			AllowedExact:     []int64{4},
			ExcludedExact:    []int64{11},
			AllowedExpand:    NewCategorySet(1, 2, 3, 4),
			ExcludedExpand:   NewCategorySet(2, 3),
			AllowedExactSet:  NewCategorySet(4),
			ExcludedExactSet: NewCategorySet(11),
		},
	}
}

func TestDefaultMessage(t *testing.T) {
	tests := []struct {
		tag      Tag
		expected string
	}{
		{TagAllowed, "This coupon is not valid for the product categories in your cart."},
		{TagAllowedExact, "This coupon is not valid for the product categories in your cart."},
		{TagExcluded, "This coupon cannot be used with some product categories in your cart."},
		{TagExcludedExact, "This coupon cannot be used with some product categories in your cart."},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultMessage(tt.tag))
		})
	}
}

func TestMessenger_Context(t *testing.T) {
	m := NewMessenger(zerolog.Nop())
	c := &model.Coupon{ID: 42, Code: "SHOES10"}

	tests := []struct {
		tag        Tag
		configured []int64
		expanded   []int64
	}{
		{TagAllowed, []int64{1}, []int64{1, 2, 3, 4}},
		{TagExcluded, []int64{2}, []int64{2, 3}},
		{TagAllowedExact, []int64{4}, []int64{4}},
		{TagExcludedExact, []int64{11}, []int64{11}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			fc := m.Context(c, testFailure(tt.tag))
			assert.Same(t, c, fc.Coupon)
			assert.Equal(t, tt.tag, fc.Tag)
			assert.Equal(t, tt.configured, fc.ConfiguredIDs)
			assert.Equal(t, tt.expanded, fc.ExpandedIDs)
		})
	}
}

func TestMessenger_Message_NoFormatters(t *testing.T) {
	m := NewMessenger(zerolog.Nop())

	msg := m.Message(&model.Coupon{Code: "SHOES10"}, testFailure(TagExcluded))

	assert.Equal(t, DefaultMessage(TagExcluded), msg)
}

func TestMessenger_Message_FormattersChainInOrder(t *testing.T) {
	m := NewMessenger(zerolog.Nop())
	m.Use(FormatterFunc(func(message string, fc FailureContext) string {
		return message + " [" + fc.Coupon.Code + "]"
	}))
	m.Use(FormatterFunc(func(message string, fc FailureContext) string {
		return strings.ToUpper(message)
	}))

	msg := m.Message(&model.Coupon{Code: "shoes10"}, testFailure(TagAllowed))

	assert.Equal(t, "THIS COUPON IS NOT VALID FOR THE PRODUCT CATEGORIES IN YOUR CART. [SHOES10]", msg)
}

func TestMessenger_Message_LegacyFormatterChainsIntoCurrent(t *testing.T) {
	var buf bytes.Buffer
	m := NewMessenger(zerolog.New(&buf))

	var seenByCurrent string
	m.UseLegacy(FormatterFunc(func(message string, fc FailureContext) string {
		return "legacy: " + message
	}))
	m.Use(FormatterFunc(func(message string, fc FailureContext) string {
		seenByCurrent = message
		return message
	}))

	msg := m.Message(&model.Coupon{Code: "SHOES10"}, testFailure(TagAllowedExact))

	assert.Equal(t, "legacy: "+DefaultMessage(TagAllowedExact), msg)
	assert.Equal(t, msg, seenByCurrent)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, HookLegacyErrorMessage, entry["hook"])
	assert.Equal(t, HookErrorMessage, entry["replacement"])
	assert.Equal(t, "1.3.0", entry["since"])
}

func TestMessenger_Message_NoDeprecationWithoutLegacy(t *testing.T) {
	var buf bytes.Buffer
	m := NewMessenger(zerolog.New(&buf))
	m.Use(FormatterFunc(func(message string, fc FailureContext) string { return message }))

	m.Message(&model.Coupon{}, testFailure(TagAllowed))

	assert.Empty(t, buf.String())
}

func TestMessenger_Error(t *testing.T) {
	m := NewMessenger(zerolog.Nop())

	err := m.Error(&model.Coupon{Code: "SHOES10"}, testFailure(TagExcludedExact))

	require.NotNil(t, err)
	assert.Equal(t, TagExcludedExact, err.Tag)
	assert.EqualError(t, err, DefaultMessage(TagExcludedExact))
}
