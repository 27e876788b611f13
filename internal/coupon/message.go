package coupon

import (
	"category-coupons/internal/model"

	"github.com/rs/zerolog"
)

const (
	// HookErrorMessage names the extension point for message overrides.
	HookErrorMessage = "category_coupons_error_message"
	// HookLegacyErrorMessage is the superseded name of HookErrorMessage.
	HookLegacyErrorMessage = "category_children_error_message"
	// legacyHookDeprecatedSince is the release that renamed the hook.
	legacyHookDeprecatedSince = "1.3.0"
)

const (
	msgNotValidForCategories = "This coupon is not valid for the product categories in your cart."
	msgExcludedCategories    = "This coupon cannot be used with some product categories in your cart."
)

// DefaultMessage returns the built-in shopper-facing message for a tag.
func DefaultMessage(tag Tag) string {
	if tag.IsAllowType() {
		return msgNotValidForCategories
	}
	return msgExcludedCategories
}

// FailureContext is passed to formatters alongside the default message.
type FailureContext struct {
	Coupon        *model.Coupon
	Tag           Tag
	ConfiguredIDs []int64
	ExpandedIDs   []int64
}

// Formatter rewrites a failure message before it reaches the shopper.
type Formatter interface {
	Format(message string, fc FailureContext) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(message string, fc FailureContext) string

// Format calls f.
func (f FormatterFunc) Format(message string, fc FailureContext) string {
	return f(message, fc)
}

// ValidationError is returned when a cart fails a category restriction.
type ValidationError struct {
	Tag     Tag
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Messenger turns failures into shopper-facing messages, running them
// through the registered formatters.
type Messenger struct {
	formatters []Formatter
	legacy     []Formatter
	logger     zerolog.Logger
}

// NewMessenger creates a messenger with no formatters registered.
func NewMessenger(logger zerolog.Logger) *Messenger {
	return &Messenger{
		logger: logger.With().Str("component", "restriction-messenger").Logger(),
	}
}

// Use registers f against HookErrorMessage.
func (m *Messenger) Use(f Formatter) {
	m.formatters = append(m.formatters, f)
}

// UseLegacy registers f against HookLegacyErrorMessage. Legacy formatters
// run before current ones and log a deprecation warning each time they do.
func (m *Messenger) UseLegacy(f Formatter) {
	m.legacy = append(m.legacy, f)
}

// Context builds the formatter context for a failure.
func (m *Messenger) Context(c *model.Coupon, f *Failure) FailureContext {
	return FailureContext{
		Coupon:        c,
		Tag:           f.Tag,
		ConfiguredIDs: f.Bundle.Configured(f.Tag),
		ExpandedIDs:   f.Bundle.Expanded(f.Tag),
	}
}

// Message returns the final message for a failure.
func (m *Messenger) Message(c *model.Coupon, f *Failure) string {
	fc := m.Context(c, f)
	msg := DefaultMessage(f.Tag)

	if len(m.legacy) > 0 {
		m.logger.Warn().
			Str("hook", HookLegacyErrorMessage).
			Str("replacement", HookErrorMessage).
			Str("since", legacyHookDeprecatedSince).
			Msg("deprecated hook in use")
		for _, lf := range m.legacy {
			msg = lf.Format(msg, fc)
		}
	}

	for _, cf := range m.formatters {
		msg = cf.Format(msg, fc)
	}
	return msg
}

// Error wraps Message in a ValidationError.
func (m *Messenger) Error(c *model.Coupon, f *Failure) *ValidationError {
	return &ValidationError{Tag: f.Tag, Message: m.Message(c, f)}
}
