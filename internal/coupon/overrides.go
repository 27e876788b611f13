package coupon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// codePlaceholder is replaced with the coupon code in override templates.
const codePlaceholder = "%code%"

// messageOverrides replaces default messages per tag.
type messageOverrides struct {
	Messages map[Tag]string `yaml:"messages"`
}

// LoadMessageOverrides reads a YAML file of per-tag message templates:
//
//	messages:
//	  allowed: "Coupon %code% only applies to footwear."
//	  excluded_exact: "Gift cards cannot be discounted."
//
// Tags missing from the file keep the incoming message.
func LoadMessageOverrides(path string) (Formatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read message overrides %s: %w", path, err)
	}
	return ParseMessageOverrides(data)
}

// ParseMessageOverrides parses override templates from YAML.
func ParseMessageOverrides(data []byte) (Formatter, error) {
	var o messageOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse message overrides: %w", err)
	}

	for tag := range o.Messages {
		switch tag {
		case TagAllowed, TagExcluded, TagAllowedExact, TagExcludedExact:
		default:
			return nil, fmt.Errorf("unknown restriction tag in message overrides: %q", tag)
		}
	}

	return &o, nil
}

// Format implements Formatter.
func (o *messageOverrides) Format(message string, fc FailureContext) string {
	tmpl, ok := o.Messages[fc.Tag]
	if !ok || tmpl == "" {
		return message
	}
	code := ""
	if fc.Coupon != nil {
		code = fc.Coupon.Code
	}
	return strings.ReplaceAll(tmpl, codePlaceholder, code)
}
