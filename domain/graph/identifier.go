package graph

import (
	"fmt"
	"regexp"
)

// MaxIdentifierLength bounds label, relationship type and property key names.
const MaxIdentifierLength = 64

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s is a safe label, type or key name
func IsIdentifier(s string) bool {
	return len(s) <= MaxIdentifierLength && identifierPattern.MatchString(s)
}

// ValidateIdentifier returns an error naming the offending value
func ValidateIdentifier(kind, s string) error {
	if !IsIdentifier(s) {
		return fmt.Errorf("invalid %s %q: %w", kind, s, ErrInvalidIdentifier)
	}
	return nil
}

// ValidateLabels checks every label and drops duplicates, preserving order.
func ValidateLabels(labels []string) ([]string, error) {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if err := ValidateIdentifier("label", l); err != nil {
			return nil, err
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}

// QuoteIdentifier backtick-quotes an identifier that already passed validation.
func QuoteIdentifier(s string) string {
	return "`" + s + "`"
}
