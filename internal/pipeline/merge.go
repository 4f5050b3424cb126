// internal/pipeline/merge.go
package pipeline

import (
	"strings"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

// PlaceholderFunc reports whether a value is a placeholder that may be
// replaced by a real one.
type PlaceholderFunc func(string) bool

// Coalesce is the left-biased merge used by the joiner, the customer
// grouper and the sync merger: the current value wins unless it is a
// placeholder and the incoming value is not.
func Coalesce(current, incoming string, isPlaceholder PlaceholderFunc) string {
	if isPlaceholder(current) && !isPlaceholder(incoming) {
		return incoming
	}
	return current
}

// IsBlankOrZero treats empty strings and "0" as placeholders. POS
// exports write 0 into the identity column when the ID is unknown.
func IsBlankOrZero(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == "0"
}

// IsMissingIdentity additionally treats the "not found" sentinel as a
// placeholder, so a real identity is sticky once seen.
func IsMissingIdentity(v string) bool {
	return IsBlankOrZero(v) || strings.TrimSpace(v) == domain.IdentityNotFound
}
