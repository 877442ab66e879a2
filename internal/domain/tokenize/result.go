// Package tokenize contains domain types for tokenization results.
package tokenize

import "math"

// Result is the outcome of tokenizing one text with one provider.
// TokenStrings and TokenIDs are parallel sequences; TokenCount always
// equals len(TokenIDs) after normalization.
type Result struct {
	TokenStrings []string
	TokenIDs     []int
	TokenCount   int
}

// NewResult builds a Result from parallel token slices, deriving the count
// from the id sequence.
func NewResult(tokens []string, ids []int) *Result {
	return &Result{
		TokenStrings: tokens,
		TokenIDs:     ids,
		TokenCount:   len(ids),
	}
}

// ResultFromRaw builds a Result from parallel token slices and a raw count
// value as decoded from a backend payload. A missing count (nil) derives
// from the id length; a non-integer numeric count (a float 2.0 from a JSON
// payload) coerces to its integer value. Any other type falls back to the
// id length.
func ResultFromRaw(tokens []string, ids []int, rawCount interface{}) *Result {
	r := &Result{
		TokenStrings: tokens,
		TokenIDs:     ids,
	}
	r.TokenCount = normalizeCount(rawCount, len(ids))
	return r
}

// normalizeCount coerces a backend-supplied count to an int, falling back
// to the id-sequence length when the value is absent or unusable.
func normalizeCount(raw interface{}, idLen int) int {
	switch v := raw.(type) {
	case nil:
		return idLen
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return idLen
		}
		return int(v)
	case float32:
		return int(v)
	default:
		return idLen
	}
}
