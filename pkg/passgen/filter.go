package passgen

import (
	"fmt"
	"strings"
	"unicode"
)

// Filter is a single post-generation predicate stage. Implementations return
// the subset of the input that passes, preserving order; they never add
// candidates.
type Filter interface {
	Filter(passwords []string) []string
}

// LengthFilter keeps candidates whose rune length is within an inclusive
// range.
type LengthFilter struct {
	min int
	max int
}

// NewLengthFilter creates a LengthFilter with inclusive bounds. Both bounds
// must be non-negative and min must not exceed max.
func NewLengthFilter(min, max int) (*LengthFilter, error) {
	if min < 0 {
		return nil, fmt.Errorf("min length cannot be negative, got %d: %w", min, ErrInvalidArgument)
	}
	if max < 0 {
		return nil, fmt.Errorf("max length cannot be negative, got %d: %w", max, ErrInvalidArgument)
	}
	if min > max {
		return nil, fmt.Errorf("min length %d exceeds max length %d: %w", min, max, ErrInvalidArgument)
	}
	return &LengthFilter{min: min, max: max}, nil
}

// Filter returns the candidates whose length is within the configured bounds.
func (f *LengthFilter) Filter(passwords []string) []string {
	out := make([]string, 0, len(passwords))
	for _, pwd := range passwords {
		n := len([]rune(pwd))
		if n >= f.min && n <= f.max {
			out = append(out, pwd)
		}
	}
	return out
}

// CharacterFilter keeps candidates that satisfy character composition
// requirements. The zero value accepts everything.
type CharacterFilter struct {
	RequireDigits    bool
	RequireUppercase bool
	RequireLowercase bool
	RequireSpecial   bool
	MustInclude      string // Every character listed must be present.
	MustNotInclude   string // No character listed may be present.
}

// Filter returns the candidates that meet every configured requirement.
func (f *CharacterFilter) Filter(passwords []string) []string {
	out := make([]string, 0, len(passwords))
	for _, pwd := range passwords {
		if f.accepts(pwd) {
			out = append(out, pwd)
		}
	}
	return out
}

func (f *CharacterFilter) accepts(password string) bool {
	var hasDigit, hasUpper, hasLower, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		default:
			if !unicode.IsLetter(r) {
				hasSpecial = true
			}
		}
	}

	if f.RequireDigits && !hasDigit {
		return false
	}
	if f.RequireUppercase && !hasUpper {
		return false
	}
	if f.RequireLowercase && !hasLower {
		return false
	}
	if f.RequireSpecial && !hasSpecial {
		return false
	}
	for _, r := range f.MustInclude {
		if !strings.ContainsRune(password, r) {
			return false
		}
	}
	for _, r := range f.MustNotInclude {
		if strings.ContainsRune(password, r) {
			return false
		}
	}
	return true
}

// FilterChain applies an ordered sequence of filters. A candidate survives
// only if every stage accepts it, so the survivor set of independent
// predicate stages does not depend on stage order.
type FilterChain struct {
	filters []Filter
}

// NewFilterChain returns an empty chain.
func NewFilterChain() *FilterChain {
	return &FilterChain{}
}

// Add appends a filter to the chain and returns the chain for call chaining.
func (c *FilterChain) Add(f Filter) *FilterChain {
	c.filters = append(c.filters, f)
	return c
}

// Apply runs every stage in order. Once no candidates remain the chain
// short-circuits, skipping remaining stages.
func (c *FilterChain) Apply(passwords []string) []string {
	result := passwords
	for _, f := range c.filters {
		result = f.Filter(result)
		if len(result) == 0 {
			break
		}
	}
	return result
}

// Clear removes every filter from the chain.
func (c *FilterChain) Clear() {
	c.filters = nil
}

// Len returns the number of filters in the chain.
func (c *FilterChain) Len() int {
	return len(c.filters)
}
