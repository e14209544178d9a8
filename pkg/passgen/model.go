package passgen

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"unicode"
)

const (
	// MinOrder is the smallest supported n-gram order.
	MinOrder = 2
	// MaxOrder is the largest supported n-gram order.
	MaxOrder = 5
)

// Model is a character-level n-gram frequency table. It maps each length-n
// prefix (measured in runes) to the characters observed to follow it and how
// often each followed. A Model is built once from a corpus and is read-only
// during generation; it is not safe for concurrent mutation.
type Model struct {
	chains map[string]map[string]int
	order  int

	// Derived lookup tables, rebuilt lazily and dropped on any mutation so
	// generation can draw from stable, sorted views of the map.
	keys      []string
	alphabet  []string
	nextCache map[string][]string
}

// NewModel returns an empty, untrained model. Call Build or Import before
// using it for generation or scoring.
func NewModel() *Model {
	return &Model{chains: make(map[string]map[string]int)}
}

// Build constructs the model from corpus text using n-gram prefixes of the
// given order. Any previous contents are discarded. The order must be within
// [MinOrder, MaxOrder] and the text must contain at least n runes.
func (m *Model) Build(text string, n int) error {
	if n < MinOrder || n > MaxOrder {
		return fmt.Errorf("order must be between %d and %d, got %d: %w", MinOrder, MaxOrder, n, ErrInvalidArgument)
	}
	if text == "" {
		return fmt.Errorf("corpus text is empty: %w", ErrInvalidArgument)
	}
	runes := []rune(text)
	if len(runes) < n {
		return fmt.Errorf("corpus length %d is shorter than order %d: %w", len(runes), n, ErrInvalidArgument)
	}

	m.chains = make(map[string]map[string]int)
	m.order = n
	m.invalidate()
	m.ingest(runes)
	return nil
}

// Add merges additional corpus text into an already-built model using the
// model's own order. It fails with ErrNotInitialized if Build has not been
// called yet.
func (m *Model) Add(text string) error {
	if m.order == 0 {
		return fmt.Errorf("call Build before Add: %w", ErrNotInitialized)
	}
	m.invalidate()
	m.ingest([]rune(text))
	return nil
}

// ingest slides a window of width order across the runes and increments the
// observed transition counts.
func (m *Model) ingest(runes []rune) {
	n := m.order
	for i := 0; i+n < len(runes); i++ {
		prefix := string(runes[i : i+n])
		next := string(runes[i+n])

		inner, ok := m.chains[prefix]
		if !ok {
			inner = make(map[string]int)
			m.chains[prefix] = inner
		}
		inner[next]++
	}
}

// Probabilities returns the next-character distribution for a prefix with
// the counts normalized to sum to 1.0. It returns nil if the prefix is not
// a key of the model.
func (m *Model) Probabilities(prefix string) map[string]float64 {
	inner, ok := m.chains[prefix]
	if !ok {
		return nil
	}
	total := 0
	for _, count := range inner {
		total += count
	}
	probs := make(map[string]float64, len(inner))
	for char, count := range inner {
		probs[char] = float64(count) / float64(total)
	}
	return probs
}

// Order returns the n-gram order the model was built with, or 0 if the
// model has not been built.
func (m *Model) Order() int {
	return m.order
}

// Len returns the number of distinct prefixes in the model.
func (m *Model) Len() int {
	return len(m.chains)
}

// Keys returns every prefix in the model in sorted order. The slice is
// shared and must not be modified by the caller.
func (m *Model) Keys() []string {
	if m.keys == nil {
		m.keys = make([]string, 0, len(m.chains))
		for prefix := range m.chains {
			m.keys = append(m.keys, prefix)
		}
		sort.Strings(m.keys)
	}
	return m.keys
}

// Alphabet returns every character the model can emit (the union of all
// next-character sets) as sorted single-rune strings. The slice is shared
// and must not be modified by the caller.
func (m *Model) Alphabet() []string {
	if m.alphabet == nil {
		seen := make(map[string]struct{})
		for _, inner := range m.chains {
			for char := range inner {
				seen[char] = struct{}{}
			}
		}
		m.alphabet = make([]string, 0, len(seen))
		for char := range seen {
			m.alphabet = append(m.alphabet, char)
		}
		sort.Strings(m.alphabet)
	}
	return m.alphabet
}

// nonSpaceAlphabet returns the emitted characters that are not whitespace,
// in the same sorted order as Alphabet.
func (m *Model) nonSpaceAlphabet() []string {
	full := m.Alphabet()
	out := make([]string, 0, len(full))
	for _, char := range full {
		if !unicode.IsSpace([]rune(char)[0]) {
			out = append(out, char)
		}
	}
	return out
}

// Prune removes every transition whose count is below minCount, then drops
// prefixes that no longer have any transitions. This shrinks a model trained
// on noisy corpora at the cost of rare transitions.
func (m *Model) Prune(minCount int) {
	for prefix, inner := range m.chains {
		for char, count := range inner {
			if count < minCount {
				delete(inner, char)
			}
		}
		if len(inner) == 0 {
			delete(m.chains, prefix)
		}
	}
	m.invalidate()
}

// ModelStats holds aggregated statistics for a model.
type ModelStats struct {
	Prefixes       int // The number of distinct prefixes.
	AlphabetSize   int // The number of distinct characters the model can emit.
	Transitions    int // The number of distinct prefix->character links.
	TotalFrequency int // The sum of all transition counts.
}

// Stats returns a snapshot of aggregate statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		Prefixes:     len(m.chains),
		AlphabetSize: len(m.Alphabet()),
	}
	for _, inner := range m.chains {
		stats.Transitions += len(inner)
		for _, count := range inner {
			stats.TotalFrequency += count
		}
	}
	return stats
}

// Transition is one prefix-to-character link with its observed count, as
// reported by TopTransitions.
type Transition struct {
	Prefix string
	Char   string
	Count  int
}

// TopTransitions returns the limit most frequent transitions, ordered by
// descending count with ties broken by prefix then character so the result
// is deterministic.
func (m *Model) TopTransitions(limit int) []Transition {
	if limit < 1 {
		return nil
	}
	var all []Transition
	for prefix, inner := range m.chains {
		for char, count := range inner {
			all = append(all, Transition{Prefix: prefix, Char: char, Count: count})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		if all[i].Prefix != all[j].Prefix {
			return all[i].Prefix < all[j].Prefix
		}
		return all[i].Char < all[j].Char
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Export serializes the model as a flat JSON mapping of prefix to
// next-character counts and writes it to w. The format round-trips exactly
// through Import.
func (m *Model) Export(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m.chains); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// Import replaces the model's contents with a flat JSON mapping read from r,
// deriving the order from the keys. Every key must have the same rune length
// within [MinOrder, MaxOrder], carry at least one transition, and every
// count must be positive.
func (m *Model) Import(r io.Reader) error {
	var chains map[string]map[string]int
	if err := json.NewDecoder(r).Decode(&chains); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}

	order := 0
	for prefix, inner := range chains {
		n := len([]rune(prefix))
		if order == 0 {
			if n < MinOrder || n > MaxOrder {
				return fmt.Errorf("prefix %q has unsupported length %d: %w", prefix, n, ErrInvalidArgument)
			}
			order = n
		} else if n != order {
			return fmt.Errorf("prefix %q has length %d, expected %d: %w", prefix, n, order, ErrInvalidArgument)
		}
		if len(inner) == 0 {
			return fmt.Errorf("prefix %q has no transitions: %w", prefix, ErrInvalidArgument)
		}
		for char, count := range inner {
			if len([]rune(char)) != 1 {
				return fmt.Errorf("transition %q under prefix %q is not a single character: %w", char, prefix, ErrInvalidArgument)
			}
			if count < 1 {
				return fmt.Errorf("transition %q under prefix %q has count %d: %w", char, prefix, count, ErrInvalidArgument)
			}
		}
	}

	if chains == nil {
		chains = make(map[string]map[string]int)
	}
	m.chains = chains
	m.order = order
	m.invalidate()
	return nil
}

// sortedNext returns the next-characters of a prefix in sorted order,
// cached per prefix so repeated weighted draws do not re-sort.
func (m *Model) sortedNext(prefix string, inner map[string]int) []string {
	if chars, ok := m.nextCache[prefix]; ok {
		return chars
	}
	chars := make([]string, 0, len(inner))
	for char := range inner {
		chars = append(chars, char)
	}
	sort.Strings(chars)
	if m.nextCache == nil {
		m.nextCache = make(map[string][]string)
	}
	m.nextCache[prefix] = chars
	return chars
}

// invalidate drops the cached derived views after any mutation.
func (m *Model) invalidate() {
	m.keys = nil
	m.alphabet = nil
	m.nextCache = nil
}
