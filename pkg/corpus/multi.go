package corpus

import (
	"fmt"
	"strings"
)

// MultiCorpus manages multiple named corpus sources with relative weights.
// Merging applies each weight by text repetition, so heavier sources have
// proportionally more influence on a model trained from the merged text.
type MultiCorpus struct {
	texts   map[string]string
	weights map[string]float64
	order   []string // insertion order, so merges are deterministic
}

// NewMultiCorpus returns an empty manager.
func NewMultiCorpus() *MultiCorpus {
	return &MultiCorpus{
		texts:   make(map[string]string),
		weights: make(map[string]float64),
	}
}

// Add loads a corpus file under a unique name with the given relative
// weight, applying the cleaner if one is given.
func (m *MultiCorpus) Add(name, path string, weight float64, cleaner *Cleaner) error {
	text, err := LoadFile(path, cleaner)
	if err != nil {
		return err
	}
	return m.AddText(name, text, weight)
}

// AddText registers corpus text directly under a unique name with the given
// relative weight. Weights must be positive and names unique.
func (m *MultiCorpus) AddText(name, text string, weight float64) error {
	if weight <= 0 {
		return fmt.Errorf("weight must be positive, got %g: %w", weight, ErrInvalidArgument)
	}
	if _, ok := m.texts[name]; ok {
		return fmt.Errorf("corpus %q already exists: %w", name, ErrInvalidArgument)
	}
	m.texts[name] = text
	m.weights[name] = weight
	m.order = append(m.order, name)
	return nil
}

// Remove deletes a corpus by name, failing with ErrNotFound if it was never
// added.
func (m *MultiCorpus) Remove(name string) error {
	if _, ok := m.texts[name]; !ok {
		return fmt.Errorf("corpus %q: %w", name, ErrNotFound)
	}
	delete(m.texts, name)
	delete(m.weights, name)
	for i, existing := range m.order {
		if existing == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of registered corpora.
func (m *MultiCorpus) Len() int {
	return len(m.order)
}

// Merged combines every registered corpus into one training text. Each
// corpus is repeated in proportion to its normalized weight (at least once)
// and the parts are space-joined in insertion order.
func (m *MultiCorpus) Merged() (string, error) {
	if len(m.order) == 0 {
		return "", fmt.Errorf("no corpora have been added: %w", ErrEmptyCorpus)
	}

	total := 0.0
	for _, weight := range m.weights {
		total += weight
	}

	parts := make([]string, 0, len(m.order))
	for _, name := range m.order {
		repetitions := int(m.weights[name] / total * 10)
		if repetitions < 1 {
			repetitions = 1
		}
		parts = append(parts, strings.Repeat(m.texts[name], repetitions))
	}
	return strings.Join(parts, " "), nil
}

// Stats returns per-corpus statistics keyed by corpus name.
func (m *MultiCorpus) Stats() map[string]Stats {
	stats := make(map[string]Stats, len(m.texts))
	for name, text := range m.texts {
		stats[name] = GetStats(text)
	}
	return stats
}
