package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MinValidLength is the minimum number of significant characters a corpus
// needs before training on it is worthwhile.
const MinValidLength = 100

// Load reads an entire corpus from r, applying the cleaner if one is given.
func Load(r io.Reader, cleaner *Cleaner) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read corpus: %w", err)
	}
	text := string(data)
	if cleaner != nil {
		return cleaner.Clean(text)
	}
	return text, nil
}

// LoadFile reads a corpus from a file, applying the cleaner if one is given.
func LoadFile(path string, cleaner *Cleaner) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	return Load(f, cleaner)
}

// Validate reports whether a corpus has enough significant text to train on.
func Validate(text string) bool {
	return len(strings.TrimSpace(text)) >= MinValidLength
}

// Stats holds basic counts describing a corpus.
type Stats struct {
	Chars       int // Characters after trimming, in runes.
	Words       int // Whitespace-separated words.
	UniqueChars int // Distinct runes.
}

// GetStats computes basic statistics for a corpus.
func GetStats(text string) Stats {
	trimmed := strings.TrimSpace(text)
	unique := make(map[rune]struct{})
	for _, r := range trimmed {
		unique[r] = struct{}{}
	}
	return Stats{
		Chars:       len([]rune(trimmed)),
		Words:       len(strings.Fields(trimmed)),
		UniqueChars: len(unique),
	}
}
