package corpus

import (
	"fmt"
	"strings"
	"unicode"
)

// punctuation is the ASCII punctuation set stripped by Cleaner.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Cleaner applies a fixed sequence of text normalization steps: lowercase,
// punctuation stripping, digit stripping, whitespace normalization, in that
// order, followed by trimming. The zero value only trims.
type Cleaner struct {
	Lowercase           bool
	StripPunctuation    bool
	StripDigits         bool
	NormalizeWhitespace bool
}

// Clean applies the configured steps to text. It fails with ErrEmptyCorpus
// if nothing remains afterwards. Empty input is returned unchanged.
func (c Cleaner) Clean(text string) (string, error) {
	if text == "" {
		return text, nil
	}

	result := text
	if c.Lowercase {
		result = strings.ToLower(result)
	}
	if c.StripPunctuation {
		result = strings.Map(func(r rune) rune {
			if strings.ContainsRune(punctuation, r) {
				return -1
			}
			return r
		}, result)
	}
	if c.StripDigits {
		result = strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return -1
			}
			return r
		}, result)
	}
	if c.NormalizeWhitespace {
		result = strings.Join(strings.Fields(result), " ")
	}

	result = strings.TrimSpace(result)
	if result == "" {
		return "", fmt.Errorf("nothing left after cleaning: %w", ErrEmptyCorpus)
	}
	return result, nil
}
