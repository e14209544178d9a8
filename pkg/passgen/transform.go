package passgen

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
)

// Transformer is a single post-generation character substitution stage.
type Transformer interface {
	Transform(password string) string
}

// leetTable is the fixed letter-to-digit substitution table used by
// LeetSpeakTransformer.
var leetTable = map[rune]rune{
	'a': '4', 'A': '4',
	'e': '3', 'E': '3',
	'i': '1', 'I': '1',
	'o': '0', 'O': '0',
	's': '5', 'S': '5',
	't': '7', 'T': '7',
	'g': '9', 'G': '9',
	'b': '8', 'B': '8',
}

// newTransformerRNG builds the default random stream for a stochastic
// transformer stage when the caller supplies none.
func newTransformerRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// LeetSpeakTransformer substitutes letters with visually similar digits.
// Each eligible character is substituted independently with probability
// equal to the configured intensity.
type LeetSpeakTransformer struct {
	intensity float64
	rng       *rand.Rand
}

// NewLeetSpeakTransformer creates a leet-speak stage. Intensity must be in
// [0, 1]. Passing a rand.Rand makes the stage's draws reproducible; nil
// uses an unseeded stream.
func NewLeetSpeakTransformer(intensity float64, rng *rand.Rand) (*LeetSpeakTransformer, error) {
	if intensity < 0 || intensity > 1 {
		return nil, fmt.Errorf("intensity must be between 0 and 1, got %g: %w", intensity, ErrInvalidArgument)
	}
	return &LeetSpeakTransformer{intensity: intensity, rng: newTransformerRNG(rng)}, nil
}

// Transform applies the leet substitution table to the password.
func (t *LeetSpeakTransformer) Transform(password string) string {
	var b strings.Builder
	b.Grow(len(password))
	for _, r := range password {
		if sub, ok := leetTable[r]; ok && t.rng.Float64() < t.intensity {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CaseMode selects a CaseVariationTransformer behavior.
type CaseMode string

const (
	// CaseRandom uppercases or lowercases each letter independently with
	// probability 0.5.
	CaseRandom CaseMode = "random"
	// CaseAlternating alternates letters between upper and lower case;
	// non-letters pass through without advancing the alternation.
	CaseAlternating CaseMode = "alternating"
	// CaseCapitalize capitalizes the first letter of each
	// whitespace-separated word and lowercases the rest.
	CaseCapitalize CaseMode = "capitalize"
)

// CaseVariationTransformer varies the letter casing of a password.
type CaseVariationTransformer struct {
	mode CaseMode
	rng  *rand.Rand
}

// NewCaseVariationTransformer creates a case variation stage for the given
// mode. An unknown mode fails with ErrInvalidArgument. The rand.Rand is
// only consulted in CaseRandom mode; nil uses an unseeded stream.
func NewCaseVariationTransformer(mode CaseMode, rng *rand.Rand) (*CaseVariationTransformer, error) {
	switch mode {
	case CaseRandom, CaseAlternating, CaseCapitalize:
	default:
		return nil, fmt.Errorf("unknown case mode %q: %w", mode, ErrInvalidArgument)
	}
	return &CaseVariationTransformer{mode: mode, rng: newTransformerRNG(rng)}, nil
}

// Transform applies the configured case variation.
func (t *CaseVariationTransformer) Transform(password string) string {
	switch t.mode {
	case CaseAlternating:
		return t.alternating(password)
	case CaseCapitalize:
		return t.capitalize(password)
	default:
		return t.random(password)
	}
}

func (t *CaseVariationTransformer) random(password string) string {
	var b strings.Builder
	b.Grow(len(password))
	for _, r := range password {
		if unicode.IsLetter(r) {
			if t.rng.Float64() < 0.5 {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (t *CaseVariationTransformer) alternating(password string) string {
	var b strings.Builder
	b.Grow(len(password))
	upper := true
	for _, r := range password {
		if unicode.IsLetter(r) {
			if upper {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			upper = !upper
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (t *CaseVariationTransformer) capitalize(password string) string {
	words := strings.Fields(password)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// SubstitutionTransformer applies an arbitrary character substitution table,
// each eligible character independently with the configured probability.
type SubstitutionTransformer struct {
	substitutions map[rune]string
	probability   float64
	rng           *rand.Rand
}

// NewSubstitutionTransformer creates a substitution stage. Probability must
// be in [0, 1]. A nil table starts empty; use AddSubstitution to extend it.
func NewSubstitutionTransformer(substitutions map[rune]string, probability float64, rng *rand.Rand) (*SubstitutionTransformer, error) {
	if probability < 0 || probability > 1 {
		return nil, fmt.Errorf("probability must be between 0 and 1, got %g: %w", probability, ErrInvalidArgument)
	}
	table := make(map[rune]string, len(substitutions))
	for from, to := range substitutions {
		table[from] = to
	}
	return &SubstitutionTransformer{substitutions: table, probability: probability, rng: newTransformerRNG(rng)}, nil
}

// NewSpecialCharsTransformer creates a substitution stage that swaps common
// letters for special characters (a->@ s->$ i->! l->|).
func NewSpecialCharsTransformer(probability float64, rng *rand.Rand) (*SubstitutionTransformer, error) {
	return NewSubstitutionTransformer(map[rune]string{
		'a': "@",
		's': "$",
		'i': "!",
		'l': "|",
	}, probability, rng)
}

// AddSubstitution adds or replaces a single table entry.
func (t *SubstitutionTransformer) AddSubstitution(from rune, to string) {
	t.substitutions[from] = to
}

// Transform applies the substitution table to the password.
func (t *SubstitutionTransformer) Transform(password string) string {
	var b strings.Builder
	b.Grow(len(password))
	for _, r := range password {
		if sub, ok := t.substitutions[r]; ok && t.rng.Float64() < t.probability {
			b.WriteString(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TransformerChain applies an ordered sequence of transformers. Composition
// is order-sensitive: substituting a->b then b->c is not the same chain as
// the reverse.
type TransformerChain struct {
	transformers []Transformer
}

// NewTransformerChain returns an empty chain. The chain itself implements
// Transformer, so it can be handed to WithTransformer.
func NewTransformerChain() *TransformerChain {
	return &TransformerChain{}
}

// Add appends a transformer to the chain and returns the chain for call
// chaining.
func (c *TransformerChain) Add(t Transformer) *TransformerChain {
	c.transformers = append(c.transformers, t)
	return c
}

// Transform applies every stage in the order added.
func (c *TransformerChain) Transform(password string) string {
	result := password
	for _, t := range c.transformers {
		result = t.Transform(result)
	}
	return result
}

// Clear removes every transformer from the chain.
func (c *TransformerChain) Clear() {
	c.transformers = nil
}

// Len returns the number of transformers in the chain.
func (c *TransformerChain) Len() int {
	return len(c.transformers)
}
