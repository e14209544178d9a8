package passgen

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"unicode"
)

const (
	// DefaultMaxRestarts is the default number of times a single candidate
	// may restart from a fresh random prefix after hitting a dead end.
	DefaultMaxRestarts = 10
	// DefaultMaxAttempts is the default attempt budget for entropy-gated
	// generation.
	DefaultMaxAttempts = 10000
)

// entropy-gated generation cycles candidate lengths through
// [entropyMinLength, entropyMinLength+entropyLengthSpan) to diversify scores.
const (
	entropyMinLength  = 12
	entropyLengthSpan = 8
)

// ScoredCandidate pairs a generated candidate with its Markov entropy score
// against the model that produced it.
type ScoredCandidate struct {
	Candidate string
	Entropy   float64
}

// generateOptions is used by the generate functions to configure default options.
type generateOptions struct {
	seed        string
	transformer Transformer
	maxRestarts int
	maxAttempts int
}

// GenerateOption is a function that configures generation parameters. It's
// used as a variadic argument in Generate and GenerateWithEntropy.
type GenerateOption func(*generateOptions)

// WithSeed sets a seed string for candidate starts. If the seed is itself a
// model key generation starts from it; otherwise the first length-n substring
// of the seed that is a model key is used. If no substring matches,
// generation fails with ErrSeedNotFound.
func WithSeed(seed string) GenerateOption {
	return func(o *generateOptions) { o.seed = seed }
}

// WithTransformer applies a Transformer to every finished candidate before
// it is returned.
func WithTransformer(t Transformer) GenerateOption {
	return func(o *generateOptions) { o.transformer = t }
}

// WithMaxRestarts overrides the per-candidate dead-end restart budget.
func WithMaxRestarts(n int) GenerateOption {
	return func(o *generateOptions) { o.maxRestarts = n }
}

// WithMaxAttempts overrides the attempt budget for entropy-gated generation.
func WithMaxAttempts(n int) GenerateOption {
	return func(o *generateOptions) { o.maxAttempts = n }
}

// Generator produces password candidates from a Model via frequency-weighted
// random walks. It borrows the model for the duration of its use and never
// mutates it. The zero value is not usable; construct with NewGenerator.
//
// A Generator owns its random stream, so seeded sessions are isolated: two
// generators with the same model, the same seed, and the same call sequence
// produce identical output. It is not safe for concurrent use.
type Generator struct {
	model       *Model
	rng         *rand.Rand
	logger      *slog.Logger
	maxRestarts int
	generated   uint64
}

// NewGenerator creates a Generator over the given model with an unseeded
// random stream and a discarded logger.
func NewGenerator(model *Model) *Generator {
	return &Generator{
		model:       model,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxRestarts: DefaultMaxRestarts,
	}
}

// SetSeed replaces the generator's random stream with one seeded from the
// given value, making every subsequent draw reproducible.
func (g *Generator) SetSeed(seed uint64) {
	g.rng = rand.New(rand.NewPCG(seed, seed))
}

// SetLogger sets the logger for the Generator. By default, all logs are
// discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Generate produces count candidates of exactly length runes each.
// Generation can be customized with GenerateOption functions. A count of
// zero returns an empty batch without consuming any randomness.
func (g *Generator) Generate(count, length int, opts ...GenerateOption) ([]string, error) {
	options := &generateOptions{maxRestarts: g.maxRestarts}
	for _, opt := range opts {
		opt(options)
	}

	if err := g.validateBatch(count, length, options); err != nil {
		return nil, err
	}
	if count == 0 {
		return []string{}, nil
	}

	candidates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		candidate, err := g.generateOne(length, options)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
		g.generated++
	}

	g.logger.Debug("Batch generation completed",
		slog.Int("count", count),
		slog.Int("length", length),
	)
	return candidates, nil
}

// GenerateWithEntropy produces count candidates whose Markov entropy against
// the generator's own model is at least minEntropy. Candidate lengths cycle
// through a fixed band to diversify scores. If the attempt budget (default
// DefaultMaxAttempts, see WithMaxAttempts) is exhausted first, the accepted
// candidates are returned together with ErrInsufficientYield.
func (g *Generator) GenerateWithEntropy(count int, minEntropy float64, opts ...GenerateOption) ([]ScoredCandidate, error) {
	options := &generateOptions{maxRestarts: g.maxRestarts, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(options)
	}

	if err := g.validateBatch(count, entropyMinLength, options); err != nil {
		return nil, err
	}
	if options.maxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be at least 1, got %d: %w", options.maxAttempts, ErrInvalidArgument)
	}
	if count == 0 {
		return []ScoredCandidate{}, nil
	}

	accepted := make([]ScoredCandidate, 0, count)
	for attempt := 0; attempt < options.maxAttempts && len(accepted) < count; attempt++ {
		length := entropyMinLength + attempt%entropyLengthSpan
		candidate, err := g.generateOne(length, options)
		if err != nil {
			return nil, err
		}
		g.generated++

		score, err := MarkovEntropy(candidate, g.model)
		if err != nil {
			return nil, fmt.Errorf("failed to score candidate: %w", err)
		}
		if score >= minEntropy {
			accepted = append(accepted, ScoredCandidate{Candidate: candidate, Entropy: score})
		}
	}

	if len(accepted) < count {
		return accepted, fmt.Errorf("produced %d of %d candidates with entropy >= %g after %d attempts: %w",
			len(accepted), count, minEntropy, options.maxAttempts, ErrInsufficientYield)
	}
	return accepted, nil
}

// validateBatch checks the shared batch preconditions.
func (g *Generator) validateBatch(count, length int, options *generateOptions) error {
	if count < 0 {
		return fmt.Errorf("count must be non-negative, got %d: %w", count, ErrInvalidArgument)
	}
	if length < 1 {
		return fmt.Errorf("length must be at least 1, got %d: %w", length, ErrInvalidArgument)
	}
	if options.maxRestarts < 0 {
		return fmt.Errorf("max restarts must be non-negative, got %d: %w", options.maxRestarts, ErrInvalidArgument)
	}
	if g.model == nil || g.model.Len() == 0 {
		return ErrEmptyModel
	}
	return nil
}

// generateOne runs a single random walk and returns a candidate of exactly
// length runes.
func (g *Generator) generateOne(length int, options *generateOptions) (string, error) {
	start, err := g.pickStart(options.seed)
	if err != nil {
		return "", err
	}

	current := []rune(start)
	n := g.model.order
	restarts := 0

	for len(current) < length {
		prefix := string(current[len(current)-n:])
		if inner, ok := g.model.chains[prefix]; ok {
			current = append(current, g.weightedDraw(prefix, inner))
			continue
		}

		// Dead end: restart while the budget and the remaining deficit
		// allow it, otherwise pad the remainder uniformly.
		if length-len(current) > 1 && restarts < options.maxRestarts {
			restarts++
			g.logger.Debug("Candidate restarted after dead end",
				slog.String("last_prefix", prefix),
				slog.Int("generated_length", len(current)),
				slog.Int("restarts", restarts),
			)
			current = []rune(g.randomKey())
			continue
		}

		alphabet := g.model.Alphabet()
		g.logger.Debug("Padding candidate after exhausted restarts",
			slog.String("last_prefix", prefix),
			slog.Int("deficit", length-len(current)),
			slog.Int("restarts", restarts),
		)
		for len(current) < length {
			current = append(current, g.drawChar(alphabet))
		}
		break
	}

	current = current[:length]
	current = g.repairEdges(current)

	candidate := string(current)
	if options.transformer != nil {
		candidate = options.transformer.Transform(candidate)
	}
	return candidate, nil
}

// pickStart resolves the starting string for a walk. An empty seed starts
// from a uniformly random model key; a supplied but unusable seed is an
// error rather than a silent fallback.
func (g *Generator) pickStart(seed string) (string, error) {
	if seed == "" {
		return g.randomKey(), nil
	}
	if _, ok := g.model.chains[seed]; ok {
		return seed, nil
	}
	runes := []rune(seed)
	n := g.model.order
	for i := 0; i+n <= len(runes); i++ {
		sub := string(runes[i : i+n])
		if _, ok := g.model.chains[sub]; ok {
			return sub, nil
		}
	}
	return "", fmt.Errorf("seed %q has no substring in the model: %w", seed, ErrSeedNotFound)
}

// repairEdges replaces leading and trailing whitespace with characters drawn
// uniformly from the model's non-whitespace alphabet. If the model emits
// only whitespace, it falls back to the full alphabet and accepts whatever
// whitespace remains.
func (g *Generator) repairEdges(current []rune) []rune {
	if len(current) == 0 {
		return current
	}
	nonSpace := g.model.nonSpaceAlphabet()
	if len(nonSpace) == 0 {
		// Degenerate model: one fallback draw per edge, then accept.
		alphabet := g.model.Alphabet()
		if unicode.IsSpace(current[0]) {
			current[0] = g.drawChar(alphabet)
		}
		if unicode.IsSpace(current[len(current)-1]) {
			current[len(current)-1] = g.drawChar(alphabet)
		}
		return current
	}
	for unicode.IsSpace(current[0]) || unicode.IsSpace(current[len(current)-1]) {
		if unicode.IsSpace(current[0]) {
			current[0] = g.drawChar(nonSpace)
		}
		if unicode.IsSpace(current[len(current)-1]) {
			current[len(current)-1] = g.drawChar(nonSpace)
		}
	}
	return current
}

// weightedDraw picks the next character for a prefix with probability
// proportional to its recorded count. Characters are visited in sorted
// order so that seeded sessions are reproducible.
func (g *Generator) weightedDraw(prefix string, inner map[string]int) rune {
	chars := g.model.sortedNext(prefix, inner)
	total := 0
	for _, char := range chars {
		total += inner[char]
	}
	pick := g.rng.IntN(total)
	for _, char := range chars {
		pick -= inner[char]
		if pick < 0 {
			return []rune(char)[0]
		}
	}
	// Unreachable: the counts sum to total.
	return []rune(chars[len(chars)-1])[0]
}

// randomKey returns a uniformly random model prefix.
func (g *Generator) randomKey() string {
	keys := g.model.Keys()
	return keys[g.rng.IntN(len(keys))]
}

// drawChar returns a uniformly random rune from a set of single-rune strings.
func (g *Generator) drawChar(chars []string) rune {
	return []rune(chars[g.rng.IntN(len(chars))])[0]
}

// GeneratorStats holds counters describing a Generator's activity.
type GeneratorStats struct {
	TotalGenerated uint64 // Candidates produced over the generator's lifetime.
	ModelSize      int    // Number of prefixes in the borrowed model.
	Order          int    // The model's n-gram order.
}

// Stats returns a snapshot of the generator's activity counters.
func (g *Generator) Stats() GeneratorStats {
	return GeneratorStats{
		TotalGenerated: g.generated,
		ModelSize:      g.model.Len(),
		Order:          g.model.Order(),
	}
}
