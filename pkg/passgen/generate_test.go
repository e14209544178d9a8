package passgen

import (
	"errors"
	"strings"
	"testing"
	"unicode"
)

func TestGenerateBatchContract(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)
	g := newSeededGenerator(t, model, 1)

	candidates, err := g.Generate(25, 12)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(candidates) != 25 {
		t.Fatalf("got %d candidates, want 25", len(candidates))
	}
	for i, candidate := range candidates {
		if got := len([]rune(candidate)); got != 12 {
			t.Errorf("candidate %d has length %d, want 12: %q", i, got, candidate)
		}
	}
}

func TestGenerateValidation(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)

	testCases := []struct {
		name    string
		count   int
		length  int
		model   *Model
		wantErr error
	}{
		{name: "negative count", count: -1, length: 5, model: model, wantErr: ErrInvalidArgument},
		{name: "zero length", count: 1, length: 0, model: model, wantErr: ErrInvalidArgument},
		{name: "empty model", count: 1, length: 5, model: NewModel(), wantErr: ErrEmptyModel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGenerator(tc.model)
			_, err := g.Generate(tc.count, tc.length)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Generate(%d, %d) error = %v, want %v", tc.count, tc.length, err, tc.wantErr)
			}
		})
	}
}

func TestGenerateZeroCount(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)

	// Zero count returns an empty batch without consuming randomness, so a
	// session that interleaves a zero-count call stays in lockstep with one
	// that doesn't.
	g1 := newSeededGenerator(t, model, 7)
	if out, err := g1.Generate(0, 8); err != nil || len(out) != 0 {
		t.Fatalf("Generate(0, 8) = (%v, %v), want empty batch", out, err)
	}
	batch1, err := g1.Generate(3, 8)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	g2 := newSeededGenerator(t, model, 7)
	batch2, err := g2.Generate(3, 8)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := range batch1 {
		if batch1[i] != batch2[i] {
			t.Errorf("candidate %d diverged after zero-count call: %q vs %q", i, batch1[i], batch2[i])
		}
	}
}

func TestGenerateDeterminism(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)

	g1 := newSeededGenerator(t, model, 42)
	g2 := newSeededGenerator(t, model, 42)

	for call := 0; call < 3; call++ {
		batch1, err := g1.Generate(10, 10+call)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		batch2, err := g2.Generate(10, 10+call)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for i := range batch1 {
			if batch1[i] != batch2[i] {
				t.Fatalf("call %d candidate %d: %q != %q", call, i, batch1[i], batch2[i])
			}
		}
	}
}

func TestGenerateNoEdgeWhitespace(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)
	g := newSeededGenerator(t, model, 99)

	candidates, err := g.Generate(100, 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, candidate := range candidates {
		runes := []rune(candidate)
		if unicode.IsSpace(runes[0]) {
			t.Errorf("candidate starts with whitespace: %q", candidate)
		}
		if unicode.IsSpace(runes[len(runes)-1]) {
			t.Errorf("candidate ends with whitespace: %q", candidate)
		}
	}
}

func TestGenerateSeed(t *testing.T) {
	model := buildTestModel(t, "abcdefgh", 2)
	g := newSeededGenerator(t, model, 5)

	// A seed that is itself a model key starts the candidate.
	candidates, err := g.Generate(5, 6, WithSeed("cd"))
	if err != nil {
		t.Fatalf("Generate with key seed failed: %v", err)
	}
	for _, candidate := range candidates {
		if !strings.HasPrefix(candidate, "cd") {
			t.Errorf("candidate %q does not start with seed key", candidate)
		}
	}

	// A longer seed falls back to its first substring that is a model key.
	candidates, err = g.Generate(5, 6, WithSeed("zzab"))
	if err != nil {
		t.Fatalf("Generate with substring seed failed: %v", err)
	}
	for _, candidate := range candidates {
		if !strings.HasPrefix(candidate, "ab") {
			t.Errorf("candidate %q does not start with seed substring", candidate)
		}
	}

	// A supplied but unusable seed fails instead of falling back.
	_, err = g.Generate(1, 6, WithSeed("qq"))
	if !errors.Is(err, ErrSeedNotFound) {
		t.Errorf("unusable seed error = %v, want ErrSeedNotFound", err)
	}
}

func TestGenerateDeadEndPadding(t *testing.T) {
	// "abc" yields a single chain ab->c, so every walk dead-ends at "bc"
	// and must restart and finally pad with the only emitted character.
	model := buildTestModel(t, "abc", 2)
	g := newSeededGenerator(t, model, 1)

	candidates, err := g.Generate(3, 5)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, candidate := range candidates {
		if candidate != "abccc" {
			t.Errorf("candidate = %q, want %q", candidate, "abccc")
		}
	}

	// With a deficit of one the walk pads instead of restarting.
	candidates, err = g.Generate(1, 4)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if candidates[0] != "abcc" {
		t.Errorf("candidate = %q, want %q", candidates[0], "abcc")
	}
}

func TestGenerateWhitespaceOnlyModel(t *testing.T) {
	// A model that can only emit whitespace falls back to accepting it.
	model := buildTestModel(t, "a  ", 2)
	g := newSeededGenerator(t, model, 1)

	candidates, err := g.Generate(1, 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := len([]rune(candidates[0])); got != 3 {
		t.Errorf("candidate has length %d, want 3", got)
	}
}

// upperTransformer is a trivial Transformer for wiring tests.
type upperTransformer struct{}

func (upperTransformer) Transform(password string) string {
	return strings.ToUpper(password)
}

func TestGenerateWithTransformer(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)
	g := newSeededGenerator(t, model, 3)

	candidates, err := g.Generate(10, 8, WithTransformer(upperTransformer{}))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, candidate := range candidates {
		if candidate != strings.ToUpper(candidate) {
			t.Errorf("candidate %q was not transformed", candidate)
		}
	}
}

func TestGenerateWithEntropy(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)
	g := newSeededGenerator(t, model, 11)

	// A threshold of zero accepts everything, so the first five attempts
	// are returned with lengths cycling up from the band floor.
	scored, err := g.GenerateWithEntropy(5, 0)
	if err != nil {
		t.Fatalf("GenerateWithEntropy failed: %v", err)
	}
	if len(scored) != 5 {
		t.Fatalf("got %d scored candidates, want 5", len(scored))
	}
	for i, sc := range scored {
		wantLength := entropyMinLength + i
		if got := len([]rune(sc.Candidate)); got != wantLength {
			t.Errorf("candidate %d has length %d, want %d", i, got, wantLength)
		}
		if sc.Entropy < 0 {
			t.Errorf("candidate %d has negative entropy %v", i, sc.Entropy)
		}
	}
}

func TestGenerateWithEntropyInsufficientYield(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)
	g := newSeededGenerator(t, model, 11)

	scored, err := g.GenerateWithEntropy(3, 1000, WithMaxAttempts(50))
	if !errors.Is(err, ErrInsufficientYield) {
		t.Fatalf("error = %v, want ErrInsufficientYield", err)
	}
	if len(scored) != 0 {
		t.Errorf("got %d accepted candidates, want 0", len(scored))
	}
	if !strings.Contains(err.Error(), "0 of 3") {
		t.Errorf("error %q does not report the produced count", err)
	}
	if !strings.Contains(err.Error(), "50 attempts") {
		t.Errorf("error %q does not report the attempt budget", err)
	}
}

func TestGeneratorStats(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 2)
	g := newSeededGenerator(t, model, 2)

	if _, err := g.Generate(7, 8); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	stats := g.Stats()
	if stats.TotalGenerated != 7 {
		t.Errorf("TotalGenerated = %d, want 7", stats.TotalGenerated)
	}
	if stats.ModelSize != model.Len() {
		t.Errorf("ModelSize = %d, want %d", stats.ModelSize, model.Len())
	}
	if stats.Order != 2 {
		t.Errorf("Order = %d, want 2", stats.Order)
	}
}

func BenchmarkGenerate(b *testing.B) {
	model := NewModel()
	if err := model.Build(strings.Repeat(wordCorpus+" ", 20), 3); err != nil {
		b.Fatalf("failed to build benchmark model: %v", err)
	}
	g := NewGenerator(model)
	g.SetSeed(1)

	leet, err := NewLeetSpeakTransformer(0.5, testRNG(1))
	if err != nil {
		b.Fatalf("failed to build transformer: %v", err)
	}

	benchOpts := map[string][]GenerateOption{
		"Plain":           nil,
		"WithTransformer": {WithTransformer(leet)},
	}

	for name, opts := range benchOpts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := g.Generate(10, 12, opts...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGenerateWithEntropy(b *testing.B) {
	model := NewModel()
	if err := model.Build(strings.Repeat(wordCorpus+" ", 20), 3); err != nil {
		b.Fatalf("failed to build benchmark model: %v", err)
	}
	g := NewGenerator(model)
	g.SetSeed(1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.GenerateWithEntropy(10, 0); err != nil {
			b.Fatal(err)
		}
	}
}
