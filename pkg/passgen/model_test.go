package passgen

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBuildValidation(t *testing.T) {
	testCases := []struct {
		name string
		text string
		n    int
	}{
		{name: "order too small", text: "some corpus text", n: 1},
		{name: "order too large", text: "some corpus text", n: 6},
		{name: "empty text", text: "", n: 2},
		{name: "text shorter than order", text: "ab", n: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewModel().Build(tc.text, tc.n)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Build(%q, %d) error = %v, want ErrInvalidArgument", tc.text, tc.n, err)
			}
		})
	}
}

func TestBuildProperties(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	runes := []rune(text)

	for n := MinOrder; n <= MaxOrder; n++ {
		model := buildTestModel(t, text, n)

		// Every key has length exactly n.
		for _, key := range model.Keys() {
			if got := len([]rune(key)); got != n {
				t.Errorf("n=%d: key %q has length %d", n, key, got)
			}
		}

		// For every key, the inner counts sum to the number of windows in
		// the corpus that start with that prefix.
		occurrences := make(map[string]int)
		for i := 0; i+n < len(runes); i++ {
			occurrences[string(runes[i:i+n])]++
		}
		for _, key := range model.Keys() {
			sum := 0
			for _, count := range model.chains[key] {
				if count < 1 {
					t.Errorf("n=%d: key %q has non-positive count %d", n, key, count)
				}
				sum += count
			}
			if sum != occurrences[key] {
				t.Errorf("n=%d: key %q has count sum %d, want %d", n, key, sum, occurrences[key])
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	m1 := buildTestModel(t, wordCorpus, 3)
	m2 := buildTestModel(t, wordCorpus, 3)
	if !reflect.DeepEqual(m1.chains, m2.chains) {
		t.Error("two builds from the same corpus differ")
	}
}

func TestProbabilities(t *testing.T) {
	model := buildTestModel(t, "abracadabra", 2)

	probs := model.Probabilities("ab")
	if probs == nil {
		t.Fatal("Probabilities(\"ab\") = nil, want a distribution")
	}
	sum := 0.0
	for _, p := range probs {
		if p <= 0 {
			t.Errorf("probability %v is not positive", p)
		}
		sum += p
	}
	if sum < 0.999999 || sum > 1.000001 {
		t.Errorf("probabilities sum to %v, want 1.0", sum)
	}

	if got := model.Probabilities("zz"); got != nil {
		t.Errorf("Probabilities for absent prefix = %v, want nil", got)
	}
}

func TestAdd(t *testing.T) {
	// Add before Build fails.
	err := NewModel().Add("more text")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Add before Build error = %v, want ErrNotInitialized", err)
	}

	// Adding the build corpus again doubles every count.
	model := buildTestModel(t, "abcabc", 2)
	before := make(map[string]map[string]int, len(model.chains))
	for prefix, inner := range model.chains {
		before[prefix] = make(map[string]int, len(inner))
		for char, count := range inner {
			before[prefix][char] = count
		}
	}

	if err := model.Add("abcabc"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	for prefix, inner := range before {
		for char, count := range inner {
			if got := model.chains[prefix][char]; got != 2*count {
				t.Errorf("count[%q][%q] = %d after re-add, want %d", prefix, char, got, 2*count)
			}
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	model := buildTestModel(t, wordCorpus, 3)

	var buf bytes.Buffer
	if err := model.Export(&buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	imported := NewModel()
	if err := imported.Import(&buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if imported.Order() != model.Order() {
		t.Errorf("imported order = %d, want %d", imported.Order(), model.Order())
	}
	if !reflect.DeepEqual(imported.chains, model.chains) {
		t.Error("imported chains differ from exported chains")
	}
}

func TestImportValidation(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "mixed key lengths", data: `{"ab": {"c": 1}, "abc": {"d": 1}}`},
		{name: "key too short", data: `{"a": {"b": 1}}`},
		{name: "non-positive count", data: `{"ab": {"c": 0}}`},
		{name: "multi-char transition", data: `{"ab": {"cd": 1}}`},
		{name: "prefix without transitions", data: `{"ab": {}}`},
		{name: "only prefixes without transitions", data: `{"ab": {}, "cd": {}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewModel().Import(strings.NewReader(tc.data))
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Import error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestImportRejectedModelNotDrawable(t *testing.T) {
	// A prefix with no transitions would dead-end every draw, so the import
	// is rejected and the model stays empty instead of becoming a generation
	// hazard.
	model := NewModel()
	if err := model.Import(strings.NewReader(`{"ab": {}}`)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Import error = %v, want ErrInvalidArgument", err)
	}

	g := NewGenerator(model)
	if _, err := g.Generate(1, 8); !errors.Is(err, ErrEmptyModel) {
		t.Errorf("Generate after rejected import error = %v, want ErrEmptyModel", err)
	}
}

func TestPrune(t *testing.T) {
	// "abab" yields ab->a once via window 0 and ba->b once; build a corpus
	// where one transition is frequent and one is rare.
	model := buildTestModel(t, "ababababab"+"axq", 2)

	stats := model.Stats()
	model.Prune(2)
	pruned := model.Stats()

	if pruned.Transitions >= stats.Transitions {
		t.Errorf("Prune removed nothing: %d -> %d transitions", stats.Transitions, pruned.Transitions)
	}
	for prefix, inner := range model.chains {
		if len(inner) == 0 {
			t.Errorf("prefix %q left empty after prune", prefix)
		}
		for char, count := range inner {
			if count < 2 {
				t.Errorf("transition %q->%q survived prune with count %d", prefix, char, count)
			}
		}
	}
}

func TestModelStats(t *testing.T) {
	model := buildTestModel(t, "abcabc", 2)
	stats := model.Stats()

	if stats.Prefixes != model.Len() {
		t.Errorf("Prefixes = %d, want %d", stats.Prefixes, model.Len())
	}
	if stats.AlphabetSize != len(model.Alphabet()) {
		t.Errorf("AlphabetSize = %d, want %d", stats.AlphabetSize, len(model.Alphabet()))
	}
	// "abcabc" has 4 windows, so counts must sum to 4.
	if stats.TotalFrequency != 4 {
		t.Errorf("TotalFrequency = %d, want 4", stats.TotalFrequency)
	}
}

func TestTopTransitions(t *testing.T) {
	// "abababa" yields ab->a three times and ba->b twice.
	model := buildTestModel(t, "abababa", 2)

	got := model.TopTransitions(10)
	want := []Transition{
		{Prefix: "ab", Char: "a", Count: 3},
		{Prefix: "ba", Char: "b", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopTransitions(10) = %v, want %v", got, want)
	}

	if got := model.TopTransitions(1); !reflect.DeepEqual(got, want[:1]) {
		t.Errorf("TopTransitions(1) = %v, want %v", got, want[:1])
	}
	if got := model.TopTransitions(0); got != nil {
		t.Errorf("TopTransitions(0) = %v, want nil", got)
	}
}

func BenchmarkBuild(b *testing.B) {
	text := strings.Repeat(wordCorpus+" ", 50)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		model := NewModel()
		if err := model.Build(text, 3); err != nil {
			b.Fatal(err)
		}
	}
}
