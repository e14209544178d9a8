package passgen

import (
	"math/rand/v2"
	"testing"
)

// buildTestModel builds a model from text or fails the test.
func buildTestModel(t *testing.T, text string, n int) *Model {
	t.Helper()
	model := NewModel()
	if err := model.Build(text, n); err != nil {
		t.Fatalf("Build(%q, %d) failed: %v", text, n, err)
	}
	return model
}

// newSeededGenerator creates a generator with a fixed seed so tests are
// reproducible.
func newSeededGenerator(t *testing.T, model *Model, seed uint64) *Generator {
	t.Helper()
	g := NewGenerator(model)
	g.SetSeed(seed)
	return g
}

// testRNG returns a fixed-seed random stream for transformer stages.
func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// wordCorpus is a small password-flavored corpus shared by generation tests.
const wordCorpus = "password dragon monkey letmein sunshine princess football charlie shadow master password dragon sunshine"
