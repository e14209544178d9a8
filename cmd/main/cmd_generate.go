package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/CTAG07/Drosera/pkg/passgen"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a wordlist from a trained model",
		Long: `Generate password candidates from a trained model via weighted random
walks, optionally transforming each candidate (leet speak, case variation,
custom substitutions) and filtering the batch afterwards.

With --min-entropy, candidates are generated one at a time across a band of
lengths and only kept when their Markov entropy against the model clears the
threshold.

Example:
  drosera generate --model model.json --count 500 --length 14 --leet 0.3 --require-digits`,
		RunE: runGenerate,
	}

	cmd.Flags().String("model", "", "Trained model file (required)")
	_ = cmd.MarkFlagRequired("model")
	cmd.Flags().Int("count", 0, "Number of candidates (0 uses the configured default)")
	cmd.Flags().Int("length", 0, "Candidate length in characters (0 uses the configured default)")
	cmd.Flags().String("seed", "", "Seed string for candidate starts")
	cmd.Flags().Uint64("rand-seed", 0, "Seed the random stream for reproducible output")
	cmd.Flags().Int("max-restarts", passgen.DefaultMaxRestarts, "Dead-end restart budget per candidate")
	cmd.Flags().Float64("min-entropy", 0, "Only keep candidates with at least this Markov entropy")
	cmd.Flags().Int("max-attempts", passgen.DefaultMaxAttempts, "Attempt budget for --min-entropy mode")

	cmd.Flags().Float64("leet", 0, "Leet speak substitution intensity (0-1)")
	cmd.Flags().String("case", "", "Case variation mode: random, alternating, or capitalize")
	cmd.Flags().Float64("special", 0, "Special character substitution probability (0-1)")

	cmd.Flags().Int("min-length", -1, "Keep only candidates at least this long")
	cmd.Flags().Int("max-length", -1, "Keep only candidates at most this long")
	cmd.Flags().Bool("require-digits", false, "Keep only candidates containing a digit")
	cmd.Flags().Bool("require-upper", false, "Keep only candidates containing an uppercase letter")
	cmd.Flags().Bool("require-lower", false, "Keep only candidates containing a lowercase letter")
	cmd.Flags().Bool("require-special", false, "Keep only candidates containing a special character")
	cmd.Flags().String("must-include", "", "Characters every candidate must contain")
	cmd.Flags().String("must-not-include", "", "Characters no candidate may contain")

	cmd.Flags().String("output", "-", "Output file, or - for stdout")
	cmd.Flags().Bool("record", false, "Record the run in the wordlist store")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	count, _ := cmd.Flags().GetInt("count")
	length, _ := cmd.Flags().GetInt("length")
	seed, _ := cmd.Flags().GetString("seed")
	maxRestarts, _ := cmd.Flags().GetInt("max-restarts")
	minEntropy, _ := cmd.Flags().GetFloat64("min-entropy")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	output, _ := cmd.Flags().GetString("output")
	record, _ := cmd.Flags().GetBool("record")

	if count == 0 {
		count = cfg.DefaultCount
	}
	if length == 0 {
		length = cfg.DefaultLength
	}

	model, err := loadModel(modelPath)
	if err != nil {
		return err
	}

	gen := passgen.NewGenerator(model)
	gen.SetLogger(logger)

	// One fixed seed drives both the walk and the transformer stages, so a
	// --rand-seed run is reproducible end to end.
	var stageRNG *rand.Rand
	if cmd.Flags().Changed("rand-seed") {
		randSeed, _ := cmd.Flags().GetUint64("rand-seed")
		gen.SetSeed(randSeed)
		stageRNG = rand.New(rand.NewPCG(randSeed, ^randSeed))
	}

	transformer, err := transformerFromFlags(cmd, stageRNG)
	if err != nil {
		return err
	}

	opts := []passgen.GenerateOption{passgen.WithMaxRestarts(maxRestarts)}
	if seed != "" {
		opts = append(opts, passgen.WithSeed(seed))
	}
	if transformer != nil {
		opts = append(opts, passgen.WithTransformer(transformer))
	}

	var candidates []string
	if cmd.Flags().Changed("min-entropy") {
		opts = append(opts, passgen.WithMaxAttempts(maxAttempts))
		scored, err := gen.GenerateWithEntropy(count, minEntropy, opts...)
		if err != nil {
			if !errors.Is(err, passgen.ErrInsufficientYield) {
				return err
			}
			logger.Warn("Entropy gate fell short; keeping partial batch", slog.String("detail", err.Error()))
		}
		for _, sc := range scored {
			candidates = append(candidates, sc.Candidate)
		}
	} else {
		candidates, err = gen.Generate(count, length, opts...)
		if err != nil {
			return err
		}
	}

	filters, err := filterChainFromFlags(cmd)
	if err != nil {
		return err
	}
	survivors := filters.Apply(candidates)

	logger.Info("Wordlist generated",
		slog.Int("generated", len(candidates)),
		slog.Int("kept", len(survivors)),
	)

	if err := writeWordlist(survivors, output); err != nil {
		return err
	}

	if record {
		info := RunInfo{
			Model:      modelPath,
			Count:      len(survivors),
			Length:     length,
			Seed:       seed,
			MinEntropy: minEntropy,
		}
		if err := recordRun(cmd.Context(), info, survivors); err != nil {
			return err
		}
	}
	return nil
}

// transformerFromFlags builds the transformer chain requested on the command
// line, or nil when no transformation was requested.
func transformerFromFlags(cmd *cobra.Command, rng *rand.Rand) (passgen.Transformer, error) {
	leet, _ := cmd.Flags().GetFloat64("leet")
	caseMode, _ := cmd.Flags().GetString("case")
	special, _ := cmd.Flags().GetFloat64("special")

	chain := passgen.NewTransformerChain()
	if leet > 0 {
		t, err := passgen.NewLeetSpeakTransformer(leet, rng)
		if err != nil {
			return nil, err
		}
		chain.Add(t)
	}
	if caseMode != "" {
		t, err := passgen.NewCaseVariationTransformer(passgen.CaseMode(caseMode), rng)
		if err != nil {
			return nil, err
		}
		chain.Add(t)
	}
	if special > 0 {
		t, err := passgen.NewSpecialCharsTransformer(special, rng)
		if err != nil {
			return nil, err
		}
		chain.Add(t)
	}

	if chain.Len() == 0 {
		return nil, nil
	}
	return chain, nil
}

// filterChainFromFlags builds the post-generation filter chain requested on
// the command line. The chain may be empty.
func filterChainFromFlags(cmd *cobra.Command) (*passgen.FilterChain, error) {
	minLen, _ := cmd.Flags().GetInt("min-length")
	maxLen, _ := cmd.Flags().GetInt("max-length")
	requireDigits, _ := cmd.Flags().GetBool("require-digits")
	requireUpper, _ := cmd.Flags().GetBool("require-upper")
	requireLower, _ := cmd.Flags().GetBool("require-lower")
	requireSpecial, _ := cmd.Flags().GetBool("require-special")
	mustInclude, _ := cmd.Flags().GetString("must-include")
	mustNotInclude, _ := cmd.Flags().GetString("must-not-include")

	chain := passgen.NewFilterChain()
	if minLen >= 0 || maxLen >= 0 {
		if minLen < 0 {
			minLen = 0
		}
		if maxLen < 0 {
			maxLen = math.MaxInt32
		}
		lf, err := passgen.NewLengthFilter(minLen, maxLen)
		if err != nil {
			return nil, err
		}
		chain.Add(lf)
	}
	if requireDigits || requireUpper || requireLower || requireSpecial || mustInclude != "" || mustNotInclude != "" {
		chain.Add(&passgen.CharacterFilter{
			RequireDigits:    requireDigits,
			RequireUppercase: requireUpper,
			RequireLowercase: requireLower,
			RequireSpecial:   requireSpecial,
			MustInclude:      mustInclude,
			MustNotInclude:   mustNotInclude,
		})
	}
	return chain, nil
}

// writeWordlist writes one candidate per line to a file or stdout.
func writeWordlist(candidates []string, output string) error {
	content := strings.Join(candidates, "\n")
	if len(candidates) > 0 {
		content += "\n"
	}
	if output == "-" {
		_, err := os.Stdout.WriteString(content)
		return err
	}
	if err := atomic.WriteFile(output, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write wordlist: %w", err)
	}
	return nil
}

// recordRun opens the configured wordlist store and records a run in it.
func recordRun(ctx context.Context, info RunInfo, candidates []string) error {
	db, err := initDB(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open wordlist store: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := SetupStoreSchema(db); err != nil {
		return err
	}
	store, err := NewRunStore(db, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.RecordRun(ctx, info, candidates)
	return err
}
