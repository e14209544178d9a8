package main

import (
	"fmt"
	"log/slog"

	"github.com/CTAG07/Drosera/pkg/corpus"
	"github.com/CTAG07/Drosera/pkg/passgen"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Build an n-gram model from corpus files",
		Long: `Build a character-level n-gram model from one or more corpus files and
save it as a flat JSON model file.

Multiple corpora can be combined with relative weights; a heavier corpus has
proportionally more influence on the model. With --append, the corpus text
extends an existing model instead of building a new one.

Example:
  drosera train --corpus leaks.txt --corpus english.txt --weight 3 --weight 1 --out model.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			corpora, _ := cmd.Flags().GetStringArray("corpus")
			weights, _ := cmd.Flags().GetFloat64Slice("weight")
			order, _ := cmd.Flags().GetInt("order")
			out, _ := cmd.Flags().GetString("out")
			appendTo, _ := cmd.Flags().GetString("append")
			pruneBelow, _ := cmd.Flags().GetInt("prune")

			if len(corpora) == 0 {
				return fmt.Errorf("at least one --corpus is required")
			}
			if len(weights) > 0 && len(weights) != len(corpora) {
				return fmt.Errorf("got %d --weight values for %d --corpus values", len(weights), len(corpora))
			}
			if order == 0 {
				order = cfg.DefaultOrder
			}

			cleaner := cleanerFromFlags(cmd)
			text, err := mergedCorpus(corpora, weights, cleaner)
			if err != nil {
				return err
			}
			if !corpus.Validate(text) {
				logger.Warn("Corpus is very short; the model will be sparse",
					slog.Int("significant_chars", corpus.GetStats(text).Chars),
				)
			}

			var model *passgen.Model
			if appendTo != "" {
				model, err = loadModel(appendTo)
				if err != nil {
					return err
				}
				err = model.Add(text)
			} else {
				model = passgen.NewModel()
				err = model.Build(text, order)
			}
			if err != nil {
				return err
			}

			if pruneBelow > 0 {
				model.Prune(pruneBelow)
			}

			if err := saveModel(model, out); err != nil {
				return err
			}

			stats := model.Stats()
			logger.Info("Model trained",
				slog.String("path", out),
				slog.Int("order", model.Order()),
				slog.String("prefixes", humanize.Comma(int64(stats.Prefixes))),
				slog.String("transitions", humanize.Comma(int64(stats.Transitions))),
				slog.Int("alphabet_size", stats.AlphabetSize),
			)
			return nil
		},
	}

	cmd.Flags().StringArray("corpus", nil, "Corpus file to train on (repeatable)")
	cmd.Flags().Float64Slice("weight", nil, "Relative weight per corpus (repeatable, pairs with --corpus)")
	cmd.Flags().Int("order", 0, "N-gram order (0 uses the configured default)")
	cmd.Flags().String("out", "./model.json", "Output model file")
	cmd.Flags().String("append", "", "Extend an existing model file instead of building a new one")
	cmd.Flags().Int("prune", 0, "Drop transitions seen fewer than this many times")
	cmd.Flags().Bool("lowercase", false, "Lowercase the corpus before training")
	cmd.Flags().Bool("strip-punctuation", false, "Strip punctuation from the corpus")
	cmd.Flags().Bool("strip-digits", false, "Strip digits from the corpus")
	cmd.Flags().Bool("normalize-whitespace", false, "Collapse whitespace runs to single spaces")

	return cmd
}

// cleanerFromFlags builds a corpus cleaner from the shared cleaning flags,
// or nil when no cleaning was requested.
func cleanerFromFlags(cmd *cobra.Command) *corpus.Cleaner {
	lowercase, _ := cmd.Flags().GetBool("lowercase")
	stripPunct, _ := cmd.Flags().GetBool("strip-punctuation")
	stripDigits, _ := cmd.Flags().GetBool("strip-digits")
	normalizeWS, _ := cmd.Flags().GetBool("normalize-whitespace")

	if !lowercase && !stripPunct && !stripDigits && !normalizeWS {
		return nil
	}
	return &corpus.Cleaner{
		Lowercase:           lowercase,
		StripPunctuation:    stripPunct,
		StripDigits:         stripDigits,
		NormalizeWhitespace: normalizeWS,
	}
}

// mergedCorpus loads every corpus file and merges them, applying weights by
// repetition when more than one corpus is given.
func mergedCorpus(paths []string, weights []float64, cleaner *corpus.Cleaner) (string, error) {
	if len(paths) == 1 && len(weights) == 0 {
		return corpus.LoadFile(paths[0], cleaner)
	}

	mc := corpus.NewMultiCorpus()
	for i, path := range paths {
		weight := 1.0
		if len(weights) > 0 {
			weight = weights[i]
		}
		if err := mc.Add(fmt.Sprintf("%d:%s", i, path), path, weight, cleaner); err != nil {
			return "", err
		}
	}
	return mc.Merged()
}
