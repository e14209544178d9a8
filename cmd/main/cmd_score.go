package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/CTAG07/Drosera/pkg/passgen"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [passwords...]",
		Short: "Score passwords with entropy and crack-time estimates",
		Long: `Score passwords with Shannon entropy, Markov entropy against a trained
model (when --model is given), and an estimated brute-force crack time.

Passwords are taken from the arguments, or read one per line from stdin when
no arguments are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath, _ := cmd.Flags().GetString("model")
			attemptsPerSecond, _ := cmd.Flags().GetFloat64("attempts-per-second")
			if attemptsPerSecond == 0 {
				attemptsPerSecond = cfg.AttemptsPerSecond
			}

			var model *passgen.Model
			if modelPath != "" {
				var err error
				model, err = loadModel(modelPath)
				if err != nil {
					return err
				}
			}

			passwords := args
			if len(passwords) == 0 {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					if line := scanner.Text(); line != "" {
						passwords = append(passwords, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read passwords from stdin: %w", err)
				}
			}

			for _, password := range passwords {
				if err := scoreOne(password, model, attemptsPerSecond); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("model", "", "Trained model file for Markov entropy scoring")
	cmd.Flags().Float64("attempts-per-second", 0, "Assumed hash rate (0 uses the configured default)")

	return cmd
}

// scoreOne prints every available score for a single password.
func scoreOne(password string, model *passgen.Model, attemptsPerSecond float64) error {
	shannon, err := passgen.ShannonEntropy(password)
	if err != nil {
		return err
	}
	estimate, err := passgen.EstimateCrackTime(password, attemptsPerSecond)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", password)
	fmt.Printf("  shannon entropy: %.3f bits/char\n", shannon)
	if model != nil {
		markov, err := passgen.MarkovEntropy(password, model)
		if err != nil {
			return err
		}
		fmt.Printf("  markov entropy:  %.3f bits/transition\n", markov)
	}
	fmt.Printf("  keyspace:        %s combinations (charset %d)\n",
		humanize.SIWithDigits(estimate.Combinations, 2, ""), estimate.CharsetSize)
	fmt.Printf("  crack time:      %s\n", estimate)
	return nil
}
