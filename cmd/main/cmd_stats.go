package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print statistics for a trained model",
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath, _ := cmd.Flags().GetString("model")
			top, _ := cmd.Flags().GetInt("top")

			model, err := loadModel(modelPath)
			if err != nil {
				return err
			}

			stats := model.Stats()
			fmt.Printf("model:           %s\n", modelPath)
			fmt.Printf("order:           %d\n", model.Order())
			fmt.Printf("prefixes:        %s\n", humanize.Comma(int64(stats.Prefixes)))
			fmt.Printf("transitions:     %s\n", humanize.Comma(int64(stats.Transitions)))
			fmt.Printf("total frequency: %s\n", humanize.Comma(int64(stats.TotalFrequency)))
			fmt.Printf("alphabet size:   %d\n", stats.AlphabetSize)

			if top > 0 {
				fmt.Println("top transitions:")
				for _, tr := range model.TopTransitions(top) {
					fmt.Printf("  %q -> %q  %s\n", tr.Prefix, tr.Char, humanize.Comma(int64(tr.Count)))
				}
			}
			return nil
		},
	}

	cmd.Flags().String("model", "", "Trained model file (required)")
	_ = cmd.MarkFlagRequired("model")
	cmd.Flags().Int("top", 10, "Number of most frequent transitions to list (0 to hide)")

	return cmd
}
