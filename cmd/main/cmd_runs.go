package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded generation runs",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd(), newRunsDeleteCmd())
	return cmd
}

// withRunStore opens the configured store, runs fn, and cleans up.
func withRunStore(ctx context.Context, fn func(*RunStore) error) error {
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

	return fn(store)
}

func newRunsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunStore(cmd.Context(), func(store *RunStore) error {
				runs, err := store.ListRuns(cmd.Context())
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Println("no recorded runs")
					return nil
				}
				for _, run := range runs {
					fmt.Printf("%s  %s  count=%d length=%d  %s\n",
						run.Id, run.CreatedAt.Format(time.RFC3339), run.Count, run.Length, run.Model)
				}
				return nil
			})
		},
	}
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the wordlist of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunStore(cmd.Context(), func(store *RunStore) error {
				candidates, err := store.GetCandidates(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, candidate := range candidates {
					fmt.Println(candidate)
				}
				return nil
			})
		},
	}
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a recorded run and its wordlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunStore(cmd.Context(), func(store *RunStore) error {
				return store.DeleteRun(cmd.Context(), args[0])
			})
		},
	}
}
