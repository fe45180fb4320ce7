package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/f559/auto-novel/internal/cleanup"
	"github.com/f559/auto-novel/internal/history"
	"github.com/f559/auto-novel/internal/prompt"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past job runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, 20)
		},
	}
	cmd.SetUsageTemplate(envUsageTemplate)
	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryClearCmd(),
	)
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs (default if no action given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, limit)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, yes)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func openHistoryStore() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	cleanup.Register("history db", store.Close)
	return store, nil
}

func runHistoryList(cmd *cobra.Command, limit int) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}

	runs, err := store.ListRecent(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tKIND\tTARGET\tBACKEND\tTOTAL\tOK\tFAILED\tOUTCOME")
	for _, r := range runs {
		outcome := r.Outcome
		if outcome == "" {
			outcome = "running"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Kind, r.Target, r.Backend, r.Total, r.Succeeded, r.Failed, outcome)
	}
	return w.Flush()
}

func runHistoryClear(cmd *cobra.Command, yes bool) error {
	confirmed, err := prompt.DefaultConfirmer().Confirm("Delete all recorded runs?", yes)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	removed, err := store.Clear(context.Background())
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s).\n", removed)
	return nil
}
