package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f559/auto-novel/internal/job"
)

type webOptions struct {
	jobOptions
	startIndex int
	endIndex   int
	sync       bool
}

func newWebCmd() *cobra.Command {
	opts := webOptions{}
	cmd := &cobra.Command{
		Use:   "web <provider> <novelId>",
		Short: "Translate a provider-crawled novel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeb(cmd, args, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addJobFlags(cmd, &opts.jobOptions)
	cmd.Flags().IntVar(&opts.startIndex, "start", 0, "First chapter index to consider (inclusive)")
	cmd.Flags().IntVar(&opts.endIndex, "end", 65536, "Chapter index to stop before (exclusive)")
	cmd.Flags().BoolVar(&opts.sync, "sync", false, "Re-fetch chapters from the provider before translating")
	return cmd
}

func runWeb(cmd *cobra.Command, args []string, opts *webOptions) error {
	provider, novelID := args[0], args[1]
	if opts.startIndex < 0 || opts.endIndex < opts.startIndex {
		return fmt.Errorf("invalid chapter window [%d, %d)", opts.startIndex, opts.endIndex)
	}

	target := fmt.Sprintf("%s/%s", provider, novelID)
	return runJob(cmd, &opts.jobOptions, "web", target, func(cb job.Callbacks) job.Job {
		return job.Web{
			Provider:         provider,
			NovelID:          novelID,
			StartIndex:       opts.startIndex,
			EndIndex:         opts.endIndex,
			SyncFromSource:   opts.sync,
			TranslateExpired: opts.translateExpired,
			Callbacks:        cb,
		}
	})
}
