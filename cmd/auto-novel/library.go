package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f559/auto-novel/internal/job"
)

func newLibraryCmd() *cobra.Command {
	opts := jobOptions{}
	cmd := &cobra.Command{
		Use:   "library <novelId> <volumeId>",
		Short: "Translate one volume of a library novel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			novelID, volumeID := args[0], args[1]
			target := fmt.Sprintf("%s/%s", novelID, volumeID)
			return runJob(cmd, &opts, "library", target, func(cb job.Callbacks) job.Job {
				return job.Library{
					NovelID:          novelID,
					VolumeID:         volumeID,
					TranslateExpired: opts.translateExpired,
					Callbacks:        cb,
				}
			})
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addJobFlags(cmd, &opts)
	return cmd
}
