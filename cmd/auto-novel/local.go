package main

import (
	"github.com/spf13/cobra"

	"github.com/f559/auto-novel/internal/job"
)

func newLocalCmd() *cobra.Command {
	opts := jobOptions{}
	cmd := &cobra.Command{
		Use:   "local <volumeId>",
		Short: "Translate a volume from your personal workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			volumeID := args[0]
			return runJob(cmd, &opts, "local", volumeID, func(cb job.Callbacks) job.Job {
				return job.Local{
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
