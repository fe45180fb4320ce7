package main

import (
	"fmt"
	"os"

	"github.com/f559/auto-novel/internal/cleanup"
	"github.com/f559/auto-novel/internal/version"
	"github.com/spf13/cobra"
)

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto-novel",
		Short: "Batch translator for the novel catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			_ = cmd.Usage()
			return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	cmd.AddCommand(
		newAboutCmd(),
		newWebCmd(),
		newLibraryCmd(),
		newLocalCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newGlossaryCmd(),
		newHistoryCmd(),
		newEnvCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.Short = "auto-novel — Batch translator for the novel catalog"
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}
