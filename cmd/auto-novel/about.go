package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "auto-novel — Batch translator for the novel catalog")
			fmt.Fprintln(out, "https://github.com/f559/auto-novel")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
