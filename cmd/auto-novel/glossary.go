package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f559/auto-novel/internal/catalog"
	"github.com/f559/auto-novel/internal/files"
	"github.com/f559/auto-novel/internal/glossary"
)

func newGlossaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Inspect and manage term glossaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetUsageTemplate(envUsageTemplate)
	cmd.AddCommand(
		newGlossaryShowCmd(),
		newGlossaryPullCmd(),
		newGlossarySuggestCmd(),
	)
	return cmd
}

func newGlossaryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <glossary.yaml>",
		Short: "Print a saved glossary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := glossary.LoadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(g) == 0 {
				fmt.Fprintln(out, "Glossary is empty.")
				return nil
			}
			for _, term := range g.Terms() {
				fmt.Fprintf(out, "%s => %s\n", term, g[term])
			}
			fmt.Fprintf(out, "%d term(s)\n", len(g))
			return nil
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newGlossaryPullCmd() *cobra.Command {
	var (
		catalogURL string
		outPath    string
		backendID  string
	)
	cmd := &cobra.Command{
		Use:   "pull <provider> <novelId>",
		Short: "Save a web novel's server glossary to a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if catalogURL == "" {
				catalogURL = cfg.CatalogURL
			}
			if outPath == "" {
				outPath = fmt.Sprintf("%s-%s-glossary.yaml", args[0], args[1])
			}

			ctx, stop := signalContext()
			defer stop()
			snapshot, err := catalog.NewClient(catalogURL, "").GetWebTask(ctx, args[0], args[1], backendID)
			if err != nil {
				return fmt.Errorf("failed to fetch task: %w", err)
			}
			safePath, changed, err := files.SafePath(outPath)
			if err != nil {
				return fmt.Errorf("failed to resolve output path: %w", err)
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Output path adjusted to avoid overwrite: %s\n", safePath)
				outPath = safePath
			}
			if err := glossary.SaveFile(outPath, glossary.Glossary(snapshot.Glossary)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d term(s) to %s\n", len(snapshot.Glossary), outPath)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&catalogURL, "catalog", "", "Catalog base URL override")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default <provider>-<novelId>-glossary.yaml)")
	cmd.Flags().StringVar(&backendID, "backend", "sakura", "Backend whose task snapshot to read")
	return cmd
}

func newGlossarySuggestCmd() *cobra.Command {
	var (
		minCount int
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "suggest <text-file>",
		Short: "Propose glossary terms from a text file by katakana frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			paragraphs := strings.Split(string(data), "\n")
			candidates := glossary.Suggest(paragraphs, minCount, limit)
			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No candidate terms found.")
				return nil
			}
			for _, c := range candidates {
				fmt.Fprintf(out, "%4d  %s\n", c.Count, c.Term)
			}
			return nil
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().IntVar(&minCount, "min-count", 3, "Minimum occurrences for a candidate")
	cmd.Flags().IntVar(&limit, "limit", 30, "Maximum number of candidates (0 for all)")
	return cmd
}
