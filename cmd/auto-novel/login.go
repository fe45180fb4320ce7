package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f559/auto-novel/internal/auth"
	"github.com/f559/auto-novel/internal/catalog"
	"github.com/f559/auto-novel/internal/prompt"
)

func newLoginCmd() *cobra.Command {
	var catalogURL string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the catalog and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, catalogURL)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&catalogURL, "catalog", "", "Catalog base URL override")
	return cmd
}

func runLogin(cmd *cobra.Command, catalogURL string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if catalogURL == "" {
		catalogURL = cfg.CatalogURL
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, "Email or username: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("error reading username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password, err := promptForSecret("Password: ")
	if err != nil {
		return fmt.Errorf("error reading password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	ctx, stop := signalContext()
	defer stop()
	token, err := catalog.NewClient(catalogURL, "").SignIn(ctx, username, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	if err := auth.SaveKey(auth.CredentialCatalog, token); err != nil {
		return fmt.Errorf("error saving token: %w", err)
	}
	fmt.Fprintln(out, "Signed in. Catalog token saved to keychain.")
	return nil
}

func newLogoutCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored catalog token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, err := prompt.DefaultConfirmer().Confirm("Delete the stored catalog token?", yes)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err := auth.DeleteKey(auth.CredentialCatalog); err != nil {
				return fmt.Errorf("error deleting token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Catalog token deleted from keychain.")
			return nil
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
