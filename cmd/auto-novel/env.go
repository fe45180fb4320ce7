package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f559/auto-novel/internal/auth"
)

type envOptions struct {
	credential string
}

func newEnvCmd() *cobra.Command {
	opts := envOptions{}
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage credentials in OS Keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, &opts)
		},
	}

	cmd.SetUsageTemplate(envUsageTemplate)
	cmd.PersistentFlags().StringVar(&opts.credential, "credential", "gpt", "Credential to manage (catalog or gpt)")

	cmd.AddCommand(
		newEnvSetupCmd(&opts),
		newEnvDeleteCmd(&opts),
		newEnvStatusCmd(&opts),
	)
	return cmd
}

func newEnvSetupCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save a credential to keychain (prompt only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvSetup(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newEnvDeleteCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a credential from keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvDelete(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newEnvStatusCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show credential status (default if no action given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func validCredential(name string) (string, error) {
	switch strings.ToLower(name) {
	case auth.CredentialCatalog:
		return auth.CredentialCatalog, nil
	case auth.CredentialGPT:
		return auth.CredentialGPT, nil
	default:
		return "", fmt.Errorf("invalid credential. Must be 'catalog' or 'gpt'")
	}
}

func runEnvSetup(cmd *cobra.Command, opts *envOptions) error {
	credential, err := validCredential(opts.credential)
	if err != nil {
		return err
	}

	label := "Catalog access token"
	if credential == auth.CredentialGPT {
		label = "GPT API key or access token"
	}
	secret, err := promptForSecret(label + ": ")
	if err != nil {
		return fmt.Errorf("error reading credential: %w", err)
	}
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("a value is required for setup")
	}
	if err := auth.SaveKey(credential, secret); err != nil {
		return fmt.Errorf("error saving credential: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s credential to keychain.\n", credential)
	return nil
}

func runEnvDelete(cmd *cobra.Command, opts *envOptions) error {
	credential, err := validCredential(opts.credential)
	if err != nil {
		return err
	}
	if err := auth.DeleteKey(credential); err != nil {
		return fmt.Errorf("error deleting credential: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s credential from keychain.\n", credential)
	return nil
}

func runEnvStatus(cmd *cobra.Command, opts *envOptions) error {
	credential, err := validCredential(opts.credential)
	if err != nil {
		return err
	}

	if getStatus(credential) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s credential: Found (source=Keychain)\n", credential)
		return nil
	}
	if envKey, ok := getEnvKey(credential); ok && envKey != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s credential: Found (source=Environment Variable; disabled by default, use --allow-env)\n", credential)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s credential: Not Found (keychain empty, env not set)\n", credential)
	return nil
}
