package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/f559/auto-novel/internal/apperrors"
	"github.com/f559/auto-novel/internal/auth"
	"github.com/f559/auto-novel/internal/backend"
	"github.com/f559/auto-novel/internal/catalog"
	"github.com/f559/auto-novel/internal/cleanup"
	"github.com/f559/auto-novel/internal/config"
	"github.com/f559/auto-novel/internal/files"
	"github.com/f559/auto-novel/internal/history"
	"github.com/f559/auto-novel/internal/job"
	"github.com/f559/auto-novel/internal/logger"
	"github.com/f559/auto-novel/internal/pipeline"
)

// Package-level seams so tests can fake the keychain and the terminal.
var (
	isTerminal      = term.IsTerminal
	getKey          = auth.GetKey
	getEnvKey       = auth.GetEnvKey
	getStatus       = auth.GetStatus
	promptForSecret = auth.PromptForSecret
	loadConfig      = config.Load
	openHistory     = func(path string) (historyStore, error) { return history.Open(path) }
)

// historyStore is the slice of history.Store the run path uses.
type historyStore interface {
	Start(ctx context.Context, kind, target, backend string) (string, error)
	SetTotal(ctx context.Context, id string, total int) error
	Finish(ctx context.Context, id string, succeeded, failed int, outcome string) error
	Close() error
}

// jobOptions carries the flags shared by the web, library, and local
// commands.
type jobOptions struct {
	backendID      string
	gptMode        string
	gptEndpoint    string
	gptModel       string
	sakuraEndpoint string
	sakuraLlama    bool

	translateExpired bool

	allowEnv    bool
	envOnly     bool
	debug       bool
	logFilePath string
	catalogURL  string
}

func addJobFlags(cmd *cobra.Command, opts *jobOptions) {
	cmd.Flags().StringVar(&opts.backendID, "backend", "sakura", "Translation backend (baidu, youdao, gpt, sakura)")
	cmd.Flags().StringVar(&opts.gptMode, "gpt-mode", "api", "GPT access mode (api or web)")
	cmd.Flags().StringVar(&opts.gptEndpoint, "gpt-endpoint", "", "GPT endpoint override")
	cmd.Flags().StringVar(&opts.gptModel, "gpt-model", "", "GPT model override")
	cmd.Flags().StringVar(&opts.sakuraEndpoint, "sakura-endpoint", "", "Sakura server endpoint override")
	cmd.Flags().BoolVar(&opts.sakuraLlama, "sakura-llama", false, "Use the llama.cpp completion API for Sakura")
	cmd.Flags().BoolVar(&opts.translateExpired, "expired", false, "Also translate chapters whose translation has expired")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading credentials from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for credentials")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.Flags().StringVar(&opts.catalogURL, "catalog", "", "Catalog base URL override")
}

// warnUnusedBackendFlags notes explicitly set backend-specific flags the
// selected backend will never read.
func warnUnusedBackendFlags(cmd *cobra.Command, backendID string) {
	prefixes := map[string]string{"gpt": "gpt-", "sakura": "sakura-"}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		for id, prefix := range prefixes {
			if id != backendID && strings.HasPrefix(f.Name, prefix) {
				logger.Warn("Flag is ignored by the selected backend", "flag", f.Name, "backend", backendID)
			}
		}
	})
}

// resolveCredential finds a credential: keychain first, environment when
// allowed, terminal prompt as the interactive fallback.
func resolveCredential(credential string, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, ok := getEnvKey(credential); ok {
			return key, "Environment Variable", nil
		}
		return "", "", fmt.Errorf("env-only set but %s is not set", auth.EnvVarName(credential))
	}

	if key, source := getKey(credential, false); key != "" {
		return key, source, nil
	}

	if allowEnv {
		if key, ok := getEnvKey(credential); ok {
			return key, "Environment Variable", nil
		}
	}

	if isTerminal(int(os.Stdin.Fd())) {
		label := "Catalog access token"
		if credential == auth.CredentialGPT {
			label = "GPT API key or access token"
		}
		key, err := promptForSecret(fmt.Sprintf("%s (press Enter to skip): ", label))
		if err != nil {
			return "", "", fmt.Errorf("error reading credential: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), "Terminal Prompt", nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no credential available (non-interactive shell); set keychain or use --allow-env")
	}
	if allowEnv {
		return "", "", fmt.Errorf("credential is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("credential is required; not found in keychain (environment disabled by default; use --allow-env)")
}

// resolveBackend builds the backend descriptor from flags with config-file
// defaults filled in.
func (o *jobOptions) resolveBackend(cfg config.Config) (backend.Descriptor, error) {
	switch strings.ToLower(o.backendID) {
	case "baidu":
		return backend.Baidu{}, nil
	case "youdao":
		return backend.Youdao{}, nil
	case "gpt":
		var mode backend.GPTMode
		switch strings.ToLower(o.gptMode) {
		case "api":
			mode = backend.ModeAPI
		case "web":
			mode = backend.ModeWeb
		default:
			return nil, fmt.Errorf("invalid gpt mode %q (must be api or web)", o.gptMode)
		}
		key, source, err := resolveCredential(auth.CredentialGPT, o.allowEnv, o.envOnly)
		if err != nil {
			return nil, err
		}
		logger.Info("Using credential", "credential", auth.CredentialGPT, "source", source)
		endpoint := o.gptEndpoint
		if endpoint == "" {
			endpoint = cfg.GPT.Endpoint
		}
		model := o.gptModel
		if model == "" {
			model = cfg.GPT.Model
		}
		return backend.GPT{Mode: mode, Endpoint: endpoint, Credential: key, Model: model}, nil
	case "sakura":
		endpoint := o.sakuraEndpoint
		if endpoint == "" {
			endpoint = cfg.Sakura.Endpoint
		}
		if endpoint == "" {
			defaults, _ := backend.DefaultsFor("sakura")
			endpoint = defaults.Endpoint
		}
		return backend.Sakura{Endpoint: endpoint, UseLlamaAPI: o.sakuraLlama}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (must be baidu, youdao, gpt, or sakura)", o.backendID)
	}
}

func (o *jobOptions) initLogging() error {
	logLevel := logger.LevelInfo
	if o.debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if o.logFilePath != "" {
		if err := files.RejectSymlinkPath(o.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(o.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)
	return nil
}

// runJob drives one job end to end: logging, catalog client, history row,
// progress rendering, and the pipeline itself. makeJob receives the callback
// record to embed in the descriptor.
func runJob(cmd *cobra.Command, opts *jobOptions, kind, target string, makeJob func(cb job.Callbacks) job.Job) error {
	if err := opts.initLogging(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalogURL := opts.catalogURL
	if catalogURL == "" {
		catalogURL = cfg.CatalogURL
	}

	desc, err := opts.resolveBackend(cfg)
	if err != nil {
		return err
	}
	warnUnusedBackendFlags(cmd, desc.ID())

	token, _ := getKey(auth.CredentialCatalog, opts.allowEnv || opts.envOnly)
	if token == "" {
		logger.Warn("No catalog token found; uploads may be rejected. Run 'auto-novel login' first.")
	}

	store, err := openHistory(cfg.HistoryPath)
	if err != nil {
		return err
	}
	cleanup.Register("history db", store.Close)

	ctx, stop := signalContext()
	defer stop()

	runID, err := store.Start(ctx, kind, target, desc.ID())
	if err != nil {
		logger.Warn("Failed to record run in history", "error", err)
	}

	out := cmd.OutOrStdout()
	var succeeded, failed int
	cb := job.Callbacks{
		OnStart: func(total int) {
			fmt.Fprintf(out, "Selected %d chapter(s)\n", total)
			if runID != "" {
				if err := store.SetTotal(ctx, runID, total); err != nil {
					logger.Warn("Failed to update history", "error", err)
				}
			}
		},
		OnChapterSuccess: func(counts job.Counts) {
			succeeded++
			switch {
			case counts.Source != nil && counts.Target != nil:
				fmt.Fprintf(out, "  ok (%d/%d paragraphs, %d done)\n", *counts.Target, *counts.Source, succeeded)
			case counts.Target != nil:
				fmt.Fprintf(out, "  ok (%d translated, %d done)\n", *counts.Target, succeeded)
			default:
				fmt.Fprintf(out, "  ok (unchanged, %d done)\n", succeeded)
			}
		},
		OnChapterFailure: func() {
			failed++
		},
		OnLog: func(message string) {
			fmt.Fprintln(out, message)
		},
	}

	runErr := pipeline.Run(ctx, pipeline.Config{
		Job:     makeJob(cb),
		Backend: desc,
		Catalog: catalog.NewClient(catalogURL, token),
	})

	outcome := history.OutcomeCompleted
	if runErr != nil {
		outcome = history.OutcomeFailed
		if apperrors.IsAbort(runErr) {
			outcome = history.OutcomeAborted
		}
	}
	if runID != "" {
		// The run context may already be canceled; closing out the
		// history row should still succeed.
		if err := store.Finish(context.Background(), runID, succeeded, failed, outcome); err != nil {
			logger.Warn("Failed to update history", "error", err)
		}
	}

	fmt.Fprintf(out, "Finished: %d succeeded, %d failed\n", succeeded, failed)
	if runErr != nil {
		if ctx.Err() != nil {
			logger.Warn("Job canceled", "error", runErr)
			return nil
		}
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d chapter(s) failed", failed)
	}
	return nil
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
