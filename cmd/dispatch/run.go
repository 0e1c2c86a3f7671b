package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/dispatch/internal/api"
	"github.com/ShayCichocki/dispatch/internal/config"
	"github.com/ShayCichocki/dispatch/internal/delegate"
	"github.com/ShayCichocki/dispatch/internal/history"
	"github.com/ShayCichocki/dispatch/pkg/models"
)

var (
	runContextVars []string
	runWorkers     int
	runModel       string
	runPromptsFile string
	runNoHistory   bool
	runDebugLog    string
	runSignalsDir  string
)

var runCmd = &cobra.Command{
	Use:   "run \"task description\"",
	Short: "Delegate one task across orchestrator and workers",
	Long: `Run the full delegation pipeline for a single task.

The orchestrator call analyzes the task and emits a list of subtasks. One
worker call then executes each subtask, and the results are printed in the
order the orchestrator chose.

Context variables fill extra placeholders in custom prompt templates:

  dispatch run "write release notes" --context audience=operators --context product=dispatch

A long run can be aborted from another terminal by touching the stop file:

  touch .dispatch/signals/stop`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVar(&runContextVars, "context", nil, "Additional template variable as key=value (repeatable)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent worker calls (default from config; 1 = sequential)")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model override for both tiers")
	runCmd.Flags().StringVar(&runPromptsFile, "prompts", "", "Prompt templates YAML file")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Skip recording this run")
	runCmd.Flags().StringVar(&runDebugLog, "debug-log", "", "Write a delegation debug log to this path")
	runCmd.Flags().StringVar(&runSignalsDir, "signals-dir", filepath.Join(".dispatch", "signals"), "Directory watched for the stop file")
}

func runRun(cmd *cobra.Command, args []string) error {
	task := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pctx, err := parseContextVars(runContextVars)
	if err != nil {
		return err
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	opts, closeLogger, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	engine := delegate.New(client, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := api.NewSignalWatcher(runSignalsDir)
	if err != nil {
		return fmt.Errorf("starting signal watcher: %w", err)
	}
	defer watcher.Close()
	// A stop file left over from a previous run must not abort this one.
	if err := watcher.ClearStop(); err != nil {
		return fmt.Errorf("clearing stale stop file: %w", err)
	}

	ctx, cancel := watcher.WrapContext(ctx)
	defer cancel()

	result, err := engine.Process(ctx, task, pctx)
	if err != nil {
		return fmt.Errorf("delegation failed: %w", err)
	}

	printResult(result)

	input, output := client.Tracker().Total()
	fmt.Printf("\n%s %d calls, %d in / %d out tokens (~$%.4f)\n",
		color.New(color.FgHiBlack).Sprint("usage:"),
		client.Tracker().Calls(), input, output, client.Tracker().Cost())

	if cfg.History.Enabled && !runNoHistory {
		recordRun(cfg, task, string(client.Model()), result, input, output)
	}

	return nil
}

// newAPIClient builds the Anthropic client from config plus run flags.
func newAPIClient(cfg *config.Config) (*api.Client, error) {
	model := cfg.Anthropic.Model
	if runModel != "" {
		model = runModel
	}

	clientCfg := api.ClientConfig{
		Model:         anthropic.Model(model),
		MaxTokens:     cfg.Anthropic.MaxTokens,
		UseAWSBedrock: cfg.Bedrock.Enabled,
		AWSRegion:     cfg.Bedrock.Region,
		AWSProfile:    cfg.Bedrock.Profile,
	}

	if !cfg.Bedrock.Enabled {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		clientCfg.APIKey = key
	}

	return api.NewClient(clientCfg)
}

// engineOptions assembles delegate options from config plus run flags.
// The returned func closes the debug logger, if one was opened.
func engineOptions(cfg *config.Config) ([]delegate.Option, func(), error) {
	var opts []delegate.Option
	closeLogger := func() {}

	promptsFile := cfg.Prompts.File
	if runPromptsFile != "" {
		promptsFile = runPromptsFile
	}
	if promptsFile != "" {
		templates, err := config.LoadPromptTemplates(promptsFile)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, delegate.WithTemplates(templates.Orchestrator, templates.Worker))
	}

	workers := cfg.Defaults.Workers
	if runWorkers > 0 {
		workers = runWorkers
	}
	opts = append(opts, delegate.WithWorkers(workers))

	logPath := cfg.Defaults.DebugLog
	if runDebugLog != "" {
		logPath = runDebugLog
	}
	if logPath != "" {
		logger, err := delegate.NewDebugLogger(logPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, delegate.WithLogger(logger))
		closeLogger = func() { logger.Close() }
	}

	return opts, closeLogger, nil
}

// parseContextVars converts repeated key=value flags into a PromptContext.
func parseContextVars(pairs []string) (models.PromptContext, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	pctx := make(models.PromptContext, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --context value %q, expected key=value", pair)
		}
		pctx[key] = value
	}
	return pctx, nil
}

// printResult writes the analysis and per-worker sections to stdout.
func printResult(result *models.DelegationResult) {
	header := color.New(color.FgCyan, color.Bold)

	if result.Analysis != "" {
		header.Println("=== Analysis ===")
		fmt.Println(strings.TrimSpace(result.Analysis))
	}

	if len(result.Workers) == 0 {
		fmt.Println("\nNo subtasks were produced.")
		return
	}

	for i, w := range result.Workers {
		fmt.Println()
		header.Printf("=== Worker %d/%d (%s) ===\n", i+1, len(result.Workers), w.Kind)
		color.New(color.FgHiBlack).Printf("task: %s\n", w.Description)
		fmt.Println(strings.TrimSpace(w.Output))
	}
}

// recordRun stores a completed run; failures warn instead of failing the run.
func recordRun(cfg *config.Config, task, model string, result *models.DelegationResult, input, output int64) {
	path := cfg.History.Path
	if path == "" {
		path = history.DefaultDBPath()
	}

	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open history store: %v\n", err)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(&history.Run{
		Task:         task,
		Analysis:     result.Analysis,
		Model:        model,
		Workers:      result.Workers,
		InputTokens:  input,
		OutputTokens: output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
		return
	}

	fmt.Printf("%s %s\n", color.New(color.FgHiBlack).Sprint("recorded run:"), id)
}
