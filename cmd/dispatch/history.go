package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/dispatch/internal/config"
	"github.com/ShayCichocki/dispatch/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded delegation runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run with its worker results",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

// openHistoryStore opens the configured history database.
func openHistoryStore() (*history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	path := cfg.History.Path
	if path == "" {
		path = history.DefaultDBPath()
	}
	return history.Open(path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, run := range runs {
		task := run.Task
		if len(task) > 60 {
			task = task[:57] + "..."
		}
		fmt.Printf("%s  %s  %s\n",
			color.New(color.FgCyan).Sprint(run.ID[:8]),
			run.CreatedAt.Format("2006-01-02 15:04"),
			task)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := resolveRun(store, args[0])
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)

	fmt.Printf("run:     %s\n", run.ID)
	fmt.Printf("date:    %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("model:   %s\n", run.Model)
	fmt.Printf("tokens:  %d in / %d out\n", run.InputTokens, run.OutputTokens)
	fmt.Printf("task:    %s\n", run.Task)

	if run.Analysis != "" {
		fmt.Println()
		header.Println("=== Analysis ===")
		fmt.Println(strings.TrimSpace(run.Analysis))
	}

	for i, w := range run.Workers {
		fmt.Println()
		header.Printf("=== Worker %d/%d (%s) ===\n", i+1, len(run.Workers), w.Kind)
		color.New(color.FgHiBlack).Printf("task: %s\n", w.Description)
		fmt.Println(strings.TrimSpace(w.Output))
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := resolveRun(store, args[0])
	if err != nil {
		return err
	}

	if err := store.DeleteRun(run.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", run.ID)
	return nil
}

// resolveRun looks a run up by full ID, falling back to a unique prefix
// match across recent runs.
func resolveRun(store *history.Store, id string) (*history.Run, error) {
	run, err := store.GetRun(id)
	if err == nil {
		return run, nil
	}

	runs, listErr := store.ListRuns(1000)
	if listErr != nil {
		return nil, err
	}

	var match *history.Run
	for _, candidate := range runs {
		if strings.HasPrefix(candidate.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run prefix %q is ambiguous", id)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, err
	}
	return store.GetRun(match.ID)
}
