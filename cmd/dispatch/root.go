package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Two-tier delegation engine for Claude",
	Long: `Dispatch runs an orchestrator/worker delegation workflow: a single
orchestrator call breaks an open-ended task into typed subtasks, one worker
call executes each subtask independently, and the results are collected into
one aggregate answer.

Core behavior:
- The orchestrator decides the decomposition at runtime; the number of
  subtasks is not known in advance
- Each worker sees only its own subtask plus the shared context
- Results keep the order the orchestrator emitted their subtasks
- Completed runs are recorded for later inspection (see "dispatch history")`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
