package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runStrict bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract and finalize in one pass",
	Long: `Run extraction over the input folder, then finalization when at least one
file was extracted. Processed lists the final reports written; Failed lists
extraction failures followed by finalization failures.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Exit with an error when any file failed")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	p := application.Paths
	result := application.Orchestrator.Run(cmd.Context(), p.InputDir, p.TempDir, p.OutputDir)
	printSummary(cmd.OutOrStdout(), result.Processed, result.Failed, result.Duration, result.Cancelled)

	if runStrict && len(result.Failed) > 0 {
		return fmt.Errorf("%d files failed", len(result.Failed))
	}
	return nil
}
