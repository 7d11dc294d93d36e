package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Wrap intermediate reports into final reports",
	Long: `Wrap every <stem>_reporte.txt of the temp folder in the notification text,
write <stem>_reporte_final.txt into the output folder, then clear the
intermediate reports from the temp folder.`,
	Args: cobra.NoArgs,
	RunE: runFinalize,
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}

func runFinalize(cmd *cobra.Command, _ []string) error {
	result := application.Orchestrator.FinalizePhase(cmd.Context(), application.Paths.TempDir, application.Paths.OutputDir)
	if result.DirMissing {
		fmt.Fprintf(cmd.ErrOrStderr(), "Temp folder %s does not exist\n", application.Paths.TempDir)
	}
	printSummary(cmd.OutOrStdout(), result.Processed, result.Failed, 0, result.Cancelled)
	return nil
}
