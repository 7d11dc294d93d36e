package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract intermediate reports",
	Long: `Extract the header block, unique failure reasons and unique client IPs of
every supported export in the input folder into <stem>_reporte.txt files in
the temp folder.

With file arguments, only those files are extracted, whatever their
extension; unsupported formats produce a report with placeholders only.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	orch := application.Orchestrator

	if len(args) == 0 {
		result := orch.ExtractPhase(ctx, application.Paths.InputDir)
		if result.DirMissing {
			fmt.Fprintf(cmd.ErrOrStderr(), "Input folder %s does not exist\n", application.Paths.InputDir)
		}
		printSummary(cmd.OutOrStdout(), result.Processed, result.Failed, 0, result.Cancelled)
		return nil
	}

	var processed, failed []string
	for _, path := range args {
		outcome := orch.ExtractFile(ctx, path, application.Paths.TempDir)
		if outcome.Succeeded() {
			processed = append(processed, outcome.File)
		} else {
			failed = append(failed, outcome.File)
		}
	}
	printSummary(cmd.OutOrStdout(), processed, failed, 0, false)
	return nil
}

