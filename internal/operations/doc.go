// Package operations runs the two batch phases of report generation.
//
// Orchestrator: ExtractPhase lists the input directory and writes one
// intermediate report per source file; FinalizePhase lists the temp
// directory, assembles final reports, then clears the intermediates; Run
// chains both. Per-file failures become FileOutcome values and never stop
// a batch. A missing directory yields an empty result.
//
// JobQueue: runs phases on one background worker for the HTTP front end.
// Cancellation is observed between files, never inside one.
//
// Example usage:
//
//	orch := operations.NewOrchestrator(operations.Options{TempDir: "reports"})
//	res := orch.Run(ctx, "xls_folder", "reports", "rapport2")
//	fmt.Println(len(res.Processed), len(res.Failed), res.Duration)
package operations
