package operations

import (
	"time"
)

// FileOutcome is the result of one file in one phase: success with the
// written artifact path, or failure with its reason.
type FileOutcome struct {
	File   string
	Output string
	Err    error
}

// Succeeded reports whether the file was processed
func (o FileOutcome) Succeeded() bool {
	return o.Err == nil
}

// PhaseResult aggregates the outcomes of one batch phase
type PhaseResult struct {
	Processed []string      `json:"processed"`
	Failed    []string      `json:"failed"`
	Outcomes  []FileOutcome `json:"-"`
	// DirMissing is set when the phase's input directory did not exist.
	DirMissing bool `json:"dir_missing,omitempty"`
	// Cancelled is set when the context was cancelled between files.
	Cancelled bool `json:"cancelled,omitempty"`
}

func newPhaseResult() PhaseResult {
	return PhaseResult{Processed: []string{}, Failed: []string{}}
}

func (r *PhaseResult) add(o FileOutcome, name string) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Succeeded() {
		r.Processed = append(r.Processed, name)
	} else {
		r.Failed = append(r.Failed, name)
	}
}

// BatchResult summarizes a combined run. Processed lists the final reports
// written; Failed lists extraction failures followed by finalization
// failures.
type BatchResult struct {
	Processed []string      `json:"processed"`
	Failed    []string      `json:"failed"`
	Duration  time.Duration `json:"duration"`
	Cancelled bool          `json:"cancelled,omitempty"`
}
