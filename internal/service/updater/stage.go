package updater

import "fmt"

// Stage names one step of the update pipeline. Stages run strictly in
// order; each stage's output is the next stage's required input.
type Stage string

// Pipeline stages, in execution order.
const (
	StageCheckingVersions Stage = "checking versions"
	StageDownloading      Stage = "downloading"
	StageExtracting       Stage = "extracting"
	StageMaterializing    Stage = "materializing"
	StageActivating       Stage = "activating"
)

// StageError wraps a failure with the pipeline stage it occurred in.
// Any stage failure aborts the whole run; there are no retries.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// failAt annotates a non-nil error with its stage.
func failAt(stage Stage, err error) error {
	if err == nil {
		return nil
	}

	return &StageError{Stage: stage, Err: err}
}
