package delegate

import "fmt"

// Stages identify which pipeline call failed.
const (
	StageOrchestrator = "orchestrator"
	StageWorker       = "worker"
)

// CallError reports a failed call to the text-generation collaborator. The
// failing stage and, for worker calls, the zero-based task index identify
// where in the pipeline the run aborted. The collaborator's error is
// carried unmodified.
type CallError struct {
	// Stage is StageOrchestrator or StageWorker.
	Stage string
	// TaskIndex is the worker's task position, or -1 for the orchestrator call.
	TaskIndex int
	// Err is the underlying collaborator failure.
	Err error
}

func (e *CallError) Error() string {
	if e.Stage == StageWorker {
		return fmt.Sprintf("worker call %d failed: %v", e.TaskIndex, e.Err)
	}
	return fmt.Sprintf("orchestrator call failed: %v", e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
