package models

// DefaultKind is the task kind used when the orchestrator omits one.
const DefaultKind = "default"

// PromptContext holds caller-supplied template variables. It is merged into
// every prompt-formatting operation alongside the engine's fixed fields and
// is never mutated by the engine.
type PromptContext map[string]string

// TaskRecord is one unit of delegated work parsed from the orchestrator's
// task list. Records are immutable once parsed; a record with no
// description is never produced.
type TaskRecord struct {
	// Kind labels the style or approach the worker should take.
	Kind string `json:"kind"`
	// Description is the instruction text for the worker.
	Description string `json:"description"`
}

// WorkerResult pairs one TaskRecord with the output of its worker call.
type WorkerResult struct {
	// Kind is copied from the originating TaskRecord.
	Kind string `json:"kind"`
	// Description is copied from the originating TaskRecord.
	Description string `json:"description"`
	// Output is the extracted response text from the worker call.
	Output string `json:"output"`
}

// DelegationResult is the aggregate outcome of one delegation run: the
// orchestrator's analysis plus one WorkerResult per parsed task, in the
// order the tasks appeared in the orchestrator's response.
type DelegationResult struct {
	// Analysis is the orchestrator's rationale for its decomposition.
	Analysis string `json:"analysis"`
	// Workers holds one result per dispatched task, in parse order.
	Workers []WorkerResult `json:"workers"`
}
