// Package delegate drives the two-tier delegation pipeline: one orchestrator
// call decomposes a task, one worker call runs per subtask, and the results
// are aggregated in parse order.
package delegate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/dispatch/internal/decompose"
	"github.com/ShayCichocki/dispatch/internal/prompt"
	"github.com/ShayCichocki/dispatch/pkg/models"
)

// Tag names expected in collaborator responses.
const (
	analysisTag = "analysis"
	tasksTag    = "tasks"
	responseTag = "response"
)

// Completer is the text-generation collaborator: one prompt in, one response
// text out. Calls are synchronous and never retried by the engine.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine owns prompt formatting for both tiers and the dispatch loop.
// It is immutable after construction; each Process call is independent.
type Engine struct {
	llm          Completer
	orchestrator string
	worker       string
	workers      int
	logger       *DebugLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTemplates overrides the built-in orchestrator and worker prompt
// templates. An empty string keeps the corresponding default.
func WithTemplates(orchestrator, worker string) Option {
	return func(e *Engine) {
		if orchestrator != "" {
			e.orchestrator = orchestrator
		}
		if worker != "" {
			e.worker = worker
		}
	}
}

// WithWorkers sets the number of concurrent worker-tier calls. The default
// of 1 dispatches workers strictly one at a time.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger attaches a debug logger to the engine.
func WithLogger(logger *DebugLogger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine dispatching against the given collaborator.
func New(llm Completer, opts ...Option) *Engine {
	e := &Engine{
		llm:          llm,
		orchestrator: DefaultOrchestratorTemplate,
		worker:       DefaultWorkerTemplate,
		workers:      1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process runs the full pipeline for one task: orchestrator call, task list
// parsing, one worker call per parsed task, aggregation. Worker results keep
// the order the orchestrator emitted their tasks. On any failure the rest of
// the pipeline is abandoned and no partial result is returned.
func (e *Engine) Process(ctx context.Context, task string, pctx models.PromptContext) (*models.DelegationResult, error) {
	orchestratorPrompt, err := prompt.Format(e.orchestrator, prompt.Merge(pctx, map[string]string{
		"task": task,
	}))
	if err != nil {
		return nil, fmt.Errorf("format orchestrator prompt: %w", err)
	}

	e.logf("orchestrator call: task=%q context_vars=%d", task, len(pctx))

	response, err := e.llm.Complete(ctx, orchestratorPrompt)
	if err != nil {
		return nil, &CallError{Stage: StageOrchestrator, TaskIndex: -1, Err: err}
	}

	// An absent section is not an error at this layer: no analysis means an
	// empty rationale, no task list means nothing to dispatch.
	analysis, _ := prompt.ExtractTagged(response, analysisTag)
	tasksText, _ := prompt.ExtractTagged(response, tasksTag)

	records := decompose.ParseTasks(tasksText)
	e.logf("decomposed into %d tasks", len(records))

	var workers []models.WorkerResult
	if len(records) > 0 {
		if e.workers > 1 {
			workers, err = e.dispatchConcurrent(ctx, task, records, pctx)
		} else {
			workers, err = e.dispatchSequential(ctx, task, records, pctx)
		}
		if err != nil {
			return nil, err
		}
	}

	return &models.DelegationResult{
		Analysis: analysis,
		Workers:  workers,
	}, nil
}

// dispatchSequential runs one worker call at a time, in task order.
func (e *Engine) dispatchSequential(ctx context.Context, task string, records []models.TaskRecord, pctx models.PromptContext) ([]models.WorkerResult, error) {
	results := make([]models.WorkerResult, 0, len(records))
	for i, record := range records {
		result, err := e.runWorker(ctx, i, task, record, pctx)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// dispatchConcurrent fans worker calls out over a bounded pool. Each result
// lands at its task's index, so output order matches parse order regardless
// of completion order; the first failure cancels the remaining calls.
func (e *Engine) dispatchConcurrent(ctx context.Context, task string, records []models.TaskRecord, pctx models.PromptContext) ([]models.WorkerResult, error) {
	results := make([]models.WorkerResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, record := range records {
		g.Go(func() error {
			result, err := e.runWorker(gctx, i, task, record, pctx)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runWorker formats and issues one worker-tier call. Workers see only their
// own task record and the shared read-only context, never each other's output.
func (e *Engine) runWorker(ctx context.Context, index int, originalTask string, record models.TaskRecord, pctx models.PromptContext) (models.WorkerResult, error) {
	workerPrompt, err := prompt.Format(e.worker, prompt.Merge(pctx, map[string]string{
		"original_task":    originalTask,
		"task_type":        record.Kind,
		"task_description": record.Description,
	}))
	if err != nil {
		return models.WorkerResult{}, fmt.Errorf("format worker prompt: %w", err)
	}

	e.logf("worker %d call: type=%s", index, record.Kind)

	response, err := e.llm.Complete(ctx, workerPrompt)
	if err != nil {
		return models.WorkerResult{}, &CallError{Stage: StageWorker, TaskIndex: index, Err: err}
	}

	output, _ := prompt.ExtractTagged(response, responseTag)

	return models.WorkerResult{
		Kind:        record.Kind,
		Description: record.Description,
		Output:      output,
	}, nil
}

// logf writes to the engine's debug logger, if one is attached.
func (e *Engine) logf(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Log(format, args...)
	}
}
