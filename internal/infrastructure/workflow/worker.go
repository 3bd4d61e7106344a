package workflow

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	sdkworkflow "go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/internal/usecase/scoring"
)

// Worker polls the scoring task queue
type Worker struct {
	w         worker.Worker
	taskQueue string
	logger    *zap.Logger
}

// NewWorker registers the scoring workflow and its activities on taskQueue
func NewWorker(c client.Client, taskQueue string, acts *scoring.Activities, logger *zap.Logger) (*Worker, error) {
	if c == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if acts == nil {
		return nil, fmt.Errorf("scoring activities are required")
	}

	w := worker.New(c, taskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     8,
		MaxConcurrentWorkflowTaskExecutionSize: 8,
	})
	w.RegisterWorkflowWithOptions(scoring.ScorePracticeSessionWorkflow, sdkworkflow.RegisterOptions{Name: scoring.WorkflowName})
	w.RegisterActivity(acts)

	return &Worker{w: w, taskQueue: taskQueue, logger: logger}, nil
}

// Run polls until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	if err := w.w.Start(); err != nil {
		return fmt.Errorf("start temporal worker: %w", err)
	}
	if w.logger != nil {
		w.logger.Info("Temporal worker started", zap.String("task_queue", w.taskQueue))
	}

	<-ctx.Done()
	w.w.Stop()
	if w.logger != nil {
		w.logger.Info("Temporal worker stopped", zap.String("task_queue", w.taskQueue))
	}
	return nil
}
