package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

// Starter launches a scoring run and returns its run id without waiting for
// the run to finish.
type Starter interface {
	Start(ctx context.Context, sessionID uuid.UUID) (string, error)
}

// TemporalStarter starts ScorePracticeSessionWorkflow on a Temporal cluster
type TemporalStarter struct {
	client    client.Client
	taskQueue string
	timeout   time.Duration
}

// NewTemporalStarter creates a starter for taskQueue
func NewTemporalStarter(c client.Client, taskQueue string) *TemporalStarter {
	return &TemporalStarter{
		client:    c,
		taskQueue: taskQueue,
		timeout:   15 * time.Minute,
	}
}

// Start begins a run, or joins the open run for the same session
func (s *TemporalStarter) Start(ctx context.Context, sessionID uuid.UUID) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("temporal client is not configured")
	}
	opts := client.StartWorkflowOptions{
		ID:                       WorkflowID(sessionID.String()),
		TaskQueue:                s.taskQueue,
		WorkflowExecutionTimeout: s.timeout,
		WorkflowIDReusePolicy:    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, WorkflowName, sessionID.String())
	if err != nil {
		return "", fmt.Errorf("start temporal workflow: %w", err)
	}
	return run.GetRunID(), nil
}
