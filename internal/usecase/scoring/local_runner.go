package scoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/pkg/ai"
)

// LocalRunner executes the scoring steps in-process when no Temporal cluster
// is configured. Steps are retried with exponential backoff using the same
// retryability rules as the workflow. Runs do not survive a restart.
type LocalRunner struct {
	acts        *Activities
	logger      *zap.Logger
	maxAttempts uint64
	interval    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[uuid.UUID]string
}

// NewLocalRunner creates a runner over acts
func NewLocalRunner(acts *Activities, logger *zap.Logger) *LocalRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalRunner{
		acts:        acts,
		logger:      logger,
		maxAttempts: 3,
		interval:    time.Second,
		ctx:         ctx,
		cancel:      cancel,
		inflight:    make(map[uuid.UUID]string),
	}
}

// Start launches a background run. A second start for a session whose run
// is still going returns the existing run id.
func (r *LocalRunner) Start(_ context.Context, sessionID uuid.UUID) (string, error) {
	r.mu.Lock()
	if runID, ok := r.inflight[sessionID]; ok {
		r.mu.Unlock()
		return runID, nil
	}
	runID := uuid.NewString()
	r.inflight[sessionID] = runID
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.inflight, sessionID)
			r.mu.Unlock()
		}()

		result, err := r.Run(r.ctx, sessionID.String())
		if r.logger == nil {
			return
		}
		if err != nil {
			r.logger.Warn("scoring.run_failed",
				zap.String("session_id", sessionID.String()),
				zap.String("run_id", runID),
				zap.Error(err),
			)
			return
		}
		r.logger.Info("scoring.run_completed",
			zap.String("session_id", sessionID.String()),
			zap.String("run_id", runID),
			zap.Float64("overall_score", result.OverallScore),
		)
	}()

	return runID, nil
}

// Run executes the pipeline synchronously
func (r *LocalRunner) Run(ctx context.Context, sessionID string) (*WorkflowResult, error) {
	session, err := runStep(ctx, r, func(ctx context.Context) (*SessionSnapshot, error) {
		return r.acts.FetchPracticeSession(ctx, sessionID)
	})
	if err != nil {
		return nil, r.markFailed(sessionID, err)
	}

	rubric, err := runStep(ctx, r, r.acts.FetchRubric)
	if err != nil {
		return nil, r.markFailed(sessionID, err)
	}

	scores, err := runStep(ctx, r, func(ctx context.Context) (*ai.Scorecard, error) {
		return r.acts.ScoreWithAI(ctx, ScoreInput{
			TranscriptText: session.TranscriptText,
			RubricPrompt:   rubric.Prompt,
		})
	})
	if err != nil {
		return nil, r.markFailed(sessionID, err)
	}

	_, err = runStep(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.acts.SaveScorecard(ctx, SaveScorecardInput{
			SessionID:  session.ID,
			UserID:     session.UserID,
			ActivityID: session.ActivityID,
			Scores:     *scores,
		})
	})
	if err != nil {
		if savedStatusResolved(err) {
			return nil, err
		}
		return nil, r.markFailed(sessionID, err)
	}

	return &WorkflowResult{
		SessionID:    sessionID,
		OverallScore: scores.OverallScore,
		Status:       WorkflowStatusCompleted,
	}, nil
}

// Wait blocks until every started run has returned
func (r *LocalRunner) Wait() {
	r.wg.Wait()
}

// Close cancels in-flight runs and waits for them
func (r *LocalRunner) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *LocalRunner) markFailed(sessionID string, stepErr error) error {
	// The run context may already be cancelled; resolve the status regardless.
	ctx, cancel := context.WithTimeout(context.Background(), dbStepTimeout)
	defer cancel()
	if err := r.acts.MarkScoringFailed(ctx, sessionID); err != nil && r.logger != nil {
		r.logger.Error("scoring.mark_failed_error", zap.String("session_id", sessionID), zap.Error(err))
	}
	return stepErr
}

func (r *LocalRunner) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.interval
	b.MaxInterval = 30 * time.Second
	var policy backoff.BackOff = b
	if r.maxAttempts > 1 {
		policy = backoff.WithMaxRetries(b, r.maxAttempts-1)
	} else {
		policy = &backoff.StopBackOff{}
	}
	return backoff.WithContext(policy, ctx)
}

func runStep[T any](ctx context.Context, r *LocalRunner, step func(context.Context) (T, error)) (T, error) {
	return backoff.RetryWithData(func() (T, error) {
		out, err := step(ctx)
		if err != nil && !isRetryableStepError(err) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}, r.backOff(ctx))
}

// isRetryableStepError applies the workflow retry policy: non-retryable
// application errors stop immediately, everything else is retried until the
// attempts run out.
func isRetryableStepError(err error) bool {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return !appErr.NonRetryable()
	}
	return !errors.Is(err, context.Canceled)
}
