package scoring

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/johnquangdev/practice-scoring/pkg/ai"
)

// WorkflowName is the registered name of ScorePracticeSessionWorkflow
const WorkflowName = "score_practice_session"

// WorkflowStatusCompleted is reported by a successful run
const WorkflowStatusCompleted = "completed"

// WorkflowID is the durable id of the scoring run for a session. Starting a
// second run while one is open joins the existing run.
func WorkflowID(sessionID string) string {
	return "score-session-" + sessionID
}

// WorkflowResult summarizes a finished run
type WorkflowResult struct {
	SessionID    string  `json:"session_id"`
	OverallScore float64 `json:"overall_score"`
	Status       string  `json:"status"`
}

// Step timeouts
const (
	dbStepTimeout    = 30 * time.Second
	modelStepTimeout = 3 * time.Minute
)

func stepOptions(timeout time.Duration) workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
}

// ScorePracticeSessionWorkflow grades one practice session. Each step is an
// activity, so a crash resumes after the last completed step. Failures in
// any step are resolved to "failed" here unless the persistence step already
// did so.
func ScorePracticeSessionWorkflow(ctx workflow.Context, sessionID string) (*WorkflowResult, error) {
	var a *Activities
	logger := workflow.GetLogger(ctx)
	dbCtx := workflow.WithActivityOptions(ctx, stepOptions(dbStepTimeout))
	modelCtx := workflow.WithActivityOptions(ctx, stepOptions(modelStepTimeout))

	// Step 1: fetch the practice session
	var session SessionSnapshot
	if err := workflow.ExecuteActivity(dbCtx, a.FetchPracticeSession, sessionID).Get(ctx, &session); err != nil {
		return nil, markFailed(ctx, sessionID, "fetch_session", err)
	}

	// Step 2: fetch the rubric
	var rubric Rubric
	if err := workflow.ExecuteActivity(dbCtx, a.FetchRubric).Get(ctx, &rubric); err != nil {
		return nil, markFailed(ctx, sessionID, "fetch_rubric", err)
	}

	// Step 3: grade
	var scores ai.Scorecard
	if err := workflow.ExecuteActivity(modelCtx, a.ScoreWithAI, ScoreInput{
		TranscriptText: session.TranscriptText,
		RubricPrompt:   rubric.Prompt,
	}).Get(ctx, &scores); err != nil {
		return nil, markFailed(ctx, sessionID, "score_with_ai", err)
	}

	// Step 4: persist
	if err := workflow.ExecuteActivity(dbCtx, a.SaveScorecard, SaveScorecardInput{
		SessionID:  session.ID,
		UserID:     session.UserID,
		ActivityID: session.ActivityID,
		Scores:     scores,
	}).Get(ctx, nil); err != nil {
		if savedStatusResolved(err) {
			return nil, err
		}
		return nil, markFailed(ctx, sessionID, "save_scorecard", err)
	}

	logger.Info("Scoring workflow completed", "session_id", sessionID, "overall_score", scores.OverallScore)
	return &WorkflowResult{
		SessionID:    sessionID,
		OverallScore: scores.OverallScore,
		Status:       WorkflowStatusCompleted,
	}, nil
}

// markFailed runs MarkScoringFailed on a disconnected context so a cancelled
// run still resolves its status, then returns the original step error.
func markFailed(ctx workflow.Context, sessionID, step string, stepErr error) error {
	var a *Activities
	logger := workflow.GetLogger(ctx)
	logger.Warn("Scoring step failed", "session_id", sessionID, "step", step, "error", stepErr)

	dctx, cancel := workflow.NewDisconnectedContext(ctx)
	defer cancel()
	dctx = workflow.WithActivityOptions(dctx, stepOptions(dbStepTimeout))
	if err := workflow.ExecuteActivity(dctx, a.MarkScoringFailed, sessionID).Get(dctx, nil); err != nil {
		logger.Error("Failed to mark session as failed", "session_id", sessionID, "error", err)
	}
	return stepErr
}

// savedStatusResolved reports whether SaveScorecard already wrote "failed"
// before returning err.
func savedStatusResolved(err error) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == ErrTypeScorecardSaveFailed
}
