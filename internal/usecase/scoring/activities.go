// Package scoring runs the post-session grading pipeline: fetch session,
// fetch rubric, grade with a structured-output model, persist the scorecard.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
	"github.com/johnquangdev/practice-scoring/pkg/ai"
	"github.com/johnquangdev/practice-scoring/pkg/retryable"
	"github.com/johnquangdev/practice-scoring/pkg/transcript"
)

// DefaultRubricLabel is the prompts.label holding the grading rubric
const DefaultRubricLabel = "scorecard_rubric"

// Non-retryable failure types. Anything else is treated as transient.
const (
	ErrTypeSessionNotFound       = "SessionNotFound"
	ErrTypeTranscriptUnavailable = "TranscriptUnavailable"
	ErrTypeRubricMissing         = "RubricMissing"
	ErrTypeInvalidScorecard      = "InvalidScorecard"
	ErrTypeGenerationFailed      = "GenerationFailed"
	ErrTypeScorecardSaveFailed   = "ScorecardSaveFailed"
)

// SessionSnapshot is what the pipeline needs from a practice session
type SessionSnapshot struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ActivityID     *string   `json:"activity_id,omitempty"`
	TranscriptText string    `json:"transcript_text"`
}

// Rubric is the grading template
type Rubric struct {
	ID     uuid.UUID `json:"id"`
	Prompt string    `json:"prompt"`
}

// ScoreInput is the grading request
type ScoreInput struct {
	TranscriptText string `json:"transcript_text"`
	RubricPrompt   string `json:"rubric_prompt"`
}

// SaveScorecardInput is the persistence request
type SaveScorecardInput struct {
	SessionID  uuid.UUID    `json:"session_id"`
	UserID     uuid.UUID    `json:"user_id"`
	ActivityID *string      `json:"activity_id,omitempty"`
	Scores     ai.Scorecard `json:"scores"`
}

// Activities holds the dependencies of every pipeline step. Each exported
// method is one independently retried step.
type Activities struct {
	Sessions    repositories.PracticeSessionRepository
	Scorecards  repositories.ScorecardRepository
	Prompts     repositories.PromptRepository
	Generator   ai.StructuredGenerator
	RubricLabel string
	Logger      *zap.Logger
}

// FetchPracticeSession loads the session, flips it to "scoring" and flattens
// its transcript. It never sets "failed"; that belongs to the caller.
func (a *Activities) FetchPracticeSession(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("Practice session not found: %s", sessionID), ErrTypeSessionNotFound, err)
	}

	session, err := a.Sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrPracticeSessionNotFound) {
			return nil, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("Practice session not found: %s", sessionID), ErrTypeSessionNotFound, err)
		}
		return nil, fmt.Errorf("failed to load practice session: %w", err)
	}
	if session.ID == uuid.Nil || session.UserID == uuid.Nil {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("Practice session not found: %s", sessionID), ErrTypeSessionNotFound, nil)
	}

	if err := a.Sessions.UpdateScoringStatus(ctx, session.ID, entities.ScoringStatusScoring); err != nil {
		return nil, fmt.Errorf("failed to mark session as scoring: %w", err)
	}

	text := transcript.Flatten(transcript.Parse(session.Transcript))
	if strings.TrimSpace(text) == "" {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("No valid transcript found for session: %s. %s", sessionID, transcript.Describe(session.Transcript)),
			ErrTypeTranscriptUnavailable, nil)
	}

	a.log().Info("scoring.session_fetched",
		zap.String("session_id", sessionID),
		zap.Int("transcript_chars", len(text)),
	)

	return &SessionSnapshot{
		ID:             session.ID,
		UserID:         session.UserID,
		ActivityID:     session.ActivityID,
		TranscriptText: text,
	}, nil
}

// FetchRubric loads the rubric prompt. A missing or blank rubric is an
// operator configuration error, never retried.
func (a *Activities) FetchRubric(ctx context.Context) (*Rubric, error) {
	label := a.rubricLabel()
	prompt, err := a.Prompts.FindByLabel(ctx, label)
	if err != nil {
		if errors.Is(err, entities.ErrPromptNotFound) {
			return nil, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("Scorecard rubric not found. Please add a prompt with label '%s' to the prompts table.", label),
				ErrTypeRubricMissing, err)
		}
		return nil, fmt.Errorf("failed to load rubric: %w", err)
	}
	if prompt.IsEmpty() {
		return nil, temporal.NewNonRetryableApplicationError("Rubric template is empty", ErrTypeRubricMissing, nil)
	}
	return &Rubric{ID: prompt.ID, Prompt: prompt.Template}, nil
}

// ScoreWithAI grades the transcript. Output that violates the schema fails
// the run; there are no partial scorecards.
func (a *Activities) ScoreWithAI(ctx context.Context, in ScoreInput) (*ai.Scorecard, error) {
	obj, err := a.Generator.GenerateJSON(ctx,
		ai.ScoringSystemPrompt,
		ai.BuildScoringPrompt(in.RubricPrompt, in.TranscriptText),
		ai.ScorecardSchemaName,
		ai.ScorecardSchema(),
	)
	if err != nil {
		if retryable.IsRetryableError(err) {
			return nil, fmt.Errorf("scorecard generation failed: %w", err)
		}
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("scorecard generation failed: %v", err), ErrTypeGenerationFailed, err)
	}

	card, err := ai.DecodeScorecard(obj)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidScorecard, err)
	}

	a.log().Info("scoring.scored",
		zap.Float64("overall_score", card.OverallScore),
		zap.Int("criteria", len(card.CriteriaScores)),
	)
	return card, nil
}

// SaveScorecard writes the scorecard and marks the session "scored". A write
// failure marks the session "failed" before the error propagates.
func (a *Activities) SaveScorecard(ctx context.Context, in SaveScorecardInput) error {
	criteria := make([]entities.CriterionScore, 0, len(in.Scores.CriteriaScores))
	for _, c := range in.Scores.CriteriaScores {
		criteria = append(criteria, entities.CriterionScore{
			Name:      c.Name,
			Score:     c.Score,
			MaxScore:  c.MaxScore,
			Rationale: c.Rationale,
		})
	}
	card := entities.NewScorecard(in.SessionID, in.UserID, in.ActivityID, in.Scores.OverallScore, criteria, in.Scores.Feedback)

	if err := a.Scorecards.Save(ctx, card); err != nil {
		if statusErr := a.Sessions.UpdateScoringStatus(ctx, in.SessionID, entities.ScoringStatusFailed); statusErr != nil {
			a.log().Error("scoring.mark_failed_error",
				zap.String("session_id", in.SessionID.String()),
				zap.Error(statusErr),
			)
		}
		return temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("Failed to save scorecard: %v", err), ErrTypeScorecardSaveFailed, err)
	}

	// The scorecard write is an upsert, so retrying this step is safe.
	if err := a.Sessions.UpdateScoringStatus(ctx, in.SessionID, entities.ScoringStatusScored); err != nil {
		return fmt.Errorf("failed to mark session as scored: %w", err)
	}

	// On upsert the stored row keeps its original id, so log by session.
	a.log().Info("scoring.scorecard_saved",
		zap.String("session_id", in.SessionID.String()),
		zap.Float64("overall_score", card.OverallScore),
	)
	return nil
}

// MarkScoringFailed resolves a run that ended before persistence
func (a *Activities) MarkScoringFailed(ctx context.Context, sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return temporal.NewNonRetryableApplicationError("invalid session id", ErrTypeSessionNotFound, err)
	}
	return a.Sessions.UpdateScoringStatus(ctx, id, entities.ScoringStatusFailed)
}

func (a *Activities) rubricLabel() string {
	if a.RubricLabel == "" {
		return DefaultRubricLabel
	}
	return a.RubricLabel
}

func (a *Activities) log() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
