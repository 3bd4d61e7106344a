package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/practice-scoring/internal/usecase/errors"
	"github.com/johnquangdev/practice-scoring/pkg/transcript"
)

// StartResult is returned once a run has been accepted
type StartResult struct {
	RunID     string
	SessionID uuid.UUID
}

// Status is the polling projection of a session
type Status struct {
	SessionID     uuid.UUID
	ScoringStatus entities.ScoringStatus
	ScorecardID   *uuid.UUID
	HasTranscript bool
}

// Service is the HTTP-facing side of scoring: ownership checks, run start
// and status reads.
type Service struct {
	sessionRepo   repositories.PracticeSessionRepository
	scorecardRepo repositories.ScorecardRepository
	starter       Starter
	logger        *zap.Logger
}

// NewService creates a new scoring service
func NewService(
	sessionRepo repositories.PracticeSessionRepository,
	scorecardRepo repositories.ScorecardRepository,
	starter Starter,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessionRepo:   sessionRepo,
		scorecardRepo: scorecardRepo,
		starter:       starter,
		logger:        logger,
	}
}

// StartScoring verifies that userID owns the session and starts a run.
// It does not wait for the run to finish.
func (s *Service) StartScoring(ctx context.Context, userID, sessionID uuid.UUID) (*StartResult, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if s.starter == nil {
		return nil, usecaseErrors.ErrScoringUnavailable
	}

	runID, err := s.starter.Start(ctx, sessionID)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("scoring.start_failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrWorkflowStart, err)
	}

	if s.logger != nil {
		s.logger.Info("scoring.started",
			zap.String("session_id", sessionID.String()),
			zap.String("run_id", runID),
		)
	}
	return &StartResult{RunID: runID, SessionID: sessionID}, nil
}

// GetStatus returns the scoring projection for a session userID owns.
// It has no side effects.
func (s *Service) GetStatus(ctx context.Context, userID, sessionID uuid.UUID) (*Status, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	status := &Status{
		SessionID:     session.ID,
		ScoringStatus: session.ScoringStatus,
		HasTranscript: transcript.HasEntries(session.Transcript),
	}

	scorecard, err := s.scorecardRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		// Report what is known; the next poll will retry the lookup.
		if s.logger != nil {
			s.logger.Warn("scoring.scorecard_lookup_failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		}
		return status, nil
	}
	if scorecard != nil {
		id := scorecard.ID
		status.ScorecardID = &id
	}
	return status, nil
}

func (s *Service) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*entities.PracticeSession, error) {
	session, err := s.sessionRepo.FindByIDForUser(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, entities.ErrPracticeSessionNotFound) {
			return nil, usecaseErrors.ErrPracticeSessionNotFound
		}
		return nil, fmt.Errorf("failed to get practice session: %w", err)
	}
	return session, nil
}
