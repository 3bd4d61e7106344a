package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/practice-scoring/internal/usecase/errors"
	"github.com/johnquangdev/practice-scoring/pkg/transcript"
)

// History page size bounds
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// statsDays is the length of the daily breakdown window
const statsDays = 7

// Service defines the interface for the practice session use case
type Service interface {
	// CreateSession records a call the client is about to start
	CreateSession(ctx context.Context, input CreateSessionInput) (*entities.PracticeSession, error)

	// GetSession returns a session owned by userID with its cleaned transcript and scorecard
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*SessionDetail, error)

	// ListSessions returns the user's sessions, newest first
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.PracticeSession, error)

	// Stats summarizes sessions the coach took part in
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
}

var _ Service = (*PracticeService)(nil)

// CreateSessionInput carries the client-known identifiers of a call.
// conversation_id is assigned by the provider and never accepted here.
type CreateSessionInput struct {
	UserID        uuid.UUID
	AgentID       *string
	ActivityID    *string
	CharacterID   *string
	CharacterName *string
}

// SessionDetail is a session with its presentation-ready transcript
type SessionDetail struct {
	Session    *entities.PracticeSession
	Transcript []transcript.Entry
	Scorecard  *entities.Scorecard
}

// DailyMinutes is one day of the stats breakdown
type DailyMinutes struct {
	Date    string
	Minutes int
}

// Stats aggregates coach-participated sessions
type Stats struct {
	TotalSessions    int
	TotalMinutes     int
	AverageMinutes   float64
	LastPracticeAt   *time.Time
	MinutesThisWeek  int
	MinutesThisMonth int
	Daily            []DailyMinutes
}

// PracticeService implements Service
type PracticeService struct {
	sessionRepo   repositories.PracticeSessionRepository
	scorecardRepo repositories.ScorecardRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewPracticeService creates a new practice service
func NewPracticeService(
	sessionRepo repositories.PracticeSessionRepository,
	scorecardRepo repositories.ScorecardRepository,
	logger *zap.Logger,
) *PracticeService {
	return &PracticeService{
		sessionRepo:   sessionRepo,
		scorecardRepo: scorecardRepo,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession creates a new practice session
func (s *PracticeService) CreateSession(ctx context.Context, input CreateSessionInput) (*entities.PracticeSession, error) {
	if input.UserID == uuid.Nil {
		return nil, usecaseErrors.ErrUnauthorized
	}

	session := entities.NewPracticeSession(input.UserID)
	session.AgentID = trimmed(input.AgentID)
	session.ActivityID = trimmed(input.ActivityID)
	session.CharacterID = trimmed(input.CharacterID)
	session.CharacterName = trimmed(input.CharacterName)

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create practice session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("practice.session_created",
			zap.String("session_id", session.ID.String()),
			zap.String("user_id", input.UserID.String()),
		)
	}
	return session, nil
}

// GetSession retrieves a session for its owner
func (s *PracticeService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*SessionDetail, error) {
	session, err := s.sessionRepo.FindByIDForUser(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, entities.ErrPracticeSessionNotFound) {
			return nil, usecaseErrors.ErrPracticeSessionNotFound
		}
		return nil, fmt.Errorf("failed to get practice session: %w", err)
	}

	detail := &SessionDetail{
		Session:    session,
		Transcript: transcript.Clean(transcript.Parse(session.Transcript)),
	}

	scorecard, err := s.scorecardRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scorecard: %w", err)
	}
	detail.Scorecard = scorecard
	return detail, nil
}

// ListSessions retrieves the user's history
func (s *PracticeService) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.PracticeSession, error) {
	sessions, err := s.sessionRepo.ListByUser(ctx, userID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list practice sessions: %w", err)
	}
	return sessions, nil
}

// Stats computes practice totals over sessions with did_coach_participate set
func (s *PracticeService) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	sessions, err := s.sessionRepo.ListCoachParticipated(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice sessions: %w", err)
	}
	return computeStats(sessions, s.now()), nil
}

// ClampLimit applies the history page defaults
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func computeStats(sessions []*entities.PracticeSession, now time.Time) *Stats {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	// Weeks start on Monday
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := today.AddDate(0, 0, -(statsDays - 1))

	stats := &Stats{Daily: make([]DailyMinutes, statsDays)}
	daily := make(map[string]int, statsDays)
	for i := 0; i < statsDays; i++ {
		stats.Daily[i].Date = windowStart.AddDate(0, 0, i).Format(time.DateOnly)
	}

	for _, session := range sessions {
		at := practicedAt(session)
		minutes := session.DurationMinutes()

		stats.TotalSessions++
		stats.TotalMinutes += minutes
		if stats.LastPracticeAt == nil || at.After(*stats.LastPracticeAt) {
			t := at
			stats.LastPracticeAt = &t
		}
		if !at.Before(weekStart) {
			stats.MinutesThisWeek += minutes
		}
		if !at.Before(monthStart) {
			stats.MinutesThisMonth += minutes
		}
		if !at.Before(windowStart) {
			daily[at.Format(time.DateOnly)] += minutes
		}
	}

	for i := range stats.Daily {
		stats.Daily[i].Minutes = daily[stats.Daily[i].Date]
	}
	if stats.TotalSessions > 0 {
		avg := float64(stats.TotalMinutes) / float64(stats.TotalSessions)
		stats.AverageMinutes = float64(int(avg*10+0.5)) / 10
	}
	return stats
}

// practicedAt prefers the provider's call start over the row creation time
func practicedAt(session *entities.PracticeSession) time.Time {
	if session.StartTimeUnixSecs != nil && *session.StartTimeUnixSecs > 0 {
		return time.Unix(*session.StartTimeUnixSecs, 0).UTC()
	}
	return session.CreatedAt.UTC()
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
