package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
)

// PracticeSessionRepository defines persistence operations for practice sessions.
// Lookups used for matching return (nil, nil) when nothing matches; FindByID
// returns entities.ErrPracticeSessionNotFound.
type PracticeSessionRepository interface {
	Create(ctx context.Context, session *entities.PracticeSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.PracticeSession, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.PracticeSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.PracticeSession, error)
	ListCoachParticipated(ctx context.Context, userID uuid.UUID) ([]*entities.PracticeSession, error)

	// Webhook reconciliation
	FindByConversationID(ctx context.Context, conversationID string) (*entities.PracticeSession, error)
	FindRecentUnmatchedByAgent(ctx context.Context, agentID string, since time.Time) (*entities.PracticeSession, error)
	ApplyEnrichment(ctx context.Context, id uuid.UUID, enrichment *entities.SessionEnrichment) error
	ListUnmatchedWithCallData(ctx context.Context, limit int) ([]*entities.PracticeSession, error)

	// Scoring pipeline
	UpdateScoringStatus(ctx context.Context, id uuid.UUID, status entities.ScoringStatus) error
}
