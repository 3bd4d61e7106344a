package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
)

var _ repositories.PracticeSessionRepository = (*PracticeSessionRepository)(nil)

// PracticeSessionRepository handles practice session data operations
type PracticeSessionRepository struct {
	db *gorm.DB
}

// NewPracticeSessionRepository creates a new practice session repository
func NewPracticeSessionRepository(db *gorm.DB) *PracticeSessionRepository {
	return &PracticeSessionRepository{db: db}
}

// Create inserts a new session
func (r *PracticeSessionRepository) Create(ctx context.Context, session *entities.PracticeSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID retrieves a session by ID
func (r *PracticeSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.PracticeSession, error) {
	var session entities.PracticeSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrPracticeSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindByIDForUser retrieves a session only if userID owns it
func (r *PracticeSessionRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.PracticeSession, error) {
	var session entities.PracticeSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrPracticeSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByUser retrieves a user's sessions, newest first
func (r *PracticeSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.PracticeSession, error) {
	var sessions []*entities.PracticeSession
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListCoachParticipated retrieves sessions where the learner actually coached
func (r *PracticeSessionRepository) ListCoachParticipated(ctx context.Context, userID uuid.UUID) ([]*entities.PracticeSession, error) {
	var sessions []*entities.PracticeSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND did_coach_participate = ?", userID, true).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindByConversationID retrieves the session already linked to a provider conversation
func (r *PracticeSessionRepository) FindByConversationID(ctx context.Context, conversationID string) (*entities.PracticeSession, error) {
	var session entities.PracticeSession
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// FindRecentUnmatchedByAgent retrieves the newest session for agentID that has
// no conversation yet and was created at or after since
func (r *PracticeSessionRepository) FindRecentUnmatchedByAgent(ctx context.Context, agentID string, since time.Time) (*entities.PracticeSession, error) {
	var session entities.PracticeSession
	if err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Where("conversation_id IS NULL").
		Where("created_at >= ?", since.UTC()).
		Order("created_at DESC").
		Limit(1).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// ApplyEnrichment writes webhook-derived columns to an existing session
func (r *PracticeSessionRepository) ApplyEnrichment(ctx context.Context, id uuid.UUID, enrichment *entities.SessionEnrichment) error {
	if enrichment == nil {
		return errors.New("enrichment cannot be nil")
	}
	result := r.db.WithContext(ctx).
		Model(&entities.PracticeSession{}).
		Where("id = ?", id).
		Updates(enrichment.Columns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrPracticeSessionNotFound
	}
	return nil
}

// ListUnmatchedWithCallData retrieves sessions holding a raw payload that was
// never flattened into columns
func (r *PracticeSessionRepository) ListUnmatchedWithCallData(ctx context.Context, limit int) ([]*entities.PracticeSession, error) {
	var sessions []*entities.PracticeSession
	query := r.db.WithContext(ctx).
		Where("conversation_id IS NULL").
		Where("call_data IS NOT NULL").
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateScoringStatus sets the pipeline state of a session
func (r *PracticeSessionRepository) UpdateScoringStatus(ctx context.Context, id uuid.UUID, status entities.ScoringStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.PracticeSession{}).
		Where("id = ?", id).
		Update("scoring_status", status).Error
}
