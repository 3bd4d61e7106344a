package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
)

var (
	_ repositories.ScorecardRepository = (*ScorecardRepository)(nil)
	_ repositories.PromptRepository    = (*PromptRepository)(nil)
)

// ScorecardRepository handles scorecard data operations
type ScorecardRepository struct {
	db *gorm.DB
}

// NewScorecardRepository creates a new scorecard repository
func NewScorecardRepository(db *gorm.DB) *ScorecardRepository {
	return &ScorecardRepository{db: db}
}

// Save upserts on session_id so a replayed persistence step never creates a
// second row for the same session
func (r *ScorecardRepository) Save(ctx context.Context, scorecard *entities.Scorecard) error {
	if scorecard == nil {
		return errors.New("scorecard cannot be nil")
	}
	if scorecard.ID == uuid.Nil {
		scorecard.ID = uuid.New()
	}
	scorecard.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"overall_score", "criteria_scores", "feedback", "activity_id", "updated_at"}),
		}).
		Create(scorecard).Error
}

// FindBySessionID retrieves the scorecard for a session
func (r *ScorecardRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.Scorecard, error) {
	var scorecard entities.Scorecard
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&scorecard).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &scorecard, nil
}

// PromptRepository handles prompt template reads
type PromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// FindByLabel retrieves the first prompt carrying label
func (r *PromptRepository) FindByLabel(ctx context.Context, label string) (*entities.Prompt, error) {
	var prompt entities.Prompt
	if err := r.db.WithContext(ctx).
		Where("label = ?", label).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrPromptNotFound
		}
		return nil, err
	}
	return &prompt, nil
}
