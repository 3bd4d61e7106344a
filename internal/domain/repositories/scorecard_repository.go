package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
)

// ScorecardRepository defines persistence operations for scorecards
type ScorecardRepository interface {
	// Save writes the scorecard for its session, replacing any previous result
	Save(ctx context.Context, scorecard *entities.Scorecard) error
	// FindBySessionID returns (nil, nil) when the session has not been scored
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.Scorecard, error)
}

// PromptRepository reads operator-managed prompt templates
type PromptRepository interface {
	// FindByLabel returns entities.ErrPromptNotFound when no row carries label
	FindByLabel(ctx context.Context, label string) (*entities.Prompt, error)
}
