package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CriterionScore is one rubric line of a scorecard
type CriterionScore struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
	Rationale string  `json:"rationale"`
}

// Scorecard is the persisted grading result for a practice session.
// At most one row exists per session.
type Scorecard struct {
	ID             uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key"`
	SessionID      uuid.UUID                          `json:"session_id" gorm:"type:uuid;not null;uniqueIndex"`
	UserID         uuid.UUID                          `json:"user_id" gorm:"type:uuid;not null;index"`
	ActivityID     *string                            `json:"activity_id,omitempty" gorm:"type:varchar(255)"`
	OverallScore   float64                            `json:"overall_score" gorm:"not null"`
	CriteriaScores datatypes.JSONSlice[CriterionScore] `json:"criteria_scores"`
	Feedback       string                             `json:"feedback" gorm:"type:text"`
	CreatedAt      time.Time                          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time                          `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewScorecard creates a scorecard for a session
func NewScorecard(sessionID, userID uuid.UUID, activityID *string, overall float64, criteria []CriterionScore, feedback string) *Scorecard {
	now := time.Now().UTC()
	return &Scorecard{
		ID:             uuid.New(),
		SessionID:      sessionID,
		UserID:         userID,
		ActivityID:     activityID,
		OverallScore:   overall,
		CriteriaScores: datatypes.JSONSlice[CriterionScore](criteria),
		Feedback:       feedback,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TableName specifies the table name for GORM
func (Scorecard) TableName() string {
	return "scorecards"
}
