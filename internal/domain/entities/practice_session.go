package entities

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScoringStatus represents where a session is in the scoring pipeline.
// The zero value means scoring was never requested and is stored as NULL.
type ScoringStatus string

const (
	ScoringStatusUnset   ScoringStatus = ""
	ScoringStatusScoring ScoringStatus = "scoring" // Workflow started, scorecard not yet written
	ScoringStatusScored  ScoringStatus = "scored"  // Scorecard persisted
	ScoringStatusFailed  ScoringStatus = "failed"  // Run ended with an unrecoverable step error
)

// IsTerminal reports whether a scoring attempt has finished
func (s ScoringStatus) IsTerminal() bool {
	return s == ScoringStatusScored || s == ScoringStatusFailed
}

// Ptr returns nil for the unset status so JSON renders null
func (s ScoringStatus) Ptr() *string {
	if s == ScoringStatusUnset {
		return nil
	}
	v := string(s)
	return &v
}

// Scan implements sql.Scanner interface for GORM
func (s *ScoringStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = ScoringStatusUnset
	case string:
		*s = ScoringStatus(v)
	case []byte:
		*s = ScoringStatus(v)
	default:
		return fmt.Errorf("unsupported scoring_status type %T", value)
	}
	return nil
}

// Value implements driver.Valuer interface for GORM
func (s ScoringStatus) Value() (driver.Value, error) {
	if s == ScoringStatusUnset {
		return nil, nil
	}
	return string(s), nil
}

// PracticeSession is one voice roleplay attempt. The row is created by the
// client before the call ends and enriched later by the provider webhook.
type PracticeSession struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	ConversationID *string `json:"conversation_id,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	AgentID        *string `json:"agent_id,omitempty" gorm:"type:varchar(255);index"`
	ActivityID     *string `json:"activity_id,omitempty" gorm:"type:varchar(255);index"`
	CharacterID    *string `json:"character_id,omitempty" gorm:"type:varchar(255)"`
	CharacterName  *string `json:"character_name,omitempty" gorm:"type:varchar(255)"`

	// Enrichment, written by the webhook reconciler only
	Transcript           datatypes.JSON `json:"transcript,omitempty"`
	CallData             datatypes.JSON `json:"call_data,omitempty"`
	StartTimeUnixSecs    *int64         `json:"start_time_unix_secs,omitempty"`
	AcceptedTimeUnixSecs *int64         `json:"accepted_time_unix_secs,omitempty"`
	CallDurationSecs     *int           `json:"call_duration_secs,omitempty"`
	TerminationReason    *string        `json:"termination_reason,omitempty" gorm:"type:text"`
	CostCents            *int           `json:"cost_cents,omitempty"`
	CallSuccessful       *string        `json:"call_successful,omitempty" gorm:"type:varchar(50)"`
	TranscriptSummary    *string        `json:"transcript_summary,omitempty" gorm:"type:text"`
	CallSummaryTitle     *string        `json:"call_summary_title,omitempty" gorm:"type:text"`
	DidCoachParticipate  *bool          `json:"did_coach_participate,omitempty" gorm:"index"`

	// Pipeline state, written by the scoring orchestrator only
	ScoringStatus ScoringStatus `json:"scoring_status" gorm:"type:varchar(20)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// NewPracticeSession creates a session for a call that has not ended yet.
// conversation_id is unknown at this point and only arrives via webhook.
func NewPracticeSession(userID uuid.UUID) *PracticeSession {
	return &PracticeSession{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// BelongsTo reports whether the session is owned by userID
func (s *PracticeSession) BelongsTo(userID uuid.UUID) bool {
	return s != nil && s.UserID == userID
}

// IsEnriched reports whether a webhook delivery has been applied
func (s *PracticeSession) IsEnriched() bool {
	return s.ConversationID != nil && *s.ConversationID != ""
}

// DurationMinutes returns the call duration rounded down to whole minutes
func (s *PracticeSession) DurationMinutes() int {
	if s.CallDurationSecs == nil {
		return 0
	}
	return *s.CallDurationSecs / 60
}

// TableName specifies the table name for GORM
func (PracticeSession) TableName() string {
	return "practice_sessions"
}

// SessionEnrichment is the set of columns a provider delivery may write.
// Nil fields are left untouched on the stored row.
type SessionEnrichment struct {
	ConversationID       string
	AgentID              *string
	Transcript           datatypes.JSON
	CallData             datatypes.JSON
	StartTimeUnixSecs    *int64
	AcceptedTimeUnixSecs *int64
	CallDurationSecs     *int
	TerminationReason    *string
	CostCents            *int
	CallSuccessful       *string
	TranscriptSummary    *string
	CallSummaryTitle     *string
	DidCoachParticipate  *bool
	CharacterName        *string
	ActivityID           *string
}

// Columns returns the column/value map applied by the repository
func (e *SessionEnrichment) Columns() map[string]interface{} {
	cols := map[string]interface{}{
		"conversation_id": e.ConversationID,
	}
	if e.Transcript != nil {
		cols["transcript"] = e.Transcript
	}
	if e.CallData != nil {
		cols["call_data"] = e.CallData
	}
	setIfPresent(cols, "agent_id", e.AgentID)
	setIfPresent(cols, "start_time_unix_secs", e.StartTimeUnixSecs)
	setIfPresent(cols, "accepted_time_unix_secs", e.AcceptedTimeUnixSecs)
	setIfPresent(cols, "call_duration_secs", e.CallDurationSecs)
	setIfPresent(cols, "termination_reason", e.TerminationReason)
	setIfPresent(cols, "cost_cents", e.CostCents)
	setIfPresent(cols, "call_successful", e.CallSuccessful)
	setIfPresent(cols, "transcript_summary", e.TranscriptSummary)
	setIfPresent(cols, "call_summary_title", e.CallSummaryTitle)
	setIfPresent(cols, "did_coach_participate", e.DidCoachParticipate)
	setIfPresent(cols, "character_name", e.CharacterName)
	setIfPresent(cols, "activity_id", e.ActivityID)
	return cols
}

func setIfPresent[T any](cols map[string]interface{}, column string, v *T) {
	if v != nil {
		cols[column] = *v
	}
}
