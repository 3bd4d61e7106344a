package practice

import "time"

// SessionResponse represents a practice session in responses
type SessionResponse struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	ConversationID      *string    `json:"conversation_id,omitempty"`
	AgentID             *string    `json:"agent_id,omitempty"`
	ActivityID          *string    `json:"activity_id,omitempty"`
	CharacterID         *string    `json:"character_id,omitempty"`
	CharacterName       *string    `json:"character_name,omitempty"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CallDurationSecs    *int       `json:"call_duration_secs,omitempty"`
	TerminationReason   *string    `json:"termination_reason,omitempty"`
	CostCents           *int       `json:"cost_cents,omitempty"`
	CallSuccessful      *string    `json:"call_successful,omitempty"`
	TranscriptSummary   *string    `json:"transcript_summary,omitempty"`
	CallSummaryTitle    *string    `json:"call_summary_title,omitempty"`
	DidCoachParticipate *bool      `json:"did_coach_participate,omitempty"`
	ScoringStatus       *string    `json:"scoring_status"`
	HasTranscript       bool       `json:"has_transcript"`
	CreatedAt           time.Time  `json:"created_at"`
}

// TranscriptEntry is one cleaned conversational turn
type TranscriptEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// CriterionScoreResponse is one rubric line
type CriterionScoreResponse struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
	Rationale string  `json:"rationale"`
}

// ScorecardResponse represents a scorecard in responses
type ScorecardResponse struct {
	ID             string                   `json:"id"`
	SessionID      string                   `json:"session_id"`
	ActivityID     *string                  `json:"activity_id,omitempty"`
	OverallScore   float64                  `json:"overall_score"`
	CriteriaScores []CriterionScoreResponse `json:"criteria_scores"`
	Feedback       string                   `json:"feedback"`
	CreatedAt      time.Time                `json:"created_at"`
}

// SessionDetailResponse is a session with its transcript and scorecard
type SessionDetailResponse struct {
	Session    *SessionResponse   `json:"session"`
	Transcript []TranscriptEntry  `json:"transcript"`
	Scorecard  *ScorecardResponse `json:"scorecard"`
}

// ListSessionsResponse represents the history page
type ListSessionsResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Count    int                `json:"count"`
}

// DailyMinutesResponse is one day of practice
type DailyMinutesResponse struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// StatsResponse represents aggregate practice stats
type StatsResponse struct {
	TotalSessions    int                    `json:"total_sessions"`
	TotalMinutes     int                    `json:"total_minutes"`
	AverageMinutes   float64                `json:"average_minutes"`
	LastPracticeAt   *time.Time             `json:"last_practice_at"`
	MinutesThisWeek  int                    `json:"minutes_this_week"`
	MinutesThisMonth int                    `json:"minutes_this_month"`
	Daily            []DailyMinutesResponse `json:"daily"`
}
