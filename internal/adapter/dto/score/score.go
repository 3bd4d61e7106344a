package score

// StartScoringRequest represents a request to score a practice session
type StartScoringRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// StartScoringResponse is returned once the scoring run was accepted
type StartScoringResponse struct {
	Message   string `json:"message"`
	RunID     string `json:"run_id"`
	SessionID string `json:"session_id"`
}

// StatusResponse is the polling projection of a session.
// ScoringStatus and ScorecardID render as null when unset.
type StatusResponse struct {
	SessionID     string  `json:"session_id"`
	ScoringStatus *string `json:"scoring_status"`
	ScorecardID   *string `json:"scorecard_id"`
	HasTranscript bool    `json:"has_transcript"`
}
