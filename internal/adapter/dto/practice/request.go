package practice

// CreateSessionRequest represents a request to register a practice call
type CreateSessionRequest struct {
	AgentID       *string `json:"agent_id,omitempty" validate:"omitempty,max=255"`
	ActivityID    *string `json:"activity_id,omitempty" validate:"omitempty,max=255"`
	CharacterID   *string `json:"character_id,omitempty" validate:"omitempty,max=255"`
	CharacterName *string `json:"character_name,omitempty" validate:"omitempty,max=255"`
}

// ListSessionsRequest represents history query parameters
type ListSessionsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1"`
}
