package presenter

import (
	scoreDTO "github.com/johnquangdev/practice-scoring/internal/adapter/dto/score"
	"github.com/johnquangdev/practice-scoring/internal/usecase/scoring"
)

// ScoringStartedMessage is returned when a run has been accepted
const ScoringStartedMessage = "Scoring workflow started"

// ToStartScoringResponse converts a started run
func ToStartScoringResponse(r *scoring.StartResult) *scoreDTO.StartScoringResponse {
	return &scoreDTO.StartScoringResponse{
		Message:   ScoringStartedMessage,
		RunID:     r.RunID,
		SessionID: r.SessionID.String(),
	}
}

// ToStatusResponse converts a scoring status projection
func ToStatusResponse(s *scoring.Status) *scoreDTO.StatusResponse {
	response := &scoreDTO.StatusResponse{
		SessionID:     s.SessionID.String(),
		ScoringStatus: s.ScoringStatus.Ptr(),
		HasTranscript: s.HasTranscript,
	}
	if s.ScorecardID != nil {
		id := s.ScorecardID.String()
		response.ScorecardID = &id
	}
	return response
}
