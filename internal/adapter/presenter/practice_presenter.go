package presenter

import (
	"time"

	practiceDTO "github.com/johnquangdev/practice-scoring/internal/adapter/dto/practice"
	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/usecase/practice"
	"github.com/johnquangdev/practice-scoring/pkg/transcript"
)

// ToSessionResponse converts a PracticeSession entity to SessionResponse DTO
func ToSessionResponse(s *entities.PracticeSession) *practiceDTO.SessionResponse {
	if s == nil {
		return nil
	}

	response := &practiceDTO.SessionResponse{
		ID:                  s.ID.String(),
		UserID:              s.UserID.String(),
		ConversationID:      s.ConversationID,
		AgentID:             s.AgentID,
		ActivityID:          s.ActivityID,
		CharacterID:         s.CharacterID,
		CharacterName:       s.CharacterName,
		CallDurationSecs:    s.CallDurationSecs,
		TerminationReason:   s.TerminationReason,
		CostCents:           s.CostCents,
		CallSuccessful:      s.CallSuccessful,
		TranscriptSummary:   s.TranscriptSummary,
		CallSummaryTitle:    s.CallSummaryTitle,
		DidCoachParticipate: s.DidCoachParticipate,
		ScoringStatus:       s.ScoringStatus.Ptr(),
		HasTranscript:       transcript.HasEntries(s.Transcript),
		CreatedAt:           s.CreatedAt,
	}

	if s.StartTimeUnixSecs != nil {
		started := time.Unix(*s.StartTimeUnixSecs, 0).UTC()
		response.StartedAt = &started
	}

	return response
}

// ToSessionResponses converts a list of sessions
func ToSessionResponses(sessions []*entities.PracticeSession) []*practiceDTO.SessionResponse {
	out := make([]*practiceDTO.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToSessionResponse(s))
	}
	return out
}

// ToScorecardResponse converts a Scorecard entity to ScorecardResponse DTO
func ToScorecardResponse(sc *entities.Scorecard) *practiceDTO.ScorecardResponse {
	if sc == nil {
		return nil
	}

	criteria := make([]practiceDTO.CriterionScoreResponse, 0, len(sc.CriteriaScores))
	for _, c := range sc.CriteriaScores {
		criteria = append(criteria, practiceDTO.CriterionScoreResponse{
			Name:      c.Name,
			Score:     c.Score,
			MaxScore:  c.MaxScore,
			Rationale: c.Rationale,
		})
	}

	return &practiceDTO.ScorecardResponse{
		ID:             sc.ID.String(),
		SessionID:      sc.SessionID.String(),
		ActivityID:     sc.ActivityID,
		OverallScore:   sc.OverallScore,
		CriteriaScores: criteria,
		Feedback:       sc.Feedback,
		CreatedAt:      sc.CreatedAt,
	}
}

// ToSessionDetailResponse converts a session detail
func ToSessionDetailResponse(d *practice.SessionDetail) *practiceDTO.SessionDetailResponse {
	if d == nil {
		return nil
	}

	entries := make([]practiceDTO.TranscriptEntry, 0, len(d.Transcript))
	for _, e := range d.Transcript {
		entries = append(entries, practiceDTO.TranscriptEntry{Role: e.Role, Message: e.Message})
	}

	return &practiceDTO.SessionDetailResponse{
		Session:    ToSessionResponse(d.Session),
		Transcript: entries,
		Scorecard:  ToScorecardResponse(d.Scorecard),
	}
}

// ToStatsResponse converts practice stats
func ToStatsResponse(s *practice.Stats) *practiceDTO.StatsResponse {
	if s == nil {
		return nil
	}

	daily := make([]practiceDTO.DailyMinutesResponse, 0, len(s.Daily))
	for _, d := range s.Daily {
		daily = append(daily, practiceDTO.DailyMinutesResponse{Date: d.Date, Minutes: d.Minutes})
	}

	return &practiceDTO.StatsResponse{
		TotalSessions:    s.TotalSessions,
		TotalMinutes:     s.TotalMinutes,
		AverageMinutes:   s.AverageMinutes,
		LastPracticeAt:   s.LastPracticeAt,
		MinutesThisWeek:  s.MinutesThisWeek,
		MinutesThisMonth: s.MinutesThisMonth,
		Daily:            daily,
	}
}
