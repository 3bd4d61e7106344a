package webhook

import (
	"bytes"

	"gorm.io/datatypes"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/pkg/elevenlabs"
)

// EnrichmentFromPayload maps a provider delivery onto the session columns it
// may write. Fields absent from the payload stay nil so an enrichment never
// clears context the client captured at creation.
func EnrichmentFromPayload(p *elevenlabs.Payload) *entities.SessionEnrichment {
	e := &entities.SessionEnrichment{
		ConversationID:      p.ConversationID,
		AgentID:             nonEmpty(p.AgentID),
		CallDurationSecs:    p.CallDurationSecs(),
		CostCents:           p.CostCents(),
		DidCoachParticipate: p.DidCoachParticipate(),
		CharacterName:       p.DynamicVariable("character_name"),
		ActivityID:          p.DynamicVariable("activity_id"),
	}

	if p.HasTranscript() {
		e.Transcript = datatypes.JSON(bytes.TrimSpace(p.Transcript))
	}
	if len(p.Raw) > 0 {
		e.CallData = datatypes.JSON(p.Raw)
	}

	if m := p.Metadata; m != nil {
		e.StartTimeUnixSecs = m.StartTimeUnixSecs
		e.AcceptedTimeUnixSecs = m.AcceptedTimeUnixSecs
		e.TerminationReason = m.TerminationReason
	}
	if a := p.Analysis; a != nil {
		e.CallSuccessful = a.CallSuccessful
		e.TranscriptSummary = a.TranscriptSummary
		e.CallSummaryTitle = a.CallSummaryTitle
	}
	return e
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
