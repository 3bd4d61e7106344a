// Package elevenlabs models the post-call webhook delivered by the
// ElevenLabs conversational AI platform.
package elevenlabs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingConversationID is returned by Validate when the delivery carries no conversation id
var ErrMissingConversationID = errors.New("conversation_id is required")

// Payload is the post-call transcription body. Only ConversationID is
// required; every nested object is optional.
type Payload struct {
	ConversationID string          `json:"conversation_id"`
	AgentID        string          `json:"agent_id,omitempty"`
	Status         string          `json:"status,omitempty"`
	Transcript     json.RawMessage `json:"transcript,omitempty"`
	Metadata       *Metadata       `json:"metadata,omitempty"`
	Analysis       *Analysis       `json:"analysis,omitempty"`
	InitiationData *InitiationData `json:"conversation_initiation_client_data,omitempty"`

	// Raw is the payload object as delivered, after envelope unwrapping
	Raw json.RawMessage `json:"-"`
}

// Metadata holds call accounting fields
type Metadata struct {
	StartTimeUnixSecs    *int64   `json:"start_time_unix_secs,omitempty"`
	AcceptedTimeUnixSecs *int64   `json:"accepted_time_unix_secs,omitempty"`
	CallDurationSecs     *float64 `json:"call_duration_secs,omitempty"`
	TerminationReason    *string  `json:"termination_reason,omitempty"`
	Cost                 *float64 `json:"cost,omitempty"`
}

// Analysis holds the provider's post-call evaluation
type Analysis struct {
	CallSuccessful        *string                         `json:"call_successful,omitempty"`
	TranscriptSummary     *string                         `json:"transcript_summary,omitempty"`
	CallSummaryTitle      *string                         `json:"call_summary_title,omitempty"`
	DataCollectionResults map[string]DataCollectionResult `json:"data_collection_results,omitempty"`
}

// DataCollectionResult is one extracted field from the provider's analysis
type DataCollectionResult struct {
	DataCollectionID string          `json:"data_collection_id,omitempty"`
	Value            json.RawMessage `json:"value,omitempty"`
	Rationale        string          `json:"rationale,omitempty"`
}

// InitiationData carries what the client passed when the call started
type InitiationData struct {
	DynamicVariables map[string]interface{} `json:"dynamic_variables,omitempty"`
}

type envelope struct {
	Type           string          `json:"type"`
	EventTimestamp int64           `json:"event_timestamp"`
	Data           json.RawMessage `json:"data"`
}

// ParsePayload decodes a webhook body. Both the bare payload and the
// {type, event_timestamp, data} envelope are accepted.
func ParsePayload(body []byte) (*Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty webhook body")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode webhook body: %w", err)
	}
	inner := body
	if env.Type != "" && len(env.Data) > 0 && env.Data[0] == '{' {
		inner = env.Data
	}

	var p Payload
	if err := json.Unmarshal(inner, &p); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	p.ConversationID = strings.TrimSpace(p.ConversationID)
	p.AgentID = strings.TrimSpace(p.AgentID)
	p.Raw = append(json.RawMessage(nil), inner...)
	return &p, nil
}

// Validate checks required fields before anything touches storage
func (p *Payload) Validate() error {
	if p.ConversationID == "" {
		return ErrMissingConversationID
	}
	return nil
}

// HasTranscript reports whether the delivery carries a transcript value
func (p *Payload) HasTranscript() bool {
	t := bytes.TrimSpace(p.Transcript)
	return len(t) > 0 && !bytes.Equal(t, []byte("null"))
}

// CallDurationSecs returns the duration rounded to whole seconds
func (p *Payload) CallDurationSecs() *int {
	if p.Metadata == nil {
		return nil
	}
	return roundedInt(p.Metadata.CallDurationSecs)
}

// CostCents returns the reported call cost
func (p *Payload) CostCents() *int {
	if p.Metadata == nil {
		return nil
	}
	return roundedInt(p.Metadata.Cost)
}

// DidCoachParticipate returns the "did_coach_participate" data collection value.
// Booleans and the strings "true"/"false" are accepted; anything else is nil.
func (p *Payload) DidCoachParticipate() *bool {
	if p.Analysis == nil {
		return nil
	}
	result, ok := p.Analysis.DataCollectionResults["did_coach_participate"]
	if !ok || len(result.Value) == 0 {
		return nil
	}

	var b bool
	if err := json.Unmarshal(result.Value, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(result.Value, &s); err == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return &parsed
		}
	}
	return nil
}

// DynamicVariable returns a string dynamic variable passed at call start
func (p *Payload) DynamicVariable(name string) *string {
	if p.InitiationData == nil {
		return nil
	}
	v, ok := p.InitiationData.DynamicVariables[name]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func roundedInt(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(math.Round(*f))
	return &v
}
