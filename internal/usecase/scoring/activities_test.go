package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/pkg/ai"
)

func applicationErrorType(t *testing.T, err error) (string, bool) {
	t.Helper()
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return "", false
	}
	return appErr.Type(), appErr.NonRetryable()
}

func TestFetchPracticeSession(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "native array", raw: arrayTranscript},
		{name: "json string", raw: `"[{\"role\":\"agent\",\"message\":\"How was your week?\"},{\"role\":\"user\",\"message\":\"Busy, but good.\"}]"`},
		{name: "embedded span", raw: `"transcript follows: [{\"role\":\"agent\",\"message\":\"How was your week?\"},{\"role\":\"user\",\"message\":\"Busy, but good.\"}] end"`},
	}

	want := "AGENT: How was your week?\n\nUSER: Busy, but good."
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.raw)
			snap, err := f.acts.FetchPracticeSession(context.Background(), f.session.ID.String())
			if err != nil {
				t.Fatalf("FetchPracticeSession: %v", err)
			}
			if snap.TranscriptText != want {
				t.Fatalf("transcript = %q, want %q", snap.TranscriptText, want)
			}
			if snap.UserID != f.session.UserID || snap.ActivityID == nil || *snap.ActivityID != "act_42" {
				t.Fatalf("snapshot = %+v", snap)
			}
			if !sameStatuses(f.history(), entities.ScoringStatusScoring) {
				t.Fatalf("status history = %v", f.history())
			}
		})
	}
}

func TestFetchPracticeSession_NoTranscriptDoesNotSetFailed(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantShape string
	}{
		{name: "null", raw: "", wantShape: "Transcript data type: null, is array: false, length: N/A"},
		{name: "empty array", raw: `[]`, wantShape: "Transcript data type: array, is array: true, length: 0"},
		{name: "blank messages", raw: `[{"role":"agent","message":"  "}]`, wantShape: "is array: true, length: 1"},
		{name: "truncated string", raw: `"[{\"role\":\"agent\""`, wantShape: "Transcript data type: string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.raw)
			_, err := f.acts.FetchPracticeSession(context.Background(), f.session.ID.String())
			if err == nil {
				t.Fatalf("expected error")
			}
			typ, nonRetryable := applicationErrorType(t, err)
			if typ != ErrTypeTranscriptUnavailable || !nonRetryable {
				t.Fatalf("error type = %q nonRetryable=%v", typ, nonRetryable)
			}
			if !strings.Contains(err.Error(), "No valid transcript found for session: "+f.session.ID.String()) ||
				!strings.Contains(err.Error(), tt.wantShape) {
				t.Fatalf("message = %q", err.Error())
			}
			// Status moved to scoring and stays there at step level.
			if !sameStatuses(f.history(), entities.ScoringStatusScoring) {
				t.Fatalf("status history = %v", f.history())
			}
		})
	}
}

func TestFetchPracticeSession_NotFound(t *testing.T) {
	f := newFixture(arrayTranscript)
	missing := uuid.New()

	_, err := f.acts.FetchPracticeSession(context.Background(), missing.String())
	if typ, _ := applicationErrorType(t, err); typ != ErrTypeSessionNotFound {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "Practice session not found: "+missing.String()) {
		t.Fatalf("message = %q", err.Error())
	}
	if len(f.sessions.StatusHistory[missing]) != 0 {
		t.Fatalf("status must not be written for a missing session")
	}
}

func TestFetchRubric(t *testing.T) {
	f := newFixture(arrayTranscript)
	rubric, err := f.acts.FetchRubric(context.Background())
	if err != nil || rubric.Prompt != rubricText {
		t.Fatalf("rubric = %+v, err = %v", rubric, err)
	}

	f.prompts.Prompts[DefaultRubricLabel].Template = "   "
	_, err = f.acts.FetchRubric(context.Background())
	if typ, _ := applicationErrorType(t, err); typ != ErrTypeRubricMissing || !strings.Contains(err.Error(), "Rubric template is empty") {
		t.Fatalf("empty template err = %v", err)
	}

	delete(f.prompts.Prompts, DefaultRubricLabel)
	_, err = f.acts.FetchRubric(context.Background())
	if typ, _ := applicationErrorType(t, err); typ != ErrTypeRubricMissing {
		t.Fatalf("missing rubric err = %v", err)
	}
	if !strings.Contains(err.Error(), "Please add a prompt with label 'scorecard_rubric' to the prompts table.") {
		t.Fatalf("missing rubric message = %q", err.Error())
	}
}

func TestScoreWithAI(t *testing.T) {
	f := newFixture(arrayTranscript)
	card, err := f.acts.ScoreWithAI(context.Background(), ScoreInput{TranscriptText: "USER: hi", RubricPrompt: rubricText})
	if err != nil {
		t.Fatalf("ScoreWithAI: %v", err)
	}
	if card.OverallScore != 82 || len(card.CriteriaScores) != 2 || card.CriteriaScores[1].Name != "Questioning" {
		t.Fatalf("card = %+v", card)
	}
	if f.generator.system != ai.ScoringSystemPrompt {
		t.Fatalf("system prompt = %q", f.generator.system)
	}
	if !strings.Contains(f.generator.user, "## Rubric\n"+rubricText) || !strings.Contains(f.generator.user, "## Transcript\nUSER: hi") {
		t.Fatalf("user prompt = %q", f.generator.user)
	}
}

func TestScoreWithAI_Errors(t *testing.T) {
	tests := []struct {
		name          string
		obj           map[string]any
		err           error
		wantType      string
		wantRetryable bool
	}{
		{name: "schema violation", obj: map[string]any{"overall_score": 140.0, "criteria_scores": []any{}, "feedback": "x"}, wantType: ErrTypeInvalidScorecard},
		{name: "missing feedback", obj: map[string]any{"overall_score": 50.0, "criteria_scores": []any{}}, wantType: ErrTypeInvalidScorecard},
		{name: "client error", err: &ai.HTTPError{StatusCode: 400, Body: "bad request"}, wantType: ErrTypeGenerationFailed},
		{name: "server error", err: &ai.HTTPError{StatusCode: 503, Body: "unavailable"}, wantRetryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(arrayTranscript)
			f.generator.obj = tt.obj
			if tt.err != nil {
				f.generator.errs = []error{tt.err}
			}

			_, err := f.acts.ScoreWithAI(context.Background(), ScoreInput{TranscriptText: "USER: hi", RubricPrompt: rubricText})
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := isRetryableStepError(err); got != tt.wantRetryable {
				t.Fatalf("retryable = %v, want %v (%v)", got, tt.wantRetryable, err)
			}
			if tt.wantType != "" {
				if typ, _ := applicationErrorType(t, err); typ != tt.wantType {
					t.Fatalf("type = %q, want %q", typ, tt.wantType)
				}
			}
		})
	}
}

func TestScoringFailureBeforePersistenceLeavesStatusScoring(t *testing.T) {
	f := newFixture(arrayTranscript)
	f.generator.obj = map[string]any{"overall_score": "high"}
	ctx := context.Background()

	snap, err := f.acts.FetchPracticeSession(ctx, f.session.ID.String())
	if err != nil {
		t.Fatalf("FetchPracticeSession: %v", err)
	}
	if f.generator.Calls() != 0 {
		t.Fatalf("status must be written before the model is called")
	}
	if _, err := f.acts.ScoreWithAI(ctx, ScoreInput{TranscriptText: snap.TranscriptText, RubricPrompt: rubricText}); err == nil {
		t.Fatalf("expected invalid scorecard")
	}
	if got := f.sessions.Get(f.session.ID).ScoringStatus; got != entities.ScoringStatusScoring {
		t.Fatalf("status = %q, want scoring", got)
	}
}

func TestSaveScorecard(t *testing.T) {
	f := newFixture(arrayTranscript)
	in := SaveScorecardInput{
		SessionID:  f.session.ID,
		UserID:     f.session.UserID,
		ActivityID: f.session.ActivityID,
		Scores: ai.Scorecard{
			OverallScore:   82,
			CriteriaScores: []ai.CriterionScore{{Name: "Rapport", Score: 8, MaxScore: 10, Rationale: "Warm."}},
			Feedback:       "Nice.",
		},
	}

	if err := f.acts.SaveScorecard(context.Background(), in); err != nil {
		t.Fatalf("SaveScorecard: %v", err)
	}
	card, _ := f.scorecards.FindBySessionID(context.Background(), f.session.ID)
	if card == nil || card.OverallScore != 82 || card.UserID != f.session.UserID || *card.ActivityID != "act_42" {
		t.Fatalf("scorecard = %+v", card)
	}
	if len(card.CriteriaScores) != 1 || card.CriteriaScores[0].MaxScore != 10 {
		t.Fatalf("criteria = %+v", card.CriteriaScores)
	}
	if !sameStatuses(f.history(), entities.ScoringStatusScored) {
		t.Fatalf("status history = %v", f.history())
	}

	// Replaying the step keeps a single row.
	if err := f.acts.SaveScorecard(context.Background(), in); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if f.scorecards.Count() != 1 {
		t.Fatalf("scorecards = %d, want 1", f.scorecards.Count())
	}
}

func TestSaveScorecard_LogsBySession(t *testing.T) {
	f := newFixture(arrayTranscript)
	core, logs := observer.New(zap.InfoLevel)
	f.acts.Logger = zap.New(core)
	in := SaveScorecardInput{
		SessionID: f.session.ID,
		UserID:    f.session.UserID,
		Scores:    ai.Scorecard{OverallScore: 64, Feedback: "Fine."},
	}

	// The second save is an upsert onto the first row.
	for i := 0; i < 2; i++ {
		if err := f.acts.SaveScorecard(context.Background(), in); err != nil {
			t.Fatalf("SaveScorecard: %v", err)
		}
	}

	saved := logs.FilterMessage("scoring.scorecard_saved").All()
	if len(saved) != 2 {
		t.Fatalf("saved log entries = %d, want 2", len(saved))
	}
	for _, entry := range saved {
		fields := entry.ContextMap()
		if fields["session_id"] != f.session.ID.String() {
			t.Fatalf("session_id = %v", fields["session_id"])
		}
		if _, ok := fields["scorecard_id"]; ok {
			t.Fatalf("scorecard_id logged: %v", fields["scorecard_id"])
		}
	}
}

func TestSaveScorecard_FailureMarksFailed(t *testing.T) {
	f := newFixture(arrayTranscript)
	f.scorecards.Err = errors.New("duplicate key value violates constraint")

	err := f.acts.SaveScorecard(context.Background(), SaveScorecardInput{
		SessionID: f.session.ID,
		UserID:    f.session.UserID,
		Scores:    ai.Scorecard{OverallScore: 10, Feedback: "x"},
	})
	if typ, nonRetryable := applicationErrorType(t, err); typ != ErrTypeScorecardSaveFailed || !nonRetryable {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "Failed to save scorecard: duplicate key") {
		t.Fatalf("message = %q", err.Error())
	}
	if !sameStatuses(f.history(), entities.ScoringStatusFailed) {
		t.Fatalf("status history = %v", f.history())
	}
}
