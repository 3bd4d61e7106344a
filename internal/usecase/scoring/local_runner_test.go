package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/pkg/ai"
)

func newTestRunner(f *fixture) *LocalRunner {
	r := NewLocalRunner(f.acts, nil)
	r.interval = time.Millisecond
	return r
}

func TestLocalRunner_Run(t *testing.T) {
	f := newFixture(arrayTranscript)
	r := newTestRunner(f)
	defer r.Close()

	result, err := r.Run(context.Background(), f.session.ID.String())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.OverallScore != 82 || result.Status != WorkflowStatusCompleted {
		t.Fatalf("result = %+v", result)
	}
	if !sameStatuses(f.history(), entities.ScoringStatusScoring, entities.ScoringStatusScored) {
		t.Fatalf("status history = %v", f.history())
	}
}

func TestLocalRunner_RetriesTransientModelErrors(t *testing.T) {
	f := newFixture(arrayTranscript)
	f.generator.errs = []error{&ai.HTTPError{StatusCode: 503, Body: "overloaded"}}
	r := newTestRunner(f)
	defer r.Close()

	if _, err := r.Run(context.Background(), f.session.ID.String()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.generator.Calls() != 2 {
		t.Fatalf("generator calls = %d, want 2", f.generator.Calls())
	}
}

func TestLocalRunner_PermanentErrorsAreNotRetried(t *testing.T) {
	f := newFixture(arrayTranscript)
	f.generator.errs = []error{&ai.HTTPError{StatusCode: 401, Body: "bad key"}}
	r := newTestRunner(f)
	defer r.Close()

	if _, err := r.Run(context.Background(), f.session.ID.String()); err == nil {
		t.Fatalf("expected error")
	}
	if f.generator.Calls() != 1 {
		t.Fatalf("generator calls = %d, want 1", f.generator.Calls())
	}
	if got := f.sessions.Get(f.session.ID).ScoringStatus; got != entities.ScoringStatusFailed {
		t.Fatalf("status = %q, want failed", got)
	}
}

func TestLocalRunner_StartJoinsInflightRun(t *testing.T) {
	f := newFixture(arrayTranscript)
	f.generator.block = make(chan struct{})
	r := newTestRunner(f)
	defer r.Close()
	ctx := context.Background()

	first, err := r.Start(ctx, f.session.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	second, err := r.Start(ctx, f.session.ID)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if first == "" || first != second {
		t.Fatalf("run ids = %q %q, want the same run", first, second)
	}

	close(f.generator.block)
	r.Wait()

	if f.scorecards.Count() != 1 {
		t.Fatalf("scorecards = %d, want 1", f.scorecards.Count())
	}
	if f.generator.Calls() != 1 {
		t.Fatalf("generator calls = %d, want 1", f.generator.Calls())
	}
}

func TestLocalRunner_CloseCancelsRuns(t *testing.T) {
	f := newFixture(arrayTranscript)
	f.generator.block = make(chan struct{})
	r := newTestRunner(f)

	if _, err := r.Start(context.Background(), f.session.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Close()

	if got := f.sessions.Get(f.session.ID).ScoringStatus; got != entities.ScoringStatusFailed {
		t.Fatalf("status = %q, want failed after cancellation", got)
	}
}

func TestLocalRunner_ScoredWriteFailureMarksFailed(t *testing.T) {
	f := newFixture(arrayTranscript)
	failer := failStatusWrites(f, entities.ScoringStatusScored, errors.New("dial tcp: connection refused"))
	r := newTestRunner(f)
	defer r.Close()

	if _, err := r.Run(context.Background(), f.session.ID.String()); err == nil {
		t.Fatalf("expected error")
	}
	if got := f.sessions.Get(f.session.ID).ScoringStatus; got != entities.ScoringStatusFailed {
		t.Fatalf("status = %q, want failed", got)
	}
	if !sameStatuses(f.history(), entities.ScoringStatusScoring, entities.ScoringStatusFailed) {
		t.Fatalf("status history = %v", f.history())
	}
	if failer.Attempts() != 3 {
		t.Fatalf("scored writes = %d, want 3", failer.Attempts())
	}
}

func TestLocalRunner_RetriesUnclassifiedErrors(t *testing.T) {
	f := newFixture(arrayTranscript)
	failer := failStatusWrites(f, entities.ScoringStatusScored, errors.New("database is locked"))
	r := newTestRunner(f)
	defer r.Close()

	if _, err := r.Run(context.Background(), f.session.ID.String()); err == nil {
		t.Fatalf("expected error")
	}
	if failer.Attempts() != 3 {
		t.Fatalf("scored writes = %d, want 3 like the workflow retry policy", failer.Attempts())
	}
}

func TestIsRetryableStepError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("database is locked"), true},
		{"retryable application error", temporal.NewApplicationError("busy", "Busy"), true},
		{"non-retryable application error", temporal.NewNonRetryableApplicationError("gone", ErrTypeSessionNotFound, nil), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableStepError(tt.err); got != tt.want {
				t.Fatalf("isRetryableStepError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
