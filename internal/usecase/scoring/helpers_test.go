package scoring

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/testutil"
)

const rubricText = "1. Rapport (0-10)\n2. Questioning (0-10)"

const arrayTranscript = `[{"role":"agent","message":"How was your week?"},{"role":"user","message":"Busy, but good."}]`

type fakeGenerator struct {
	mu     sync.Mutex
	obj    map[string]any
	errs   []error
	calls  int
	system string
	user   string
	block  chan struct{}
}

func (g *fakeGenerator) GenerateJSON(ctx context.Context, system, user, _ string, _ map[string]any) (map[string]any, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.system, g.user = system, user
	g.mu.Unlock()

	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call <= len(g.errs) && g.errs[call-1] != nil {
		return nil, g.errs[call-1]
	}
	return g.obj, nil
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func validScores() map[string]any {
	return map[string]any{
		"overall_score": 82.0,
		"criteria_scores": []any{
			map[string]any{"name": "Rapport", "score": 8.0, "max_score": 10.0, "rationale": "Warm opening."},
			map[string]any{"name": "Questioning", "score": 7.0, "max_score": 10.0, "rationale": "Mostly open questions."},
		},
		"feedback": "Good session; slow down before offering advice.",
	}
}

type fixture struct {
	sessions   *testutil.SessionRepo
	scorecards *testutil.ScorecardRepo
	prompts    *testutil.PromptRepo
	generator  *fakeGenerator
	acts       *Activities
	session    *entities.PracticeSession
}

func newFixture(rawTranscript string) *fixture {
	f := &fixture{
		sessions:   testutil.NewSessionRepo(),
		scorecards: testutil.NewScorecardRepo(),
		prompts:    testutil.NewPromptRepo(map[string]string{DefaultRubricLabel: rubricText}),
		generator:  &fakeGenerator{obj: validScores()},
	}
	f.acts = &Activities{
		Sessions:   f.sessions,
		Scorecards: f.scorecards,
		Prompts:    f.prompts,
		Generator:  f.generator,
	}

	activityID := "act_42"
	f.session = entities.NewPracticeSession(uuid.New())
	f.session.ActivityID = &activityID
	if rawTranscript != "" {
		f.session.Transcript = datatypes.JSON(rawTranscript)
	}
	f.sessions.Put(f.session)
	return f
}

func (f *fixture) history() []entities.ScoringStatus {
	return f.sessions.StatusHistory[f.session.ID]
}

func sameStatuses(got []entities.ScoringStatus, want ...entities.ScoringStatus) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// statusWriteFailer fails every UpdateScoringStatus call for one status and
// passes the rest through.
type statusWriteFailer struct {
	*testutil.SessionRepo
	status entities.ScoringStatus
	err    error

	mu       sync.Mutex
	attempts int
}

func failStatusWrites(f *fixture, status entities.ScoringStatus, err error) *statusWriteFailer {
	w := &statusWriteFailer{SessionRepo: f.sessions, status: status, err: err}
	f.acts.Sessions = w
	return w
}

func (w *statusWriteFailer) UpdateScoringStatus(ctx context.Context, id uuid.UUID, status entities.ScoringStatus) error {
	if status == w.status {
		w.mu.Lock()
		w.attempts++
		w.mu.Unlock()
		return w.err
	}
	return w.SessionRepo.UpdateScoringStatus(ctx, id, status)
}

func (w *statusWriteFailer) Attempts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempts
}
