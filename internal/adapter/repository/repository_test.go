package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entities.PracticeSession{}, &entities.Scorecard{}, &entities.Prompt{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func seedSession(t *testing.T, repo *PracticeSessionRepository, userID uuid.UUID, agentID, conversationID *string, createdAt time.Time) *entities.PracticeSession {
	t.Helper()
	s := entities.NewPracticeSession(userID)
	s.AgentID = agentID
	s.ConversationID = conversationID
	s.CreatedAt = createdAt.UTC()
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestFindByIDForUser(t *testing.T) {
	repo := NewPracticeSessionRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()
	s := seedSession(t, repo, owner, nil, nil, time.Now())

	got, err := repo.FindByIDForUser(ctx, s.ID, owner)
	if err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if got.ID != s.ID {
		t.Fatalf("got session %s, want %s", got.ID, s.ID)
	}

	_, err = repo.FindByIDForUser(ctx, s.ID, uuid.New())
	if !errors.Is(err, entities.ErrPracticeSessionNotFound) {
		t.Fatalf("expected not found for another user, got %v", err)
	}

	_, err = repo.FindByID(ctx, uuid.New())
	if !errors.Is(err, entities.ErrPracticeSessionNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestFindRecentUnmatchedByAgent(t *testing.T) {
	repo := NewPracticeSessionRepository(newTestDB(t))
	ctx := context.Background()
	user := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	agent := strPtr("agent_1")

	old := seedSession(t, repo, user, agent, nil, now.Add(-10*time.Minute))
	recent := seedSession(t, repo, user, agent, nil, now.Add(-2*time.Minute))
	seedSession(t, repo, user, agent, strPtr("conv_taken"), now.Add(-1*time.Minute))
	seedSession(t, repo, user, strPtr("agent_2"), nil, now.Add(-30*time.Second))

	got, err := repo.FindRecentUnmatchedByAgent(ctx, "agent_1", now.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil || got.ID != recent.ID {
		t.Fatalf("expected the 2 minute old session, got %+v", got)
	}
	if got.ID == old.ID {
		t.Fatalf("session outside the window was selected")
	}

	got, err = repo.FindRecentUnmatchedByAgent(ctx, "agent_1", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no match in a 1 minute window, got %s", got.ID)
	}
}

func TestApplyEnrichmentIdempotent(t *testing.T) {
	repo := NewPracticeSessionRepository(newTestDB(t))
	ctx := context.Background()
	s := seedSession(t, repo, uuid.New(), strPtr("agent_1"), nil, time.Now())

	duration := 180
	coached := true
	enrichment := &entities.SessionEnrichment{
		ConversationID:      "conv_1",
		Transcript:          datatypes.JSON(`[{"role":"agent","message":"Hi"}]`),
		CallData:            datatypes.JSON(`{"conversation_id":"conv_1"}`),
		CallDurationSecs:    &duration,
		CallSuccessful:      strPtr("success"),
		DidCoachParticipate: &coached,
	}

	for i := 0; i < 2; i++ {
		if err := repo.ApplyEnrichment(ctx, s.ID, enrichment); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}

	got, err := repo.FindByConversationID(ctx, "conv_1")
	if err != nil || got == nil {
		t.Fatalf("lookup by conversation: %v %v", got, err)
	}
	if got.ID != s.ID {
		t.Fatalf("matched wrong session")
	}
	if got.CallDurationSecs == nil || *got.CallDurationSecs != 180 {
		t.Fatalf("duration = %v", got.CallDurationSecs)
	}
	if got.AgentID == nil || *got.AgentID != "agent_1" {
		t.Fatalf("agent_id should be preserved, got %v", got.AgentID)
	}
	if got.DidCoachParticipate == nil || !*got.DidCoachParticipate {
		t.Fatalf("did_coach_participate = %v", got.DidCoachParticipate)
	}

	if err := repo.ApplyEnrichment(ctx, uuid.New(), enrichment); !errors.Is(err, entities.ErrPracticeSessionNotFound) {
		t.Fatalf("expected not found for unknown session, got %v", err)
	}
}

func TestUpdateScoringStatus(t *testing.T) {
	repo := NewPracticeSessionRepository(newTestDB(t))
	ctx := context.Background()
	s := seedSession(t, repo, uuid.New(), nil, nil, time.Now())

	got, _ := repo.FindByID(ctx, s.ID)
	if got.ScoringStatus != entities.ScoringStatusUnset {
		t.Fatalf("new session status = %q", got.ScoringStatus)
	}

	if err := repo.UpdateScoringStatus(ctx, s.ID, entities.ScoringStatusScoring); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.FindByID(ctx, s.ID)
	if got.ScoringStatus != entities.ScoringStatusScoring {
		t.Fatalf("status = %q", got.ScoringStatus)
	}
}

func TestListUnmatchedWithCallData(t *testing.T) {
	db := newTestDB(t)
	repo := NewPracticeSessionRepository(db)
	ctx := context.Background()
	user := uuid.New()

	pending := seedSession(t, repo, user, nil, nil, time.Now().Add(-time.Hour))
	if err := db.Model(&entities.PracticeSession{}).Where("id = ?", pending.ID).
		Update("call_data", datatypes.JSON(`{"conversation_id":"conv_9"}`)).Error; err != nil {
		t.Fatalf("seed call_data: %v", err)
	}
	seedSession(t, repo, user, nil, nil, time.Now())

	got, err := repo.ListUnmatchedWithCallData(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != pending.ID {
		t.Fatalf("expected only the session with call_data, got %d rows", len(got))
	}
}

func TestScorecardSaveUpsertsBySession(t *testing.T) {
	db := newTestDB(t)
	repo := NewScorecardRepository(db)
	ctx := context.Background()
	sessionID, userID := uuid.New(), uuid.New()

	first := entities.NewScorecard(sessionID, userID, nil, 70, []entities.CriterionScore{{Name: "Listening", Score: 7, MaxScore: 10, Rationale: "ok"}}, "first")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := entities.NewScorecard(sessionID, userID, nil, 82, []entities.CriterionScore{{Name: "Listening", Score: 9, MaxScore: 10, Rationale: "good"}}, "second")
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	var count int64
	db.Model(&entities.Scorecard{}).Where("session_id = ?", sessionID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one scorecard, got %d", count)
	}

	got, err := repo.FindBySessionID(ctx, sessionID)
	if err != nil || got == nil {
		t.Fatalf("find: %v %v", got, err)
	}
	if got.OverallScore != 82 || got.Feedback != "second" {
		t.Fatalf("scorecard not overwritten: %+v", got)
	}
	if len(got.CriteriaScores) != 1 || got.CriteriaScores[0].Score != 9 {
		t.Fatalf("criteria = %+v", got.CriteriaScores)
	}

	missing, err := repo.FindBySessionID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for unscored session, got %v %v", missing, err)
	}
}

func TestPromptFindByLabel(t *testing.T) {
	db := newTestDB(t)
	repo := NewPromptRepository(db)
	ctx := context.Background()

	if _, err := repo.FindByLabel(ctx, "scorecard_rubric"); !errors.Is(err, entities.ErrPromptNotFound) {
		t.Fatalf("expected ErrPromptNotFound, got %v", err)
	}

	rubric := &entities.Prompt{ID: uuid.New(), Label: "scorecard_rubric", Template: "Score empathy 0-10"}
	if err := db.Create(rubric).Error; err != nil {
		t.Fatalf("seed prompt: %v", err)
	}

	got, err := repo.FindByLabel(ctx, "scorecard_rubric")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Template != "Score empathy 0-10" {
		t.Fatalf("template = %q", got.Template)
	}
}
