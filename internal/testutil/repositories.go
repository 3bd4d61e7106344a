// Package testutil provides in-memory implementations of the repository
// interfaces for use-case and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
)

var (
	_ repositories.PracticeSessionRepository = (*SessionRepo)(nil)
	_ repositories.ScorecardRepository       = (*ScorecardRepo)(nil)
	_ repositories.PromptRepository          = (*PromptRepo)(nil)
)

// SessionRepo is an in-memory PracticeSessionRepository. Err, when set, is
// returned by every call.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.PracticeSession
	Err      error

	// StatusHistory records every UpdateScoringStatus call per session
	StatusHistory map[uuid.UUID][]entities.ScoringStatus
	Enrichments   int
}

// NewSessionRepo creates an empty repository
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		sessions:      make(map[uuid.UUID]*entities.PracticeSession),
		StatusHistory: make(map[uuid.UUID][]entities.ScoringStatus),
	}
}

// Put stores a copy of session as-is
func (r *SessionRepo) Put(session *entities.PracticeSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
}

// Get returns a copy of the stored session or nil
func (r *SessionRepo) Get(id uuid.UUID) *entities.PracticeSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func (r *SessionRepo) Create(_ context.Context, session *entities.PracticeSession) error {
	if r.Err != nil {
		return r.Err
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	r.Put(session)
	return nil
}

func (r *SessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.PracticeSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if s := r.Get(id); s != nil {
		return s, nil
	}
	return nil, entities.ErrPracticeSessionNotFound
}

func (r *SessionRepo) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.PracticeSession, error) {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.BelongsTo(userID) {
		return nil, entities.ErrPracticeSessionNotFound
	}
	return s, nil
}

func (r *SessionRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entities.PracticeSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := r.filter(func(s *entities.PracticeSession) bool { return s.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SessionRepo) ListCoachParticipated(_ context.Context, userID uuid.UUID) ([]*entities.PracticeSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filter(func(s *entities.PracticeSession) bool {
		return s.UserID == userID && s.DidCoachParticipate != nil && *s.DidCoachParticipate
	}), nil
}

func (r *SessionRepo) FindByConversationID(_ context.Context, conversationID string) (*entities.PracticeSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := r.filter(func(s *entities.PracticeSession) bool {
		return s.ConversationID != nil && *s.ConversationID == conversationID
	})
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *SessionRepo) FindRecentUnmatchedByAgent(_ context.Context, agentID string, since time.Time) (*entities.PracticeSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := r.filter(func(s *entities.PracticeSession) bool {
		return s.AgentID != nil && *s.AgentID == agentID && s.ConversationID == nil && !s.CreatedAt.Before(since)
	})
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *SessionRepo) ApplyEnrichment(_ context.Context, id uuid.UUID, e *entities.SessionEnrichment) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return entities.ErrPracticeSessionNotFound
	}
	r.Enrichments++

	conv := e.ConversationID
	s.ConversationID = &conv
	if e.Transcript != nil {
		s.Transcript = e.Transcript
	}
	if e.CallData != nil {
		s.CallData = e.CallData
	}
	assign(&s.AgentID, e.AgentID)
	assign(&s.StartTimeUnixSecs, e.StartTimeUnixSecs)
	assign(&s.AcceptedTimeUnixSecs, e.AcceptedTimeUnixSecs)
	assign(&s.CallDurationSecs, e.CallDurationSecs)
	assign(&s.TerminationReason, e.TerminationReason)
	assign(&s.CostCents, e.CostCents)
	assign(&s.CallSuccessful, e.CallSuccessful)
	assign(&s.TranscriptSummary, e.TranscriptSummary)
	assign(&s.CallSummaryTitle, e.CallSummaryTitle)
	assign(&s.DidCoachParticipate, e.DidCoachParticipate)
	assign(&s.CharacterName, e.CharacterName)
	assign(&s.ActivityID, e.ActivityID)
	return nil
}

func (r *SessionRepo) ListUnmatchedWithCallData(_ context.Context, limit int) ([]*entities.PracticeSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := r.filter(func(s *entities.PracticeSession) bool {
		return s.ConversationID == nil && len(s.CallData) > 0
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SessionRepo) UpdateScoringStatus(_ context.Context, id uuid.UUID, status entities.ScoringStatus) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StatusHistory[id] = append(r.StatusHistory[id], status)
	if s, ok := r.sessions[id]; ok {
		s.ScoringStatus = status
	}
	return nil
}

// filter returns copies of matching sessions, newest first
func (r *SessionRepo) filter(keep func(*entities.PracticeSession) bool) []*entities.PracticeSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.PracticeSession
	for _, s := range r.sessions {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func assign[T any](dst **T, v *T) {
	if v != nil {
		cp := *v
		*dst = &cp
	}
}

// ScorecardRepo is an in-memory ScorecardRepository keyed by session
type ScorecardRepo struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*entities.Scorecard
	Err   error
	Saves int
}

// NewScorecardRepo creates an empty repository
func NewScorecardRepo() *ScorecardRepo {
	return &ScorecardRepo{cards: make(map[uuid.UUID]*entities.Scorecard)}
}

func (r *ScorecardRepo) Save(_ context.Context, scorecard *entities.Scorecard) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Saves++
	if existing, ok := r.cards[scorecard.SessionID]; ok {
		scorecard.ID = existing.ID
	}
	cp := *scorecard
	r.cards[scorecard.SessionID] = &cp
	return nil
}

func (r *ScorecardRepo) FindBySessionID(_ context.Context, sessionID uuid.UUID) (*entities.Scorecard, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *card
	return &cp, nil
}

// Count returns the number of stored scorecards
func (r *ScorecardRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

// PromptRepo is an in-memory PromptRepository
type PromptRepo struct {
	Prompts map[string]*entities.Prompt
	Err     error
}

// NewPromptRepo creates a repository holding the given label/template pairs
func NewPromptRepo(templates map[string]string) *PromptRepo {
	r := &PromptRepo{Prompts: make(map[string]*entities.Prompt)}
	for label, tmpl := range templates {
		r.Prompts[label] = &entities.Prompt{ID: uuid.New(), Label: label, Template: tmpl}
	}
	return r
}

func (r *PromptRepo) FindByLabel(_ context.Context, label string) (*entities.Prompt, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.Prompts[label]
	if !ok {
		return nil, entities.ErrPromptNotFound
	}
	return p, nil
}
