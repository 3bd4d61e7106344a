package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"

	"github.com/johnquangdev/practice-scoring/internal/adapter/handler"
	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/testutil"
	"github.com/johnquangdev/practice-scoring/internal/usecase/practice"
	"github.com/johnquangdev/practice-scoring/internal/usecase/scoring"
	"github.com/johnquangdev/practice-scoring/internal/usecase/webhook"
	"github.com/johnquangdev/practice-scoring/pkg/elevenlabs"
	"github.com/johnquangdev/practice-scoring/pkg/jwt"
	"github.com/johnquangdev/practice-scoring/pkg/validator"
)

const (
	testSecret        = "test-jwt-secret"
	testWebhookSecret = "whsec_test"
)

type fakeStarter struct {
	runID   string
	err     error
	started []uuid.UUID
}

func (s *fakeStarter) Start(_ context.Context, sessionID uuid.UUID) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.started = append(s.started, sessionID)
	return s.runID, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	e          *echo.Echo
	sessions   *testutil.SessionRepo
	scorecards *testutil.ScorecardRepo
	starter    *fakeStarter
	tokens     *jwt.Manager
}

type serverOption func(*handler.RouterDeps, *webhook.Config)

func withWebhookSecret(secret string) serverOption {
	return func(_ *handler.RouterDeps, cfg *webhook.Config) { cfg.Secret = secret }
}

func withDB(p handler.Pinger) serverOption {
	return func(deps *handler.RouterDeps, _ *webhook.Config) { deps.DB = p }
}

func withLogger(logger *zap.Logger) serverOption {
	return func(deps *handler.RouterDeps, _ *webhook.Config) { deps.Logger = logger }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	ts := &testServer{
		sessions:   testutil.NewSessionRepo(),
		scorecards: testutil.NewScorecardRepo(),
		starter:    &fakeStarter{runID: "run-123"},
		tokens:     jwt.NewManager(testSecret, "", ""),
	}

	deps := handler.RouterDeps{TokenValidator: ts.tokens}
	var webhookCfg webhook.Config
	for _, opt := range opts {
		opt(&deps, &webhookCfg)
	}

	deps.Score = handler.NewScoreHandler(scoring.NewService(ts.sessions, ts.scorecards, ts.starter, nil), nil)
	deps.Webhook = handler.NewWebhookHandler(webhook.NewService(ts.sessions, nil, nil, webhookCfg, nil), nil)
	deps.Practice = handler.NewPracticeHandler(practice.NewPracticeService(ts.sessions, ts.scorecards, nil), nil)

	ts.e = echo.New()
	ts.e.Validator = validator.New()
	handler.NewRouter(deps).Setup(ts.e)
	return ts
}

func (ts *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := ts.tokens.GenerateAccessToken(userID, "coach@example.com", "user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return tok
}

func (ts *testServer) do(t *testing.T, method, target, body, token string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seed(userID uuid.UUID, mutate func(*entities.PracticeSession)) *entities.PracticeSession {
	s := entities.NewPracticeSession(userID)
	if mutate != nil {
		mutate(s)
	}
	ts.sessions.Put(s)
	return s
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestStartScoring(t *testing.T) {
	ts := newTestServer(t)
	owner := uuid.New()
	session := ts.seed(owner, nil)

	rec := ts.do(t, http.MethodPost, "/v1/score", `{"session_id":"`+session.ID.String()+`"}`, ts.token(t, owner), nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	if body["message"] != "Scoring workflow started" || body["run_id"] != "run-123" || body["session_id"] != session.ID.String() {
		t.Fatalf("unexpected body %v", body)
	}
	if len(ts.starter.started) != 1 || ts.starter.started[0] != session.ID {
		t.Fatalf("starter called with %v", ts.starter.started)
	}
}

func TestStartScoringErrors(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name       string
		body       func(session *entities.PracticeSession) string
		token      func(t *testing.T, ts *testServer) string
		starterErr error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "missing token",
			body:       func(s *entities.PracticeSession) string { return `{"session_id":"` + s.ID.String() + `"}` },
			token:      func(*testing.T, *testServer) string { return "" },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHENTICATED",
		},
		{
			name:       "missing session_id",
			body:       func(*entities.PracticeSession) string { return `{}` },
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
			wantError:  "session_id is required",
		},
		{
			name:       "malformed session_id",
			body:       func(*entities.PracticeSession) string { return `{"session_id":"nope"}` },
			wantStatus: http.StatusBadRequest,
			wantError:  "session_id must be a valid UUID",
		},
		{
			name:       "unknown session",
			body:       func(*entities.PracticeSession) string { return `{"session_id":"` + uuid.NewString() + `"}` },
			wantStatus: http.StatusNotFound,
			wantCode:   "SESSION_NOT_FOUND",
			wantError:  "Practice session not found or access denied",
		},
		{
			name:       "someone else's session",
			body:       func(s *entities.PracticeSession) string { return `{"session_id":"` + s.ID.String() + `"}` },
			token:      func(t *testing.T, ts *testServer) string { return ts.token(t, uuid.New()) },
			wantStatus: http.StatusNotFound,
			wantError:  "Practice session not found or access denied",
		},
		{
			name:       "workflow start failure",
			body:       func(s *entities.PracticeSession) string { return `{"session_id":"` + s.ID.String() + `"}` },
			starterErr: errors.New("temporal unreachable"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "WORKFLOW_START_FAILED",
			wantError:  "Failed to start scoring workflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.starter.err = tt.starterErr
			session := ts.seed(owner, nil)

			token := ts.token(t, owner)
			if tt.token != nil {
				token = tt.token(t, ts)
			}

			rec := ts.do(t, http.MethodPost, "/v1/score", tt.body(session), token, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			body := decode(t, rec)
			if tt.wantCode != "" && body["code"] != tt.wantCode {
				t.Fatalf("code = %v, want %s", body["code"], tt.wantCode)
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Fatalf("error = %v, want %q", body["error"], tt.wantError)
			}
			if tt.wantStatus != http.StatusInternalServerError && len(ts.starter.started) != 0 {
				t.Fatalf("workflow must not start on rejected request")
			}
		})
	}
}

func TestScoringStatus(t *testing.T) {
	ts := newTestServer(t)
	owner := uuid.New()

	pending := ts.seed(owner, nil)
	scored := ts.seed(owner, func(s *entities.PracticeSession) {
		s.ScoringStatus = entities.ScoringStatusScored
		s.Transcript = datatypes.JSON(`[{"role":"user","message":"hi"}]`)
	})
	card := entities.NewScorecard(scored.ID, owner, nil, 90, nil, "great")
	if err := ts.scorecards.Save(context.Background(), card); err != nil {
		t.Fatalf("seed scorecard: %v", err)
	}

	t.Run("never scored renders nulls", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/v1/score/status?session_id="+pending.ID.String(), "", ts.token(t, owner), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		body := decode(t, rec)
		if body["session_id"] != pending.ID.String() {
			t.Fatalf("session_id = %v", body["session_id"])
		}
		if v, ok := body["scoring_status"]; !ok || v != nil {
			t.Fatalf("scoring_status = %v (present %t), want null", v, ok)
		}
		if v, ok := body["scorecard_id"]; !ok || v != nil {
			t.Fatalf("scorecard_id = %v (present %t), want null", v, ok)
		}
		if body["has_transcript"] != false {
			t.Fatalf("has_transcript = %v", body["has_transcript"])
		}
	})

	t.Run("scored", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/v1/score/status?session_id="+scored.ID.String(), "", ts.token(t, owner), nil)
		body := decode(t, rec)
		if body["scoring_status"] != "scored" || body["scorecard_id"] != card.ID.String() || body["has_transcript"] != true {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("not owner is not found", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/v1/score/status?session_id="+scored.ID.String(), "", ts.token(t, uuid.New()), nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if body := decode(t, rec); body["error"] != "Session not found or access denied" {
			t.Fatalf("error = %v", body["error"])
		}
	})

	t.Run("missing session_id", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/v1/score/status", "", ts.token(t, owner), nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if body := decode(t, rec); body["error"] != "session_id is required" {
			t.Fatalf("error = %v", body["error"])
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := ts.tokens.GenerateAccessToken(owner, "", "", -time.Minute)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		rec := ts.do(t, http.MethodGet, "/v1/score/status?session_id="+scored.ID.String(), "", expired, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if body := decode(t, rec); body["code"] != "AUTH_TOKEN_EXPIRED" {
			t.Fatalf("code = %v", body["code"])
		}
	})
}

const webhookBody = `{
	"conversation_id": "conv_1",
	"agent_id": "agent_1",
	"transcript": [{"role":"agent","message":"Hi"}],
	"metadata": {"call_duration_secs": 95}
}`

func TestWebhookMatched(t *testing.T) {
	ts := newTestServer(t)
	conv := "conv_1"
	session := ts.seed(uuid.New(), func(s *entities.PracticeSession) { s.ConversationID = &conv })

	rec := ts.do(t, http.MethodPost, "/v1/webhooks/elevenlabs", webhookBody, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["status"] != "success" || body["session_id"] != session.ID.String() || body["message"] != "Webhook processed successfully" {
		t.Fatalf("unexpected body %v", body)
	}

	stored := ts.sessions.Get(session.ID)
	if stored.CallDurationSecs == nil || *stored.CallDurationSecs != 95 {
		t.Fatalf("enrichment not applied: %+v", stored.CallDurationSecs)
	}
}

func TestWebhookNoSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/v1/webhooks/elevenlabs", webhookBody, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != "no_session_found" {
		t.Fatalf("status = %v", body["status"])
	}
	if _, ok := body["session_id"]; ok {
		t.Fatalf("session_id must be absent when unmatched: %v", body)
	}
}

func TestWebhookErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storageErr error
		wantStatus int
		wantError  string
	}{
		{"missing conversation_id", `{"agent_id":"agent_1"}`, nil, http.StatusBadRequest, "conversation_id is required"},
		{"not json", `not json`, nil, http.StatusBadRequest, "Invalid payload"},
		{"storage failure", webhookBody, errors.New("db down"), http.StatusInternalServerError, "Failed to update practice session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.sessions.Err = tt.storageErr

			rec := ts.do(t, http.MethodPost, "/v1/webhooks/elevenlabs", tt.body, "", nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if body := decode(t, rec); body["error"] != tt.wantError {
				t.Fatalf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestWebhookSignature(t *testing.T) {
	ts := newTestServer(t, withWebhookSecret(testWebhookSecret))

	rec := ts.do(t, http.MethodPost, "/v1/webhooks/elevenlabs", webhookBody, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unsigned delivery status = %d, want 401", rec.Code)
	}

	header := elevenlabs.Sign(testWebhookSecret, []byte(webhookBody), time.Now())
	rec = ts.do(t, http.MethodPost, "/v1/webhooks/elevenlabs", webhookBody, "", map[string]string{
		elevenlabs.SignatureHeader: header,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signed delivery status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestPracticeSessions(t *testing.T) {
	ts := newTestServer(t)
	owner := uuid.New()
	token := ts.token(t, owner)

	rec := ts.do(t, http.MethodPost, "/v1/practice/sessions",
		`{"agent_id":"agent_1","activity_id":"act_1","conversation_id":"ignored"}`, token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)
	id, _ := created["id"].(string)
	if id == "" || created["agent_id"] != "agent_1" {
		t.Fatalf("unexpected create body %v", created)
	}
	if _, ok := created["conversation_id"]; ok {
		t.Fatalf("conversation_id must not be accepted on create")
	}

	rec = ts.do(t, http.MethodGet, "/v1/practice/sessions/"+id, "", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d, body %s", rec.Code, rec.Body.String())
	}
	detail := decode(t, rec)
	if detail["scorecard"] != nil {
		t.Fatalf("scorecard = %v, want null", detail["scorecard"])
	}

	rec = ts.do(t, http.MethodGet, "/v1/practice/sessions/"+id, "", ts.token(t, uuid.New()), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign detail status = %d, want 404", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/v1/practice/sessions?limit=10", "", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if list := decode(t, rec); list["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", list["count"])
	}

	rec = ts.do(t, http.MethodGet, "/v1/practice/sessions?limit=abc", "", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/v1/practice/stats", "", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	if stats := decode(t, rec); stats["total_sessions"] != float64(0) {
		t.Fatalf("total_sessions = %v", stats["total_sessions"])
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		opts       []serverOption
		wantStatus int
		wantDB     string
	}{
		{"no database", nil, http.StatusOK, "unconfigured"},
		{"reachable", []serverOption{withDB(fakePinger{})}, http.StatusOK, "ok"},
		{"unreachable", []serverOption{withDB(fakePinger{err: errors.New("refused")})}, http.StatusServiceUnavailable, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.opts...)
			rec := ts.do(t, http.MethodGet, "/health", "", "", nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decode(t, rec); body["database"] != tt.wantDB {
				t.Fatalf("database = %v, want %s", body["database"], tt.wantDB)
			}
		})
	}
}

func TestHealthLogsDatabaseConnectionFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ts := newTestServer(t, withDB(fakePinger{err: errors.New("refused")}), withLogger(zap.New(core)))

	if rec := ts.do(t, http.MethodGet, "/health", "", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	entries := logs.FilterMessage("health.database_unreachable").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	if got, _ := entries[0].ContextMap()["error"].(string); !strings.HasPrefix(got, "[DB_CONNECTION_FAILED]") {
		t.Fatalf("error = %q", got)
	}
}
