package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/johnquangdev/practice-scoring/errors"
	"github.com/johnquangdev/practice-scoring/pkg/jwt"
)

func runAuth(t *testing.T, m *jwt.Manager, setup func(*http.Request)) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/score/status", nil)
	setup(req)
	c := e.NewContext(req, httptest.NewRecorder())
	err := EchoAuth(m)(func(c echo.Context) error { return nil })(c)
	return c, err
}

func TestEchoAuth(t *testing.T) {
	m := jwt.NewManager("secret", "authenticated", "")
	userID := uuid.New()
	token, err := m.GenerateAccessToken(userID, "", "authenticated", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	c, err := runAuth(t, m, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
	if err != nil {
		t.Fatalf("valid header rejected: %v", err)
	}
	if got, _ := c.Get(ContextKeyUserID).(uuid.UUID); got != userID {
		t.Fatalf("user_id = %v, want %s", c.Get(ContextKeyUserID), userID)
	}

	c, err = runAuth(t, m, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: token}) })
	if err != nil {
		t.Fatalf("valid cookie rejected: %v", err)
	}
	if got, _ := c.Get(ContextKeyUserID).(uuid.UUID); got != userID {
		t.Fatalf("cookie user_id = %v", c.Get(ContextKeyUserID))
	}
}

func TestEchoAuthFailures(t *testing.T) {
	m := jwt.NewManager("secret", "authenticated", "")
	expired, _ := m.GenerateAccessToken(uuid.New(), "", "", -time.Minute)

	tests := []struct {
		name     string
		setup    func(*http.Request)
		wantCode apperrors.ErrorCode
	}{
		{name: "missing", setup: func(r *http.Request) {}, wantCode: apperrors.ErrorCode_UNAUTHENTICATED},
		{name: "garbage", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, wantCode: apperrors.ErrorCode_AUTH_INVALID_TOKEN},
		{name: "expired", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }, wantCode: apperrors.ErrorCode_AUTH_TOKEN_EXPIRED},
		{name: "wrong scheme", setup: func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, wantCode: apperrors.ErrorCode_UNAUTHENTICATED},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runAuth(t, m, tt.setup)
			var appErr apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != tt.wantCode || appErr.HTTPCode != http.StatusUnauthorized {
				t.Fatalf("got %s/%d, want %s/401", appErr.Code, appErr.HTTPCode, tt.wantCode)
			}
		})
	}
}
