package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/errors"
	"github.com/johnquangdev/practice-scoring/internal/adapter/dto/common"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/http/middleware"
)

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Router holds all handlers
type Router struct {
	scoreHandler    *Score
	webhookHandler  *Webhook
	practiceHandler *Practice
	tokenValidator  middleware.TokenValidator
	db              Pinger
	logger          *zap.Logger
}

// RouterDeps groups what the router wires together
type RouterDeps struct {
	Score          *Score
	Webhook        *Webhook
	Practice       *Practice
	TokenValidator middleware.TokenValidator
	DB             Pinger
	Logger         *zap.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		scoreHandler:    deps.Score,
		webhookHandler:  deps.Webhook,
		practiceHandler: deps.Practice,
		tokenValidator:  deps.TokenValidator,
		db:              deps.DB,
		logger:          deps.Logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.HTTPErrorHandler = NewHTTPErrorHandler(rt.logger)

	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	// Provider callback, authenticated by signature rather than bearer token
	rt.setupWebhookRoutes(v1)

	var auth []echo.MiddlewareFunc
	if rt.tokenValidator != nil {
		auth = append(auth, middleware.EchoAuth(rt.tokenValidator))
	}
	rt.setupScoreRoutes(v1, auth...)
	rt.setupPracticeRoutes(v1, auth...)
}

// setupScoreRoutes configures scoring routes
func (rt *Router) setupScoreRoutes(g *echo.Group, auth ...echo.MiddlewareFunc) {
	if rt.scoreHandler != nil {
		g.POST("/score", rt.scoreHandler.StartScoring, auth...)
		g.GET("/score/status", rt.scoreHandler.GetStatus, auth...)
	} else {
		g.POST("/score", rt.notImplemented)
		g.GET("/score/status", rt.notImplemented)
	}
}

// setupWebhookRoutes configures provider webhook routes
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	if rt.webhookHandler != nil {
		g.POST("/webhooks/elevenlabs", rt.webhookHandler.ElevenLabs)
	} else {
		g.POST("/webhooks/elevenlabs", rt.notImplemented)
	}
}

// setupPracticeRoutes configures practice session routes
func (rt *Router) setupPracticeRoutes(g *echo.Group, auth ...echo.MiddlewareFunc) {
	practiceGroup := g.Group("/practice")

	if rt.practiceHandler != nil {
		practiceGroup.POST("/sessions", rt.practiceHandler.CreateSession, auth...)
		practiceGroup.GET("/sessions", rt.practiceHandler.ListSessions, auth...)
		practiceGroup.GET("/sessions/:id", rt.practiceHandler.GetSession, auth...)
		practiceGroup.GET("/stats", rt.practiceHandler.Stats, auth...)
	} else {
		practiceGroup.POST("/sessions", rt.notImplemented)
		practiceGroup.GET("/sessions", rt.notImplemented)
		practiceGroup.GET("/sessions/:id", rt.notImplemented)
		practiceGroup.GET("/stats", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, common.ErrorResponse{
		Error: "This endpoint is not yet implemented",
		Details: map[string]interface{}{
			"path":   c.Request().URL.Path,
			"method": c.Request().Method,
		},
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	resp := common.HealthResponse{Status: "ok", Database: "unconfigured"}
	if rt.db == nil {
		return c.JSON(http.StatusOK, resp)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := rt.db.PingContext(ctx); err != nil {
		if rt.logger != nil {
			rt.logger.Warn("health.database_unreachable", zap.Error(errors.ErrDBConnectionFailed(err)))
		}
		resp.Status = "degraded"
		resp.Database = "unreachable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	resp.Database = "ok"
	return c.JSON(http.StatusOK, resp)
}
