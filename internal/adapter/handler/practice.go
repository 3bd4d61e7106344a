package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/errors"
	practiceDTO "github.com/johnquangdev/practice-scoring/internal/adapter/dto/practice"
	"github.com/johnquangdev/practice-scoring/internal/adapter/presenter"
	usecaseErrors "github.com/johnquangdev/practice-scoring/internal/usecase/errors"
	"github.com/johnquangdev/practice-scoring/internal/usecase/practice"
	"github.com/johnquangdev/practice-scoring/pkg/validator"
)

// Practice handles practice session HTTP requests
type Practice struct {
	practiceService practice.Service
	logger          *zap.Logger
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService practice.Service, logger *zap.Logger) *Practice {
	return &Practice{
		practiceService: practiceService,
		logger:          logger,
	}
}

// CreateSession handles POST /practice/sessions
// @Summary      Create a practice session
// @Description  Registers a voice roleplay before the call starts. The provider conversation id is attached later by webhook.
// @Tags         Practice
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      practice.CreateSessionRequest  true  "Call identifiers"
// @Success      201      {object}  practice.SessionResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /practice/sessions [post]
func (h *Practice) CreateSession(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req practiceDTO.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(validator.Message(err)))
	}

	session, err := h.practiceService.CreateSession(c.Request().Context(), practice.CreateSessionInput{
		UserID:        userID,
		AgentID:       req.AgentID,
		ActivityID:    req.ActivityID,
		CharacterID:   req.CharacterID,
		CharacterName: req.CharacterName,
	})
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("create_practice_session", err))
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, presenter.ToSessionResponse(session))
}

// GetSession handles GET /practice/sessions/:id
// @Summary      Get a practice session
// @Description  Session detail with the cleaned transcript and scorecard, owner only
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Practice session ID"
// @Success      200  {object}  practice.SessionDetailResponse
// @Failure      400  {object}  common.ErrorResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /practice/sessions/{id} [get]
func (h *Practice) GetSession(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(usecaseErrors.ErrInvalidSessionID.Error()))
	}

	detail, err := h.practiceService.GetSession(c.Request().Context(), userID, sessionID)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrPracticeSessionNotFound) {
			return HandleError(h.logger, c, errors.ErrPracticeSessionNotFound(sessionID.String()))
		}
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("get_practice_session", err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToSessionDetailResponse(detail))
}

// ListSessions handles GET /practice/sessions
// @Summary      List practice sessions
// @Description  The caller's sessions, newest first
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  practice.ListSessionsResponse
// @Failure      400    {object}  common.ErrorResponse
// @Failure      401    {object}  common.ErrorResponse
// @Router       /practice/sessions [get]
func (h *Practice) ListSessions(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req practiceDTO.ListSessionsRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("limit must be a number"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(validator.Message(err)))
	}

	sessions, err := h.practiceService.ListSessions(c.Request().Context(), userID, req.Limit)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list_practice_sessions", err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, &practiceDTO.ListSessionsResponse{
		Sessions: presenter.ToSessionResponses(sessions),
		Count:    len(sessions),
	})
}

// Stats handles GET /practice/stats
// @Summary      Practice stats
// @Description  Totals over sessions the coach took part in
// @Tags         Practice
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  practice.StatsResponse
// @Failure      401  {object}  common.ErrorResponse
// @Router       /practice/stats [get]
func (h *Practice) Stats(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	stats, err := h.practiceService.Stats(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("practice_stats", err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToStatsResponse(stats))
}
