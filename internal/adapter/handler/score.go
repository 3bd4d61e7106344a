package handler

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/errors"
	"github.com/johnquangdev/practice-scoring/internal/adapter/dto/score"
	"github.com/johnquangdev/practice-scoring/internal/adapter/presenter"
	usecaseErrors "github.com/johnquangdev/practice-scoring/internal/usecase/errors"
	"github.com/johnquangdev/practice-scoring/internal/usecase/scoring"
	"github.com/johnquangdev/practice-scoring/pkg/validator"
)

// ScoringService is the scoring use case consumed by Score
type ScoringService interface {
	StartScoring(ctx context.Context, userID, sessionID uuid.UUID) (*scoring.StartResult, error)
	GetStatus(ctx context.Context, userID, sessionID uuid.UUID) (*scoring.Status, error)
}

// Score handles scoring HTTP requests
type Score struct {
	scoringService ScoringService
	logger         *zap.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoringService ScoringService, logger *zap.Logger) *Score {
	return &Score{
		scoringService: scoringService,
		logger:         logger,
	}
}

// StartScoring handles POST /score
// @Summary      Score a practice session
// @Description  Verifies ownership and starts the scoring workflow. Returns before scoring completes.
// @Tags         Scoring
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      score.StartScoringRequest  true  "Session to score"
// @Success      202      {object}  score.StartScoringResponse  "Scoring workflow started"
// @Failure      400      {object}  common.ErrorResponse  "session_id missing or malformed"
// @Failure      401      {object}  common.ErrorResponse  "User not authenticated"
// @Failure      404      {object}  common.ErrorResponse  "Practice session not found or access denied"
// @Failure      500      {object}  common.ErrorResponse  "Failed to start scoring workflow"
// @Failure      503      {object}  common.ErrorResponse  "Scoring unavailable"
// @Router       /score [post]
func (h *Score) StartScoring(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req score.StartScoringRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid request body"))
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(validator.Message(err)))
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(usecaseErrors.ErrInvalidSessionID.Error()))
	}

	result, err := h.scoringService.StartScoring(c.Request().Context(), userID, sessionID)
	if err != nil {
		return HandleError(h.logger, c, h.translateError(err, req.SessionID))
	}

	return HandleSuccess(h.logger, c, http.StatusAccepted, presenter.ToStartScoringResponse(result))
}

// GetStatus handles GET /score/status
// @Summary      Scoring status
// @Description  Read-only projection polled by clients while a session is being scored
// @Tags         Scoring
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  query     string  true  "Practice session ID"
// @Success      200         {object}  score.StatusResponse
// @Failure      400         {object}  common.ErrorResponse  "session_id missing or malformed"
// @Failure      401         {object}  common.ErrorResponse  "User not authenticated"
// @Failure      404         {object}  common.ErrorResponse  "Session not found or access denied"
// @Router       /score/status [get]
func (h *Score) GetStatus(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	raw := strings.TrimSpace(c.QueryParam("session_id"))
	if raw == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(usecaseErrors.ErrSessionIDRequired.Error()))
	}
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(usecaseErrors.ErrInvalidSessionID.Error()))
	}

	status, err := h.scoringService.GetStatus(c.Request().Context(), userID, sessionID)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrPracticeSessionNotFound) {
			return HandleError(h.logger, c, errors.ErrSessionNotFound(raw))
		}
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("get_scoring_status", err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToStatusResponse(status))
}

func (h *Score) translateError(err error, sessionID string) error {
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrPracticeSessionNotFound):
		return errors.ErrPracticeSessionNotFound(sessionID)
	case stdErrors.Is(err, usecaseErrors.ErrScoringUnavailable):
		return errors.ErrWorkflowUnavailable()
	case stdErrors.Is(err, usecaseErrors.ErrWorkflowStart):
		return errors.ErrWorkflowStartFailed(err)
	default:
		return errors.ErrInternal(err)
	}
}
