package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/errors"
	"github.com/johnquangdev/practice-scoring/internal/adapter/dto/common"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/http/middleware"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// userIDFromContext returns the caller set by the auth middleware
func userIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, errors.ErrUnauthenticated()
	}
	return userID, nil
}

// HandleSuccess writes data as the response body using provided logger.
// Bodies are not enveloped; clients read the fields directly.
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, data)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			}
			if appErr.HTTPCode >= http.StatusInternalServerError {
				logger.Error("http.response.error", fields...)
			} else {
				logger.Warn("http.response.error", fields...)
			}
		}

		return c.JSON(appErr.HTTPCode, toErrorResponse(appErr))
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		if logger != nil {
			logger.Warn("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Int("status", httpErr.Code),
				zap.Error(err),
			)
		}

		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		return c.JSON(httpErr.Code, common.ErrorResponse{Error: message})
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.JSON(http.StatusInternalServerError, toErrorResponse(errors.ErrInternal(err)))
}

// NewHTTPErrorHandler renders errors returned by handlers and middleware
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if writeErr := HandleError(logger, c, err); writeErr != nil && logger != nil {
			logger.Error("http.response.write_failed", zap.Error(writeErr))
		}
	}
}

func toErrorResponse(appErr errors.AppError) common.ErrorResponse {
	body := common.ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code.String(),
	}
	if len(appErr.Details) > 0 {
		body.Details = make(map[string]interface{}, len(appErr.Details))
		for k, v := range appErr.Details {
			body.Details[k] = v
		}
	}
	return body
}
