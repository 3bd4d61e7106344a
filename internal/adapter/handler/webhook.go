package handler

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/errors"
	"github.com/johnquangdev/practice-scoring/internal/adapter/presenter"
	usecaseErrors "github.com/johnquangdev/practice-scoring/internal/usecase/errors"
	"github.com/johnquangdev/practice-scoring/internal/usecase/webhook"
	"github.com/johnquangdev/practice-scoring/pkg/elevenlabs"
)

// maxWebhookBody bounds a single provider delivery
const maxWebhookBody = 10 << 20

// WebhookService is the reconciliation use case consumed by Webhook
type WebhookService interface {
	VerifySignature(header string, body []byte) error
	HandleDelivery(ctx context.Context, body []byte) (*webhook.Result, error)
}

// Webhook handles provider callbacks
type Webhook struct {
	webhookService WebhookService
	logger         *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookService WebhookService, logger *zap.Logger) *Webhook {
	return &Webhook{
		webhookService: webhookService,
		logger:         logger,
	}
}

// ElevenLabs handles POST /webhooks/elevenlabs
// @Summary      ElevenLabs post-call webhook
// @Description  Attaches provider call data to the matching practice session. Redeliveries are safe.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        ElevenLabs-Signature  header    string  false  "t=<unix>,v0=<hex hmac>; required when a secret is configured"
// @Success      200                   {object}  webhook.Response  "Processed, or no matching session"
// @Failure      400                   {object}  common.ErrorResponse  "conversation_id missing or body not JSON"
// @Failure      401                   {object}  common.ErrorResponse  "Invalid webhook signature"
// @Failure      500                   {object}  common.ErrorResponse  "Failed to update practice session"
// @Router       /webhooks/elevenlabs [post]
func (h *Webhook) ElevenLabs(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	if err := h.webhookService.VerifySignature(c.Request().Header.Get(elevenlabs.SignatureHeader), body); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidSignature())
	}

	result, err := h.webhookService.HandleDelivery(c.Request().Context(), body)
	if err != nil {
		return HandleError(h.logger, c, h.translateError(err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToWebhookResponse(result))
}

func (h *Webhook) translateError(err error) error {
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrConversationIDRequired):
		return errors.ErrInvalidArgument(usecaseErrors.ErrConversationIDRequired.Error())
	case stdErrors.Is(err, usecaseErrors.ErrInvalidPayload):
		return errors.ErrInvalidPayload()
	case stdErrors.Is(err, usecaseErrors.ErrInvalidSignature):
		return errors.ErrInvalidSignature()
	default:
		return errors.ErrSessionUpdateFailed(err)
	}
}
