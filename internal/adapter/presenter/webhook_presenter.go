package presenter

import (
	webhookDTO "github.com/johnquangdev/practice-scoring/internal/adapter/dto/webhook"
	"github.com/johnquangdev/practice-scoring/internal/usecase/webhook"
)

// Webhook acknowledgement messages
const (
	WebhookProcessedMessage = "Webhook processed successfully"
	WebhookNoMatchMessage   = "No matching session found. Session may have been created client-side."
)

// ToWebhookResponse converts a reconciliation result
func ToWebhookResponse(r *webhook.Result) *webhookDTO.Response {
	if r.Status == webhook.StatusNoSessionFound || r.SessionID == nil {
		return &webhookDTO.Response{
			Message: WebhookNoMatchMessage,
			Status:  webhook.StatusNoSessionFound,
		}
	}
	id := r.SessionID.String()
	return &webhookDTO.Response{
		Message:   WebhookProcessedMessage,
		SessionID: &id,
		Status:    r.Status,
	}
}
