package webhook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
	"github.com/johnquangdev/practice-scoring/pkg/elevenlabs"
)

// Backfill outcomes per session
const (
	BackfillApplied   = "applied"
	BackfillWouldFix  = "would_apply"
	BackfillInvalid   = "invalid_call_data"
	BackfillDuplicate = "conversation_taken"
)

// BackfillItem reports what happened to one session
type BackfillItem struct {
	SessionID      uuid.UUID
	ConversationID string
	Outcome        string
	Reason         string
}

// BackfillReport summarizes a backfill pass
type BackfillReport struct {
	Scanned int
	Applied int
	Skipped int
	Items   []BackfillItem
}

// Backfill re-derives enrichment columns for sessions whose stored call_data
// was never applied, using the same extraction as live deliveries. With
// dryRun nothing is written.
func Backfill(ctx context.Context, repo repositories.PracticeSessionRepository, limit int, dryRun bool, logger *zap.Logger) (*BackfillReport, error) {
	sessions, err := repo.ListUnmatchedWithCallData(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions to backfill: %w", err)
	}

	report := &BackfillReport{Scanned: len(sessions)}
	for _, session := range sessions {
		item := BackfillItem{SessionID: session.ID}

		payload, err := elevenlabs.ParsePayload(session.CallData)
		if err == nil {
			err = payload.Validate()
		}
		if err != nil {
			item.Outcome, item.Reason = BackfillInvalid, err.Error()
			report.add(item, false)
			continue
		}
		item.ConversationID = payload.ConversationID

		// conversation_id is unique; another row may already own it
		owner, err := repo.FindByConversationID(ctx, payload.ConversationID)
		if err != nil {
			return report, fmt.Errorf("failed to check conversation %s: %w", payload.ConversationID, err)
		}
		if owner != nil && owner.ID != session.ID {
			item.Outcome, item.Reason = BackfillDuplicate, owner.ID.String()
			report.add(item, false)
			continue
		}

		if dryRun {
			item.Outcome = BackfillWouldFix
			report.add(item, false)
			continue
		}

		if err := repo.ApplyEnrichment(ctx, session.ID, EnrichmentFromPayload(payload)); err != nil {
			return report, fmt.Errorf("failed to update practice session %s: %w", session.ID, err)
		}
		item.Outcome = BackfillApplied
		report.add(item, true)

		if logger != nil {
			logger.Info("webhook.backfill.applied",
				zap.String("session_id", session.ID.String()),
				zap.String("conversation_id", payload.ConversationID),
			)
		}
	}
	return report, nil
}

func (r *BackfillReport) add(item BackfillItem, applied bool) {
	r.Items = append(r.Items, item)
	if applied {
		r.Applied++
	} else {
		r.Skipped++
	}
}
