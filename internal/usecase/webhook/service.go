// Package webhook reconciles provider post-call deliveries with practice
// sessions the client created before the call ended.
package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/errors"
	"github.com/johnquangdev/practice-scoring/internal/domain/entities"
	"github.com/johnquangdev/practice-scoring/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/practice-scoring/internal/usecase/errors"
	"github.com/johnquangdev/practice-scoring/pkg/elevenlabs"
)

// Result statuses returned to the provider
const (
	StatusSuccess        = "success"
	StatusNoSessionFound = "no_session_found"
)

// How a delivery was matched to a session
const (
	MatchedByLedger         = "ledger"
	MatchedByConversationID = "conversation_id"
	MatchedByAgentWindow    = "agent_window"
)

const (
	defaultMatchWindow = 5 * time.Minute
	defaultDedupeTTL   = 24 * time.Hour
)

// DeliveryLedger remembers deliveries that were already applied
type DeliveryLedger interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Remember(ctx context.Context, key, sessionID string, ttl time.Duration) error
}

// PayloadArchive keeps raw provider bodies for audit
type PayloadArchive interface {
	ArchivePayload(ctx context.Context, conversationID string, body []byte) (string, error)
}

// Config tunes matching and deduplication
type Config struct {
	MatchWindow        time.Duration
	DedupeTTL          time.Duration
	Secret             string
	SignatureTolerance time.Duration
}

// Result is the outcome of one delivery
type Result struct {
	Status    string
	SessionID *uuid.UUID
	MatchedBy string
}

// Service is the webhook reconciler
type Service struct {
	sessionRepo repositories.PracticeSessionRepository
	ledger      DeliveryLedger
	archive     PayloadArchive
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates the reconciler. ledger and archive are optional.
func NewService(
	sessionRepo repositories.PracticeSessionRepository,
	ledger DeliveryLedger,
	archive PayloadArchive,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.MatchWindow <= 0 {
		cfg.MatchWindow = defaultMatchWindow
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = defaultDedupeTTL
	}
	if cfg.SignatureTolerance <= 0 {
		cfg.SignatureTolerance = elevenlabs.DefaultSignatureTolerance
	}
	return &Service{
		sessionRepo: sessionRepo,
		ledger:      ledger,
		archive:     archive,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// VerifySignature checks the provider signature header. Without a configured
// secret the callback is accepted unsigned.
func (s *Service) VerifySignature(header string, body []byte) error {
	if s.cfg.Secret == "" {
		return nil
	}
	if err := elevenlabs.VerifySignature(s.cfg.Secret, header, body, s.now(), s.cfg.SignatureTolerance); err != nil {
		return fmt.Errorf("%w: %v", usecaseErrors.ErrInvalidSignature, err)
	}
	return nil
}

// HandleDelivery applies one provider delivery to the matching session.
// An unmatched delivery is not an error; a new session is never created.
func (s *Service) HandleDelivery(ctx context.Context, body []byte) (*Result, error) {
	payload, err := elevenlabs.ParsePayload(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrInvalidPayload, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, usecaseErrors.ErrConversationIDRequired
	}

	log := s.withFields(zap.String("conversation_id", payload.ConversationID), zap.String("agent_id", payload.AgentID))
	if log != nil {
		log.Info("webhook.elevenlabs.received")
	}

	s.archivePayload(ctx, payload.ConversationID, body, log)

	key := DeliveryKey(payload.ConversationID, body)
	if id, ok := s.lookupLedger(ctx, key, log); ok {
		return &Result{Status: StatusSuccess, SessionID: &id, MatchedBy: MatchedByLedger}, nil
	}

	session, matchedBy, err := s.match(ctx, payload)
	if err != nil {
		return nil, err
	}
	if session == nil {
		if log != nil {
			log.Warn("webhook.elevenlabs.no_session_found")
		}
		return &Result{Status: StatusNoSessionFound}, nil
	}

	if err := s.sessionRepo.ApplyEnrichment(ctx, session.ID, EnrichmentFromPayload(payload)); err != nil {
		return nil, fmt.Errorf("failed to update practice session: %w", err)
	}

	if s.ledger != nil {
		if err := s.ledger.Remember(ctx, key, session.ID.String(), s.cfg.DedupeTTL); err != nil && log != nil {
			log.Warn("webhook.elevenlabs.ledger_write_failed", zap.Error(errors.ErrCacheFailed("ledger_remember", err)))
		}
	}

	if log != nil {
		log.Info("webhook.elevenlabs.session_updated",
			zap.String("session_id", session.ID.String()),
			zap.String("matched_by", matchedBy),
		)
	}

	id := session.ID
	return &Result{Status: StatusSuccess, SessionID: &id, MatchedBy: matchedBy}, nil
}

// match finds the session by stored conversation id, then falls back to the
// newest unmatched session for the same agent inside the trailing window.
func (s *Service) match(ctx context.Context, payload *elevenlabs.Payload) (*entities.PracticeSession, string, error) {
	session, err := s.sessionRepo.FindByConversationID(ctx, payload.ConversationID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find session by conversation: %w", err)
	}
	if session != nil {
		return session, MatchedByConversationID, nil
	}

	if payload.AgentID == "" {
		return nil, "", nil
	}

	since := s.now().Add(-s.cfg.MatchWindow)
	session, err = s.sessionRepo.FindRecentUnmatchedByAgent(ctx, payload.AgentID, since)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find recent session for agent: %w", err)
	}
	if session == nil {
		return nil, "", nil
	}
	return session, MatchedByAgentWindow, nil
}

func (s *Service) lookupLedger(ctx context.Context, key string, log *zap.Logger) (uuid.UUID, bool) {
	if s.ledger == nil {
		return uuid.Nil, false
	}
	value, ok, err := s.ledger.Lookup(ctx, key)
	if err != nil {
		if log != nil {
			log.Warn("webhook.elevenlabs.ledger_lookup_failed", zap.Error(errors.ErrCacheFailed("ledger_lookup", err)))
		}
		return uuid.Nil, false
	}
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	if log != nil {
		log.Info("webhook.elevenlabs.duplicate_delivery", zap.String("session_id", value))
	}
	return id, true
}

func (s *Service) archivePayload(ctx context.Context, conversationID string, body []byte, log *zap.Logger) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.ArchivePayload(ctx, conversationID, body)
	if log == nil {
		return
	}
	if err != nil {
		log.Warn("webhook.elevenlabs.archive_failed", zap.Error(errors.ErrStorageFailed("archive_payload", err)))
		return
	}
	log.Debug("webhook.elevenlabs.archived", zap.String("object_key", key))
}

func (s *Service) withFields(fields ...zap.Field) *zap.Logger {
	if s.logger == nil {
		return nil
	}
	return s.logger.With(fields...)
}

// DeliveryKey identifies an exact delivery: the same conversation with a
// byte-identical body.
func DeliveryKey(conversationID string, body []byte) string {
	sum := sha256.Sum256(body)
	return conversationID + ":" + hex.EncodeToString(sum[:])
}
