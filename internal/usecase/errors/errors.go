package errors

import "errors"

// ErrUnauthorized is returned when a request carries no authenticated user
var ErrUnauthorized = errors.New("unauthorized")

// Practice session errors
var (
	// ErrPracticeSessionNotFound covers both a missing row and a row owned by someone else
	ErrPracticeSessionNotFound = errors.New("practice session not found or access denied")
	ErrSessionIDRequired       = errors.New("session_id is required")
	ErrInvalidSessionID        = errors.New("session_id must be a valid UUID")
)

// Webhook errors
var (
	ErrConversationIDRequired = errors.New("conversation_id is required")
	ErrInvalidPayload         = errors.New("invalid webhook payload")
	ErrInvalidSignature       = errors.New("invalid webhook signature")
)

// Scoring errors
var (
	ErrScoringUnavailable = errors.New("scoring workflow unavailable")
	ErrWorkflowStart      = errors.New("failed to start scoring workflow")
)
