package entities

import "errors"

// Domain errors
var (
	ErrPracticeSessionNotFound = errors.New("practice session not found")
	ErrScorecardNotFound       = errors.New("scorecard not found")
	ErrPromptNotFound          = errors.New("prompt not found")
)
