package scoreclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// State is a step of the get-my-score flow
type State string

const (
	StateIdle              State = "idle"
	StateWaitingTranscript State = "waiting_transcript"
	StateScoring           State = "scoring"
	StateScored            State = "scored"
	StateError             State = "error"
)

// User-facing messages for the error state
const (
	MessageTranscriptTimeout = "Transcript is taking longer than expected. Please try scoring from the history page later."
	MessageScoringFailed     = "Scoring failed. Please try again."
	MessageStatusFailed      = "Failed to check scoring status"
	MessageStartFailed       = "Failed to start scoring"
)

// Defaults bound the transcript wait to roughly thirty seconds
const (
	DefaultPollInterval          = 2 * time.Second
	DefaultMaxTranscriptAttempts = 15
)

var errTranscriptNotReady = errors.New("transcript not ready")

// API is the subset of Client the controller needs
type API interface {
	StartScoring(ctx context.Context, sessionID string) (*StartResponse, error)
	Status(ctx context.Context, sessionID string) (*StatusResponse, error)
}

// Outcome is how a GetScore call ended. Err carries the underlying cause
// for logs; Message is what a user should see.
type Outcome struct {
	State       State
	ScorecardID string
	RunID       string
	Message     string
	Err         error
}

// Controller runs the get-my-score state machine for one session at a time
type Controller struct {
	api                   API
	interval              time.Duration
	maxTranscriptAttempts uint64
	onTransition          func(from, to State)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithPollInterval overrides the delay between status reads
func WithPollInterval(d time.Duration) ControllerOption {
	return func(c *Controller) { c.interval = d }
}

// WithMaxTranscriptAttempts overrides how many follow-up transcript checks are made
func WithMaxTranscriptAttempts(n uint64) ControllerOption {
	return func(c *Controller) { c.maxTranscriptAttempts = n }
}

// WithTransitionHook is called on every state change
func WithTransitionHook(fn func(from, to State)) ControllerOption {
	return func(c *Controller) { c.onTransition = fn }
}

// NewController creates an idle controller
func NewController(api API, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:                   api,
		interval:              DefaultPollInterval,
		maxTranscriptAttempts: DefaultMaxTranscriptAttempts,
		state:                 StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset cancels any in-flight GetScore and returns to idle. A retry after
// an error is Reset followed by GetScore.
func (c *Controller) Reset() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.transition(StateIdle)
}

// GetScore waits for the transcript, starts scoring and polls until the
// session is scored or failed. The transcript wait is bounded; the scoring
// phase polls until a terminal status, a transport error, or cancellation.
func (c *Controller) GetScore(ctx context.Context, sessionID string) Outcome {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	if err := c.waitForTranscript(ctx, sessionID); err != nil {
		if ctx.Err() != nil {
			return c.cancelled(ctx)
		}
		return c.fail(MessageTranscriptTimeout, err)
	}

	c.transition(StateScoring)
	started, err := c.api.StartScoring(ctx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return c.cancelled(ctx)
		}
		message := MessageStartFailed
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		return c.fail(message, err)
	}

	outcome := c.pollScoring(ctx, sessionID)
	outcome.RunID = started.RunID
	return outcome
}

// waitForTranscript checks once, then keeps checking every interval until
// the transcript lands or the attempts run out. Read failures count as not ready.
func (c *Controller) waitForTranscript(ctx context.Context, sessionID string) error {
	check := func() error {
		status, err := c.api.Status(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if !status.HasTranscript {
			return errTranscriptNotReady
		}
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.interval), c.maxTranscriptAttempts),
		ctx,
	)
	return backoff.RetryNotify(check, b, func(error, time.Duration) {
		c.transition(StateWaitingTranscript)
	})
}

func (c *Controller) pollScoring(ctx context.Context, sessionID string) Outcome {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.cancelled(ctx)
		case <-timer.C:
		}

		status, err := c.api.Status(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return c.cancelled(ctx)
			}
			return c.fail(MessageStatusFailed, err)
		}

		switch {
		case status.Status() == StatusScored && status.ScorecardID != nil:
			c.transition(StateScored)
			return Outcome{State: StateScored, ScorecardID: *status.ScorecardID}
		case status.Status() == StatusFailed:
			return c.fail(MessageScoringFailed, nil)
		}
		// Still scoring, or the run has not marked the session yet
		timer.Reset(c.interval)
	}
}

func (c *Controller) fail(message string, err error) Outcome {
	c.transition(StateError)
	return Outcome{State: StateError, Message: message, Err: err}
}

func (c *Controller) cancelled(ctx context.Context) Outcome {
	c.transition(StateIdle)
	return Outcome{State: StateIdle, Err: ctx.Err()}
}

func (c *Controller) transition(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	hook := c.onTransition
	c.mu.Unlock()

	if hook != nil && from != to {
		hook(from, to)
	}
}
