package retryable

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("upstream status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "429", err: statusErr(429), want: true},
		{name: "503", err: fmt.Errorf("wrapped: %w", statusErr(503)), want: true},
		{name: "400", err: statusErr(400), want: false},
		{name: "connection reset", err: errors.New("read tcp: connection reset by peer"), want: true},
		{name: "deadlock", err: errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), want: true},
		{name: "permanent wins", err: Permanent(errors.New("connection refused")), want: false},
		{name: "plain", err: errors.New("rubric template is empty"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Fatalf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestPermanentUnwraps(t *testing.T) {
	base := errors.New("bad schema")
	err := Permanent(base)
	if !errors.Is(err, base) {
		t.Fatalf("Permanent should unwrap to its cause")
	}
	if !IsPermanent(fmt.Errorf("step: %w", err)) {
		t.Fatalf("wrapped permanent error not detected")
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) should be nil")
	}
}
