package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.temporal.io/api/serviceerror"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/johnquangdev/practice-scoring/pkg/config"
)

func TestLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewLogger(zap.New(core))

	l.Info("Started worker", "task_queue", "practice-scoring")
	l.With("namespace", "default").Warn("Retrying", "attempt", 2)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Message != "Started worker" || entries[0].ContextMap()["task_queue"] != "practice-scoring" {
		t.Fatalf("entry = %+v", entries[0])
	}
	ctx := entries[1].ContextMap()
	if ctx["namespace"] != "default" || ctx["attempt"] != int64(2) {
		t.Fatalf("context = %v", ctx)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	NewLogger(nil).Error("dropped", "k", "v")
}

func TestIsRetryableRPC(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "down"), want: true},
		{name: "wrapped grpc unavailable", err: fmt.Errorf("describe: %w", status.Error(codes.Unavailable, "down")), want: true},
		{name: "grpc permission denied", err: status.Error(codes.PermissionDenied, "no"), want: false},
		{name: "temporal unavailable", err: serviceerror.NewUnavailable("frontend"), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "plain", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableRPC(tt.err); got != tt.want {
				t.Fatalf("isRetryableRPC(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewClientWithoutAddress(t *testing.T) {
	c, err := NewClient(context.Background(), config.TemporalConfig{}, nil)
	if err != nil || c != nil {
		t.Fatalf("NewClient = %v, %v; want nil, nil", c, err)
	}
}
