package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/johnquangdev/practice-scoring/pkg/config"
)

// EnsureNamespace creates the configured namespace when it does not exist.
// Intended for local and self-hosted clusters; managed namespaces should be
// provisioned ahead of time.
func EnsureNamespace(ctx context.Context, cfg config.TemporalConfig, logger *zap.Logger) error {
	if cfg.Address == "" || cfg.Namespace == "" {
		return nil
	}

	// The namespace client carries no namespace header, so it works before
	// the namespace exists.
	nsClient, err := client.NewNamespaceClient(client.Options{
		HostPort: cfg.Address,
		Logger:   NewLogger(logger),
	})
	if err != nil {
		return fmt.Errorf("temporal namespace ensure: init namespace client: %w", err)
	}
	defer nsClient.Close()

	retention := cfg.NamespaceRetention
	if retention < 24*time.Hour {
		retention = 7 * 24 * time.Hour
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	ensure := func() error {
		_, err := nsClient.Describe(ctx, cfg.Namespace)
		if err == nil {
			return nil
		}

		var notFound *serviceerror.NamespaceNotFound
		if !errors.As(err, &notFound) {
			return classifyRPC(fmt.Errorf("describe namespace: %w", err))
		}

		regErr := nsClient.Register(ctx, &workflowservice.RegisterNamespaceRequest{
			Namespace:                        cfg.Namespace,
			Description:                      "practice-scoring auto-registered namespace",
			WorkflowExecutionRetentionPeriod: durationpb.New(retention),
		})
		var exists *serviceerror.NamespaceAlreadyExists
		if regErr == nil || errors.As(regErr, &exists) {
			if logger != nil {
				logger.Info("Registered Temporal namespace", zap.String("namespace", cfg.Namespace))
			}
			return nil
		}
		return classifyRPC(fmt.Errorf("register namespace: %w", regErr))
	}

	if err := backoff.Retry(ensure, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("temporal namespace ensure (namespace=%s): %w", cfg.Namespace, err)
	}
	return nil
}

// classifyRPC marks errors that will not heal on retry as permanent
func classifyRPC(err error) error {
	if isRetryableRPC(err) {
		return err
	}
	return backoff.Permanent(err)
}

func isRetryableRPC(err error) bool {
	if err == nil {
		return false
	}
	var unavailable *serviceerror.Unavailable
	var exhausted *serviceerror.ResourceExhausted
	var deadline *serviceerror.DeadlineExceeded
	if errors.As(err, &unavailable) || errors.As(err, &exhausted) || errors.As(err, &deadline) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
			return true
		default:
			return false
		}
	}
	return errors.Is(err, context.DeadlineExceeded)
}
