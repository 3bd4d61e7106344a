// Package workflow connects the scoring pipeline to a Temporal cluster
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/pkg/config"
)

// NewClient dials Temporal, retrying until cfg.DialTimeout elapses. It
// returns (nil, nil) when no address is configured.
func NewClient(ctx context.Context, cfg config.TemporalConfig, logger *zap.Logger) (client.Client, error) {
	if cfg.Address == "" {
		if logger != nil {
			logger.Warn("TEMPORAL_ADDRESS not set; scoring runs in-process")
		}
		return nil, nil
	}

	if cfg.AutoRegisterNamespace {
		if err := EnsureNamespace(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}

	opts := client.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    NewLogger(logger),
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = cfg.DialTimeout

	attempt := 0
	c, err := backoff.RetryNotifyWithData(func() (client.Client, error) {
		attempt++
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.DialContext(dialCtx, opts)
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		if logger != nil {
			logger.Warn("Temporal not reachable; retrying",
				zap.String("address", cfg.Address),
				zap.Int("attempt", attempt),
				zap.Duration("next", next),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial failed (address=%s namespace=%s): %w", cfg.Address, cfg.Namespace, err)
	}

	if logger != nil {
		logger.Info("Connected to Temporal",
			zap.String("address", cfg.Address),
			zap.String("namespace", cfg.Namespace),
			zap.Int("attempts", attempt),
		)
	}
	return c, nil
}
