package utils

import (
	"context"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// RetryConfig controls how status update conflicts are retried.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (0 means no retries).
	MaxRetries int
	// InitialBackoff is the backoff before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the backoff between retries.
	MaxBackoff time.Duration
	// BackoffMultiplier grows the backoff after each retry.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the retry configuration used for policy status
// updates.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// StatusUpdateWithRetry updates the status subresource of obj, retrying on
// conflict. On each conflict the object is re-fetched and modify is applied
// again to the fresh copy, so the update never clobbers concurrent writers
// with stale state.
func StatusUpdateWithRetry[T client.Object](
	ctx context.Context,
	c client.Client,
	obj T,
	modify func(T) error,
	cfg RetryConfig,
) error {
	backoff := cfg.InitialBackoff

	for attempt := 0; ; attempt++ {
		if err := modify(obj); err != nil {
			return err
		}

		err := c.Status().Update(ctx, obj)
		if err == nil {
			return nil
		}
		if !apierrors.IsConflict(err) || attempt >= cfg.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}

		if err := c.Get(ctx, client.ObjectKeyFromObject(obj), obj); err != nil {
			return err
		}
	}
}
