// Package upstream bounds calls to external collaborators (database, blob
// store, identity provider) with a deadline and classifies the outcome.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTimeout = errors.New("upstream call timed out")
	ErrFailure = errors.New("upstream call failed")
)

// Call runs fn under a derived context that expires after timeout.
// A zero timeout leaves the parent deadline untouched.
func Call(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// Failure tags err as a collaborator failure unless it is already classified.
func Failure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrFailure, op, err)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
