package retry

import (
	"context"
	"time"

	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/cenkalti/backoff/v4"
)

// InitialInterval is a var so tests can shrink it.
var InitialInterval = 500 * time.Millisecond

const maxElapsed = 30 * time.Second

// Do runs op with exponential backoff, at most maxRetries extra attempts.
// Configuration and invalid-input errors are returned immediately.
func Do[T any](ctx context.Context, maxRetries uint64, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = InitialInterval
	b.MaxElapsedTime = maxElapsed

	policy := backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)

	return backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err != nil && ragErrors.IsPermanent(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy)
}
