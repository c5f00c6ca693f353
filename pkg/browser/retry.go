package browser

import (
	"context"
	"time"
)

// retryNavigation runs attempt up to retries+1 times with delay
// between attempts, honoring ctx cancellation. It returns the number
// of attempts actually made and the last error if all failed. The
// attempt counter is explicit state so the timeout-budget arithmetic
// is auditable: total worst case = (retries+1)*attemptBound +
// retries*delay.
func retryNavigation(ctx context.Context, retries int, delay time.Duration, attempt func() error) (int, error) {
	var lastErr error
	for n := 0; n <= retries; n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if n > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return n, ctx.Err()
			}
		}

		if err := attempt(); err != nil {
			lastErr = err
			continue
		}
		return n + 1, nil
	}
	return retries + 1, lastErr
}
