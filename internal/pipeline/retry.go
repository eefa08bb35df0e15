package pipeline

import (
	"context"
	"time"
)

const retryAttempts = 3

// withRetry runs fn up to retryAttempts times, sleeping between attempts.
// The context cancels the wait.
func (p *Pipeline) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}
	return err
}
