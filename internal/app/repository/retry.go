package repository

import (
	"strings"
	"time"

	"github.com/jshan/storefront-backend/pkg/logger"
)

const (
	readRetryAttempts = 3
	readRetryBackoff  = 50 * time.Millisecond
)

// retryRead runs an idempotent read, retrying a small bounded number of
// times with backoff when the storage layer reports a transient failure.
// Write paths never go through here: checkout in particular must fail
// outward rather than be silently re-run.
func retryRead(fn func() error) error {
	var err error
	backoff := readRetryBackoff
	for attempt := 1; attempt <= readRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt < readRetryAttempts {
			logger.Warn("Transient storage error on read, retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return err
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused")
}
