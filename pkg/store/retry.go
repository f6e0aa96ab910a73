// retry.go handles transient SQLite errors under concurrent agent access.
//
// With several agent processes sharing one WAL-mode database, writes can
// fail with SQLITE_BUSY, SQLITE_LOCKED, or IOERR_SHORT_READ even with a
// busy_timeout set. Those are retried with exponential backoff and jitter;
// everything else is returned as-is.
package store

import (
	"math/rand"
	"strings"
	"time"
)

// retryConfig controls backoff for transient SQLite errors.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  50 * time.Millisecond,
	maxDelay:   500 * time.Millisecond,
}

// transientPatterns are substrings of error messages produced by
// modernc.org/sqlite for errors that resolve on retry.
var transientPatterns = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"IOERR_SHORT_READ",
	"database is locked",
	"database table is locked",
	"(5)",   // SQLITE_BUSY
	"(6)",   // SQLITE_LOCKED
	"(522)", // SQLITE_IOERR_SHORT_READ
}

func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// retryOp runs fn, retrying transient errors up to cfg.maxRetries times.
// Non-transient errors abort immediately.
func retryOp(cfg retryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransientSQLiteErr(lastErr) {
			return lastErr
		}
		if attempt < cfg.maxRetries {
			time.Sleep(backoffDelay(cfg, attempt))
		}
	}
	return lastErr
}

// backoffDelay is baseDelay * 2^attempt capped at maxDelay, plus a random
// jitter in [0, baseDelay).
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay {
		delay = cfg.maxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(cfg.baseDelay)))
}
