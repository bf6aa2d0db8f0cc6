package db

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"strings"
	"time"

	"seam/internal/errors"
)

// maxBusyRetries bounds transparent retries of lock-contention errors.
const maxBusyRetries = 3

// isBusyError checks if the error is SQLite lock contention.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint
// violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// backoff returns a duration for attempt n (0-indexed) with jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 50 * time.Millisecond
	if base > time.Second {
		base = time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return base + jitter
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error. Lock-contention failures are retried with bounded backoff;
// all other errors pass through untouched (validation failures are never
// retried).
func WithTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = runTx(ctx, database, fn)
		if !isBusyError(err) || attempt >= maxBusyRetries {
			return err
		}
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return errors.NewInternal(ctx.Err())
		}
	}
}

func runTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
