package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fleetgen/backend/domain"
)

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// classify re-raises storage timeouts as UNAVAILABLE so callers can
// distinguish a retryable outage from a permanent failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrCodeUnavailable, "storage timeout", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 57014 query_canceled, 57P01 admin_shutdown
		if pgErr.Code == "57014" || pgErr.Code == "57P01" {
			return domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", err)
		}
	}
	return err
}
