package observability

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pg error codes the storefront tables can produce
var pgErrorReasons = map[string]string{
	"23505": "unique_violation",
	"23503": "foreign_key_violation",
	"23514": "check_violation",
	"22P02": "invalid_text",
	"40001": "serialization_failure",
	"40P01": "deadlock",
	"57014": "query_canceled",
}

// ObserveDB times fn under op. A missing row is an outcome, not an error, so
// it is recorded with status not_found and leaves the error counter alone.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		status = "not_found"
	default:
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op, dbErrorReason(err)).Inc()
	}

	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func dbErrorReason(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if reason, ok := pgErrorReasons[pgErr.Code]; ok {
			return reason
		}
		return "pg_" + pgErr.Code
	}

	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &connErr), errors.As(err, &netErr):
		return "connection"
	}
	return "unknown"
}
