package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the parking spot store can realistically hit.
var pgErrorClasses = map[string]string{
	"23505": "unique_violation",
	"23502": "not_null_violation",
	"23514": "check_violation",
	"22001": "string_too_long",
	"22P02": "invalid_text_representation",
	"40001": "serialization_failure",
	"40P01": "deadlock",
	"57014": "query_canceled",
	"53300": "too_many_connections",
}

// ObserveDB runs fn as store operation op, recording its latency and, for real failures,
// an error class. A missing row is an outcome, not a failure.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start).Seconds()

	status := dbStatus(err)
	if status == "error" {
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}
	p.DbQueryDuration.WithLabelValues(op, status).Observe(elapsed)

	return err
}

func dbStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pgx.ErrNoRows):
		return "no_rows"
	default:
		return "error"
	}
}

func classifyDBErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if class, ok := pgErrorClasses[pgErr.Code]; ok {
			return class
		}
		return "pg_" + pgErr.Code
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if pgconn.Timeout(err) {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connect"), strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
