package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Tiendas-api/internal/domain"
)

// Querier lo común entre *pgxpool.Pool y pgx.Tx: los repos funcionan dentro o fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// SQLSTATE que indican que la transacción no pudo serializarse o esperó demasiado un bloqueo.
var conflictCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available (lock_timeout)
}

// mapTxError traduce fallos de persistencia a la taxonomía de dominio.
func mapTxError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrPersistenceTimeout) || errors.Is(err, domain.ErrPersistenceConflict) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if conflictCodes[pgErr.Code] {
			return fmt.Errorf("%w: %s (%s)", domain.ErrPersistenceConflict, pgErr.Message, pgErr.Code)
		}
		if pgErr.Code == "57014" { // query_canceled (statement_timeout)
			return fmt.Errorf("%w: %s", domain.ErrPersistenceTimeout, pgErr.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceTimeout, err)
	}
	return err
}
