package errors

import (
	"context"
	stderrs "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes and codes the session store can run into
const (
	pgUniqueViolation  = "23505"
	pgUndefinedTable   = "42P01"
	pgReadOnly         = "25006"
	pgClassIntegrity   = "23"
	pgClassConnection  = "08"
	pgClassResources   = "53"
	pgClassUnavailable = "57"
)

// PgState returns the SQLSTATE of the Postgres error inside err, or ""
func PgState(err error) string {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUndefinedTable reports whether the schema has not been created yet
func IsUndefinedTable(err error) bool { return PgState(err) == pgUndefinedTable }

// DBErrorCode maps err to an ErrorCode. Servers that are down, starting or
// out of resources map to Unavailable so callers can tell them from bugs.
func DBErrorCode(err error) ErrorCode {
	var ce *pgconn.ConnectError
	if stderrs.As(err, &ce) || pgconn.Timeout(err) || stderrs.Is(err, context.DeadlineExceeded) {
		return ErrorCodeUnavailable
	}

	state := PgState(err)
	switch {
	case state == "":
		return ErrorCodeDB
	case state == pgUniqueViolation:
		return ErrorCodeDuplicateKey
	case state == pgReadOnly:
		return ErrorCodeUnavailable
	case len(state) == 5:
		switch state[:2] {
		case pgClassIntegrity:
			return ErrorCodeValidation
		case pgClassConnection, pgClassResources, pgClassUnavailable:
			return ErrorCodeUnavailable
		}
	}
	return ErrorCodeDB
}

// FromPostgres wraps err with its mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, DBErrorCode(err), msg)
}

// FromPostgresf is the formatted variant of FromPostgres
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}
