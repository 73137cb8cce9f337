package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code string) *pgconn.PgError { return &pgconn.PgError{Code: code} }

func TestDBErrorCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"unique", pg("23505"), ErrorCodeDuplicateKey},
		{"not null", pg("23502"), ErrorCodeValidation},
		{"check", pg("23514"), ErrorCodeValidation},
		{"read only", pg("25006"), ErrorCodeUnavailable},
		{"starting up", pg("57P03"), ErrorCodeUnavailable},
		{"too many connections", pg("53300"), ErrorCodeUnavailable},
		{"connection failure", pg("08006"), ErrorCodeUnavailable},
		{"wrapped serialization", fmt.Errorf("tx: %w", pg("40001")), ErrorCodeDB},
		{"ping timeout", fmt.Errorf("acquire: %w", context.DeadlineExceeded), ErrorCodeUnavailable},
		{"plain", stderrs.New("conn reset"), ErrorCodeDB},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DBErrorCode(tc.err); got != tc.want {
				t.Fatalf("DBErrorCode = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatal("nil should stay nil")
	}
	err := FromPostgresf(pg("23505"), "save session %s", "default")
	if !IsCode(err, ErrorCodeDuplicateKey) {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if got := WireFrom(err).Message; got != "save session default" {
		t.Fatalf("message = %q", got)
	}
	if PgState(err) != "23505" {
		t.Fatalf("state lost through the wrap: %q", PgState(err))
	}
}

func TestIsUndefinedTable(t *testing.T) {
	if !IsUndefinedTable(fmt.Errorf("load: %w", pg("42P01"))) {
		t.Fatal("expected undefined table")
	}
	if IsUndefinedTable(pg("23505")) || IsUndefinedTable(nil) {
		t.Fatal("unexpected undefined table")
	}
}
