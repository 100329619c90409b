package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpCollectsChainAndCode(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeInternal, fmt.Errorf("dial tcp: refused"), "user store unavailable"))

	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", d.Code)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(d.Chain), d.Chain)
	}
	if _, ok := d.Fields()["pg_code"]; ok {
		t.Fatalf("pg fields should be omitted without a postgres error")
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email", TableName: "users"}
	d := Dump(Wrap(CodeInternal, pgErr, "create user"))
	if d.PGCode != "23505" || d.PGConstraint != "idx_users_email" || d.PGTable != "users" {
		t.Fatalf("unexpected pgx dump %+v", d)
	}

	pqErr := &pq.Error{Code: "23505", Constraint: "idx_users_email"}
	d = Dump(fmt.Errorf("insert: %w", pqErr))
	if d.PGCode != "23505" || d.PGConstraint != "idx_users_email" {
		t.Fatalf("unexpected pq dump %+v", d)
	}
	if d.Fields()["pg_code"] != "23505" {
		t.Fatalf("expected pg_code in fields")
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump for nil error, got %+v", d)
	}
}
