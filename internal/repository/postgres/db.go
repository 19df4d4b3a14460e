package postgres

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql operations the repositories need.
// Both *sql.DB and *sql.Tx satisfy it, so repositories can be scoped to a
// transaction when callers need multi-record atomicity.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
