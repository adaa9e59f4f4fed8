package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the narrow query surface repositories depend on. Both
// *pgxpool.Pool and the pgxmock pool satisfy it.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxDatabase adds transaction support for repositories whose writes must be
// applied as a single atomic unit.
type TxDatabase interface {
	Database
	Begin(ctx context.Context) (pgx.Tx, error)
}
