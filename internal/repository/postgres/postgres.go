package postgres

import (
	"context"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// orderClause resolves the requested ordering column against a whitelist,
// falling back to the provided default. Unknown columns never reach SQL.
func orderClause(requested, fallback string, allowed map[string]string, desc bool) string {
	column, ok := allowed[requested]
	if !ok {
		column = fallback
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}
