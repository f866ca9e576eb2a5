package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Psql builds statements with Postgres $n placeholders.
var Psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func Exec(ctx context.Context, db DBTX, b sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return db.Exec(ctx, query, args...)
}

func Query(ctx context.Context, db DBTX, b sq.Sqlizer) (pgx.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return db.Query(ctx, query, args...)
}

// QueryRow defers a build error to Scan so call sites keep the pgx shape.
func QueryRow(ctx context.Context, db DBTX, b sq.Sqlizer) pgx.Row {
	query, args, err := b.ToSql()
	if err != nil {
		return errRow{err: err}
	}
	return db.QueryRow(ctx, query, args...)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
