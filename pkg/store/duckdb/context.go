package duckdb

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTransaction threads an open transaction through ctx so a store write
// can join a larger unit of work.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
