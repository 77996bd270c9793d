package dbsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

// Executor runs queries over a direct database/sql warehouse connection
// (databricks or snowflake drivers). It implements warehouse.Executor; the
// shop domain is part of the query context only, connections are per-shop.
type Executor struct {
	db *sql.DB
}

func NewExecutor(db *sql.DB) (*Executor, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &Executor{db: db}, nil
}

func (e *Executor) ExecuteSQL(ctx context.Context, _ string, query string, _, _ time.Time) ([]store.Row, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("warehouse query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close warehouse query rows")
		}
	}(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	var result []store.Row
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan warehouse row: %w", err)
		}

		row := make(store.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouse rows: %w", err)
	}
	return result, nil
}

// normalizeValue flattens driver-specific scan types into the value kinds the
// row coercion layer understands.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
