package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/de-tools/growth-atlas/pkg/models/store"
	"github.com/de-tools/growth-atlas/pkg/store/duckdb"
)

const dateFormat = "2006-01-02"

// Store persists rendered report tables locally. Rows are keyed by their
// partition columns, so re-running a window replaces instead of duplicating.
type Store interface {
	Save(ctx context.Context, shopDomain string, granularity domain.Granularity, window domain.Window, table *domain.ReportTable) error
	GetRows(ctx context.Context, shopDomain string, granularity domain.Granularity, start, end time.Time) ([]store.ReportRow, error)
	GetRunStats(ctx context.Context, shopDomain string, granularity domain.Granularity) (*store.ReportRunStats, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

func (s *reportStore) Save(
	ctx context.Context,
	shopDomain string,
	granularity domain.Granularity,
	window domain.Window,
	table *domain.ReportTable,
) error {
	if !granularity.Valid() {
		return fmt.Errorf("unknown granularity %q", granularity)
	}

	regionIdx := table.ColumnIndex("region")
	dateIdx := table.ColumnIndex("local_date")
	if regionIdx < 0 || dateIdx < 0 {
		return fmt.Errorf("table is missing partition columns (region, local_date)")
	}
	hourIdx := table.ColumnIndex("local_hour")

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT OR REPLACE INTO report_rows (
			shop_domain, granularity, region, local_date, local_hour, metrics
		) VALUES (?, ?, ?, ?, ?, ?)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		region, _ := row[regionIdx].(string)
		localDate, err := rowDate(row[dateIdx])
		if err != nil {
			return err
		}

		localHour := ""
		if hourIdx >= 0 {
			localHour, _ = row[hourIdx].(string)
		}

		metrics, err := json.Marshal(rowRecord(table.Columns, row))
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}

		_, err = stmt.ExecContext(ctx, shopDomain, string(granularity), region, localDate, localHour, metrics)
		if err != nil {
			return fmt.Errorf("insert report row: %w", err)
		}
	}

	runQuery := `
		INSERT INTO report_runs (shop_domain, granularity, window_start, window_end, row_count)
		VALUES (?, ?, ?, ?, ?)`
	if tx == nil {
		_, err = s.db.ExecContext(ctx, runQuery, shopDomain, string(granularity), window.Start.UTC(), window.End.UTC(), len(table.Rows))
	} else {
		_, err = tx.ExecContext(ctx, runQuery, shopDomain, string(granularity), window.Start.UTC(), window.End.UTC(), len(table.Rows))
	}
	if err != nil {
		return fmt.Errorf("record report run: %w", err)
	}
	return nil
}

func (s *reportStore) GetRows(
	ctx context.Context,
	shopDomain string,
	granularity domain.Granularity,
	start, end time.Time,
) ([]store.ReportRow, error) {
	query := `
		SELECT region, local_date, local_hour, metrics
		FROM report_rows
		WHERE shop_domain = ? AND granularity = ? AND local_date >= ? AND local_date <= ?
		ORDER BY region, local_date, local_hour
	`
	rows, err := s.db.QueryContext(ctx, query, shopDomain, string(granularity), start, end)
	if err != nil {
		return nil, fmt.Errorf("query report rows: %w", err)
	}
	defer rows.Close()

	records := make([]store.ReportRow, 0)
	for rows.Next() {
		var (
			region, localHour string
			localDate         time.Time
			metricsRaw        []byte
		)
		if err := rows.Scan(&region, &localDate, &localHour, &metricsRaw); err != nil {
			return nil, err
		}

		metrics := map[string]any{}
		if len(metricsRaw) > 0 {
			if err := json.Unmarshal(metricsRaw, &metrics); err != nil {
				return nil, fmt.Errorf("unmarshal metrics: %w", err)
			}
		}

		records = append(records, store.ReportRow{
			ShopDomain:  shopDomain,
			Granularity: string(granularity),
			Region:      region,
			LocalDate:   localDate,
			LocalHour:   localHour,
			Metrics:     metrics,
		})
	}
	return records, rows.Err()
}

func (s *reportStore) GetRunStats(
	ctx context.Context,
	shopDomain string,
	granularity domain.Granularity,
) (*store.ReportRunStats, error) {
	query := `SELECT COUNT(*), MAX(created_at) FROM report_runs WHERE shop_domain = ? AND granularity = ?`

	var total int64
	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx, query, shopDomain, string(granularity)).Scan(&total, &last); err != nil {
		return nil, fmt.Errorf("get run stats: %w", err)
	}

	var lastRun *time.Time
	if last.Valid {
		t := last.Time
		lastRun = &t
	}
	return &store.ReportRunStats{RunsCount: total, LastRunTime: lastRun}, nil
}

func rowDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		ts, err := time.Parse(dateFormat, d)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse local_date %q: %w", d, err)
		}
		return ts, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported local_date value %T", v)
	}
}

func rowRecord(columns []string, row []any) map[string]any {
	record := make(map[string]any, len(columns))
	for i, col := range columns {
		record[col] = row[i]
	}
	return record
}
