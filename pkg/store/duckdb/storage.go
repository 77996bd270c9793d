package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportRunsSchema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		shop_domain VARCHAR NOT NULL,
		granularity VARCHAR NOT NULL,
		window_start TIMESTAMP NOT NULL,
		window_end TIMESTAMP NOT NULL,
		row_count BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

const ReportRowsSchema = `
	CREATE TABLE IF NOT EXISTS report_rows (
		shop_domain VARCHAR NOT NULL,
		granularity VARCHAR NOT NULL,
		region VARCHAR NOT NULL,
		local_date DATE NOT NULL,
		local_hour VARCHAR NOT NULL DEFAULT '',
		metrics JSON NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (shop_domain, granularity, region, local_date, local_hour)
	);
`

var bootQueries = []string{
	ReportRunsSchema,
	ReportRowsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
