package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO report_runs (shop_domain, granularity, window_start, window_end, row_count) VALUES (?, ?, ?, ?, ?)`,
		"shop.example.com", "daily",
		time.Date(2024, 10, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 13, 23, 59, 59, 0, time.UTC),
		4,
	)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO report_rows (shop_domain, granularity, region, local_date, metrics) VALUES (?, ?, ?, ?, ?)`,
		"shop.example.com", "daily", "UK",
		time.Date(2024, 10, 13, 0, 0, 0, 0, time.UTC),
		`{"total_sales": 150}`,
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM report_rows WHERE shop_domain = ?", "shop.example.com").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
