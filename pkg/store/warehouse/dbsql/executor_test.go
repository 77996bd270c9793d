package dbsql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorExecuteSQL(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 10, 13, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	t.Run("maps columns to rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		hour := time.Date(2024, 10, 13, 10, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT .* FROM orders_table").WillReturnRows(
			sqlmock.NewRows([]string{"order_hour", "shipping_country_code", "total_sales"}).
				AddRow(hour, []byte("GB"), 42.5),
		)

		exec, err := NewExecutor(db)
		require.NoError(t, err)

		rows, err := exec.ExecuteSQL(ctx, "shop.example.com", "SELECT x FROM orders_table", start, end)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "2024-10-13T10:00:00Z", rows[0].String("order_hour"))
		assert.Equal(t, "GB", rows[0].String("shipping_country_code"))
		assert.Equal(t, 42.5, rows[0].Float("total_sales"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing fields default via coercion", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT").WillReturnRows(
			sqlmock.NewRows([]string{"spend"}).AddRow(nil),
		)

		exec, err := NewExecutor(db)
		require.NoError(t, err)

		rows, err := exec.ExecuteSQL(ctx, "shop.example.com", "SELECT spend FROM ads_table", start, end)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].Float("spend"))
		assert.Zero(t, rows[0].Float("clicks"))
		assert.Empty(t, rows[0].String("channel"))
	})

	t.Run("query errors propagate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

		exec, err := NewExecutor(db)
		require.NoError(t, err)

		_, err = exec.ExecuteSQL(ctx, "shop.example.com", "SELECT 1", start, end)
		assert.Error(t, err)
	})

	t.Run("nil db rejected", func(t *testing.T) {
		_, err := NewExecutor(nil)
		assert.Error(t, err)
	})
}
