package report

import (
	"testing"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyRecord(r domain.Region, ts time.Time) domain.HourlyRegionMetrics {
	return domain.HourlyRegionMetrics{
		Region:            r,
		TimestampUTC:      ts,
		SearchShares:      map[string]float64{},
		SearchImpressions: map[string]float64{},
		AIPacing:          map[string]string{},
		Currency:          "USD",
	}
}

func TestBuildDailyReports(t *testing.T) {
	t.Run("groups hours into regional local days", func(t *testing.T) {
		// 23:30Z on the 13th is already the 14th in Sydney but still the
		// 13th in Chicago.
		rec1 := hourlyRecord(domain.RegionAU, time.Date(2024, 10, 13, 10, 0, 0, 0, time.UTC))
		rec1.TotalSales = 100
		rec2 := hourlyRecord(domain.RegionAU, time.Date(2024, 10, 13, 23, 0, 0, 0, time.UTC))
		rec2.TotalSales = 50
		rec3 := hourlyRecord(domain.RegionUS, time.Date(2024, 10, 13, 23, 0, 0, 0, time.UTC))
		rec3.TotalSales = 30

		reports, err := BuildDailyReports([]domain.HourlyRegionMetrics{rec1, rec2, rec3})
		require.NoError(t, err)
		require.Len(t, reports, 3)

		assert.Equal(t, domain.RegionAU, reports[0].Region)
		assert.Equal(t, "2024-10-13", reports[0].LocalDate.Format("2006-01-02"))
		assert.Equal(t, 100.0, reports[0].TotalSales)

		assert.Equal(t, domain.RegionAU, reports[1].Region)
		assert.Equal(t, "2024-10-14", reports[1].LocalDate.Format("2006-01-02"))
		assert.Equal(t, 50.0, reports[1].TotalSales)

		assert.Equal(t, domain.RegionUS, reports[2].Region)
		assert.Equal(t, "2024-10-13", reports[2].LocalDate.Format("2006-01-02"))
	})

	t.Run("shares reconcile by daily impressions", func(t *testing.T) {
		rec1 := hourlyRecord(domain.RegionUK, time.Date(2024, 10, 13, 10, 0, 0, 0, time.UTC))
		rec1.Impressions = 1000
		rec1.SearchShares["search_impression_share"] = 0.8
		rec2 := hourlyRecord(domain.RegionUK, time.Date(2024, 10, 13, 11, 0, 0, 0, time.UTC))
		rec2.Impressions = 3000
		rec2.SearchShares["search_impression_share"] = 0.4

		reports, err := BuildDailyReports([]domain.HourlyRegionMetrics{rec1, rec2})
		require.NoError(t, err)
		require.Len(t, reports, 1)

		// (0.8*1000 + 0.4*3000) / 4000, not the naive mean 0.6.
		assert.InDelta(t, 0.5, reports[0].SearchShares["search_impression_share"], 1e-9)
		assert.Equal(t, 4000.0, reports[0].Impressions)
	})

	t.Run("kpi formulas", func(t *testing.T) {
		rec := hourlyRecord(domain.RegionUS, time.Date(2024, 10, 13, 15, 0, 0, 0, time.UTC))
		rec.MetaSpend = 60
		rec.GoogleSpend = 40
		rec.TotalSales = 500
		rec.NewCustomerSales = 200
		rec.NewCustomerOrders = 4
		rec.TotalOrders = 10
		rec.RefundMoney = 20
		rec.DiscountAmount = 50
		rec.CostOfGoods = 150
		rec.ShippingCosts = 30
		rec.HandlingFees = 5
		rec.PaymentGatewayCosts = 15
		rec.Impressions = 20000
		rec.Clicks = 400
		rec.OnsiteConversionValue = 350

		reports, err := BuildDailyReports([]domain.HourlyRegionMetrics{rec})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		r := reports[0]

		assert.Equal(t, 100.0, r.TotalSpend)
		assert.Equal(t, 6.0, r.ReturningOrders)
		assert.Equal(t, 300.0, r.ReturningSales)
		assert.Equal(t, 480.0, r.NetSales)
		// 500 - 150 - 30 - 15 - 5
		assert.Equal(t, 300.0, r.GrossProfit)

		require.NotNil(t, r.GrossMargin)
		assert.InDelta(t, 0.6, *r.GrossMargin, 1e-9)
		require.NotNil(t, r.DiscountRate)
		assert.InDelta(t, 0.1, *r.DiscountRate, 1e-9)
		require.NotNil(t, r.RefundRate)
		assert.InDelta(t, 0.04, *r.RefundRate, 1e-9)
		require.NotNil(t, r.CTR)
		assert.InDelta(t, 0.02, *r.CTR, 1e-9)
		require.NotNil(t, r.CPC)
		assert.InDelta(t, 0.25, *r.CPC, 1e-9)
		require.NotNil(t, r.CPM)
		assert.InDelta(t, 5.0, *r.CPM, 1e-9)
		require.NotNil(t, r.OnsiteROAS)
		assert.InDelta(t, 3.5, *r.OnsiteROAS, 1e-9)
		require.NotNil(t, r.NewCustomerAOV)
		assert.InDelta(t, 50.0, *r.NewCustomerAOV, 1e-9)
		require.NotNil(t, r.NewCustomerROAS)
		assert.InDelta(t, 2.0, *r.NewCustomerROAS, 1e-9)
		require.NotNil(t, r.BlendedROAS)
		assert.InDelta(t, 5.0, *r.BlendedROAS, 1e-9)
		require.NotNil(t, r.NewCustomerCPP)
		assert.InDelta(t, 25.0, *r.NewCustomerCPP, 1e-9)
	})

	t.Run("zero denominators yield nil not zero", func(t *testing.T) {
		rec := hourlyRecord(domain.RegionUS, time.Date(2024, 10, 13, 15, 0, 0, 0, time.UTC))
		rec.TotalSales = 100

		reports, err := BuildDailyReports([]domain.HourlyRegionMetrics{rec})
		require.NoError(t, err)
		r := reports[0]

		assert.Nil(t, r.CTR)
		assert.Nil(t, r.CPC)
		assert.Nil(t, r.CPM)
		assert.Nil(t, r.BlendedROAS)
		assert.Nil(t, r.NewCustomerAOV)
		assert.Nil(t, r.NewCustomerCPP)
		require.NotNil(t, r.GrossMargin)
	})

	t.Run("returning orders clamp at zero", func(t *testing.T) {
		rec := hourlyRecord(domain.RegionUS, time.Date(2024, 10, 13, 15, 0, 0, 0, time.UTC))
		rec.NewCustomerOrders = 5
		rec.TotalOrders = 3

		reports, err := BuildDailyReports([]domain.HourlyRegionMetrics{rec})
		require.NoError(t, err)
		assert.Zero(t, reports[0].ReturningOrders)
	})

	t.Run("first non-empty currency wins", func(t *testing.T) {
		rec1 := hourlyRecord(domain.RegionUK, time.Date(2024, 10, 13, 10, 0, 0, 0, time.UTC))
		rec1.Currency = ""
		rec2 := hourlyRecord(domain.RegionUK, time.Date(2024, 10, 13, 11, 0, 0, 0, time.UTC))
		rec2.Currency = "GBP"
		rec3 := hourlyRecord(domain.RegionUK, time.Date(2024, 10, 13, 12, 0, 0, 0, time.UTC))
		rec3.Currency = "EUR"

		reports, err := BuildDailyReports([]domain.HourlyRegionMetrics{rec1, rec2, rec3})
		require.NoError(t, err)
		assert.Equal(t, "GBP", reports[0].Currency)
	})
}

func TestBuildDailyTable(t *testing.T) {
	t.Run("empty input keeps the full schema", func(t *testing.T) {
		table, err := BuildDailyTable(nil)
		require.NoError(t, err)
		assert.True(t, table.Empty())
		assert.Equal(t, domain.DailyReportColumns, table.Columns)
	})

	t.Run("rows align with columns", func(t *testing.T) {
		rec := hourlyRecord(domain.RegionCA, time.Date(2024, 10, 13, 15, 0, 0, 0, time.UTC))
		rec.TotalSales = 42

		table, err := BuildDailyTable([]domain.HourlyRegionMetrics{rec})
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		require.Len(t, table.Rows[0], len(table.Columns))

		assert.Equal(t, "CA", table.Rows[0][table.ColumnIndex("region")])
		assert.Equal(t, "2024-10-13", table.Rows[0][table.ColumnIndex("local_date")])
		assert.Equal(t, 42.0, table.Rows[0][table.ColumnIndex("total_sales")])
		assert.Nil(t, table.Rows[0][table.ColumnIndex("blended_roas")])
	})
}

func TestBuildHourlyTable(t *testing.T) {
	rec := hourlyRecord(domain.RegionAU, time.Date(2024, 10, 13, 10, 0, 0, 0, time.UTC))
	rec.MetaSpend = 25
	rec.GoogleSpend = 15
	rec.Clicks = 100

	t.Run("without local time", func(t *testing.T) {
		table, err := BuildHourlyTable([]domain.HourlyRegionMetrics{rec}, false)
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, domain.HourlyReportColumns, table.Columns)
		assert.Equal(t, -1, table.ColumnIndex("local_date"))

		row := table.Rows[0]
		assert.Equal(t, "2024-10-13T10:00:00Z", row[table.ColumnIndex("timestamp_utc")])
		assert.Equal(t, 40.0, row[table.ColumnIndex("total_spend")])
		assert.Equal(t, 0.4, row[table.ColumnIndex("cpc")])
	})

	t.Run("with local time", func(t *testing.T) {
		table, err := BuildHourlyTable([]domain.HourlyRegionMetrics{rec}, true)
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		require.Len(t, table.Rows[0], len(domain.HourlyReportColumns)+len(domain.HourlyLocalTimeColumns))

		row := table.Rows[0]
		// 10:00Z is 21:00 AEDT on the same date and 05:00 in Chicago.
		assert.Equal(t, "2024-10-13", row[table.ColumnIndex("local_date")])
		assert.Equal(t, "2024-10-13 21:00", row[table.ColumnIndex("local_hour")])
		assert.Equal(t, "2024-10-13 05:00", row[table.ColumnIndex("central_hour")])
	})

	t.Run("empty input keeps the schema", func(t *testing.T) {
		table, err := BuildHourlyTable(nil, true)
		require.NoError(t, err)
		assert.True(t, table.Empty())
		assert.Len(t, table.Columns, len(domain.HourlyReportColumns)+len(domain.HourlyLocalTimeColumns))
	})
}

func TestFilterByLocalDate(t *testing.T) {
	day := func(d string) time.Time {
		ts, err := time.Parse("2006-01-02", d)
		require.NoError(t, err)
		return ts
	}

	makeRec := func(day int) domain.HourlyRegionMetrics {
		return hourlyRecord(domain.RegionUS, time.Date(2024, 10, day, 15, 0, 0, 0, time.UTC))
	}

	table, err := BuildDailyTable([]domain.HourlyRegionMetrics{makeRec(12), makeRec(13), makeRec(14)})
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	t.Run("rows outside the range drop", func(t *testing.T) {
		filtered := FilterByLocalDate(table, day("2024-10-13"), day("2024-10-13"))
		require.Len(t, filtered.Rows, 1)
		assert.Equal(t, "2024-10-13", filtered.Rows[0][filtered.ColumnIndex("local_date")])
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		filtered := FilterByLocalDate(table, day("2024-10-12"), day("2024-10-14"))
		assert.Len(t, filtered.Rows, 3)
	})

	t.Run("tables without local_date pass through", func(t *testing.T) {
		hourly, err := BuildHourlyTable([]domain.HourlyRegionMetrics{makeRec(12)}, false)
		require.NoError(t, err)
		same := FilterByLocalDate(hourly, day("2024-01-01"), day("2024-01-02"))
		assert.Len(t, same.Rows, 1)
	})
}

func TestSafeDiv(t *testing.T) {
	assert.Nil(t, safeDiv(1, 0))
	v := safeDiv(3, 2)
	require.NotNil(t, v)
	assert.Equal(t, 1.5, *v)
}
