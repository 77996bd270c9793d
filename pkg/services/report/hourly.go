package report

import (
	"fmt"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/de-tools/growth-atlas/pkg/services/timezone"
)

const (
	datetimeFormat = time.RFC3339
	hourFormat     = "2006-01-02 15:00"
)

// centralZone is the fixed comparison zone for cross-region dashboards.
const centralZone = "America/Chicago"

// BuildHourlyTable applies the KPI formulas per fused hourly record. When
// includeLocalTime is set, each row gets the region-local datetime/date/hour
// labels plus the America/Chicago equivalents.
func BuildHourlyTable(records []domain.HourlyRegionMetrics, includeLocalTime bool) (*domain.ReportTable, error) {
	columns := domain.HourlyReportColumns
	var central *time.Location
	if includeLocalTime {
		columns = append(append([]string{}, columns...), domain.HourlyLocalTimeColumns...)
		var err error
		central, err = time.LoadLocation(centralZone)
		if err != nil {
			return nil, fmt.Errorf("load central zone: %w", err)
		}
	}

	table := &domain.ReportTable{Columns: columns}
	for _, rec := range records {
		totalSpend := rec.TotalSpend()
		newOrders := float64(rec.NewCustomerOrders)

		returningOrders := rec.TotalOrders - newOrders
		if returningOrders < 0 {
			returningOrders = 0
		}
		grossProfit := rec.TotalSales - rec.CostOfGoods - rec.ShippingCosts - rec.PaymentGatewayCosts - rec.HandlingFees

		row := []any{
			string(rec.Region),
			rec.TimestampUTC.Format(datetimeFormat),
			rec.Currency,
			rec.MetaSpend,
			rec.GoogleSpend,
			totalSpend,
			rec.NewCustomerOrders,
			returningOrders,
			rec.TotalOrders,
			rec.NewCustomerSales,
			rec.TotalSales - rec.NewCustomerSales,
			rec.TotalSales,
			rec.TotalSales - rec.RefundMoney,
			rec.GrossSales,
			rec.GrossProductSales,
			rec.RefundMoney,
			rec.DiscountAmount,
			rec.CostOfGoods,
			rec.ShippingCosts,
			rec.EstimatedShippingCosts,
			rec.HandlingFees,
			rec.PaymentGatewayCosts,
			grossProfit,
			ratio(safeDiv(grossProfit, rec.TotalSales)),
			ratio(safeDiv(rec.DiscountAmount, rec.TotalSales)),
			ratio(safeDiv(rec.RefundMoney, rec.TotalSales)),
			rec.NonTrackedSpend,
			rec.Impressions,
			rec.Clicks,
			ratio(safeDiv(rec.Clicks, rec.Impressions)),
			ratio(safeDiv(totalSpend, rec.Clicks)),
			ratio(safeDiv(totalSpend*1000, rec.Impressions)),
			rec.MetaPurchases,
			rec.OnsitePurchases,
			rec.OnsiteConversionValue,
			ratio(safeDiv(rec.OnsiteConversionValue, totalSpend)),
			ratio(safeDiv(rec.NewCustomerSales, newOrders)),
			ratio(safeDiv(rec.NewCustomerSales, totalSpend)),
			ratio(safeDiv(rec.TotalSales, totalSpend)),
			ratio(safeDiv(totalSpend, newOrders)),
		}
		for _, field := range domain.SearchShareFields {
			row = append(row, rec.SearchShares[field])
		}
		for _, field := range domain.SearchImpressionsFields {
			row = append(row, rec.SearchImpressions[field])
		}

		if includeLocalTime {
			local, err := timezone.LocalTime(rec.TimestampUTC, rec.Region)
			if err != nil {
				return nil, fmt.Errorf("resolve local time: %w", err)
			}
			centralTime := rec.TimestampUTC.In(central)
			row = append(row,
				local.Format(datetimeFormat),
				local.Format(dateFormat),
				local.Format(hourFormat),
				centralTime.Format(datetimeFormat),
				centralTime.Format(hourFormat),
			)
		}

		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// FilterByLocalDate keeps the rows whose local_date falls inside [start, end].
// Tables without a local_date column pass through untouched.
func FilterByLocalDate(table *domain.ReportTable, start, end time.Time) *domain.ReportTable {
	idx := table.ColumnIndex("local_date")
	if idx < 0 {
		return table
	}

	lo := start.Format(dateFormat)
	hi := end.Format(dateFormat)

	filtered := &domain.ReportTable{Columns: table.Columns}
	for _, row := range table.Rows {
		date, ok := row[idx].(string)
		if !ok {
			continue
		}
		// ISO dates order lexically.
		if date >= lo && date <= hi {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}
