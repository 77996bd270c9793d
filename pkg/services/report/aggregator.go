package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/de-tools/growth-atlas/pkg/services/timezone"
	"golang.org/x/exp/maps"
)

const dateFormat = "2006-01-02"

// dailyGroup accumulates one (region, local date) rollup. Share numerators
// are re-derived from hourly granularity because hours carry unequal
// impression volume; averaging the hourly ratios directly would be wrong.
type dailyGroup struct {
	region    domain.Region
	localDate time.Time

	metaSpend, googleSpend                 float64
	newCustomerOrders, newCustomerSales    float64
	totalSales, totalOrders                float64
	grossSales, grossProductSales          float64
	refundMoney, discountAmount            float64
	costOfGoods, shippingCosts             float64
	estimatedShippingCosts, handlingFees   float64
	paymentGatewayCosts, nonTrackedSpend   float64
	impressions, clicks                    float64
	onsitePurchases, onsiteConversionValue float64
	metaPurchases                          float64

	weightedShares    map[string]float64
	searchImpressions map[string]float64
	currency          string
}

type dailyKey struct {
	Region domain.Region
	Date   int64
}

// BuildDailyReports rolls hourly records up into regional local-calendar
// days and computes the derived KPIs. Input must be raw fusion output; the
// rollup is not idempotent over its own result.
func BuildDailyReports(records []domain.HourlyRegionMetrics) ([]domain.DailyRegionReport, error) {
	groups := make(map[dailyKey]*dailyGroup)

	for _, rec := range records {
		localDate, err := timezone.LocalDate(rec.TimestampUTC, rec.Region)
		if err != nil {
			return nil, fmt.Errorf("resolve local date: %w", err)
		}

		key := dailyKey{Region: rec.Region, Date: localDate.Unix()}
		g, ok := groups[key]
		if !ok {
			g = &dailyGroup{
				region:            rec.Region,
				localDate:         localDate,
				weightedShares:    make(map[string]float64, len(domain.SearchShareFields)),
				searchImpressions: make(map[string]float64, len(domain.SearchImpressionsFields)),
			}
			groups[key] = g
		}

		g.metaSpend += rec.MetaSpend
		g.googleSpend += rec.GoogleSpend
		g.newCustomerOrders += float64(rec.NewCustomerOrders)
		g.newCustomerSales += rec.NewCustomerSales
		g.totalSales += rec.TotalSales
		g.totalOrders += rec.TotalOrders
		g.grossSales += rec.GrossSales
		g.grossProductSales += rec.GrossProductSales
		g.refundMoney += rec.RefundMoney
		g.discountAmount += rec.DiscountAmount
		g.costOfGoods += rec.CostOfGoods
		g.shippingCosts += rec.ShippingCosts
		g.estimatedShippingCosts += rec.EstimatedShippingCosts
		g.handlingFees += rec.HandlingFees
		g.paymentGatewayCosts += rec.PaymentGatewayCosts
		g.nonTrackedSpend += rec.NonTrackedSpend
		g.impressions += rec.Impressions
		g.clicks += rec.Clicks
		g.onsitePurchases += rec.OnsitePurchases
		g.onsiteConversionValue += rec.OnsiteConversionValue
		g.metaPurchases += rec.MetaPurchases

		// Re-weight from the hourly granularity: numerator is the hourly
		// ratio scaled back by that hour's impressions.
		for _, field := range domain.SearchShareFields {
			g.weightedShares[field] += rec.SearchShares[field] * rec.Impressions
		}
		for _, field := range domain.SearchImpressionsFields {
			g.searchImpressions[field] += rec.SearchImpressions[field]
		}

		if g.currency == "" && rec.Currency != "" {
			g.currency = rec.Currency
		}
	}

	keys := maps.Keys(groups)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Region != keys[j].Region {
			return keys[i].Region < keys[j].Region
		}
		return keys[i].Date < keys[j].Date
	})

	reports := make([]domain.DailyRegionReport, 0, len(keys))
	for _, key := range keys {
		reports = append(reports, finalizeDaily(groups[key]))
	}
	return reports, nil
}

func finalizeDaily(g *dailyGroup) domain.DailyRegionReport {
	totalSpend := g.metaSpend + g.googleSpend

	returningOrders := g.totalOrders - g.newCustomerOrders
	if returningOrders < 0 {
		returningOrders = 0
	}

	grossProfit := g.totalSales - g.costOfGoods - g.shippingCosts - g.paymentGatewayCosts - g.handlingFees

	shares := make(map[string]float64, len(domain.SearchShareFields))
	for _, field := range domain.SearchShareFields {
		if g.impressions > 0 {
			shares[field] = g.weightedShares[field] / g.impressions
		} else {
			shares[field] = 0
		}
	}

	currency := g.currency
	if currency == "" {
		currency = "USD"
	}

	return domain.DailyRegionReport{
		Region:    g.region,
		LocalDate: g.localDate,
		Currency:  currency,

		MetaSpend:   g.metaSpend,
		GoogleSpend: g.googleSpend,
		TotalSpend:  totalSpend,

		NewCustomerOrders: int(g.newCustomerOrders),
		ReturningOrders:   returningOrders,
		TotalOrders:       g.totalOrders,

		NewCustomerSales: g.newCustomerSales,
		ReturningSales:   g.totalSales - g.newCustomerSales,
		TotalSales:       g.totalSales,
		NetSales:         g.totalSales - g.refundMoney,

		GrossSales:        g.grossSales,
		GrossProductSales: g.grossProductSales,
		RefundMoney:       g.refundMoney,
		DiscountAmount:    g.discountAmount,

		CostOfGoods:            g.costOfGoods,
		ShippingCosts:          g.shippingCosts,
		EstimatedShippingCosts: g.estimatedShippingCosts,
		HandlingFees:           g.handlingFees,
		PaymentGatewayCosts:    g.paymentGatewayCosts,

		GrossProfit:  grossProfit,
		GrossMargin:  safeDiv(grossProfit, g.totalSales),
		DiscountRate: safeDiv(g.discountAmount, g.totalSales),
		RefundRate:   safeDiv(g.refundMoney, g.totalSales),

		NonTrackedSpend: g.nonTrackedSpend,
		Impressions:     g.impressions,
		Clicks:          g.clicks,
		CTR:             safeDiv(g.clicks, g.impressions),
		CPC:             safeDiv(totalSpend, g.clicks),
		CPM:             safeDiv(totalSpend*1000, g.impressions),

		MetaPurchases:         g.metaPurchases,
		OnsitePurchases:       g.onsitePurchases,
		OnsiteConversionValue: g.onsiteConversionValue,
		OnsiteROAS:            safeDiv(g.onsiteConversionValue, totalSpend),

		NewCustomerAOV:  safeDiv(g.newCustomerSales, g.newCustomerOrders),
		NewCustomerROAS: safeDiv(g.newCustomerSales, totalSpend),
		BlendedROAS:     safeDiv(g.totalSales, totalSpend),
		NewCustomerCPP:  safeDiv(totalSpend, g.newCustomerOrders),

		SearchShares:      shares,
		SearchImpressions: g.searchImpressions,
	}
}

// BuildDailyTable projects daily reports into the fixed-column table shape.
// Empty input produces an empty table with the full column schema.
func BuildDailyTable(records []domain.HourlyRegionMetrics) (*domain.ReportTable, error) {
	reports, err := BuildDailyReports(records)
	if err != nil {
		return nil, err
	}

	table := &domain.ReportTable{Columns: domain.DailyReportColumns}
	for _, r := range reports {
		row := []any{
			string(r.Region),
			r.LocalDate.Format(dateFormat),
			r.Currency,
			r.MetaSpend,
			r.GoogleSpend,
			r.TotalSpend,
			r.NewCustomerOrders,
			r.ReturningOrders,
			r.TotalOrders,
			r.NewCustomerSales,
			r.ReturningSales,
			r.TotalSales,
			r.NetSales,
			r.GrossSales,
			r.GrossProductSales,
			r.RefundMoney,
			r.DiscountAmount,
			r.CostOfGoods,
			r.ShippingCosts,
			r.EstimatedShippingCosts,
			r.HandlingFees,
			r.PaymentGatewayCosts,
			r.GrossProfit,
			ratio(r.GrossMargin),
			ratio(r.DiscountRate),
			ratio(r.RefundRate),
			r.NonTrackedSpend,
			r.Impressions,
			r.Clicks,
			ratio(r.CTR),
			ratio(r.CPC),
			ratio(r.CPM),
			r.MetaPurchases,
			r.OnsitePurchases,
			r.OnsiteConversionValue,
			ratio(r.OnsiteROAS),
			ratio(r.NewCustomerAOV),
			ratio(r.NewCustomerROAS),
			ratio(r.BlendedROAS),
			ratio(r.NewCustomerCPP),
		}
		for _, field := range domain.SearchShareFields {
			row = append(row, r.SearchShares[field])
		}
		for _, field := range domain.SearchImpressionsFields {
			row = append(row, r.SearchImpressions[field])
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ratio unwraps a nullable KPI for table storage; nil stays nil so
// serializers can render an explicit null.
func ratio(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
