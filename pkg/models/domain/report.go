package domain

import "time"

// Granularity selects the reporting rollup level.
type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityHourly Granularity = "hourly"
)

func (g Granularity) Valid() bool {
	return g == GranularityDaily || g == GranularityHourly
}

// Window bounds a reporting run. Both instants are timezone-aware by
// construction (time.Time always carries a location); they are interpreted in
// the shop's local zone by the fusion engine.
type Window struct {
	Start time.Time
	End   time.Time
}

// DailyRegionReport is one aggregated row per region per regional-local
// calendar day. Ratio KPIs are pointers: nil means the safe-divide
// denominator was zero or undefined.
type DailyRegionReport struct {
	Region    Region
	LocalDate time.Time // midnight in the region's zone, date part is authoritative
	Currency  string

	MetaSpend   float64
	GoogleSpend float64
	TotalSpend  float64

	NewCustomerOrders int
	ReturningOrders   float64
	TotalOrders       float64

	NewCustomerSales float64
	ReturningSales   float64
	TotalSales       float64
	NetSales         float64

	GrossSales        float64
	GrossProductSales float64
	RefundMoney       float64
	DiscountAmount    float64

	CostOfGoods            float64
	ShippingCosts          float64
	EstimatedShippingCosts float64
	HandlingFees           float64
	PaymentGatewayCosts    float64

	GrossProfit  float64
	GrossMargin  *float64
	DiscountRate *float64
	RefundRate   *float64

	NonTrackedSpend float64
	Impressions     float64
	Clicks          float64
	CTR             *float64
	CPC             *float64
	CPM             *float64

	MetaPurchases         float64
	OnsitePurchases       float64
	OnsiteConversionValue float64
	OnsiteROAS            *float64

	NewCustomerAOV  *float64
	NewCustomerROAS *float64
	BlendedROAS     *float64
	NewCustomerCPP  *float64

	SearchShares      map[string]float64
	SearchImpressions map[string]float64
}

// DailyReportColumns fixes the daily table column order for downstream
// stability. Search visibility columns follow the KPI block.
var DailyReportColumns = buildDailyColumns()

func buildDailyColumns() []string {
	cols := []string{
		"region",
		"local_date",
		"currency",
		"meta_spend",
		"google_spend",
		"total_spend",
		"new_customer_orders",
		"returning_orders",
		"total_orders",
		"new_customer_sales",
		"returning_sales",
		"total_sales",
		"net_sales",
		"gross_sales",
		"gross_product_sales",
		"refund_money",
		"discount_amount",
		"cost_of_goods",
		"shipping_costs",
		"estimated_shipping_costs",
		"handling_fees",
		"payment_gateway_costs",
		"gross_profit",
		"gross_margin",
		"discount_rate",
		"refund_rate",
		"non_tracked_spend",
		"impressions",
		"clicks",
		"ctr",
		"cpc",
		"cpm",
		"meta_purchases",
		"onsite_purchases",
		"onsite_conversion_value",
		"onsite_roas",
		"new_customer_aov",
		"new_customer_roas",
		"blended_roas",
		"new_customer_cpp",
	}
	cols = append(cols, SearchShareFields...)
	cols = append(cols, SearchImpressionsFields...)
	return cols
}

// HourlyReportColumns fixes the hourly table column order. The same KPI
// formulas apply per hour; no share reconciliation happens because no
// regrouping occurs at this granularity.
var HourlyReportColumns = buildHourlyColumns()

func buildHourlyColumns() []string {
	cols := []string{
		"region",
		"timestamp_utc",
		"currency",
		"meta_spend",
		"google_spend",
		"total_spend",
		"new_customer_orders",
		"returning_orders",
		"total_orders",
		"new_customer_sales",
		"returning_sales",
		"total_sales",
		"net_sales",
		"gross_sales",
		"gross_product_sales",
		"refund_money",
		"discount_amount",
		"cost_of_goods",
		"shipping_costs",
		"estimated_shipping_costs",
		"handling_fees",
		"payment_gateway_costs",
		"gross_profit",
		"gross_margin",
		"discount_rate",
		"refund_rate",
		"non_tracked_spend",
		"impressions",
		"clicks",
		"ctr",
		"cpc",
		"cpm",
		"meta_purchases",
		"onsite_purchases",
		"onsite_conversion_value",
		"onsite_roas",
		"new_customer_aov",
		"new_customer_roas",
		"blended_roas",
		"new_customer_cpp",
	}
	cols = append(cols, SearchShareFields...)
	cols = append(cols, SearchImpressionsFields...)
	return cols
}

// HourlyLocalTimeColumns extend HourlyReportColumns when local time
// projection is on. "central" is the fixed America/Chicago comparison zone
// used by cross-region dashboards.
var HourlyLocalTimeColumns = []string{
	"local_datetime",
	"local_date",
	"local_hour",
	"central_datetime",
	"central_hour",
}

// ReportTable is the in-memory tabular output consumed by exporters and
// sinks. Rows are aligned with Columns; serialization is an external concern.
type ReportTable struct {
	Columns []string
	Rows    [][]any
}

func (t *ReportTable) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of a named column, -1 when absent.
func (t *ReportTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
