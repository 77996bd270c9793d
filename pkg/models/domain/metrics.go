package domain

import "time"

// SearchShareFields are the impression-weighted search-visibility ratios.
// They are stored per hour as true ratios but must be rolled up to coarser
// buckets via impression-weighted averaging, never naive averaging.
var SearchShareFields = []string{
	"search_impression_share",
	"search_top_impression_share",
	"search_absolute_top_impression_share",
	"search_budget_lost_top_impression_share",
	"search_budget_lost_absolute_top_impression_share",
	"search_rank_lost_top_impression_share",
	"search_rank_lost_impression_share",
}

// SearchImpressionsFields are plain additive counters.
var SearchImpressionsFields = []string{
	"search_top_impressions",
	"search_absolute_top_impressions",
	"search_budget_lost_top_impressions",
	"search_budget_lost_absolute_top_impressions",
	"search_rank_lost_top_impressions",
	"search_rank_lost_impressions",
}

// AIPacingFields are categorical text fields with first-non-empty-wins
// semantics during accumulation.
var AIPacingFields = []string{
	"campaign_ai_recommendation",
	"campaign_ai_roas_pacing",
	"adset_ai_recommendation",
	"adset_ai_roas_pacing",
	"ad_ai_recommendation",
	"ad_ai_roas_pacing",
	"channel_ai_recommendation",
	"channel_ai_roas_pacing",
}

// HourlyRegionMetrics is the canonical fused record for one region and one
// UTC hour. All additive fields are sums across the contributing warehouse
// rows; search shares are already reconciled to the hour's impression volume.
type HourlyRegionMetrics struct {
	Region       Region
	TimestampUTC time.Time // start of hour, always on the hour boundary

	MetaSpend   float64
	GoogleSpend float64

	NewCustomerOrders int
	NewCustomerSales  float64
	TotalSales        float64
	TotalOrders       float64

	GrossSales        float64
	GrossProductSales float64
	RefundMoney       float64
	DiscountAmount    float64

	CostOfGoods            float64
	ShippingCosts          float64
	EstimatedShippingCosts float64
	HandlingFees           float64
	PaymentGatewayCosts    float64

	NonTrackedSpend       float64
	Impressions           float64
	Clicks                float64
	OnsitePurchases       float64
	OnsiteConversionValue float64
	MetaPurchases         float64

	// Keyed by SearchShareFields / SearchImpressionsFields / AIPacingFields.
	SearchShares      map[string]float64
	SearchImpressions map[string]float64
	AIPacing          map[string]string

	Currency string
}

// TotalSpend is always derived, never stored independently.
func (m HourlyRegionMetrics) TotalSpend() float64 {
	return m.MetaSpend + m.GoogleSpend
}
