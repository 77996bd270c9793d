package store

import (
	"encoding/json"
	"strconv"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
)

// Row is the raw shape returned by a warehouse executor. Fields may be
// missing; coercion into the typed row shapes happens exactly once, here,
// with documented defaults (0 for numerics, "" for text).
type Row map[string]any

// Float reads a numeric field, defaulting missing, null or unparsable values
// to 0. Warehouse drivers and the HTTP API variously hand back float64,
// json.Number, integers or numeric strings.
func (r Row) Float(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String reads a text field, defaulting missing or null values to "".
// Non-string values (the AI recommendation columns can carry structured
// payloads) are rendered as JSON.
func (r Row) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// OrderRow is one hourly order aggregate grouped by (hour, shipping country).
type OrderRow struct {
	Hour            string // warehouse timestamp, may lack zone info
	ShippingCountry string
	Currency        string

	TotalSales        float64
	NewCustomerSales  float64
	NewCustomerOrders float64
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
}

func OrderRowFromRaw(raw Row) OrderRow {
	return OrderRow{
		Hour:                   raw.String("order_hour"),
		ShippingCountry:        raw.String("shipping_country_code"),
		Currency:               raw.String("currency"),
		TotalSales:             raw.Float("total_sales"),
		NewCustomerSales:       raw.Float("new_customer_sales"),
		NewCustomerOrders:      raw.Float("new_customer_orders"),
		TotalOrders:            raw.Float("total_orders"),
		GrossSales:             raw.Float("gross_sales"),
		GrossProductSales:      raw.Float("gross_product_sales"),
		RefundMoney:            raw.Float("refund_money"),
		DiscountAmount:         raw.Float("discount_amount"),
		CostOfGoods:            raw.Float("cost_of_goods"),
		ShippingCosts:          raw.Float("shipping_costs"),
		EstimatedShippingCosts: raw.Float("estimated_shipping_costs"),
		HandlingFees:           raw.Float("handling_fees"),
		PaymentGatewayCosts:    raw.Float("payment_gateway_costs"),
	}
}

// AdRow is one hourly ad-spend aggregate grouped by
// (hour, channel, account, campaign, adset).
type AdRow struct {
	Hour      string
	Channel   string
	AccountID string

	CampaignName string
	AdsetName    string
	AdName       string
	Currency     string

	Spend           float64
	NonTrackedSpend float64
	Impressions     float64
	Clicks          float64

	OnsitePurchases       float64
	OnsiteConversionValue float64
	MetaPurchases         float64

	// Keyed by the canonical field lists in models/domain.
	SearchShares      map[string]float64
	SearchImpressions map[string]float64
	AIPacing          map[string]string
}

func AdRowFromRaw(raw Row) AdRow {
	row := AdRow{
		Hour:                  raw.String("spend_hour"),
		Channel:               raw.String("channel"),
		AccountID:             raw.String("account_id"),
		CampaignName:          raw.String("campaign_name"),
		AdsetName:             raw.String("adset_name"),
		AdName:                raw.String("ad_name"),
		Currency:              raw.String("currency"),
		Spend:                 raw.Float("spend"),
		NonTrackedSpend:       raw.Float("non_tracked_spend"),
		Impressions:           raw.Float("impressions"),
		Clicks:                raw.Float("clicks"),
		OnsitePurchases:       raw.Float("onsite_purchases"),
		OnsiteConversionValue: raw.Float("onsite_conversion_value"),
		MetaPurchases:         raw.Float("meta_purchases"),
		SearchShares:          make(map[string]float64, len(domain.SearchShareFields)),
		SearchImpressions:     make(map[string]float64, len(domain.SearchImpressionsFields)),
		AIPacing:              make(map[string]string, len(domain.AIPacingFields)),
	}

	for _, field := range domain.SearchShareFields {
		row.SearchShares[field] = raw.Float(field)
	}
	for _, field := range domain.SearchImpressionsFields {
		row.SearchImpressions[field] = raw.Float(field)
	}
	for _, field := range domain.AIPacingFields {
		row.AIPacing[field] = raw.String(field)
	}
	return row
}
