package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

const ordersHourlyQuery = `
SELECT
  toStartOfHour(created_at) AS order_hour,
  shipping_country_code,
  anyHeavy(currency) AS currency,
  sum(order_revenue) AS total_sales,
  sumIf(order_revenue, is_new_customer) AS new_customer_sales,
  sumIf(orders_quantity, is_new_customer) AS new_customer_orders,
  sum(orders_quantity) AS total_orders,
  sum(gross_sales) AS gross_sales,
  sum(gross_product_sales) AS gross_product_sales,
  sum(refund_money) AS refund_money,
  sum(discount_amount) AS discount_amount,
  sum(cost_of_goods) AS cost_of_goods,
  sum(shipping_costs) AS shipping_costs,
  sum(estimated_shipping_costs) AS estimated_shipping_costs,
  sum(handling_fees) AS handling_fees,
  sum(payment_gateway_costs) AS payment_gateway_costs
FROM orders_table
WHERE toDateTime(created_at) >= toDateTime('%[1]s')
  AND toDateTime(created_at) <= toDateTime('%[2]s')
  AND shipping_country_code IN ('US','CA','GB','UK','AU')
GROUP BY order_hour, shipping_country_code
`

const adsHourlyQuery = `
SELECT
  toStartOfHour(toDateTime(event_date) + toIntervalHour(toUInt32(event_hour))) AS spend_hour,
  channel,
  account_id,
  campaign_name,
  adset_name,
  ad_name,
  anyHeavy(currency) AS currency,
  sum(spend) AS spend,
  sum(non_tracked_spend) AS non_tracked_spend,
  sum(impressions) AS impressions,
  sum(clicks) AS clicks,
  sum(onsite_purchases) AS onsite_purchases,
  sum(onsite_conversion_value) AS onsite_conversion_value,
  sum(meta_purchases) AS meta_purchases,
  avg(search_impression_share) AS search_impression_share,
  avg(search_top_impression_share) AS search_top_impression_share,
  avg(search_absolute_top_impression_share) AS search_absolute_top_impression_share,
  avg(search_budget_lost_top_impression_share) AS search_budget_lost_top_impression_share,
  avg(search_budget_lost_absolute_top_impression_share) AS search_budget_lost_absolute_top_impression_share,
  avg(search_rank_lost_top_impression_share) AS search_rank_lost_top_impression_share,
  avg(search_rank_lost_impression_share) AS search_rank_lost_impression_share,
  sum(search_top_impressions) AS search_top_impressions,
  sum(search_absolute_top_impressions) AS search_absolute_top_impressions,
  sum(search_budget_lost_top_impressions) AS search_budget_lost_top_impressions,
  sum(search_budget_lost_absolute_top_impressions) AS search_budget_lost_absolute_top_impressions,
  sum(search_rank_lost_top_impressions) AS search_rank_lost_top_impressions,
  sum(search_rank_lost_impressions) AS search_rank_lost_impressions,
  anyHeavy(toJSONString(campaign_ai_recommendation)) AS campaign_ai_recommendation,
  anyHeavy(toJSONString(campaign_ai_roas_pacing)) AS campaign_ai_roas_pacing,
  anyHeavy(toJSONString(adset_ai_recommendation)) AS adset_ai_recommendation,
  anyHeavy(toJSONString(adset_ai_roas_pacing)) AS adset_ai_roas_pacing,
  anyHeavy(toJSONString(ad_ai_recommendation)) AS ad_ai_recommendation,
  anyHeavy(toJSONString(ad_ai_roas_pacing)) AS ad_ai_roas_pacing,
  anyHeavy(toJSONString(channel_ai_recommendation)) AS channel_ai_recommendation,
  anyHeavy(toJSONString(channel_ai_roas_pacing)) AS channel_ai_roas_pacing
FROM ads_table
WHERE channel = '%[3]s'
  AND toDateTime(event_date) + toIntervalHour(toUInt32(event_hour)) >= toDateTime('%[1]s')
  AND toDateTime(event_date) + toIntervalHour(toUInt32(event_hour)) <= toDateTime('%[2]s')
  AND campaign_status = 'ACTIVE'
  AND adset_status = 'ACTIVE'
  AND ad_status = 'ACTIVE'
GROUP BY spend_hour, channel, account_id, campaign_name, adset_name, ad_name
`

const shopTimezoneQuery = `SELECT shop_timezone FROM orders_table WHERE shop_timezone != '' LIMIT 1`

// Source exposes the two row sets the fusion engine consumes, plus shop
// timezone detection, over an opaque Executor.
type Source struct {
	exec       Executor
	shopDomain string
}

func NewSource(exec Executor, shopDomain string) *Source {
	return &Source{exec: exec, shopDomain: shopDomain}
}

// FetchOrdersHourly returns order aggregates grouped by hour and shipping
// country for the given UTC window.
func (s *Source) FetchOrdersHourly(ctx context.Context, startUTC, endUTC time.Time) ([]store.OrderRow, error) {
	query := fmt.Sprintf(ordersHourlyQuery, startUTC.Format(timeFormat), endUTC.Format(timeFormat))
	raw, err := s.exec.ExecuteSQL(ctx, s.shopDomain, query, startUTC, endUTC)
	if err != nil {
		return nil, fmt.Errorf("fetch hourly orders: %w", err)
	}

	rows := make([]store.OrderRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, store.OrderRowFromRaw(r))
	}
	return rows, nil
}

// FetchAdsHourly returns ad-spend aggregates for one channel for the given
// UTC window. Only ACTIVE campaign/adset/ad rows contribute.
func (s *Source) FetchAdsHourly(ctx context.Context, startUTC, endUTC time.Time, channel string) ([]store.AdRow, error) {
	query := fmt.Sprintf(adsHourlyQuery, startUTC.Format(timeFormat), endUTC.Format(timeFormat), channel)
	raw, err := s.exec.ExecuteSQL(ctx, s.shopDomain, query, startUTC, endUTC)
	if err != nil {
		return nil, fmt.Errorf("fetch hourly ads (%s): %w", channel, err)
	}

	rows := make([]store.AdRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, store.AdRowFromRaw(r))
	}
	return rows, nil
}

// DetectTimezone reads the shop's reported IANA zone from the orders table.
// Returns "UTC" when the warehouse has no answer; detection failures are not
// fatal for the pipeline.
func (s *Source) DetectTimezone(ctx context.Context) string {
	logger := zerolog.Ctx(ctx)

	now := time.Now().UTC()
	rows, err := s.exec.ExecuteSQL(ctx, s.shopDomain, shopTimezoneQuery, now.AddDate(0, 0, -30), now)
	if err != nil {
		logger.Warn().Err(err).Msg("shop timezone detection failed, falling back to UTC")
		return "UTC"
	}
	if len(rows) > 0 {
		if tz := rows[0].String("shop_timezone"); tz != "" {
			return tz
		}
	}
	return "UTC"
}
