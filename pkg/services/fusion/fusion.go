package fusion

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/de-tools/growth-atlas/pkg/models/store"
	"github.com/de-tools/growth-atlas/pkg/services/config"
	"github.com/de-tools/growth-atlas/pkg/services/region"
	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
)

const (
	channelMeta   = "facebook-ads"
	channelGoogle = "google-ads"
)

var supportedChannels = map[string]struct{}{
	channelMeta:   {},
	channelGoogle: {},
}

// Source is the warehouse-facing contract the engine pulls rows through.
// warehouse.Source satisfies it.
type Source interface {
	FetchOrdersHourly(ctx context.Context, startUTC, endUTC time.Time) ([]store.OrderRow, error)
	FetchAdsHourly(ctx context.Context, startUTC, endUTC time.Time, channel string) ([]store.AdRow, error)
	DetectTimezone(ctx context.Context) string
}

// Engine fuses order and ad-spend rows into per-(region, UTC hour) metric
// records. One invocation handles one bounded window; there is no shared
// mutable state across calls.
type Engine struct {
	src          Source
	settings     *config.Settings
	shopTimezone string // optional override, skips detection
}

type Option func(*Engine)

// WithShopTimezone pins the shop zone instead of detecting it from the
// warehouse.
func WithShopTimezone(tz string) Option {
	return func(e *Engine) { e.shopTimezone = tz }
}

func NewEngine(src Source, settings *config.Settings, opts ...Option) *Engine {
	e := &Engine{src: src, settings: settings}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchHourly runs the fetch-and-fold for the given window. The window bounds
// are interpreted in the shop's local zone; the output is one record per
// populated (region, hour) bucket, sorted ascending by (region, hour).
func (e *Engine) FetchHourly(ctx context.Context, window domain.Window) ([]domain.HourlyRegionMetrics, error) {
	logger := zerolog.Ctx(ctx)

	if e.settings.ShopDomain == "" {
		return nil, &domain.ConfigurationError{
			Setting: "GROWTH_SHOP_DOMAIN",
			Reason:  "shop domain is required to run the pipeline",
		}
	}

	zone := e.resolveShopZone(ctx)
	startLocal := window.Start.In(zone)
	endLocal := window.End.In(zone)
	if startLocal.After(endLocal) {
		return nil, domain.ErrInvalidRange
	}

	fetchStart, fetchEnd, err := expandFetchWindow(startLocal, endLocal)
	if err != nil {
		return nil, fmt.Errorf("expand fetch window: %w", err)
	}

	orderRows, err := e.src.FetchOrdersHourly(ctx, fetchStart, fetchEnd)
	if err != nil {
		return nil, err
	}

	var adRows []store.AdRow
	for _, channel := range []string{channelMeta, channelGoogle} {
		rows, err := e.src.FetchAdsHourly(ctx, fetchStart, fetchEnd, channel)
		if err != nil {
			return nil, err
		}
		adRows = append(adRows, rows...)
	}

	logger.Debug().
		Int("order_rows", len(orderRows)).
		Int("ad_rows", len(adRows)).
		Time("fetch_start", fetchStart).
		Time("fetch_end", fetchEnd).
		Msg("fetched warehouse rows")

	buckets, err := foldRows(orderRows, adRows, zone, e.settings.AccountRegionMap)
	if err != nil {
		return nil, err
	}
	return finalize(buckets), nil
}

func (e *Engine) resolveShopZone(ctx context.Context) *time.Location {
	logger := zerolog.Ctx(ctx)

	name := e.shopTimezone
	if name == "" {
		name = e.src.DetectTimezone(ctx)
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn().Str("zone", name).Msg("unknown shop timezone, falling back to UTC")
		return time.UTC
	}
	return zone
}

type bucketKey struct {
	Region domain.Region
	Hour   int64 // unix seconds of the UTC hour start
}

// bucket accumulates additive sums, weighted share numerators and first-wins
// categorical fields for one (region, hour).
type bucket struct {
	metaSpend   float64
	googleSpend float64

	newCustomerOrders float64
	newCustomerSales  float64
	totalSales        float64
	totalOrders       float64

	grossSales        float64
	grossProductSales float64
	refundMoney       float64
	discountAmount    float64

	costOfGoods            float64
	shippingCosts          float64
	estimatedShippingCosts float64
	handlingFees           float64
	paymentGatewayCosts    float64

	nonTrackedSpend       float64
	impressions           float64
	clicks                float64
	onsitePurchases       float64
	onsiteConversionValue float64
	metaPurchases         float64

	weightedShares    map[string]float64
	searchImpressions map[string]float64
	aiPacing          map[string]string

	currency string
}

func newBucket() *bucket {
	return &bucket{
		weightedShares:    make(map[string]float64, len(domain.SearchShareFields)),
		searchImpressions: make(map[string]float64, len(domain.SearchImpressionsFields)),
		aiPacing:          make(map[string]string, len(domain.AIPacingFields)),
	}
}

func foldRows(
	orderRows []store.OrderRow,
	adRows []store.AdRow,
	zone *time.Location,
	accountMap map[string]domain.Region,
) (map[bucketKey]*bucket, error) {
	buckets := make(map[bucketKey]*bucket)

	get := func(r domain.Region, hour time.Time) *bucket {
		key := bucketKey{Region: r, Hour: hour.Unix()}
		b, ok := buckets[key]
		if !ok {
			b = newBucket()
			buckets[key] = b
		}
		return b
	}

	for _, row := range orderRows {
		r, ok := region.FromCountry(row.ShippingCountry)
		if !ok {
			// Unattributable rows are dropped on purpose; partial attribution
			// failure must not abort the run.
			continue
		}
		hour, err := hourToUTC(row.Hour, zone)
		if err != nil {
			return nil, fmt.Errorf("parse order hour %q: %w", row.Hour, err)
		}

		b := get(r, hour)
		b.totalSales += row.TotalSales
		b.newCustomerSales += row.NewCustomerSales
		b.newCustomerOrders += row.NewCustomerOrders
		b.totalOrders += row.TotalOrders
		b.grossSales += row.GrossSales
		b.grossProductSales += row.GrossProductSales
		b.refundMoney += row.RefundMoney
		b.discountAmount += row.DiscountAmount
		b.costOfGoods += row.CostOfGoods
		b.shippingCosts += row.ShippingCosts
		b.estimatedShippingCosts += row.EstimatedShippingCosts
		b.handlingFees += row.HandlingFees
		b.paymentGatewayCosts += row.PaymentGatewayCosts

		if b.currency == "" && row.Currency != "" {
			b.currency = row.Currency
		}
	}

	for _, row := range adRows {
		// Warehouses disagree on channel casing; match case-insensitively.
		channel := strings.ToLower(row.Channel)
		if _, ok := supportedChannels[channel]; !ok {
			continue
		}
		r, ok := region.FromAdRow(row, accountMap)
		if !ok {
			continue
		}
		hour, err := hourToUTC(row.Hour, zone)
		if err != nil {
			return nil, fmt.Errorf("parse spend hour %q: %w", row.Hour, err)
		}

		b := get(r, hour)
		switch channel {
		case channelMeta:
			b.metaSpend += row.Spend
		case channelGoogle:
			b.googleSpend += row.Spend
		}

		b.nonTrackedSpend += row.NonTrackedSpend
		b.impressions += row.Impressions
		b.clicks += row.Clicks
		b.onsitePurchases += row.OnsitePurchases
		b.onsiteConversionValue += row.OnsiteConversionValue
		b.metaPurchases += row.MetaPurchases

		if b.currency == "" && row.Currency != "" {
			b.currency = row.Currency
		}

		for _, field := range domain.SearchShareFields {
			b.weightedShares[field] += row.SearchShares[field] * row.Impressions
		}
		for _, field := range domain.SearchImpressionsFields {
			b.searchImpressions[field] += row.SearchImpressions[field]
		}
		for _, field := range domain.AIPacingFields {
			if b.aiPacing[field] == "" && row.AIPacing[field] != "" {
				b.aiPacing[field] = row.AIPacing[field]
			}
		}
	}

	return buckets, nil
}

// finalize turns buckets into sorted records. Each weighted share numerator
// is divided by the bucket's impressions; zero impressions yield 0, never a
// division by zero.
func finalize(buckets map[bucketKey]*bucket) []domain.HourlyRegionMetrics {
	keys := maps.Keys(buckets)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Region != keys[j].Region {
			return keys[i].Region < keys[j].Region
		}
		return keys[i].Hour < keys[j].Hour
	})

	records := make([]domain.HourlyRegionMetrics, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]

		shares := make(map[string]float64, len(domain.SearchShareFields))
		for _, field := range domain.SearchShareFields {
			if b.impressions > 0 {
				shares[field] = b.weightedShares[field] / b.impressions
			} else {
				shares[field] = 0
			}
		}

		searchImpressions := make(map[string]float64, len(domain.SearchImpressionsFields))
		for _, field := range domain.SearchImpressionsFields {
			searchImpressions[field] = b.searchImpressions[field]
		}

		aiPacing := make(map[string]string, len(domain.AIPacingFields))
		for _, field := range domain.AIPacingFields {
			aiPacing[field] = b.aiPacing[field]
		}

		currency := b.currency
		if currency == "" {
			currency = "USD"
		}

		records = append(records, domain.HourlyRegionMetrics{
			Region:                 key.Region,
			TimestampUTC:           time.Unix(key.Hour, 0).UTC(),
			MetaSpend:              b.metaSpend,
			GoogleSpend:            b.googleSpend,
			NewCustomerOrders:      int(math.Round(b.newCustomerOrders)),
			NewCustomerSales:       b.newCustomerSales,
			TotalSales:             b.totalSales,
			TotalOrders:            b.totalOrders,
			GrossSales:             b.grossSales,
			GrossProductSales:      b.grossProductSales,
			RefundMoney:            b.refundMoney,
			DiscountAmount:         b.discountAmount,
			CostOfGoods:            b.costOfGoods,
			ShippingCosts:          b.shippingCosts,
			EstimatedShippingCosts: b.estimatedShippingCosts,
			HandlingFees:           b.handlingFees,
			PaymentGatewayCosts:    b.paymentGatewayCosts,
			NonTrackedSpend:        b.nonTrackedSpend,
			Impressions:            b.impressions,
			Clicks:                 b.clicks,
			OnsitePurchases:        b.onsitePurchases,
			OnsiteConversionValue:  b.onsiteConversionValue,
			MetaPurchases:          b.metaPurchases,
			SearchShares:           shares,
			SearchImpressions:      searchImpressions,
			AIPacing:               aiPacing,
			Currency:               currency,
		})
	}
	return records
}

var hourLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

var naiveHourLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// hourToUTC parses a warehouse hour value. Timestamps with an explicit
// offset are trusted; naive timestamps are interpreted in the shop zone.
// Either way the result is the UTC hour start.
func hourToUTC(raw string, zone *time.Location) (time.Time, error) {
	for _, layout := range hourLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC().Truncate(time.Hour), nil
		}
	}
	for _, layout := range naiveHourLayouts {
		if ts, err := time.ParseInLocation(layout, raw, zone); err == nil {
			return ts.UTC().Truncate(time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}
