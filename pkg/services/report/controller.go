package report

import (
	"context"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// HourlyFetcher is the fusion-facing contract. fusion.Engine satisfies it.
type HourlyFetcher interface {
	FetchHourly(ctx context.Context, window domain.Window) ([]domain.HourlyRegionMetrics, error)
}

// Controller runs the fetch-aggregate-filter pipeline for one granularity.
type Controller struct {
	fetcher HourlyFetcher
}

func NewController(fetcher HourlyFetcher) *Controller {
	return &Controller{fetcher: fetcher}
}

// DailyReport produces the daily table for the window, trimmed to the
// requested local-date range. The fetch window is wider than the request by
// construction, so trimming is not optional.
func (c *Controller) DailyReport(ctx context.Context, window domain.Window) (*domain.ReportTable, error) {
	records, err := c.fetcher.FetchHourly(ctx, window)
	if err != nil {
		return nil, err
	}

	table, err := BuildDailyTable(records)
	if err != nil {
		return nil, err
	}
	table = FilterByLocalDate(table, window.Start, window.End)

	zerolog.Ctx(ctx).Info().
		Int("rows", len(table.Rows)).
		Time("start", window.Start).
		Time("end", window.End).
		Msg("built daily report")
	return table, nil
}

// HourlyReport produces the hourly table for the window. Local time columns
// are always attached so the result can be trimmed to the requested
// local-date range.
func (c *Controller) HourlyReport(ctx context.Context, window domain.Window) (*domain.ReportTable, error) {
	records, err := c.fetcher.FetchHourly(ctx, window)
	if err != nil {
		return nil, err
	}

	table, err := BuildHourlyTable(records, true)
	if err != nil {
		return nil, err
	}
	table = FilterByLocalDate(table, window.Start, window.End)

	zerolog.Ctx(ctx).Info().
		Int("rows", len(table.Rows)).
		Time("start", window.Start).
		Time("end", window.End).
		Msg("built hourly report")
	return table, nil
}
