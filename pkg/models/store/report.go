package store

import "time"

// ReportRow is one persisted report table row. Metrics holds the full column
// map as stored JSON; the partition columns are lifted out for querying.
type ReportRow struct {
	ShopDomain  string
	Granularity string
	Region      string
	LocalDate   time.Time
	LocalHour   string // empty for daily rows
	Metrics     map[string]any
}

// ReportRunStats summarizes persisted runs for one shop and granularity.
type ReportRunStats struct {
	RunsCount   int64
	LastRunTime *time.Time
}
