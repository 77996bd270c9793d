package adapters

import (
	"github.com/de-tools/growth-atlas/pkg/models/api"
	"github.com/de-tools/growth-atlas/pkg/models/domain"
)

// MapReportTableToRecords flattens a positional table into one map per row.
// Nil cells survive as explicit nulls.
func MapReportTableToRecords(table *domain.ReportTable) []map[string]any {
	records := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(map[string]any, len(table.Columns))
		for i, col := range table.Columns {
			record[col] = row[i]
		}
		records = append(records, record)
	}
	return records
}

func MapReportTableToApi(granularity string, table *domain.ReportTable) api.Report {
	return api.Report{
		Granularity: granularity,
		Columns:     table.Columns,
		Records:     MapReportTableToRecords(table),
	}
}
