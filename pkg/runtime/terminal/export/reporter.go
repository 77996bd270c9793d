package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/de-tools/growth-atlas/pkg/adapters"
	"github.com/de-tools/growth-atlas/pkg/models/domain"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatCSV, FormatJSON, FormatTable:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected csv, json or table)", raw)
	}
}

// ratioColumns are rendered with four decimals; every other float gets the
// two-decimal money treatment.
var ratioColumns = buildRatioColumns()

func buildRatioColumns() map[string]struct{} {
	cols := map[string]struct{}{
		"gross_margin":      {},
		"discount_rate":     {},
		"refund_rate":       {},
		"ctr":               {},
		"onsite_roas":       {},
		"new_customer_roas": {},
		"blended_roas":      {},
	}
	for _, c := range domain.SearchShareFields {
		cols[c] = struct{}{}
	}
	return cols
}

// Reporter renders a report table to the configured writer. In-memory values
// keep full precision; rounding happens only here.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) Handle(table *domain.ReportTable, format Format) error {
	switch format {
	case FormatCSV:
		return r.renderCSV(table)
	case FormatJSON:
		return r.renderJSON(table)
	case FormatTable:
		return r.renderTable(table)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func (r *Reporter) renderCSV(table *domain.ReportTable) error {
	w := csv.NewWriter(r.writer)
	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = formatCell(table.Columns[i], cell)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (r *Reporter) renderJSON(table *domain.ReportTable) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(adapters.MapReportTableToRecords(table))
}

func (r *Reporter) renderTable(table *domain.ReportTable) error {
	widths := make([]int, len(table.Columns))
	cells := make([][]string, len(table.Rows))

	for i, col := range table.Columns {
		widths[i] = len(col)
	}
	for ri, row := range table.Rows {
		cells[ri] = make([]string, len(row))
		for ci, cell := range row {
			s := formatCell(table.Columns[ci], cell)
			cells[ri][ci] = s
			if len(s) > widths[ci] {
				widths[ci] = len(s)
			}
		}
	}

	separator := make([]string, len(widths))
	header := make([]string, len(widths))
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w+2)
		header[i] = fmt.Sprintf(" %-*s ", w, table.Columns[i])
	}

	sep := "+" + strings.Join(separator, "+") + "+"
	lines := []string{sep, "|" + strings.Join(header, "|") + "|", sep}
	for _, row := range cells {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = fmt.Sprintf(" %-*s ", widths[i], cell)
		}
		lines = append(lines, "|"+strings.Join(padded, "|")+"|")
	}
	lines = append(lines, sep)

	_, err := fmt.Fprintln(r.writer, strings.Join(lines, "\n"))
	return err
}

func formatCell(column string, v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if _, ok := ratioColumns[column]; ok {
			return fmt.Sprintf("%.4f", value)
		}
		return fmt.Sprintf("%.2f", value)
	case int:
		return fmt.Sprintf("%d", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
