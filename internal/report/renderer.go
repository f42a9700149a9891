package report

import (
	"strconv"
	"strings"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/pkg/errors"
)

// RenderCSV converts a structured report into delimited text. It performs no
// computation: every figure was derived upstream, and a structurally broken
// report is an assembly bug that must fail loudly rather than render
// something misleading.
//
// Layout: title line, blank line, header line (fixed leading labels, the
// pass-through labels, then one column per historical week), then data rows.
// Each section after the first is preceded by one blank line.
func RenderCSV(rep *domain.Report, schema Schema) (string, error) {
	if rep == nil {
		return "", errors.NewRenderError("report is nil", nil)
	}
	if rep.SubjectName == "" {
		return "", errors.NewRenderError("report has no subject name", nil)
	}
	if len(rep.WeekDates) != len(rep.WeekLabels) {
		return "", errors.NewRenderError("week label and date counts disagree", map[string]any{
			"labels": len(rep.WeekLabels),
			"dates":  len(rep.WeekDates),
		})
	}

	var lines []string
	lines = append(lines, csvRow([]string{rep.SubjectName}))
	lines = append(lines, "")

	// week 0 is already the "Current" column, so history starts at week 1
	header := make([]string, 0, len(schema.LeadingColumns)+len(schema.PassThroughColumns)+len(rep.WeekDates))
	header = append(header, schema.LeadingColumns...)
	header = append(header, schema.PassThroughColumns...)
	if len(rep.WeekDates) > 1 {
		header = append(header, rep.WeekDates[1:]...)
	}
	lines = append(lines, csvRow(header))

	started := false
	for _, section := range rep.Sections {
		if started {
			lines = append(lines, "")
		}
		lines = append(lines, csvRow([]string{section.Title}))
		started = true

		for _, row := range section.Rows {
			lines = append(lines, csvRow(renderRow(row, schema)))
		}
	}

	return strings.Join(lines, "\n"), nil
}

func renderRow(row domain.ReportRow, schema Schema) []string {
	cells := make([]string, 0, len(schema.LeadingColumns)+len(schema.PassThroughColumns)+len(row.Metric.History))
	cells = append(cells,
		row.Label,
		formatValue(row.Metric.Current),
		formatValue(row.Metric.Growth7d),
		row.Metric.Growth7dPct,
		formatValue(row.Metric.Growth28d),
		row.Metric.Growth28dPct,
	)

	for range schema.PassThroughColumns {
		cells = append(cells, "")
	}
	if row.Track != nil {
		base := len(cells) - len(schema.PassThroughColumns)
		cells[base] = formatValue(row.Track.CurrentListeners)
		cells[base+1] = formatMetricValue(row.Track.CurrentSaves)
		cells[base+2] = formatSaveRate(row.Track.SaveRate)
	}

	for _, value := range row.Metric.History {
		cells = append(cells, formatValue(value))
	}
	return cells
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatMetricValue renders nothing for metrics the source does not support;
// the distinction matters upstream, not in the CSV.
func formatMetricValue(v domain.MetricValue) string {
	if v.Status != domain.MetricAvailable {
		return ""
	}
	return formatValue(v.Value)
}

func formatSaveRate(v domain.MetricValue) string {
	if v.Status != domain.MetricAvailable || v.Value == nil {
		return ""
	}
	return strconv.FormatFloat(*v.Value*100, 'f', 2, 64) + "%"
}

// csvEscape wraps any field containing a delimiter, quote, or newline in
// quotes, doubling internal quotes. Empty values stay empty fields.
func csvEscape(value string) string {
	if value == "" {
		return ""
	}
	if strings.ContainsAny(value, ",\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

func csvRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = csvEscape(cell)
	}
	return strings.Join(escaped, ",")
}
