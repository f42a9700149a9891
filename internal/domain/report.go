package domain

// MetricResult holds the derived growth figures for one metric series.
// Deltas are nil when either endpoint is missing; percent strings are empty
// when the prior value is missing or zero, never "0.00%" standing in for
// absent data.
type MetricResult struct {
	Current      *float64   `json:"current,omitempty"`
	Growth7d     *float64   `json:"growth7d,omitempty"`
	Growth7dPct  string     `json:"growth7dPct,omitempty"`
	Growth28d    *float64   `json:"growth28d,omitempty"`
	Growth28dPct string     `json:"growth28dPct,omitempty"`
	History      []*float64 `json:"history"`
}

// ReportRow is one rendered line of the report: a labeled metric with its
// growth figures, plus track-only pass-through fields when the row came
// from the dynamic tracks section.
type ReportRow struct {
	Label  string           `json:"label"`
	Metric MetricResult     `json:"metric"`
	Track  *TrackReportItem `json:"track,omitempty"`
}

type ReportSection struct {
	Title string      `json:"title"`
	Rows  []ReportRow `json:"rows"`
}

// Report is the assembled weekly tracking document for one subject.
// Immutable once built; the renderer is a pure function of it.
type Report struct {
	SubjectName string          `json:"subjectName"`
	WeekLabels  []string        `json:"weekLabels"` // short M/D labels
	WeekDates   []string        `json:"weekDates"`  // full M/D/YYYY labels
	Sections    []ReportSection `json:"sections"`
}
