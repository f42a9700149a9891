package report

import (
	"fmt"

	"github.com/harmonia-labs/artistpulse/internal/domain"
)

// minSeriesLength guarantees the 28-day slot (index 4) always exists.
const minSeriesLength = 5

// ComputeMetric derives growth figures from a weekly value series ordered
// most-recent-first: index 0 is the current week, index 1 the value 7 days
// prior, index 4 the value 28 days prior. Short series are padded with nil
// so the lookups never go out of range.
//
// A percent field is empty whenever the prior value is nil or zero; a "0.00%"
// there would masquerade as a real zero-growth result when the data is
// simply missing.
func ComputeMetric(weeklyValues []*float64, percentPrecision int) domain.MetricResult {
	padded := make([]*float64, 0, max(len(weeklyValues), minSeriesLength))
	padded = append(padded, weeklyValues...)
	for len(padded) < minSeriesLength {
		padded = append(padded, nil)
	}

	current := padded[0]
	prev7 := padded[1]
	prev28 := padded[4]

	return domain.MetricResult{
		Current:      current,
		Growth7d:     delta(current, prev7),
		Growth7dPct:  percentChange(current, prev7, percentPrecision),
		Growth28d:    delta(current, prev28),
		Growth28dPct: percentChange(current, prev28, percentPrecision),
		History:      padded[1:],
	}
}

func delta(current, prev *float64) *float64 {
	if current == nil || prev == nil {
		return nil
	}
	d := *current - *prev
	return &d
}

func percentChange(current, prev *float64, precision int) string {
	if current == nil || prev == nil || *prev == 0 {
		return ""
	}
	pct := (*current - *prev) / *prev * 100
	return fmt.Sprintf("%.*f%%", precision, pct)
}
