// Package align maps irregular time-series observations onto fixed weekly
// calendar buckets. Metrics are treated as step functions between
// observations: when a bucket has no point of its own, the nearest preceding
// observation is carried forward.
package align

import (
	"time"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/util"
)

// ToWeek selects one value from points for the week bucket starting at
// weekStart. The bucket is half-open: [weekStart, weekStart+7d), so a point
// exactly at the week end belongs to the next bucket.
//
// Selection order:
//  1. the most recent in-bucket point explicitly flagged as a real
//     (non-interpolated) observation,
//  2. the chronologically last in-bucket point regardless of flag,
//  3. the nearest observation strictly before the week end (carry-forward),
//  4. nil when no candidate exists.
//
// Stateless and idempotent given the full points slice.
func ToWeek(points []domain.TimePoint, weekStart time.Time) *float64 {
	start := util.StartOfWeek(weekStart)
	end := start.AddDate(0, 0, 7)

	var lastObserved *domain.TimePoint
	var lastInBucket *domain.TimePoint
	for i := range points {
		p := &points[i]
		if p.Timestamp.IsZero() {
			continue
		}
		if p.Timestamp.Before(start) || !p.Timestamp.Before(end) {
			continue
		}
		if lastInBucket == nil || p.Timestamp.After(lastInBucket.Timestamp) {
			lastInBucket = p
		}
		if p.IsObserved() && (lastObserved == nil || p.Timestamp.After(lastObserved.Timestamp)) {
			lastObserved = p
		}
	}

	if lastObserved != nil {
		return lastObserved.Value
	}
	if lastInBucket != nil {
		return lastInBucket.Value
	}

	// carry-forward: nearest observation before the week end
	var nearest *domain.TimePoint
	var nearestDist time.Duration
	for i := range points {
		p := &points[i]
		if p.Timestamp.IsZero() || !p.Timestamp.Before(end) {
			continue
		}
		dist := start.Sub(p.Timestamp)
		if dist < 0 {
			dist = -dist
		}
		if nearest == nil || dist < nearestDist {
			nearest = p
			nearestDist = dist
		}
	}
	if nearest != nil {
		return nearest.Value
	}
	return nil
}

// Series aligns points onto each requested week start, most recent first.
// Alignment never invents buckets: the output has exactly one slot per
// requested week.
func Series(points []domain.TimePoint, weekStarts []time.Time) []*float64 {
	values := make([]*float64, len(weekStarts))
	for i, start := range weekStarts {
		values[i] = ToWeek(points, start)
	}
	return values
}
