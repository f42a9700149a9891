package domain

import "time"

// TimePoint is one observation in an irregular time series as delivered by
// the external API. Interpolated is tri-state: nil means the source did not
// say whether the point is a real observation or an estimate.
type TimePoint struct {
	Timestamp    time.Time `json:"timestamp"`
	Value        *float64  `json:"value,omitempty"`
	Interpolated *bool     `json:"interpolated,omitempty"`
}

// IsObserved reports whether the point is explicitly flagged as a real
// (non-interpolated) observation.
func (p TimePoint) IsObserved() bool {
	return p.Interpolated != nil && !*p.Interpolated
}
