package chartmetric

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/domain"
)

// The Chartmetric API has shipped several response envelopes over time:
// current responses wrap payloads under "obj", older ones under "data" or
// nested platform keys. normalizeItems tries the given key paths in priority
// order against the decoded body and returns the first list it finds. No
// match means an empty list, never an error: an unrecognized envelope is
// treated the same as an empty result.
func normalizeItems(body []byte, paths [][]string) []json.RawMessage {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil
	}

	for _, path := range paths {
		node := root
		ok := true
		for _, key := range path {
			m, isMap := node.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node, ok = m[key]
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		if list, isList := node.([]any); isList {
			items := make([]json.RawMessage, 0, len(list))
			for _, item := range list {
				raw, err := json.Marshal(item)
				if err != nil {
					continue
				}
				items = append(items, raw)
			}
			return items
		}
	}

	return nil
}

// normalizeObject resolves the first key path that points at a JSON object.
func normalizeObject(body []byte, paths [][]string) map[string]any {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil
	}

	for _, path := range paths {
		node := root
		ok := true
		for _, key := range path {
			m, isMap := node.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node, ok = m[key]
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		if obj, isObj := node.(map[string]any); isObj {
			return obj
		}
	}

	return nil
}

// rawPoint tolerates every timestamp/value/flag spelling observed across the
// stat endpoints.
type rawPoint struct {
	Timestp   string `json:"timestp"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
	Start     string `json:"start"`
	Week      string `json:"week"`

	Value    *float64 `json:"value"`
	ValueInt *float64 `json:"value_int"`
	V        *float64 `json:"v"`
	Val      *float64 `json:"val"`

	Interpolated any `json:"interpolated"`
}

var pointTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
}

// parsePoint converts one raw stat entry into a TimePoint. Points with no
// parseable timestamp are discarded before alignment ever sees them.
func parsePoint(raw json.RawMessage) (domain.TimePoint, bool) {
	var p rawPoint
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.TimePoint{}, false
	}

	stamp := p.Timestp
	for _, candidate := range []string{p.Date, p.Timestamp, p.Start, p.Week} {
		if stamp != "" {
			break
		}
		stamp = candidate
	}
	if stamp == "" {
		return domain.TimePoint{}, false
	}

	var ts time.Time
	parsed := false
	for _, layout := range pointTimeLayouts {
		if t, err := time.Parse(layout, stamp); err == nil {
			ts = t.UTC()
			parsed = true
			break
		}
	}
	if !parsed {
		return domain.TimePoint{}, false
	}

	value := p.Value
	for _, candidate := range []*float64{p.ValueInt, p.V, p.Val} {
		if value != nil {
			break
		}
		value = candidate
	}

	return domain.TimePoint{
		Timestamp:    ts,
		Value:        value,
		Interpolated: parseInterpolated(p.Interpolated),
	}, true
}

// parseInterpolated keeps the flag tri-state: true, false, or unknown (nil).
func parseInterpolated(v any) *bool {
	switch val := v.(type) {
	case bool:
		return &val
	case float64:
		b := val != 0
		return &b
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func parsePoints(items []json.RawMessage) []domain.TimePoint {
	points := make([]domain.TimePoint, 0, len(items))
	for _, raw := range items {
		if point, ok := parsePoint(raw); ok {
			points = append(points, point)
		}
	}
	return points
}
