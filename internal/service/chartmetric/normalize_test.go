package chartmetric

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeItemsTriesPathsInOrder(t *testing.T) {
	body := []byte(`{"obj":{"artists":[{"id":1}]},"data":[{"id":2}]}`)

	items := normalizeItems(body, searchEnvelopes)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	var entry struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(items[0], &entry); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if entry.ID != 1 {
		t.Errorf("expected the higher-priority envelope to win, got id=%d", entry.ID)
	}
}

func TestNormalizeItemsFallsThroughToLaterPaths(t *testing.T) {
	body := []byte(`{"artists":{"data":[{"id":7}]}}`)

	items := normalizeItems(body, searchEnvelopes)
	if len(items) != 1 {
		t.Fatalf("expected 1 item from fallback path, got %d", len(items))
	}
}

func TestNormalizeItemsUnknownEnvelope(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"something":"else"}`),
		[]byte(`{"obj":{"artists":"not a list"}}`),
		[]byte(`not json`),
		[]byte(`null`),
	}
	for _, body := range cases {
		if items := normalizeItems(body, searchEnvelopes); len(items) != 0 {
			t.Errorf("expected empty result for %s, got %d items", body, len(items))
		}
	}
}

func TestNormalizeObject(t *testing.T) {
	body := []byte(`{"obj":{"cm_statistics":{"sp_streams":123}}}`)

	obj := normalizeObject(body, [][]string{{"obj", "cm_statistics"}, {"cm_statistics"}})
	if obj == nil {
		t.Fatal("expected object")
	}
	if obj["sp_streams"] != float64(123) {
		t.Errorf("expected sp_streams 123, got %v", obj["sp_streams"])
	}
}

func TestParsePointTimestampSpellings(t *testing.T) {
	cases := map[string]string{
		"timestp":   `{"timestp":"2025-06-01","value":10}`,
		"date":      `{"date":"2025-06-01T00:00:00.000Z","value":10}`,
		"timestamp": `{"timestamp":"2025-06-01T00:00:00Z","value":10}`,
		"week":      `{"week":"2025-06-01","value":10}`,
	}

	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for name, raw := range cases {
		point, ok := parsePoint(json.RawMessage(raw))
		if !ok {
			t.Errorf("%s: expected point to parse", name)
			continue
		}
		if !point.Timestamp.Equal(want) {
			t.Errorf("%s: expected %v, got %v", name, want, point.Timestamp)
		}
		if point.Value == nil || *point.Value != 10 {
			t.Errorf("%s: expected value 10, got %v", name, point.Value)
		}
	}
}

func TestParsePointValueSpellings(t *testing.T) {
	for name, raw := range map[string]string{
		"value_int": `{"timestp":"2025-06-01","value_int":10}`,
		"v":         `{"timestp":"2025-06-01","v":10}`,
	} {
		point, ok := parsePoint(json.RawMessage(raw))
		if !ok || point.Value == nil || *point.Value != 10 {
			t.Errorf("%s: expected value 10, got ok=%v point=%+v", name, ok, point)
		}
	}
}

func TestParsePointDiscardsUnparsableTimestamps(t *testing.T) {
	for _, raw := range []string{
		`{"value":10}`,
		`{"timestp":"June 1st","value":10}`,
	} {
		if _, ok := parsePoint(json.RawMessage(raw)); ok {
			t.Errorf("expected %s to be discarded", raw)
		}
	}
}

func TestParseInterpolatedTriState(t *testing.T) {
	if got := parseInterpolated(true); got == nil || !*got {
		t.Error("bool true: expected true")
	}
	if got := parseInterpolated(float64(0)); got == nil || *got {
		t.Error("number 0: expected false")
	}
	if got := parseInterpolated("true"); got == nil || !*got {
		t.Error("string true: expected true")
	}
	if got := parseInterpolated(nil); got != nil {
		t.Error("absent flag: expected nil (unknown)")
	}
	if got := parseInterpolated("maybe"); got != nil {
		t.Error("garbage flag: expected nil (unknown)")
	}
}

func TestParsePointsSkipsBrokenEntries(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"timestp":"2025-06-01","value":10}`),
		json.RawMessage(`{"value":20}`),
		json.RawMessage(`{"timestp":"2025-06-08","value":30}`),
	}

	points := parsePoints(items)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if *points[0].Value != 10 || *points[1].Value != 30 {
		t.Errorf("wrong values survived: %v, %v", *points[0].Value, *points[1].Value)
	}
}
