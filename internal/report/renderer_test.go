package report

import (
	"strings"
	"testing"

	"github.com/harmonia-labs/artistpulse/internal/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		SubjectName: "Test Artist",
		WeekLabels:  []string{"6/1", "5/25", "5/18"},
		WeekDates:   []string{"6/1/2025", "5/25/2025", "5/18/2025"},
		Sections: []domain.ReportSection{
			{
				Title: "Spotify",
				Rows: []domain.ReportRow{
					{
						Label: "Spotify followers",
						Metric: domain.MetricResult{
							Current:     fp(100),
							Growth7d:    fp(10),
							Growth7dPct: "11.11%",
							History:     []*float64{fp(90), fp(80)},
						},
					},
				},
			},
			{
				Title: "Socials",
				Rows: []domain.ReportRow{
					{
						Label:  "Instagram Followers",
						Metric: domain.MetricResult{},
					},
				},
			},
		},
	}
}

func TestRenderCSVLayout(t *testing.T) {
	csv, err := RenderCSV(sampleReport(), DefaultSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(csv, "\n")
	if lines[0] != "Test Artist" {
		t.Errorf("line 0: expected title, got %q", lines[0])
	}
	if lines[1] != "" {
		t.Errorf("line 1: expected blank separator, got %q", lines[1])
	}

	header := strings.Split(lines[2], ",")
	// 6 leading + 3 pass-through + 2 history columns (week 0 is "Current")
	if len(header) != 11 {
		t.Fatalf("header: expected 11 columns, got %d: %q", len(header), lines[2])
	}
	if header[1] != "Current" || header[6] != "Listeners" || header[9] != "5/25/2025" {
		t.Errorf("header columns misplaced: %q", lines[2])
	}

	if lines[3] != "Spotify" {
		t.Errorf("line 3: expected section title, got %q", lines[3])
	}

	row := strings.Split(lines[4], ",")
	if row[0] != "Spotify followers" || row[1] != "100" || row[2] != "10" || row[3] != "11.11%" {
		t.Errorf("metric row wrong: %q", lines[4])
	}
	if row[4] != "" || row[5] != "" {
		t.Errorf("missing 28d figures must render as empty fields: %q", lines[4])
	}
	// history cells trail the pass-through block
	if row[9] != "90" || row[10] != "80" {
		t.Errorf("history cells wrong: %q", lines[4])
	}

	if lines[5] != "" {
		t.Errorf("expected blank line between sections, got %q", lines[5])
	}
	if lines[6] != "Socials" {
		t.Errorf("expected second section title, got %q", lines[6])
	}
}

func TestRenderCSVEscaping(t *testing.T) {
	rep := sampleReport()
	rep.SubjectName = `Duo, The "Great"`

	csv, err := RenderCSV(rep, DefaultSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstLine := strings.Split(csv, "\n")[0]
	want := `"Duo, The ""Great"""`
	if firstLine != want {
		t.Errorf("expected escaped title %q, got %q", want, firstLine)
	}
}

func TestRenderCSVTrackRowPassThrough(t *testing.T) {
	rep := sampleReport()
	saveRate := 0.1234
	rep.Sections = []domain.ReportSection{
		{
			Title: "Tracks",
			Rows: []domain.ReportRow{
				{
					Label:  "Hit Single",
					Metric: domain.MetricResult{Current: fp(5000)},
					Track: &domain.TrackReportItem{
						Title:            "Hit Single",
						CurrentListeners: fp(5000),
						CurrentSaves:     domain.Unsupported(),
						SaveRate:         domain.MetricValue{Value: &saveRate, Status: domain.MetricAvailable},
					},
				},
			},
		},
	}

	csv, err := RenderCSV(rep, DefaultSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(csv, "\n")
	row := strings.Split(lines[4], ",")
	if row[6] != "5000" {
		t.Errorf("listeners cell: expected 5000, got %q", row[6])
	}
	if row[7] != "" {
		t.Errorf("saves cell: unsupported metric must render empty, got %q", row[7])
	}
	if row[8] != "12.34%" {
		t.Errorf("save rate cell: expected 12.34%%, got %q", row[8])
	}
}

func TestRenderCSVValidation(t *testing.T) {
	if _, err := RenderCSV(nil, DefaultSchema); err == nil {
		t.Error("expected error for nil report")
	}

	rep := sampleReport()
	rep.SubjectName = ""
	if _, err := RenderCSV(rep, DefaultSchema); err == nil {
		t.Error("expected error for missing subject name")
	}

	rep = sampleReport()
	rep.WeekDates = rep.WeekDates[:2]
	if _, err := RenderCSV(rep, DefaultSchema); err == nil {
		t.Error("expected error for label/date count mismatch")
	}
}
