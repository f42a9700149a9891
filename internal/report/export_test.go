package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"go.uber.org/zap"
)

func TestExportArtistWritesNamedFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportArtist(sampleReport(), DefaultSchema, dir, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "Test Artist Weekly Tracking.csv" {
		t.Errorf("unexpected file name: %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Test Artist\n") {
		t.Errorf("export does not start with the title line: %q", string(data)[:32])
	}
}

func TestExportArtistSanitizesFileName(t *testing.T) {
	rep := sampleReport()
	rep.SubjectName = "AC/DC: Live"

	path, err := ExportArtist(rep, DefaultSchema, t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "AC-DC- Live Weekly Tracking.csv" {
		t.Errorf("unexpected sanitized name: %q", filepath.Base(path))
	}
}

func TestExportAllSeparatesReports(t *testing.T) {
	dir := t.TempDir()

	second := sampleReport()
	second.SubjectName = "Other Artist"

	path, err := ExportAll([]*domain.Report{sampleReport(), second}, DefaultSchema, dir, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "Weekly Artist Tracking - All Artists.csv" {
		t.Errorf("unexpected combined file name: %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	parts := strings.Split(string(data), "\n\n\n")
	if len(parts) != 2 {
		t.Fatalf("expected 2 report blocks separated by two blank lines, got %d", len(parts))
	}
	if !strings.HasPrefix(parts[1], "Other Artist\n") {
		t.Errorf("second block does not start with its title: %q", parts[1][:24])
	}
}
