package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/report"
	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"go.uber.org/zap"
)

type fakePipeline struct {
	failIngest map[string]error
	failReport map[string]error

	ingested []string
	tracks   []string
}

func (f *fakePipeline) IngestArtistByName(_ context.Context, name string, _ int) (*domain.Artist, error) {
	if err := f.failIngest[name]; err != nil {
		return nil, err
	}
	f.ingested = append(f.ingested, name)
	return &domain.Artist{ID: int64(len(f.ingested)), Name: name, ChartmetricID: 1000}, nil
}

func (f *fakePipeline) IngestTracks(_ context.Context, artist *domain.Artist) error {
	f.tracks = append(f.tracks, artist.Name)
	return nil
}

func (f *fakePipeline) BuildArtistReport(_ context.Context, artist *domain.Artist, _ int, _ report.Schema) (*domain.Report, error) {
	if err := f.failReport[artist.Name]; err != nil {
		return nil, err
	}
	return &domain.Report{SubjectName: artist.Name}, nil
}

func newTestBatch(pipeline Pipeline) *Batch {
	b := NewBatch(pipeline, zap.NewNop(), 8, true, time.Second)
	b.sleep = func(_ context.Context, _ time.Duration) error { return nil }
	return b
}

func TestBatchRunSkipsFailedArtists(t *testing.T) {
	pipeline := &fakePipeline{
		failIngest: map[string]error{
			"Artist B": errors.NewDataUnavailableError("upstream flaked", nil),
		},
	}

	reports, err := newTestBatch(pipeline).Run(context.Background(), []string{"Artist A", "Artist B", "Artist C"})
	if err != nil {
		t.Fatalf("one failing artist must not abort the batch, got %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].SubjectName != "Artist A" || reports[1].SubjectName != "Artist C" {
		t.Errorf("expected roster order preserved, got %q and %q", reports[0].SubjectName, reports[1].SubjectName)
	}
}

func TestBatchRunCooldownBetweenArtists(t *testing.T) {
	pipeline := &fakePipeline{}
	b := NewBatch(pipeline, zap.NewNop(), 8, false, time.Second)

	var sleeps int
	b.sleep = func(_ context.Context, d time.Duration) error {
		sleeps++
		if d != time.Second {
			t.Errorf("expected 1s cooldown, got %v", d)
		}
		return nil
	}

	if _, err := b.Run(context.Background(), []string{"A", "B", "C"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cooldown sits between artists, not before the first
	if sleeps != 2 {
		t.Errorf("expected 2 cooldown sleeps, got %d", sleeps)
	}
}

func TestBatchRunSkipsUnresolvedArtists(t *testing.T) {
	pipeline := &fakePipeline{
		failIngest: map[string]error{
			"Artist B": errors.NewConfigurationError(`artist "Artist B" could not be resolved to a Chartmetric ID`, nil),
		},
	}

	reports, err := newTestBatch(pipeline).Run(context.Background(), []string{"Artist A", "Artist B", "Artist C"})
	if err != nil {
		t.Fatalf("an unresolvable artist must not abort the batch, got %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].SubjectName != "Artist A" || reports[1].SubjectName != "Artist C" {
		t.Errorf("expected the remaining artists in roster order, got %q and %q", reports[0].SubjectName, reports[1].SubjectName)
	}
}

func TestBatchRunAbortsWhenAccessBlocked(t *testing.T) {
	pipeline := &fakePipeline{
		failIngest: map[string]error{
			"Artist A": errors.NewAccessError("failed to obtain Chartmetric access token", nil),
		},
	}

	_, err := newTestBatch(pipeline).Run(context.Background(), []string{"Artist A", "Artist B"})
	if !errors.IsAccessBlocked(err) {
		t.Fatalf("expected a blocked-access error to abort the batch, got %v", err)
	}
	if len(pipeline.ingested) != 0 {
		t.Errorf("expected no artists ingested after abort, got %v", pipeline.ingested)
	}
}

func TestBatchRunSkipsFailedReports(t *testing.T) {
	pipeline := &fakePipeline{
		failReport: map[string]error{
			"Artist B": errors.NewRenderError("broken", nil),
		},
	}

	reports, err := newTestBatch(pipeline).Run(context.Background(), []string{"Artist A", "Artist B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 1 || reports[0].SubjectName != "Artist A" {
		t.Errorf("expected only the assembled report back, got %d reports", len(reports))
	}
}

func TestBatchRunTogglesTrackIngestion(t *testing.T) {
	pipeline := &fakePipeline{}
	b := NewBatch(pipeline, zap.NewNop(), 8, false, 0)

	if _, err := b.Run(context.Background(), []string{"A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pipeline.tracks) != 0 {
		t.Errorf("expected no track ingestion when disabled, got %v", pipeline.tracks)
	}
}

func TestReadArtistsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artists.txt")
	content := "Artist A\n\nArtist B*\n   \nArtist C  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	names, err := ReadArtistsFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Artist A", "Artist B", "Artist C"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestReadArtistsFileMissing(t *testing.T) {
	if _, err := ReadArtistsFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
