package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/report"
	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Pipeline is the per-artist surface the batch runner drives. Ingestor
// satisfies it; tests substitute a fake.
type Pipeline interface {
	IngestArtistByName(ctx context.Context, name string, weeks int) (*domain.Artist, error)
	IngestTracks(ctx context.Context, artist *domain.Artist) error
	BuildArtistReport(ctx context.Context, artist *domain.Artist, weeks int, schema report.Schema) (*domain.Report, error)
}

// Batch runs the pipeline over a roster of artist names. Fetching stays
// strictly sequential with a cooldown between artists; only the CPU-bound
// report assembly at the end fans out.
type Batch struct {
	pipeline      Pipeline
	logger        *zap.Logger
	weeks         int
	includeTracks bool
	cooldown      time.Duration
	concurrency   int

	sleep func(ctx context.Context, d time.Duration) error
}

func NewBatch(pipeline Pipeline, logger *zap.Logger, weeks int, includeTracks bool, cooldown time.Duration) *Batch {
	return &Batch{
		pipeline:      pipeline,
		logger:        logger,
		weeks:         weeks,
		includeTracks: includeTracks,
		cooldown:      cooldown,
		concurrency:   4,
		sleep:         sleepCtx,
	}
}

// ReadArtistsFile parses a roster file: one artist per line, blank lines
// skipped, a trailing "*" marker stripped.
func ReadArtistsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artists file: %w", err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(scanner.Text()), "*"))
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read artists file: %w", err)
	}
	return names, nil
}

// Run ingests each named artist in order and returns the assembled reports
// for the artists that succeeded, preserving roster order. One artist
// failing is logged and skipped, including an unresolvable name; only a
// blocked-access error or a cancelled context aborts the whole run, since
// neither can succeed for any later artist either.
func (b *Batch) Run(ctx context.Context, names []string) ([]*domain.Report, error) {
	ingested := make([]*domain.Artist, 0, len(names))

	for i, name := range names {
		if i > 0 && b.cooldown > 0 {
			if err := b.sleep(ctx, b.cooldown); err != nil {
				return nil, err
			}
		}

		artist, err := b.pipeline.IngestArtistByName(ctx, name, b.weeks)
		if err != nil {
			if errors.IsAccessBlocked(err) || ctx.Err() != nil {
				return nil, err
			}
			b.logger.Error("Artist failed, continuing batch",
				zap.String("artist", name), zap.Error(err))
			continue
		}

		if b.includeTracks {
			if err := b.pipeline.IngestTracks(ctx, artist); err != nil {
				if errors.IsAccessBlocked(err) || ctx.Err() != nil {
					return nil, err
				}
				b.logger.Error("Track ingestion failed, artist report will omit tracks",
					zap.String("artist", name), zap.Error(err))
			}
		}
		ingested = append(ingested, artist)
	}

	return b.buildReports(ctx, ingested)
}

func (b *Batch) buildReports(ctx context.Context, artists []*domain.Artist) ([]*domain.Report, error) {
	p := pool.New().WithMaxGoroutines(b.concurrency)

	results := make([]*domain.Report, len(artists))
	resultsMu := sync.Mutex{}

	for idx, artist := range artists {
		idx, artist := idx, artist
		p.Go(func() {
			rep, err := b.pipeline.BuildArtistReport(ctx, artist, b.weeks, report.DefaultSchema)
			if err != nil {
				b.logger.Error("Report assembly failed",
					zap.String("artist", artist.Name), zap.Error(err))
				return
			}
			resultsMu.Lock()
			results[idx] = rep
			resultsMu.Unlock()
		})
	}
	p.Wait()

	reports := make([]*domain.Report, 0, len(results))
	for _, rep := range results {
		if rep != nil {
			reports = append(reports, rep)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
