// Command batch ingests every artist in a roster file and writes per-artist
// CSVs plus one combined export.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/app"
	"github.com/harmonia-labs/artistpulse/internal/config"
	"github.com/harmonia-labs/artistpulse/internal/report"
	"github.com/harmonia-labs/artistpulse/internal/service/ingest"
	"github.com/harmonia-labs/artistpulse/internal/util"
	"go.uber.org/zap"
)

func main() {
	artistsFile := flag.String("artists", "", "roster file, one artist per line (default from ARTISTS_FILE)")
	weeks := flag.Int("weeks", 0, "number of week buckets (default from TRACKER_WEEKS)")
	combined := flag.Bool("combined", true, "also write the combined all-artists CSV")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *artistsFile != "" {
		cfg.Report.ArtistsFile = *artistsFile
	}
	if *weeks > 0 {
		cfg.Report.Weeks = *weeks
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	names, err := ingest.ReadArtistsFile(cfg.Report.ArtistsFile)
	if err != nil {
		logger.Error("Failed to read artists file", zap.String("path", cfg.Report.ArtistsFile), zap.Error(err))
		os.Exit(1)
	}
	if len(names) == 0 {
		logger.Error("Artists file is empty", zap.String("path", cfg.Report.ArtistsFile))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	buildCtx, buildCancel := context.WithTimeout(ctx, 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	logger.Info("Batch starting",
		zap.Int("artists", len(names)),
		zap.Int("weeks", cfg.Report.Weeks),
		zap.Bool("include_tracks", cfg.Report.IncludeTracks),
	)

	reports, err := container.NewBatch().Run(ctx, names)
	if err != nil {
		logger.Error("Batch aborted", zap.Error(err))
		os.Exit(1)
	}

	for _, rep := range reports {
		if _, err := report.ExportArtist(rep, report.DefaultSchema, cfg.Report.OutputDir, logger); err != nil {
			logger.Error("Export failed", zap.String("subject", rep.SubjectName), zap.Error(err))
		}
	}
	if *combined && len(reports) > 0 {
		if _, err := report.ExportAll(reports, report.DefaultSchema, cfg.Report.OutputDir, logger); err != nil {
			logger.Error("Combined export failed", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("Batch complete",
		zap.Int("requested", len(names)),
		zap.Int("exported", len(reports)),
	)
}
