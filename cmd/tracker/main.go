// Command tracker ingests one artist and writes its weekly tracking CSV.
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
	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/report"
	"github.com/harmonia-labs/artistpulse/internal/util"
	"go.uber.org/zap"
)

func main() {
	weeks := flag.Int("weeks", 0, "number of week buckets (default from TRACKER_WEEKS)")
	tracks := flag.Bool("tracks", true, "include per-track section")
	offline := flag.Bool("offline", false, "skip all external API calls, report from stored data only")
	output := flag.String("output", "", "output directory (default from OUTPUT_DIR)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tracker [flags] <artist name>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	name := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *weeks > 0 {
		cfg.Report.Weeks = *weeks
	}
	cfg.Report.IncludeTracks = *tracks
	if *offline {
		cfg.Chartmetric.Offline = true
	}
	if *output != "" {
		cfg.Report.OutputDir = *output
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

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

	if err := run(ctx, container, name); err != nil {
		logger.Error("Tracking run failed", zap.String("artist", name), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, container *app.Container, name string) error {
	cfg := container.Config

	var artist *domain.Artist
	var err error
	if cfg.Chartmetric.Offline {
		// offline runs report from stored data only
		artist, err = container.Artists.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if artist == nil {
			return fmt.Errorf("artist %q has no stored data, run without -offline first", name)
		}
	} else {
		artist, err = container.Ingestor.IngestArtistByName(ctx, name, cfg.Report.Weeks)
		if err != nil {
			return err
		}
		if cfg.Report.IncludeTracks {
			if err := container.Ingestor.IngestTracks(ctx, artist); err != nil {
				container.Logger.Warn("Track ingestion failed, report will omit tracks",
					zap.String("artist", name), zap.Error(err))
			}
		}
	}

	rep, err := container.Ingestor.BuildArtistReport(ctx, artist, cfg.Report.Weeks, report.DefaultSchema)
	if err != nil {
		return err
	}

	_, err = report.ExportArtist(rep, report.DefaultSchema, cfg.Report.OutputDir, container.Logger)
	return err
}
