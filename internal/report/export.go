package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"go.uber.org/zap"
)

const combinedExportName = "Weekly Artist Tracking - All Artists.csv"

// ExportArtist renders one report and writes it to its own CSV file under
// outputDir. Returns the written path.
func ExportArtist(rep *domain.Report, schema Schema, outputDir string, logger *zap.Logger) (string, error) {
	csv, err := RenderCSV(rep, schema)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("%s Weekly Tracking.csv", sanitizeFileName(rep.SubjectName)))
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info("Report exported",
		zap.String("subject", rep.SubjectName),
		zap.String("path", path),
	)
	return path, nil
}

// ExportAll writes every report into one combined CSV, separated by two
// blank spacer lines, and returns the written path.
func ExportAll(reports []*domain.Report, schema Schema, outputDir string, logger *zap.Logger) (string, error) {
	sections := make([]string, 0, len(reports))
	for _, rep := range reports {
		csv, err := RenderCSV(rep, schema)
		if err != nil {
			return "", err
		}
		sections = append(sections, csv)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(outputDir, combinedExportName)
	if err := os.WriteFile(path, []byte(strings.Join(sections, "\n\n\n")), 0644); err != nil {
		return "", fmt.Errorf("failed to write combined export: %w", err)
	}

	logger.Info("Combined report exported",
		zap.Int("subjects", len(reports)),
		zap.String("path", path),
	)
	return path, nil
}

func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-")
	return replacer.Replace(name)
}
