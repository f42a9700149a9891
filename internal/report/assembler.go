package report

import (
	"fmt"
	"sort"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/pkg/errors"
)

// Assemble builds the structured report for one subject. Snapshots are
// re-sorted descending by week start regardless of caller ordering; sections
// and rows come out in exactly the schema's declared order.
func Assemble(subjectName string, snapshots []domain.WeeklyArtistSnapshot, tracks []domain.TrackReportItem, schema Schema) (*domain.Report, error) {
	if subjectName == "" {
		return nil, errors.NewRenderError("report subject name is required", nil)
	}

	ordered := make([]domain.WeeklyArtistSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].WeekStart.After(ordered[j].WeekStart)
	})

	weekLabels := make([]string, len(ordered))
	weekDates := make([]string, len(ordered))
	for i, snap := range ordered {
		weekLabels[i] = fmt.Sprintf("%d/%d", int(snap.WeekStart.Month()), snap.WeekStart.Day())
		weekDates[i] = fmt.Sprintf("%d/%d/%d", int(snap.WeekStart.Month()), snap.WeekStart.Day(), snap.WeekStart.Year())
	}

	rep := &domain.Report{
		SubjectName: subjectName,
		WeekLabels:  weekLabels,
		WeekDates:   weekDates,
	}

	for _, section := range schema.Sections {
		if section.Dynamic {
			if len(tracks) == 0 && section.Optional {
				continue
			}
			rep.Sections = append(rep.Sections, assembleDynamicSection(section, tracks, schema.PercentPrecision))
			continue
		}

		assembled, err := assembleStaticSection(section, ordered, schema.PercentPrecision)
		if err != nil {
			return nil, err
		}
		rep.Sections = append(rep.Sections, assembled)
	}

	return rep, nil
}

func assembleStaticSection(section SectionDef, snapshots []domain.WeeklyArtistSnapshot, precision int) (domain.ReportSection, error) {
	assembled := domain.ReportSection{Title: section.Title}

	for _, rowDef := range section.Rows {
		values := make([]*float64, len(snapshots))
		for i := range snapshots {
			value, ok := snapshots[i].Field(rowDef.Field)
			if !ok {
				return domain.ReportSection{}, errors.NewRenderError("schema names an unknown snapshot field", map[string]any{
					"section": section.Title,
					"field":   rowDef.Field,
				})
			}
			values[i] = value
		}

		assembled.Rows = append(assembled.Rows, domain.ReportRow{
			Label:  rowDef.Label,
			Metric: ComputeMetric(values, precision),
		})
	}

	return assembled, nil
}

// assembleDynamicSection emits one row per track. The listener history is
// already aligned to the report's weeks; the current-state fields ride along
// untouched for the renderer.
func assembleDynamicSection(section SectionDef, tracks []domain.TrackReportItem, precision int) domain.ReportSection {
	assembled := domain.ReportSection{Title: section.Title}

	for i := range tracks {
		track := tracks[i]
		assembled.Rows = append(assembled.Rows, domain.ReportRow{
			Label:  track.Title,
			Metric: ComputeMetric(track.ListenerHistory, precision),
			Track:  &tracks[i],
		})
	}

	return assembled
}
