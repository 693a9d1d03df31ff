package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"raceseries/internal/config"
	"raceseries/internal/scoring"
)

// ResultsExporter renders the scoring engine's output tables to CSV files
// under the configured output directory.
type ResultsExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewResultsExporter creates a results exporter
func NewResultsExporter(paths *config.Paths, logger *slog.Logger) *ResultsExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsExporter{
		writer: NewCSVWriter(paths),
		logger: logger,
	}
}

// ExportRaceStandings writes one CSV per requested category for a race,
// under races/<race>_<category>.csv. Empty standings are skipped with a
// log line rather than producing empty files.
func (e *ResultsExporter) ExportRaceStandings(score *scoring.RaceScore, categories []string) error {
	if err := scoring.ValidateCategories(categories); err != nil {
		return err
	}

	for _, category := range categories {
		standing, err := score.Standing(category)
		if err != nil {
			return err
		}
		if len(standing.Entries) == 0 {
			e.logger.Debug("skipping empty standing",
				slog.String("race", score.RaceName),
				slog.String("category", category))
			continue
		}

		filename := fmt.Sprintf("races/%s_%s.csv", score.RaceName, category)
		if err := e.exportStanding(standing, filename); err != nil {
			return fmt.Errorf("failed to export standing %s/%s: %w", score.RaceName, category, err)
		}
	}

	return nil
}

func (e *ResultsExporter) exportStanding(standing *scoring.CategoryStanding, filename string) error {
	if standing.Category == scoring.CategoryAgeGraded {
		return e.exportAgeGradedStanding(standing, filename)
	}

	headers := []string{"Rank", "Member ID", "Name", "Finish Place", "Points", "Confidence", "Method"}
	records := make([][]string, 0, len(standing.Entries))
	for i := range standing.Entries {
		entry := &standing.Entries[i]
		records = append(records, []string{
			strconv.Itoa(entry.CategoryPlace),
			entry.MemberID(),
			entry.MemberName(),
			strconv.Itoa(entry.FinishPlace()),
			strconv.Itoa(entry.Points),
			formatConfidence(entry.Match.Confidence),
			string(entry.Match.Method),
		})
	}

	return e.writer.WriteSimpleCSV(filename, headers, records)
}

func (e *ResultsExporter) exportAgeGradedStanding(standing *scoring.CategoryStanding, filename string) error {
	headers := []string{"Rank", "Member ID", "Name", "Age", "Gender", "Time", "Age-Graded %", "Factor", "Finish Place"}
	records := make([][]string, 0, len(standing.Entries))
	for i := range standing.Entries {
		entry := &standing.Entries[i]
		ag := entry.AgeGraded
		records = append(records, []string{
			strconv.Itoa(entry.CategoryPlace),
			entry.MemberID(),
			entry.MemberName(),
			strconv.Itoa(ag.Age),
			ag.Gender,
			ag.ActualTime,
			formatPercent(ag.Percentage),
			strconv.FormatFloat(ag.Factor, 'f', 3, 64),
			strconv.Itoa(entry.FinishPlace()),
		})
	}

	return e.writer.WriteSimpleCSV(filename, headers, records)
}

// ExportSeriesTotals writes cumulative totals for one points-based
// category to series_<category>.csv.
func (e *ResultsExporter) ExportSeriesTotals(category string, totals []scoring.SeriesTotal) error {
	headers := []string{"Rank", "Member ID", "Name", "Races", "Total Points", "Best Race", "Best Points"}
	records := make([][]string, 0, len(totals))
	for i, total := range totals {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			total.MemberID,
			total.MemberName,
			strconv.Itoa(total.RacesCompleted),
			strconv.Itoa(total.TotalPoints),
			total.BestRace.RaceName,
			strconv.Itoa(total.BestRace.Points),
		})
	}

	filename := fmt.Sprintf("series_%s.csv", category)
	return e.writer.WriteSimpleCSV(filename, headers, records)
}

// ExportAgeGradedSeries writes the cumulative age-graded standings to
// age_graded.csv.
func (e *ResultsExporter) ExportAgeGradedSeries(totals []scoring.AgeGradedSeriesTotal) error {
	headers := []string{"Rank", "Member ID", "Name", "Races", "Average Age-Graded %"}
	records := make([][]string, 0, len(totals))
	for i, total := range totals {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			total.MemberID,
			total.MemberName,
			strconv.Itoa(total.RacesCompleted),
			formatPercent(total.AveragePercentage),
		})
	}

	return e.writer.WriteSimpleCSV("age_graded.csv", headers, records)
}

// ExportAudit writes the per-race audit of unmatched finishers and
// age-graded exclusions to unmatched_audit.csv.
func (e *ResultsExporter) ExportAudit(scores []*scoring.RaceScore, runID string) error {
	headers := []string{"Run ID", "Race", "Place", "Name", "Time", "Reason"}
	var records [][]string

	for _, score := range scores {
		for i := range score.Unmatched {
			m := &score.Unmatched[i]
			reason := "no match above threshold"
			if m.Ambiguous {
				reason = "ambiguous match"
			}
			records = append(records, []string{
				runID,
				score.RaceName,
				strconv.Itoa(m.Record.Place),
				m.Record.Name,
				m.Record.Time,
				reason,
			})
		}
		for _, excl := range score.AgeGradeExclusions {
			records = append(records, []string{
				runID,
				score.RaceName,
				strconv.Itoa(excl.Place),
				excl.Name,
				"",
				"age-grading: " + excl.Reason,
			})
		}
	}

	return e.writer.WriteSimpleCSV("unmatched_audit.csv", headers, records)
}

func formatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', 2, 64)
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
