package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"raceseries/internal/agegrade"
	"raceseries/internal/config"
	"raceseries/internal/exporter"
	"raceseries/internal/infrastructure"
	"raceseries/internal/matching"
	"raceseries/internal/results"
	"raceseries/internal/roster"
	"raceseries/internal/scoring"
)

func main() {
	members := flag.String("members", "", "path to the members CSV file (required)")
	corrections := flag.String("corrections", "", "optional path to a name corrections CSV file")
	output := flag.String("output", "", "directory for standings output files (defaults to data/output)")
	categories := flag.String("categories", "", "comma-separated category subset (e.g. 'overall,F_30-39,age_graded'); all categories when empty")
	distances := flag.String("distances", "", "per-race distance overrides as 'race_name=class' pairs (e.g. 'spring_race=10K,fun_run=5K')")
	year := flag.Int("year", 0, "age-grading factor table year (defaults to configured year)")
	flag.Parse()

	raceFiles := flag.Args()
	if *members == "" || len(raceFiles) == 0 {
		fmt.Fprintln(os.Stderr, "usage: series -members members.csv [flags] race1.csv [race2.csv ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *output != "" {
		cfg.Paths.OutputDir = *output
	}
	if *year != 0 {
		cfg.Scoring.AgeGradingYear = *year
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	runID := uuid.NewString()
	ctx := infrastructure.WithRunID(context.Background(), runID)
	logger = infrastructure.LoggerFromContext(ctx)

	logger.Info("Starting series scoring run",
		slog.String("members_file", *members),
		slog.Int("race_count", len(raceFiles)),
		slog.String("output_dir", paths.OutputDir),
		slog.Int("age_grading_year", cfg.Scoring.AgeGradingYear))

	if err := run(cfg, paths, logger, runID, *members, *corrections, *categories, *distances, raceFiles); err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, paths *config.Paths, logger *slog.Logger, runID, membersFile, correctionsFile, categoriesFlag, distancesFlag string, raceFiles []string) error {
	// Resolve the requested category set up front so a typo fails before
	// any processing starts.
	requested := scoring.AllCategories()
	if categoriesFlag != "" {
		requested = nil
		for _, name := range strings.Split(categoriesFlag, ",") {
			requested = append(requested, strings.TrimSpace(name))
		}
		if err := scoring.ValidateCategories(requested); err != nil {
			return err
		}
	}

	registry := roster.NewRegistry(logger)
	if err := registry.LoadCSV(membersFile); err != nil {
		return err
	}
	if correctionsFile != "" {
		if err := registry.LoadNameCorrections(correctionsFile); err != nil {
			return err
		}
	}
	fmt.Printf("Loaded %d members\n", registry.Len())

	calculator, err := agegrade.NewCalculator(cfg.Scoring.AgeGradingYear, logger)
	if err != nil {
		return err
	}

	matcher := matching.NewMatcher(registry, cfg.Matching, logger)
	engine := scoring.NewEngine(cfg.Scoring, calculator, logger)
	out := exporter.NewResultsExporter(paths, logger)

	loader := results.NewLoader(logger)
	if err := applyDistanceOverrides(loader, distancesFlag); err != nil {
		return err
	}

	for _, raceFile := range raceFiles {
		race, err := loader.Load(raceFile)
		if err != nil {
			return err
		}

		matches, err := matcher.MatchRace(race)
		if err != nil {
			return err
		}

		score := engine.ScoreRace(race, matches)

		if err := out.ExportRaceStandings(score, requested); err != nil {
			return err
		}

		matched := len(matches) - len(score.Unmatched)
		fmt.Printf("Processed %s: %d finishers, %d matched\n", race.Name, len(matches), matched)
	}

	// Series outputs for the requested points categories
	for _, category := range requested {
		if category == scoring.CategoryAgeGraded {
			continue
		}
		totals, err := engine.CategorySeriesTotals(category)
		if err != nil {
			return err
		}
		if len(totals) == 0 {
			continue
		}
		if err := out.ExportSeriesTotals(category, totals); err != nil {
			return err
		}
	}

	if requestedContains(requested, scoring.CategoryAgeGraded) {
		if err := out.ExportAgeGradedSeries(engine.AgeGradedSeries()); err != nil {
			return err
		}
	}

	if err := out.ExportAudit(engine.Races(), runID); err != nil {
		return err
	}

	printSummary(engine, requested)

	logger.Info("Series scoring run complete",
		slog.Int("races", len(raceFiles)),
		slog.String("output_dir", paths.OutputDir))
	fmt.Printf("\nComplete! Standings exported to %s\n", paths.OutputDir)

	return nil
}

// printSummary renders the top of the overall and age-graded series
// standings to the console.
func printSummary(engine *scoring.Engine, requested []string) {
	const topN = 5

	if requestedContains(requested, scoring.CategoryOverall) {
		totals := engine.SeriesTotals()
		if len(totals) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Series Standings (overall)")
			t.AppendHeader(table.Row{"Rank", "Name", "Races", "Points"})
			for i, total := range totals {
				if i >= topN {
					break
				}
				t.AppendRow(table.Row{i + 1, total.MemberName, total.RacesCompleted, total.TotalPoints})
			}
			t.Render()
			if len(totals) > topN {
				fmt.Printf("... and %d more\n", len(totals)-topN)
			}
		}
	}

	if requestedContains(requested, scoring.CategoryAgeGraded) {
		totals := engine.AgeGradedSeries()
		if len(totals) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Age-Graded Standings")
			t.AppendHeader(table.Row{"Rank", "Name", "Races", "Avg %"})
			for i, total := range totals {
				if i >= topN {
					break
				}
				t.AppendRow(table.Row{i + 1, total.MemberName, total.RacesCompleted,
					fmt.Sprintf("%.2f", total.AveragePercentage)})
			}
			t.Render()
			if len(totals) > topN {
				fmt.Printf("... and %d more\n", len(totals)-topN)
			}
		}
	}
}

// applyDistanceOverrides parses 'race_name=class' pairs and registers them
// on the loader.
func applyDistanceOverrides(loader *results.Loader, distancesFlag string) error {
	if distancesFlag == "" {
		return nil
	}

	for _, pair := range strings.Split(distancesFlag, ",") {
		name, class, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid distance override %q, expected 'race_name=class'", pair)
		}
		distance, err := results.ParseDistance(class)
		if err != nil {
			return err
		}
		loader.SetDistanceOverride(name, distance)
	}
	return nil
}

func requestedContains(requested []string, name string) bool {
	for _, r := range requested {
		if r == name {
			return true
		}
	}
	return false
}
