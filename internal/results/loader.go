package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "raceseries/internal/errors"
)

// Loader reads race results files into Race values. CSV and XLSX exports
// are supported; the format is chosen by file extension.
type Loader struct {
	validate  *validator.Validate
	logger    *slog.Logger
	overrides map[string]Distance
}

// NewLoader creates a race results loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		validate:  validator.New(),
		logger:    logger,
		overrides: make(map[string]Distance),
	}
}

// SetDistanceOverride forces the distance class for a race name, winning
// over inference from the file name.
func (l *Loader) SetDistanceOverride(raceName string, distance Distance) {
	l.overrides[strings.ToLower(strings.TrimSpace(raceName))] = distance
}

// Load reads a race results file. The race name is taken from the file name
// without extension and the distance class inferred from it; duplicate
// finishing places fail the load.
func (l *Loader) Load(filePath string) (*Race, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	var (
		race *Race
		err  error
	)
	switch ext {
	case ".xlsx":
		race, err = l.loadXLSX(filePath)
	default:
		race, err = l.loadCSV(filePath)
	}
	if err != nil {
		return nil, err
	}

	if distance, ok := l.overrides[strings.ToLower(race.Name)]; ok {
		race.Distance = distance
	}

	if err := l.finalize(race, filePath); err != nil {
		return nil, err
	}

	l.logger.Info("race results loaded",
		slog.String("file", filePath),
		slog.String("race", race.Name),
		slog.String("distance", race.Distance.String()),
		slog.Int("finisher_count", len(race.Results)))

	return race, nil
}

func (l *Loader) loadCSV(filePath string) (*Race, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.NewInputError("failed to open race results file", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	race := newRace(filePath)

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.NewInputError("failed to read race results header", err).
			WithContext("file", filePath)
	}
	cols := columnIndex(header)
	if err := requireColumns(cols, filePath); err != nil {
		return nil, err
	}

	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewInputError("failed to read race results row", err).
				WithContext("file", filePath)
		}
		line++

		record, err := parseFinisher(row, cols)
		if err != nil {
			return nil, apperrors.NewInputError(
				fmt.Sprintf("invalid race results row %d", line), err).
				WithContext("file", filePath)
		}
		race.Results = append(race.Results, *record)
	}

	return race, nil
}

// finalize validates records, rejects duplicate places, and restores the
// file-declared place order.
func (l *Loader) finalize(race *Race, filePath string) error {
	seen := make(map[int]bool, len(race.Results))
	for i := range race.Results {
		record := &race.Results[i]

		if err := l.validate.Struct(record); err != nil {
			return apperrors.NewValidationError(
				fmt.Sprintf("finisher record at place %d failed validation", record.Place), err).
				WithContext("file", filePath)
		}

		if seen[record.Place] {
			return apperrors.DuplicatePlaceError(record.Place, filePath)
		}
		seen[record.Place] = true
	}

	sort.SliceStable(race.Results, func(i, j int) bool {
		return race.Results[i].Place < race.Results[j].Place
	})

	return nil
}

func newRace(filePath string) *Race {
	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return &Race{
		Name:     name,
		Date:     time.Now(),
		Distance: InferDistance(name),
	}
}

func requireColumns(cols map[string]int, filePath string) error {
	for _, required := range []string{"place", "name", "time"} {
		if _, ok := cols[required]; !ok {
			return apperrors.NewInputError(
				fmt.Sprintf("race results file missing required column %q", required), nil).
				WithContext("file", filePath)
		}
	}
	return nil
}

func parseFinisher(row []string, cols map[string]int) (*FinisherRecord, error) {
	get := func(name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	placeStr := get("place")
	place, err := strconv.Atoi(placeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid place %q: %w", placeStr, err)
	}

	record := &FinisherRecord{
		Place:     place,
		Name:      get("name"),
		Time:      get("time"),
		Gender:    strings.ToUpper(get("gender")),
		BibNumber: get("bib_number"),
	}

	if ageStr := get("age"); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			return nil, fmt.Errorf("invalid age %q: %w", ageStr, err)
		}
		record.Age = age
	}

	return record, nil
}

// columnIndex maps lowercased header names to their positions
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}
