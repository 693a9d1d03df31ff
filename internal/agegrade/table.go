package agegrade

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v2"

	apperrors "raceseries/internal/errors"
	"raceseries/internal/results"
)

//go:embed tables/*.yaml
var tableFS embed.FS

// tableFiles maps available table years to their embedded files
var tableFiles = map[int]string{
	2015: "tables/factors_2015.yaml",
	2020: "tables/factors_2020.yaml",
}

// anchor is one (age, factor) point in a factor curve
type anchor struct {
	Age    int     `yaml:"age"`
	Factor float64 `yaml:"factor"`
}

// tableFile mirrors the embedded YAML layout
type tableFile struct {
	Year          int                            `yaml:"year"`
	OpenStandards map[string]map[string]float64  `yaml:"open_standards"`
	Factors       map[string]map[string][]anchor `yaml:"factors"`
}

// Table holds one year's age-grading factors and open-class standards.
// Loaded once per run and read-only afterwards; a run never mixes table
// years.
type Table struct {
	year          int
	openStandards map[results.Distance]map[string]float64
	factors       map[results.Distance]map[string][]anchor
}

// LoadTable loads the factor table for the requested year. Unknown years
// fail closed; there is no silent defaulting to a different edition.
func LoadTable(year int) (*Table, error) {
	file, ok := tableFiles[year]
	if !ok {
		return nil, apperrors.UnknownTableYearError(year)
	}

	data, err := tableFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read factor table %s: %w", file, err)
	}

	var raw tableFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse factor table %s: %w", file, err)
	}
	if raw.Year != year {
		return nil, fmt.Errorf("factor table %s declares year %d, expected %d", file, raw.Year, year)
	}

	table := &Table{
		year:          year,
		openStandards: make(map[results.Distance]map[string]float64),
		factors:       make(map[results.Distance]map[string][]anchor),
	}

	for distStr, byGender := range raw.OpenStandards {
		table.openStandards[results.Distance(distStr)] = byGender
	}
	for distStr, byGender := range raw.Factors {
		dist := results.Distance(distStr)
		table.factors[dist] = make(map[string][]anchor, len(byGender))
		for gender, anchors := range byGender {
			sorted := make([]anchor, len(anchors))
			copy(sorted, anchors)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })
			table.factors[dist][gender] = sorted
		}
	}

	return table, nil
}

// Year returns the table's edition year
func (t *Table) Year() int {
	return t.year
}

// OpenStandard returns the open-class world-best time in seconds for a
// distance and gender.
func (t *Table) OpenStandard(distance results.Distance, gender string) (float64, error) {
	byGender, ok := t.openStandards[distance]
	if !ok {
		return 0, apperrors.NewAgeGradingError(
			fmt.Sprintf("no open standard for distance %q", distance.String()), nil)
	}
	standard, ok := byGender[gender]
	if !ok {
		return 0, apperrors.NewAgeGradingError(
			fmt.Sprintf("no open standard for gender %q at %q", gender, distance.String()), nil)
	}
	return standard, nil
}

// Factor returns the age-grading factor for a distance, gender, and age.
// Ages below the table's minimum are clamped up and ages above the maximum
// clamped down; exact ages between anchors are linearly interpolated.
func (t *Table) Factor(distance results.Distance, gender string, age int) (float64, error) {
	byGender, ok := t.factors[distance]
	if !ok {
		return 0, apperrors.NewAgeGradingError(
			fmt.Sprintf("no factors for distance %q", distance.String()), nil)
	}
	anchors, ok := byGender[gender]
	if !ok || len(anchors) == 0 {
		return 0, apperrors.NewAgeGradingError(
			fmt.Sprintf("no factors for gender %q at %q", gender, distance.String()), nil)
	}

	if age <= anchors[0].Age {
		return anchors[0].Factor, nil
	}
	if age >= anchors[len(anchors)-1].Age {
		return anchors[len(anchors)-1].Factor, nil
	}

	for i := 0; i < len(anchors)-1; i++ {
		low, high := anchors[i], anchors[i+1]
		if age >= low.Age && age <= high.Age {
			ratio := float64(age-low.Age) / float64(high.Age-low.Age)
			return low.Factor + ratio*(high.Factor-low.Factor), nil
		}
	}

	// Unreachable with sorted anchors
	return anchors[len(anchors)-1].Factor, nil
}

// MinAge returns the youngest anchored age for a distance and gender,
// or 0 if the curve is missing.
func (t *Table) MinAge(distance results.Distance, gender string) int {
	if anchors, ok := t.factors[distance][gender]; ok && len(anchors) > 0 {
		return anchors[0].Age
	}
	return 0
}

// MaxAge returns the oldest anchored age for a distance and gender,
// or 0 if the curve is missing.
func (t *Table) MaxAge(distance results.Distance, gender string) int {
	if anchors, ok := t.factors[distance][gender]; ok && len(anchors) > 0 {
		return anchors[len(anchors)-1].Age
	}
	return 0
}
