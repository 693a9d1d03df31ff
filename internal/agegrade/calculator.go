package agegrade

import (
	"fmt"
	"log/slog"

	apperrors "raceseries/internal/errors"
	"raceseries/internal/results"
	"raceseries/internal/roster"
)

// Result is the age-graded performance of one matched finisher in one race
type Result struct {
	MemberID      string
	MemberName    string
	RaceName      string
	Age           int
	Gender        string
	ActualTime    string
	ActualSeconds float64
	Distance      results.Distance
	Factor        float64
	// Percentage is the age-graded performance: the age-adjusted standard
	// time over the actual time, as a percentage. 100 is a world-class
	// age-adjusted performance.
	Percentage float64
	Place      int
}

// GradedSeconds returns the age-graded equivalent time: the performance
// translated back to open-class terms.
func (r *Result) GradedSeconds() float64 {
	return r.ActualSeconds * r.Factor
}

// Calculator converts raw elapsed times into age-graded percentages using
// one year's factor table. The table is loaded once and injected; the
// calculator holds no other state.
type Calculator struct {
	table  *Table
	logger *slog.Logger
}

// NewCalculator creates a calculator for the requested table year, failing
// closed if that year's table is not available.
func NewCalculator(year int, logger *slog.Logger) (*Calculator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table, err := LoadTable(year)
	if err != nil {
		return nil, err
	}

	return &Calculator{
		table:  table,
		logger: logger,
	}, nil
}

// TableYear returns the factor table edition in use
func (c *Calculator) TableYear() int {
	return c.table.Year()
}

// Calculate produces the age-graded result for one matched finisher.
// Failures here are localized: the caller excludes the entry from
// age-graded categories and reports it, but the race is unaffected.
//
// percentage = age-adjusted standard / actual time, as a percent, where the
// age-adjusted standard is the open-class world best divided by the factor.
func (c *Calculator) Calculate(member *roster.Member, record results.FinisherRecord, race *results.Race) (*Result, error) {
	age, gender, err := resolveAgeGender(member, record)
	if err != nil {
		return nil, err
	}

	if race.Distance == results.DistanceUnknown {
		return nil, apperrors.NewAgeGradingError(
			fmt.Sprintf("cannot determine distance for race %q", race.Name), nil)
	}

	factor, err := c.table.Factor(race.Distance, gender, age)
	if err != nil {
		return nil, err
	}

	openStandard, err := c.table.OpenStandard(race.Distance, gender)
	if err != nil {
		return nil, err
	}

	actualSeconds, err := results.ParseElapsed(record.Time)
	if err != nil {
		return nil, apperrors.NewAgeGradingError(
			fmt.Sprintf("cannot parse elapsed time %q", record.Time), err)
	}
	if actualSeconds <= 0 {
		return nil, apperrors.NewAgeGradingError(
			fmt.Sprintf("non-positive elapsed time %q", record.Time), nil)
	}

	ageStandard := openStandard / factor
	percentage := ageStandard / actualSeconds * 100.0

	return &Result{
		MemberID:      member.MemberID,
		MemberName:    member.FullName(),
		RaceName:      race.Name,
		Age:           age,
		Gender:        gender,
		ActualTime:    record.Time,
		ActualSeconds: actualSeconds,
		Distance:      race.Distance,
		Factor:        factor,
		Percentage:    percentage,
		Place:         record.Place,
	}, nil
}

// resolveAgeGender prefers the roster's age and gender and falls back to
// the race record's. Both are required for a lookup.
func resolveAgeGender(member *roster.Member, record results.FinisherRecord) (int, string, error) {
	age := member.Age
	if age == 0 {
		age = record.Age
	}
	gender := member.Gender
	if gender == "" {
		gender = record.Gender
	}

	if age == 0 {
		return 0, "", apperrors.NewAgeGradingError(
			fmt.Sprintf("no age available for member %q", member.MemberID), nil)
	}
	if gender == "" {
		return 0, "", apperrors.NewAgeGradingError(
			fmt.Sprintf("no gender available for member %q", member.MemberID), nil)
	}

	return age, gender, nil
}
