package scoring

import (
	"raceseries/internal/agegrade"
	"raceseries/internal/matching"
)

// AgeGroup is an age bucket used for age-group categories
type AgeGroup string

const (
	AgeGroupUnder20 AgeGroup = "<=19"
	AgeGroup20to29  AgeGroup = "20-29"
	AgeGroup30to39  AgeGroup = "30-39"
	AgeGroup40to49  AgeGroup = "40-49"
	AgeGroup50to59  AgeGroup = "50-59"
	AgeGroup60to69  AgeGroup = "60-69"
	AgeGroup70to79  AgeGroup = "70-79"
	AgeGroup80Plus  AgeGroup = "80+"
)

// ageGroups lists every bucket in ascending age order
var ageGroups = []AgeGroup{
	AgeGroupUnder20,
	AgeGroup20to29,
	AgeGroup30to39,
	AgeGroup40to49,
	AgeGroup50to59,
	AgeGroup60to69,
	AgeGroup70to79,
	AgeGroup80Plus,
}

// AgeGroupFromAge determines the age group for an age. Returns "" when the
// age is unknown (zero).
func AgeGroupFromAge(age int) AgeGroup {
	switch {
	case age <= 0:
		return ""
	case age <= 19:
		return AgeGroupUnder20
	case age <= 29:
		return AgeGroup20to29
	case age <= 39:
		return AgeGroup30to39
	case age <= 49:
		return AgeGroup40to49
	case age <= 59:
		return AgeGroup50to59
	case age <= 69:
		return AgeGroup60to69
	case age <= 79:
		return AgeGroup70to79
	default:
		return AgeGroup80Plus
	}
}

// ScoredEntry is one ranked row in one category of one race: the match it
// came from, its position within the category, and the points that position
// earned. AgeGraded is set only in the age-graded category.
type ScoredEntry struct {
	Match         matching.MatchResult
	Category      string
	CategoryPlace int
	Points        int
	AgeGraded     *agegrade.Result
}

// MemberID returns the entry's member identifier
func (e *ScoredEntry) MemberID() string {
	return e.Match.MemberID()
}

// MemberName returns the matched member's full name
func (e *ScoredEntry) MemberName() string {
	if e.Match.Member == nil {
		return ""
	}
	return e.Match.Member.FullName()
}

// FinishPlace returns the original finishing place in the race
func (e *ScoredEntry) FinishPlace() int {
	return e.Match.Record.Place
}

// CategoryStanding is the ranked table of entries for one category of one
// race. Entries are ordered by the category's sort key with the documented
// tie-break, so the order is a total order.
type CategoryStanding struct {
	Category string
	RaceName string
	Entries  []ScoredEntry
}

// Exclusion records a matched finisher left out of the age-graded category,
// with the reason, for the audit output.
type Exclusion struct {
	MemberID string
	Name     string
	Place    int
	Reason   string
}

// RaceScore is everything the scoring engine produced for one race:
// standings per category, the unmatched finishers, and the entries
// excluded from age-graded ranking.
type RaceScore struct {
	RaceName           string
	Standings          map[string]*CategoryStanding
	Unmatched          []matching.MatchResult
	AgeGradeExclusions []Exclusion
}

// Standing returns the standing for a category name, or an error naming
// the unknown category.
func (r *RaceScore) Standing(category string) (*CategoryStanding, error) {
	if standing, ok := r.Standings[category]; ok {
		return standing, nil
	}
	return nil, unknownCategory(category)
}
