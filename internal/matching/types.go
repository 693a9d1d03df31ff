package matching

import (
	"raceseries/internal/results"
	"raceseries/internal/roster"
)

// Method identifies which matching pass produced a result
type Method string

const (
	// MethodExact means the normalized names were identical and ages agreed
	MethodExact Method = "exact"
	// MethodNormalized means the names matched after variant prefix/suffix
	// stripping with gender agreement
	MethodNormalized Method = "normalized"
	// MethodFuzzy means the match came from edit-distance similarity
	MethodFuzzy Method = "fuzzy"
	// MethodNone means no acceptable match was found
	MethodNone Method = "none"
)

// MatchResult pairs a finisher record with the roster member it resolved
// to, or records that no match was accepted. Results are never mutated
// after creation; re-matching produces a new MatchResult.
type MatchResult struct {
	Record     results.FinisherRecord
	Member     *roster.Member
	Confidence float64
	Method     Method
	// Ambiguous is set when a fuzzy match was rejected because a second
	// candidate scored within the ambiguity margin of the best.
	Ambiguous bool
}

// Matched reports whether the finisher resolved to a member
func (m *MatchResult) Matched() bool {
	return m.Member != nil
}

// MemberID returns the matched member's identifier, or "" if unmatched
func (m *MatchResult) MemberID() string {
	if m.Member == nil {
		return ""
	}
	return m.Member.MemberID
}
