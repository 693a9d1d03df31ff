package matching

import (
	"log/slog"
	"sort"

	"raceseries/internal/config"
	apperrors "raceseries/internal/errors"
	"raceseries/internal/results"
	"raceseries/internal/roster"
)

// normalizedBandConfidence is the fixed confidence assigned to matches
// accepted by the normalized pass.
const normalizedBandConfidence = 0.90

// Matcher resolves race finishers against the membership roster. Matching
// is a pure function of the roster and the finisher record: thresholds and
// tie-breaks use fixed numeric comparisons, never map iteration order, so
// re-running it is deterministic.
type Matcher struct {
	registry *roster.Registry
	cfg      config.MatchingConfig
	logger   *slog.Logger
}

// NewMatcher creates a matcher over the given roster
func NewMatcher(registry *roster.Registry, cfg config.MatchingConfig, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// MatchFinisher produces exactly one MatchResult for a finisher record.
// Passes run in order: name corrections, exact, normalized, fuzzy. A name
// that is empty after normalization always resolves to unmatched.
func (m *Matcher) MatchFinisher(record results.FinisherRecord) MatchResult {
	normalized := normalizeName(record.Name)
	if normalized == "" {
		return unmatched(record, false)
	}

	// Admin-supplied name corrections are definitive
	if corrected, ok := m.registry.CorrectedName(record.Name); ok {
		if member, found := m.registry.FindByFullName(corrected); found {
			return MatchResult{
				Record:     record,
				Member:     member,
				Confidence: 1.0,
				Method:     MethodExact,
			}
		}
	}

	if result, done := m.exactPass(record, normalized); done {
		return result
	}
	if result, done := m.normalizedPass(record); done {
		return result
	}
	return m.fuzzyPass(record, normalized)
}

// exactPass accepts a candidate whose normalized name equals the finisher's
// exactly, provided ages are within tolerance or missing on either side.
// Two candidates passing the filter is ambiguity, not a pick.
func (m *Matcher) exactPass(record results.FinisherRecord, normalized string) (MatchResult, bool) {
	var candidates []*roster.Member
	for _, member := range m.registry.All() {
		if normalizeName(member.FullName()) != normalized {
			continue
		}
		if !m.agesCompatible(record, member) {
			continue
		}
		candidates = append(candidates, member)
	}

	switch len(candidates) {
	case 0:
		return MatchResult{}, false
	case 1:
		return MatchResult{
			Record:     record,
			Member:     candidates[0],
			Confidence: 1.0,
			Method:     MethodExact,
		}, true
	default:
		return unmatched(record, true), true
	}
}

// normalizedPass compares names with honorifics and generational suffixes
// stripped. Gender must not conflict. Nickname equivalence is intentionally
// not attempted.
func (m *Matcher) normalizedPass(record results.FinisherRecord) (MatchResult, bool) {
	stripped := normalizeNameStripped(record.Name)
	if stripped == "" {
		return MatchResult{}, false
	}

	var candidates []*roster.Member
	for _, member := range m.registry.All() {
		if normalizeNameStripped(member.FullName()) != stripped {
			continue
		}
		if genderConflict(record.Gender, member.Gender) {
			continue
		}
		candidates = append(candidates, member)
	}

	switch len(candidates) {
	case 0:
		return MatchResult{}, false
	case 1:
		return MatchResult{
			Record:     record,
			Member:     candidates[0],
			Confidence: normalizedBandConfidence,
			Method:     MethodNormalized,
		}, true
	default:
		return unmatched(record, true), true
	}
}

// fuzzyPass scores every gender-compatible roster member by edit-distance
// similarity. The best score wins only if it clears the minimum confidence
// and no second candidate sits within the ambiguity margin.
func (m *Matcher) fuzzyPass(record results.FinisherRecord, normalized string) MatchResult {
	type scored struct {
		member *roster.Member
		score  float64
	}

	var scores []scored
	for _, member := range m.registry.All() {
		// Gender agreement is a hard filter before fuzzy acceptance
		if genderConflict(record.Gender, member.Gender) {
			continue
		}
		score := similarity(normalized, normalizeName(member.FullName()))
		scores = append(scores, scored{member: member, score: score})
	}

	if len(scores) == 0 {
		return unmatched(record, false)
	}

	// Deterministic order: score descending, then member ID ascending
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].member.MemberID < scores[j].member.MemberID
	})

	best := scores[0]
	if best.score < m.cfg.MinConfidence {
		return unmatched(record, false)
	}

	if len(scores) > 1 {
		second := scores[1]
		if best.score-second.score <= m.cfg.AmbiguityMargin {
			m.logger.Debug("ambiguous fuzzy match rejected",
				"finisher", record.Name,
				"best_member", best.member.MemberID,
				"best_score", best.score,
				"second_member", second.member.MemberID,
				"second_score", second.score)
			return unmatched(record, true)
		}
	}

	return MatchResult{
		Record:     record,
		Member:     best.member,
		Confidence: best.score,
		Method:     MethodFuzzy,
	}
}

// MatchRace matches every finisher in a race. A member resolving to more
// than one finisher in the same race is an error condition: a member cannot
// finish twice, and silently dropping one side would corrupt the standings.
func (m *Matcher) MatchRace(race *results.Race) ([]MatchResult, error) {
	matches := make([]MatchResult, 0, len(race.Results))
	seen := make(map[string]bool)

	for _, record := range race.Results {
		result := m.MatchFinisher(record)
		if result.Matched() {
			if seen[result.MemberID()] {
				return nil, apperrors.DuplicateMatchError(result.MemberID(), race.Name)
			}
			seen[result.MemberID()] = true
		}
		matches = append(matches, result)
	}

	matchedCount := 0
	for i := range matches {
		if matches[i].Matched() {
			matchedCount++
		}
	}
	m.logger.Info("race matched",
		slog.String("race", race.Name),
		slog.Int("finishers", len(matches)),
		slog.Int("matched", matchedCount))

	return matches, nil
}

// agesCompatible reports whether the finisher's and member's ages are
// within the configured tolerance, treating a missing age on either side
// as compatible.
func (m *Matcher) agesCompatible(record results.FinisherRecord, member *roster.Member) bool {
	if !record.HasAge() || !member.HasAge() {
		return true
	}
	diff := record.Age - member.Age
	if diff < 0 {
		diff = -diff
	}
	return diff <= m.cfg.AgeTolerance
}

// genderConflict reports whether two gender values are both present and
// disagree. A missing value on either side is not a conflict.
func genderConflict(a, b string) bool {
	return a != "" && b != "" && a != b
}

func unmatched(record results.FinisherRecord, ambiguous bool) MatchResult {
	return MatchResult{
		Record:     record,
		Confidence: 0,
		Method:     MethodNone,
		Ambiguous:  ambiguous,
	}
}
