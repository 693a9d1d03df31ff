package scoring

import (
	"log/slog"
	"sort"

	"raceseries/internal/agegrade"
	"raceseries/internal/config"
	"raceseries/internal/matching"
	"raceseries/internal/results"
)

// Engine computes per-race category standings and accumulates series
// totals. It owns the running series state exclusively; totals are always
// re-derived from the recorded race scores, never maintained as separate
// mutable truth, so re-aggregation is idempotent.
type Engine struct {
	cfg    config.ScoringConfig
	calc   *agegrade.Calculator
	logger *slog.Logger

	races []*RaceScore
}

// NewEngine creates a scoring engine. The age-grading calculator is an
// explicit dependency loaded once at run start.
func NewEngine(cfg config.ScoringConfig, calc *agegrade.Calculator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		calc:   calc,
		logger: logger,
	}
}

// PointsForPlace converts a position within a category to points:
// max(0, base − (place − 1)). Never negative.
func (e *Engine) PointsForPlace(place int) int {
	points := e.cfg.BasePoints - (place - 1)
	if points < 0 {
		return 0
	}
	return points
}

// ScoreRace builds the category standings for one race from its match
// results and folds the race into the running series. A race with zero
// matched finishers yields empty standings without failing the series run.
func (e *Engine) ScoreRace(race *results.Race, matches []matching.MatchResult) *RaceScore {
	score := &RaceScore{
		RaceName:  race.Name,
		Standings: make(map[string]*CategoryStanding),
	}
	for _, name := range AllCategories() {
		score.Standings[name] = &CategoryStanding{
			Category: name,
			RaceName: race.Name,
		}
	}

	// Matched finishers in finishing-place order; unmatched retained for
	// the audit output, never in member-keyed standings.
	var matched []matching.MatchResult
	for _, m := range matches {
		if m.Matched() {
			matched = append(matched, m)
		} else {
			score.Unmatched = append(score.Unmatched, m)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Record.Place < matched[j].Record.Place
	})

	e.scorePointsCategories(score, matched)
	e.scoreAgeGraded(score, matched, race)

	e.races = append(e.races, score)

	e.logger.Info("race scored",
		slog.String("race", race.Name),
		slog.Int("matched", len(matched)),
		slog.Int("unmatched", len(score.Unmatched)),
		slog.Int("age_grade_exclusions", len(score.AgeGradeExclusions)))

	return score
}

// scorePointsCategories fills the overall, gender, and age-group×gender
// standings. Each category awards points independently from the entry's
// position within that category, positions being assigned in finishing-
// place order.
func (e *Engine) scorePointsCategories(score *RaceScore, matched []matching.MatchResult) {
	appendEntry := func(category string, m matching.MatchResult) {
		standing := score.Standings[category]
		place := len(standing.Entries) + 1
		standing.Entries = append(standing.Entries, ScoredEntry{
			Match:         m,
			Category:      category,
			CategoryPlace: place,
			Points:        e.PointsForPlace(place),
		})
	}

	for _, m := range matched {
		appendEntry(CategoryOverall, m)

		gender := entryGender(m)
		if cat := genderCategory(gender); cat != "" {
			appendEntry(cat, m)
		}

		group := AgeGroupFromAge(entryAge(m))
		if group != "" && genderCategory(gender) != "" {
			appendEntry(ageGroupCategory(gender, group), m)
		}
	}
}

// scoreAgeGraded fills the gender-combined age-graded standing. Lookup
// failures exclude only the affected entry, which still counts toward the
// points-based categories.
func (e *Engine) scoreAgeGraded(score *RaceScore, matched []matching.MatchResult, race *results.Race) {
	if e.calc == nil {
		return
	}

	standing := score.Standings[CategoryAgeGraded]

	for _, m := range matched {
		result, err := e.calc.Calculate(m.Member, m.Record, race)
		if err != nil {
			score.AgeGradeExclusions = append(score.AgeGradeExclusions, Exclusion{
				MemberID: m.MemberID(),
				Name:     m.Member.FullName(),
				Place:    m.Record.Place,
				Reason:   err.Error(),
			})
			e.logger.Warn("entry excluded from age-graded standing",
				slog.String("race", race.Name),
				slog.String("member_id", m.MemberID()),
				slog.String("reason", err.Error()))
			continue
		}
		standing.Entries = append(standing.Entries, ScoredEntry{
			Match:     m,
			Category:  CategoryAgeGraded,
			AgeGraded: result,
		})
	}

	// Rank by percentage descending; ties by finishing place, then member
	// ID, for full determinism.
	sort.SliceStable(standing.Entries, func(i, j int) bool {
		a, b := standing.Entries[i], standing.Entries[j]
		if a.AgeGraded.Percentage != b.AgeGraded.Percentage {
			return a.AgeGraded.Percentage > b.AgeGraded.Percentage
		}
		if a.FinishPlace() != b.FinishPlace() {
			return a.FinishPlace() < b.FinishPlace()
		}
		return a.MemberID() < b.MemberID()
	})
	for i := range standing.Entries {
		standing.Entries[i].CategoryPlace = i + 1
		standing.Entries[i].Points = e.PointsForPlace(i + 1)
	}
}

// Races returns the scored races in processing order
func (e *Engine) Races() []*RaceScore {
	races := make([]*RaceScore, len(e.races))
	copy(races, e.races)
	return races
}

// RaceNames returns the processed race names in input order, for display
// metadata.
func (e *Engine) RaceNames() []string {
	names := make([]string, 0, len(e.races))
	for _, r := range e.races {
		names = append(names, r.RaceName)
	}
	return names
}

// entryGender prefers the roster's gender over the race record's
func entryGender(m matching.MatchResult) string {
	if m.Member != nil && m.Member.Gender != "" {
		return m.Member.Gender
	}
	return m.Record.Gender
}

// entryAge prefers the roster's age over the race record's
func entryAge(m matching.MatchResult) int {
	if m.Member != nil && m.Member.HasAge() {
		return m.Member.Age
	}
	return m.Record.Age
}
