package scoring

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raceseries/internal/agegrade"
	"raceseries/internal/config"
	"raceseries/internal/matching"
	"raceseries/internal/results"
	"raceseries/internal/roster"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		BasePoints:       100,
		MaxCountingRaces: 0,
		AgeGradingYear:   2020,
	}
}

func newTestEngine(t *testing.T, cfg config.ScoringConfig) *Engine {
	t.Helper()
	calc, err := agegrade.NewCalculator(2020, testLogger())
	require.NoError(t, err)
	return NewEngine(cfg, calc, testLogger())
}

func testMember(id, first, last string, age int, gender string) *roster.Member {
	return &roster.Member{MemberID: id, FirstName: first, LastName: last, Age: age, Gender: gender}
}

func matchFor(m *roster.Member, place int, elapsed string) matching.MatchResult {
	return matching.MatchResult{
		Record: results.FinisherRecord{
			Place: place, Name: m.FullName(), Time: elapsed, Age: m.Age, Gender: m.Gender,
		},
		Member:     m,
		Confidence: 1.0,
		Method:     matching.MethodExact,
	}
}

func unmatchedFor(place int, name, elapsed string) matching.MatchResult {
	return matching.MatchResult{
		Record: results.FinisherRecord{Place: place, Name: name, Time: elapsed},
		Method: matching.MethodNone,
	}
}

func TestPointsForPlace(t *testing.T) {
	engine := NewEngine(testScoringConfig(), nil, testLogger())

	tests := []struct {
		place    int
		expected int
	}{
		{1, 100},
		{2, 99},
		{50, 51},
		{100, 1},
		{101, 0},
		{200, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, engine.PointsForPlace(tt.place), "place %d", tt.place)
	}
}

func TestScoreRacePartitionsCategories(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())

	john := testMember("M001", "John", "Doe", 40, "M")
	sally := testMember("M002", "Sally", "Smith", 35, "F")
	bob := testMember("M003", "Bob", "Jones", 42, "M")

	race := &results.Race{Name: "spring_5k", Distance: results.Distance5K}
	matches := []matching.MatchResult{
		matchFor(john, 1, "18:30"),
		matchFor(sally, 2, "19:00"),
		matchFor(bob, 3, "19:30"),
		unmatchedFor(4, "Guest Runner", "20:00"),
	}

	score := engine.ScoreRace(race, matches)

	// Every category exists even when empty
	assert.Len(t, score.Standings, len(AllCategories()))

	overall, err := score.Standing(CategoryOverall)
	require.NoError(t, err)
	require.Len(t, overall.Entries, 3)
	assert.Equal(t, []int{100, 99, 98}, entryPoints(overall))
	assert.Equal(t, "M001", overall.Entries[0].MemberID())

	men, err := score.Standing(CategoryMOverall)
	require.NoError(t, err)
	require.Len(t, men.Entries, 2)
	// Bob is third overall but second among men; points follow the
	// category position, not the finishing place.
	assert.Equal(t, "M003", men.Entries[1].MemberID())
	assert.Equal(t, 2, men.Entries[1].CategoryPlace)
	assert.Equal(t, 99, men.Entries[1].Points)

	women, err := score.Standing(CategoryFOverall)
	require.NoError(t, err)
	require.Len(t, women.Entries, 1)
	assert.Equal(t, 100, women.Entries[0].Points)

	m40s, err := score.Standing("M_40-49")
	require.NoError(t, err)
	assert.Len(t, m40s.Entries, 2)

	f30s, err := score.Standing("F_30-39")
	require.NoError(t, err)
	assert.Len(t, f30s.Entries, 1)

	empty, err := score.Standing("M_20-29")
	require.NoError(t, err)
	assert.Empty(t, empty.Entries)

	require.Len(t, score.Unmatched, 1)
	assert.Equal(t, "Guest Runner", score.Unmatched[0].Record.Name)

	_, err = score.Standing("bogus")
	assert.Error(t, err)
}

func TestScoreRaceAgeGradedRanking(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())

	john := testMember("M001", "John", "Doe", 40, "M")
	sally := testMember("M002", "Sally", "Smith", 35, "F")
	bob := testMember("M003", "Bob", "Jones", 42, "M")

	race := &results.Race{Name: "spring_5k", Distance: results.Distance5K}
	matches := []matching.MatchResult{
		matchFor(john, 1, "18:30"),
		matchFor(sally, 2, "19:00"),
		matchFor(bob, 3, "19:30"),
	}

	score := engine.ScoreRace(race, matches)

	graded, err := score.Standing(CategoryAgeGraded)
	require.NoError(t, err)
	require.Len(t, graded.Entries, 3)

	// Age-graded order differs from finishing order: Sally's percentage
	// beats both men despite finishing second.
	assert.Equal(t, "M002", graded.Entries[0].MemberID())
	assert.Equal(t, 1, graded.Entries[0].CategoryPlace)
	assert.Equal(t, 100, graded.Entries[0].Points)

	for i := 1; i < len(graded.Entries); i++ {
		assert.GreaterOrEqual(t,
			graded.Entries[i-1].AgeGraded.Percentage,
			graded.Entries[i].AgeGraded.Percentage)
		assert.Equal(t, i+1, graded.Entries[i].CategoryPlace)
	}
}

func TestScoreRaceAgeGradeExclusion(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())

	// No gender anywhere: scored for points, excluded from age-graded
	chris := testMember("M001", "Chris", "Lee", 40, "")

	race := &results.Race{Name: "spring_5k", Distance: results.Distance5K}
	score := engine.ScoreRace(race, []matching.MatchResult{matchFor(chris, 1, "20:00")})

	overall, err := score.Standing(CategoryOverall)
	require.NoError(t, err)
	assert.Len(t, overall.Entries, 1)

	graded, err := score.Standing(CategoryAgeGraded)
	require.NoError(t, err)
	assert.Empty(t, graded.Entries)

	require.Len(t, score.AgeGradeExclusions, 1)
	assert.Equal(t, "M001", score.AgeGradeExclusions[0].MemberID)
	assert.Contains(t, score.AgeGradeExclusions[0].Reason, "gender")
}

func TestScoreRaceUnknownDistanceExcludesAgeGradedOnly(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())

	john := testMember("M001", "John", "Doe", 40, "M")
	race := &results.Race{Name: "mystery run", Distance: results.DistanceUnknown}

	score := engine.ScoreRace(race, []matching.MatchResult{matchFor(john, 1, "20:00")})

	overall, err := score.Standing(CategoryOverall)
	require.NoError(t, err)
	assert.Len(t, overall.Entries, 1)

	graded, err := score.Standing(CategoryAgeGraded)
	require.NoError(t, err)
	assert.Empty(t, graded.Entries)
	assert.Len(t, score.AgeGradeExclusions, 1)
}

func TestScoreRaceZeroMatched(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())

	race := &results.Race{Name: "spring_5k", Distance: results.Distance5K}
	score := engine.ScoreRace(race, []matching.MatchResult{
		unmatchedFor(1, "Visitor One", "18:00"),
		unmatchedFor(2, "Visitor Two", "19:00"),
	})

	for _, name := range AllCategories() {
		standing, err := score.Standing(name)
		require.NoError(t, err)
		assert.Empty(t, standing.Entries, "category %s", name)
	}
	assert.Len(t, score.Unmatched, 2)
	assert.Empty(t, engine.SeriesTotals())
}

func entryPoints(standing *CategoryStanding) []int {
	points := make([]int, 0, len(standing.Entries))
	for i := range standing.Entries {
		points = append(points, standing.Entries[i].Points)
	}
	return points
}
