package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raceseries/internal/matching"
	"raceseries/internal/results"
	"raceseries/internal/roster"
)

func testRoster() []*roster.Member {
	return []*roster.Member{
		testMember("M001", "John", "Doe", 40, "M"),
		testMember("M002", "Sally", "Smith", 35, "F"),
		testMember("M003", "Bob", "Jones", 42, "M"),
		testMember("M004", "Jane", "Miller", 51, "F"),
		testMember("M005", "Tom", "Baker", 29, "M"),
		testMember("M006", "Amy", "Clark", 63, "F"),
	}
}

func scoreTestRace(t *testing.T, engine *Engine, name string, matches []matching.MatchResult) {
	t.Helper()
	engine.ScoreRace(&results.Race{Name: name, Distance: results.Distance5K}, matches)
}

func TestSeriesTotalsAccumulate(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())
	members := testRoster()
	john := members[0]

	// Race one: John wins outright
	scoreTestRace(t, engine, "race_one_5k", []matching.MatchResult{
		matchFor(john, 1, "18:30"),
	})

	// Race two: five others finish ahead, John is sixth for 95 points
	scoreTestRace(t, engine, "race_two_5k", []matching.MatchResult{
		matchFor(members[1], 1, "18:00"),
		matchFor(members[2], 2, "18:10"),
		matchFor(members[3], 3, "18:20"),
		matchFor(members[4], 4, "18:30"),
		matchFor(members[5], 5, "18:40"),
		matchFor(john, 6, "18:50"),
	})

	totals := engine.SeriesTotals()
	require.NotEmpty(t, totals)

	leader := totals[0]
	assert.Equal(t, "M001", leader.MemberID)
	assert.Equal(t, 195, leader.TotalPoints)
	assert.Equal(t, 2, leader.RacesCompleted)
	assert.Equal(t, "race_one_5k", leader.BestRace.RaceName)
	assert.Equal(t, 100, leader.BestRace.Points)
	assert.Equal(t, "race_two_5k", leader.WorstRace.RaceName)
	assert.Equal(t, 95, leader.WorstRace.Points)

	// One-race winners follow with 100 each
	assert.Equal(t, 100, totals[1].TotalPoints)
	assert.Equal(t, 1, totals[1].RacesCompleted)
}

func TestSeriesTotalsTieBreaks(t *testing.T) {
	// A small points base makes equal totals easy to construct
	cfg := testScoringConfig()
	cfg.BasePoints = 3
	engine := newTestEngine(t, cfg)
	members := testRoster()

	scoreTestRace(t, engine, "race_one_5k", []matching.MatchResult{
		matchFor(members[1], 1, "18:00"), // M002: 3 points
		matchFor(members[0], 2, "18:30"), // M001: 2 points
	})
	scoreTestRace(t, engine, "race_two_5k", []matching.MatchResult{
		matchFor(members[2], 1, "18:00"), // M003: 3 points
		matchFor(members[3], 2, "18:20"), // M004: 2 points
		matchFor(members[0], 3, "18:40"), // M001: 1 point
	})

	totals := engine.SeriesTotals()
	require.Len(t, totals, 4)

	// Three members on 3 points: M001's two races rank first, then member
	// ID orders the one-race members.
	assert.Equal(t, "M001", totals[0].MemberID)
	assert.Equal(t, 3, totals[0].TotalPoints)
	assert.Equal(t, 2, totals[0].RacesCompleted)
	assert.Equal(t, "M002", totals[1].MemberID)
	assert.Equal(t, "M003", totals[2].MemberID)
	assert.Equal(t, "M004", totals[3].MemberID)
}

func TestSeriesTotalsOrderIndependent(t *testing.T) {
	members := testRoster()

	raceMatches := map[string][]matching.MatchResult{
		"race_one_5k": {
			matchFor(members[0], 1, "18:30"),
			matchFor(members[1], 2, "19:00"),
			matchFor(members[2], 3, "19:30"),
		},
		"race_two_5k": {
			matchFor(members[2], 1, "18:20"),
			matchFor(members[0], 2, "18:40"),
		},
		"race_three_5k": {
			matchFor(members[1], 1, "18:50"),
			matchFor(members[3], 2, "19:10"),
		},
	}

	orders := [][]string{
		{"race_one_5k", "race_two_5k", "race_three_5k"},
		{"race_three_5k", "race_one_5k", "race_two_5k"},
		{"race_two_5k", "race_three_5k", "race_one_5k"},
	}

	var reference []SeriesTotal
	for i, order := range orders {
		engine := newTestEngine(t, testScoringConfig())
		for _, name := range order {
			scoreTestRace(t, engine, name, raceMatches[name])
		}

		totals := engine.SeriesTotals()
		if i == 0 {
			reference = totals
			continue
		}
		assert.Equal(t, reference, totals, "processing order %v", order)
	}
}

func TestSeriesTotalsMaxCountingRaces(t *testing.T) {
	cfg := testScoringConfig()
	cfg.MaxCountingRaces = 1
	engine := newTestEngine(t, cfg)
	members := testRoster()
	john := members[0]

	scoreTestRace(t, engine, "race_one_5k", []matching.MatchResult{
		matchFor(john, 1, "18:30"),
	})
	scoreTestRace(t, engine, "race_two_5k", []matching.MatchResult{
		matchFor(members[1], 1, "18:00"),
		matchFor(john, 2, "18:30"),
	})

	totals := engine.SeriesTotals()
	require.NotEmpty(t, totals)

	// Only the best race counts toward the total
	leader := totals[0]
	assert.Equal(t, "M001", leader.MemberID)
	assert.Equal(t, 100, leader.TotalPoints)
	assert.Equal(t, 1, leader.RacesCompleted)
	require.Len(t, leader.Races, 1)
	assert.Equal(t, "race_one_5k", leader.Races[0].RaceName)
}

func TestCategorySeriesTotals(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())
	members := testRoster()

	scoreTestRace(t, engine, "race_one_5k", []matching.MatchResult{
		matchFor(members[0], 1, "18:30"), // M, 40
		matchFor(members[1], 2, "19:00"), // F, 35
		matchFor(members[2], 3, "19:30"), // M, 42
	})

	women, err := engine.CategorySeriesTotals(CategoryFOverall)
	require.NoError(t, err)
	require.Len(t, women, 1)
	assert.Equal(t, "M002", women[0].MemberID)
	assert.Equal(t, 100, women[0].TotalPoints)

	m40s, err := engine.CategorySeriesTotals("M_40-49")
	require.NoError(t, err)
	require.Len(t, m40s, 2)
	assert.Equal(t, "M001", m40s[0].MemberID)
	assert.Equal(t, 100, m40s[0].TotalPoints)
	assert.Equal(t, "M003", m40s[1].MemberID)
	assert.Equal(t, 99, m40s[1].TotalPoints)
}

func TestCategorySeriesTotalsRejectsBadCategories(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())

	_, err := engine.CategorySeriesTotals("bogus")
	assert.Error(t, err)

	_, err = engine.CategorySeriesTotals(CategoryAgeGraded)
	assert.Error(t, err)
}

func TestAgeGradedSeries(t *testing.T) {
	engine := newTestEngine(t, testScoringConfig())
	members := testRoster()
	john, amy := members[0], members[5]

	scoreTestRace(t, engine, "race_one_5k", []matching.MatchResult{
		matchFor(john, 1, "18:30"),
		matchFor(amy, 2, "24:00"),
	})
	scoreTestRace(t, engine, "race_two_5k", []matching.MatchResult{
		matchFor(john, 1, "19:00"),
		matchFor(amy, 2, "24:30"),
	})

	// Pull the per-race percentages back out of the recorded standings to
	// check the averages.
	expected := make(map[string]float64)
	races := engine.Races()
	require.Len(t, races, 2)
	for _, race := range races {
		standing, err := race.Standing(CategoryAgeGraded)
		require.NoError(t, err)
		require.Len(t, standing.Entries, 2)
		for i := range standing.Entries {
			entry := &standing.Entries[i]
			expected[entry.MemberID()] += entry.AgeGraded.Percentage / 2
		}
	}

	totals := engine.AgeGradedSeries()
	require.Len(t, totals, 2)
	for _, total := range totals {
		assert.Equal(t, 2, total.RacesCompleted)
		assert.InDelta(t, expected[total.MemberID], total.AveragePercentage, 1e-9)
	}
	assert.GreaterOrEqual(t, totals[0].AveragePercentage, totals[1].AveragePercentage)
}

func TestAllCategories(t *testing.T) {
	names := AllCategories()

	// overall, two gender categories, eight age groups per gender, age-graded
	assert.Len(t, names, 20)
	assert.Equal(t, CategoryOverall, names[0])
	assert.Contains(t, names, "M_<=19")
	assert.Contains(t, names, "F_80+")
	assert.Equal(t, CategoryAgeGraded, names[len(names)-1])

	assert.NoError(t, ValidateCategories(names))
	assert.Error(t, ValidateCategories([]string{"overall", "bogus"}))
}

func TestAgeGroupFromAge(t *testing.T) {
	tests := []struct {
		age      int
		expected AgeGroup
	}{
		{0, ""},
		{-3, ""},
		{12, AgeGroupUnder20},
		{19, AgeGroupUnder20},
		{20, AgeGroup20to29},
		{39, AgeGroup30to39},
		{40, AgeGroup40to49},
		{79, AgeGroup70to79},
		{80, AgeGroup80Plus},
		{101, AgeGroup80Plus},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, AgeGroupFromAge(tt.age), "age %d", tt.age)
	}
}
