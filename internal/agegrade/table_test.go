package agegrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "raceseries/internal/errors"
	"raceseries/internal/results"
)

func TestLoadTable(t *testing.T) {
	for _, year := range []int{2015, 2020} {
		table, err := LoadTable(year)
		require.NoError(t, err, "year %d", year)
		assert.Equal(t, year, table.Year())
	}
}

func TestLoadTableUnknownYear(t *testing.T) {
	_, err := LoadTable(1999)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrTypeAgeGrading, appErr.Type)
}

func TestTableOpenStandard(t *testing.T) {
	table, err := LoadTable(2020)
	require.NoError(t, err)

	standard, err := table.OpenStandard(results.Distance5K, "M")
	require.NoError(t, err)
	assert.Equal(t, 769.0, standard)

	standard, err = table.OpenStandard(results.DistanceFull, "F")
	require.NoError(t, err)
	assert.Equal(t, 7913.0, standard)

	_, err = table.OpenStandard(results.DistanceUnknown, "M")
	assert.Error(t, err)

	_, err = table.OpenStandard(results.Distance5K, "X")
	assert.Error(t, err)
}

func TestTableFactor(t *testing.T) {
	table, err := LoadTable(2020)
	require.NoError(t, err)

	tests := []struct {
		name     string
		distance results.Distance
		gender   string
		age      int
		expected float64
	}{
		{"exact anchor", results.Distance5K, "M", 50, 0.872},
		{"open class", results.Distance5K, "M", 25, 1.000},
		{"interpolated between anchors", results.Distance5K, "M", 42, 0.9396},
		{"clamped below youngest anchor", results.Distance5K, "M", 18, 1.000},
		{"clamped above oldest anchor", results.Distance5K, "M", 90, 0.407},
		{"female curve", results.Distance5K, "F", 60, 0.741},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factor, err := table.Factor(tt.distance, tt.gender, tt.age)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, factor, 1e-9)
		})
	}
}

func TestTableFactorMissingCurve(t *testing.T) {
	table, err := LoadTable(2020)
	require.NoError(t, err)

	_, err = table.Factor(results.DistanceUnknown, "M", 40)
	assert.Error(t, err)

	_, err = table.Factor(results.Distance5K, "X", 40)
	assert.Error(t, err)
}

func TestTableAnchorRange(t *testing.T) {
	table, err := LoadTable(2020)
	require.NoError(t, err)

	assert.Equal(t, 20, table.MinAge(results.Distance5K, "M"))
	assert.Equal(t, 85, table.MaxAge(results.Distance5K, "M"))
	assert.Equal(t, 0, table.MinAge(results.DistanceUnknown, "M"))
}

// Factors decline monotonically with age past the open class; a regression
// in the table data or interpolation would break age-graded ranking.
func TestTableFactorMonotonicDecline(t *testing.T) {
	table, err := LoadTable(2020)
	require.NoError(t, err)

	for _, distance := range []results.Distance{results.Distance5K, results.Distance8K,
		results.Distance10K, results.DistanceHalf, results.DistanceFull} {
		for _, gender := range []string{"M", "F"} {
			prev := 2.0
			for age := 25; age <= 85; age++ {
				factor, err := table.Factor(distance, gender, age)
				require.NoError(t, err)
				assert.LessOrEqual(t, factor, prev,
					"%s %s factor rose at age %d", distance, gender, age)
				assert.Greater(t, factor, 0.0)
				prev = factor
			}
		}
	}
}
