package scoring

import (
	"sort"

	apperrors "raceseries/internal/errors"
)

// RacePoints is one counted race within a member's series total
type RacePoints struct {
	RaceName      string
	FinishPlace   int
	CategoryPlace int
	Points        int
}

// SeriesTotal is a member's cumulative points for one category across the
// series, with the display metadata the standings tables need. It is
// always derived by replaying the recorded race scores.
type SeriesTotal struct {
	MemberID       string
	MemberName     string
	RacesCompleted int
	TotalPoints    int
	BestRace       RacePoints
	WorstRace      RacePoints
	Races          []RacePoints
}

// SeriesTotals returns the cumulative overall-category totals per member
func (e *Engine) SeriesTotals() []SeriesTotal {
	totals, _ := e.CategorySeriesTotals(CategoryOverall)
	return totals
}

// CategorySeriesTotals returns cumulative totals per member for one
// points-based category. The result is independent of race processing
// order: sums are commutative and every tie-break is a fixed comparison
// (points descending, then race name ascending).
func (e *Engine) CategorySeriesTotals(category string) ([]SeriesTotal, error) {
	if err := ValidateCategories([]string{category}); err != nil {
		return nil, err
	}
	if category == CategoryAgeGraded {
		return nil, apperrors.NewScoringError(
			"age_graded series totals are percentage-based; use AgeGradedSeries", nil)
	}

	type accumulator struct {
		name  string
		races []RacePoints
	}
	byMember := make(map[string]*accumulator)

	for _, race := range e.races {
		standing := race.Standings[category]
		if standing == nil {
			continue
		}
		for i := range standing.Entries {
			entry := &standing.Entries[i]
			acc, ok := byMember[entry.MemberID()]
			if !ok {
				acc = &accumulator{name: entry.MemberName()}
				byMember[entry.MemberID()] = acc
			}
			acc.races = append(acc.races, RacePoints{
				RaceName:      race.RaceName,
				FinishPlace:   entry.FinishPlace(),
				CategoryPlace: entry.CategoryPlace,
				Points:        entry.Points,
			})
		}
	}

	totals := make([]SeriesTotal, 0, len(byMember))
	for memberID, acc := range byMember {
		counted := e.countingRaces(acc.races)

		total := SeriesTotal{
			MemberID:       memberID,
			MemberName:     acc.name,
			RacesCompleted: len(counted),
			Races:          counted,
		}
		for i, rp := range counted {
			total.TotalPoints += rp.Points
			if i == 0 || betterRace(rp, total.BestRace) {
				total.BestRace = rp
			}
			if i == 0 || betterRace(total.WorstRace, rp) {
				total.WorstRace = rp
			}
		}
		totals = append(totals, total)
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].TotalPoints != totals[j].TotalPoints {
			return totals[i].TotalPoints > totals[j].TotalPoints
		}
		if totals[i].RacesCompleted != totals[j].RacesCompleted {
			return totals[i].RacesCompleted > totals[j].RacesCompleted
		}
		return totals[i].MemberID < totals[j].MemberID
	})

	return totals, nil
}

// countingRaces applies the optional drop-worst cap: with a cap configured,
// only the member's best races by points count. Sorting uses race name as
// the final key so the counted set never depends on processing order.
func (e *Engine) countingRaces(races []RacePoints) []RacePoints {
	counted := make([]RacePoints, len(races))
	copy(counted, races)

	sort.Slice(counted, func(i, j int) bool {
		return betterRace(counted[i], counted[j])
	})

	if e.cfg.MaxCountingRaces > 0 && len(counted) > e.cfg.MaxCountingRaces {
		counted = counted[:e.cfg.MaxCountingRaces]
	}
	return counted
}

// betterRace orders counted races by points descending, race name
// ascending.
func betterRace(a, b RacePoints) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.RaceName < b.RaceName
}

// AgeGradedRace is one counted race in an age-graded series total
type AgeGradedRace struct {
	RaceName   string
	Percentage float64
}

// AgeGradedSeriesTotal is a member's cumulative age-graded standing: the
// average of their counted percentages, gender-combined.
type AgeGradedSeriesTotal struct {
	MemberID          string
	MemberName        string
	RacesCompleted    int
	AveragePercentage float64
	Races             []AgeGradedRace
}

// AgeGradedSeries returns cumulative age-graded totals per member, ranked
// by average percentage descending with races completed and member ID as
// tie-breaks.
func (e *Engine) AgeGradedSeries() []AgeGradedSeriesTotal {
	type accumulator struct {
		name  string
		races []AgeGradedRace
	}
	byMember := make(map[string]*accumulator)

	for _, race := range e.races {
		standing := race.Standings[CategoryAgeGraded]
		if standing == nil {
			continue
		}
		for i := range standing.Entries {
			entry := &standing.Entries[i]
			acc, ok := byMember[entry.MemberID()]
			if !ok {
				acc = &accumulator{name: entry.MemberName()}
				byMember[entry.MemberID()] = acc
			}
			acc.races = append(acc.races, AgeGradedRace{
				RaceName:   race.RaceName,
				Percentage: entry.AgeGraded.Percentage,
			})
		}
	}

	totals := make([]AgeGradedSeriesTotal, 0, len(byMember))
	for memberID, acc := range byMember {
		counted := make([]AgeGradedRace, len(acc.races))
		copy(counted, acc.races)
		sort.Slice(counted, func(i, j int) bool {
			if counted[i].Percentage != counted[j].Percentage {
				return counted[i].Percentage > counted[j].Percentage
			}
			return counted[i].RaceName < counted[j].RaceName
		})
		if e.cfg.MaxCountingRaces > 0 && len(counted) > e.cfg.MaxCountingRaces {
			counted = counted[:e.cfg.MaxCountingRaces]
		}

		var sum float64
		for _, r := range counted {
			sum += r.Percentage
		}

		totals = append(totals, AgeGradedSeriesTotal{
			MemberID:          memberID,
			MemberName:        acc.name,
			RacesCompleted:    len(counted),
			AveragePercentage: sum / float64(len(counted)),
			Races:             counted,
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].AveragePercentage != totals[j].AveragePercentage {
			return totals[i].AveragePercentage > totals[j].AveragePercentage
		}
		if totals[i].RacesCompleted != totals[j].RacesCompleted {
			return totals[i].RacesCompleted > totals[j].RacesCompleted
		}
		return totals[i].MemberID < totals[j].MemberID
	})

	return totals
}
