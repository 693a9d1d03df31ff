package results

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Distance represents a standard race distance class used for age-grading
type Distance string

const (
	Distance5K   Distance = "5K"
	Distance8K   Distance = "8K"
	Distance10K  Distance = "10K"
	DistanceHalf Distance = "Half Marathon"
	DistanceFull Distance = "Marathon"
	// DistanceUnknown means the distance could not be determined; entries
	// from such races are excluded from age-graded categories only.
	DistanceUnknown Distance = ""
)

// String returns the string representation of the distance
func (d Distance) String() string {
	if d == DistanceUnknown {
		return "unknown"
	}
	return string(d)
}

// FinisherRecord represents a single finisher's row in a race results file
type FinisherRecord struct {
	Place     int    `validate:"required,gt=0"`
	Name      string `validate:"required"`
	Time      string `validate:"required"`
	Age       int    `validate:"gte=0,lte=120"`
	Gender    string `validate:"omitempty,oneof=M F"`
	BibNumber string
}

// HasAge reports whether the age column was present for this finisher
func (f *FinisherRecord) HasAge() bool {
	return f.Age > 0
}

// Race represents one race event with its ordered finisher records
type Race struct {
	Name     string
	Date     time.Time
	Distance Distance
	Results  []FinisherRecord
}

// ParseDistance converts a user-supplied distance class name to a Distance
func ParseDistance(value string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "5k":
		return Distance5K, nil
	case "8k":
		return Distance8K, nil
	case "10k":
		return Distance10K, nil
	case "half", "half marathon":
		return DistanceHalf, nil
	case "marathon", "full":
		return DistanceFull, nil
	default:
		return DistanceUnknown, fmt.Errorf("unknown distance class %q", value)
	}
}

var kDistanceRe = regexp.MustCompile(`(\d+)[\s_]?k`)

// InferDistance determines the race distance class from a race name,
// typically the results file name. Names carrying a literal "<n>k" are
// bucketed to the nearest standard distance. Returns DistanceUnknown when
// nothing matches.
func InferDistance(raceName string) Distance {
	name := strings.ToLower(raceName)

	switch {
	case strings.Contains(name, "half"):
		return DistanceHalf
	case strings.Contains(name, "marathon"):
		return DistanceFull
	case strings.Contains(name, "5k") || strings.Contains(name, "5_k"):
		return Distance5K
	case strings.Contains(name, "8k") || strings.Contains(name, "8_k"):
		return Distance8K
	case strings.Contains(name, "10k") || strings.Contains(name, "10_k"):
		return Distance10K
	}

	if m := kDistanceRe.FindStringSubmatch(name); m != nil {
		km, err := strconv.Atoi(m[1])
		if err != nil {
			return DistanceUnknown
		}
		switch {
		case km <= 6:
			return Distance5K
		case km <= 9:
			return Distance8K
		case km <= 15:
			return Distance10K
		case km <= 25:
			return DistanceHalf
		default:
			return DistanceFull
		}
	}

	return DistanceUnknown
}
