package scoring

import (
	"fmt"

	apperrors "raceseries/internal/errors"
)

// Well-known category names. Age-group categories are named
// "<gender>_<bucket>", e.g. "F_30-39".
const (
	CategoryOverall   = "overall"
	CategoryMOverall  = "M_overall"
	CategoryFOverall  = "F_overall"
	CategoryAgeGraded = "age_graded"
)

var genders = []string{"M", "F"}

// AllCategories returns every category name the engine produces, in a
// stable display order: overall, the gender categories, age-group crossed
// with gender, then age-graded.
func AllCategories() []string {
	names := []string{CategoryOverall, CategoryMOverall, CategoryFOverall}
	for _, gender := range genders {
		for _, group := range ageGroups {
			names = append(names, ageGroupCategory(gender, group))
		}
	}
	names = append(names, CategoryAgeGraded)
	return names
}

// ValidateCategories checks a requested category set against the known
// names; an unknown name is rejected immediately rather than silently
// ignored.
func ValidateCategories(requested []string) error {
	known := make(map[string]bool)
	for _, name := range AllCategories() {
		known[name] = true
	}

	for _, name := range requested {
		if !known[name] {
			return unknownCategory(name)
		}
	}
	return nil
}

// ageGroupCategory builds the category name for a gender and age bucket
func ageGroupCategory(gender string, group AgeGroup) string {
	return fmt.Sprintf("%s_%s", gender, group)
}

// genderCategory returns the gender-overall category name, or "" for an
// unknown gender value.
func genderCategory(gender string) string {
	switch gender {
	case "M":
		return CategoryMOverall
	case "F":
		return CategoryFOverall
	default:
		return ""
	}
}

func unknownCategory(name string) error {
	return apperrors.UnknownCategoryError(name)
}
