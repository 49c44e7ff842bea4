package grading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schoolcore/gradebook-api/internal/models"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

// BandInput is a proposed grade band.
type BandInput struct {
	LetterGrade string  `json:"letter_grade" validate:"required"`
	MinScore    float64 `json:"min_score"`
	MaxScore    float64 `json:"max_score"`
}

// ValidateBands checks a replacement band set: non-empty letters, min <= max,
// bounds within [0,100] and no overlapping ranges. Overlaps are rejected at
// write time so read-time resolution never has to tie-break new data.
func ValidateBands(bands []BandInput) error {
	if len(bands) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one grade band is required")
	}
	for _, band := range bands {
		if strings.TrimSpace(band.LetterGrade) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "letter grade must not be empty")
		}
		if band.MinScore < 0 || band.MaxScore > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("band %s bounds must be within [0,100]", band.LetterGrade))
		}
		if band.MinScore > band.MaxScore {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("band %s min exceeds max", band.LetterGrade))
		}
	}

	ordered := make([]BandInput, len(bands))
	copy(ordered, bands)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].MinScore < ordered[j].MinScore })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].MinScore <= ordered[i-1].MaxScore {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("bands %s and %s overlap", ordered[i-1].LetterGrade, ordered[i].LetterGrade))
		}
	}
	return nil
}

// ResolveLetter returns the letter grade of the first band, in insertion
// order, whose inclusive [min,max] range contains the score. Returns nil
// when no band matches.
func ResolveLetter(bands []models.GradeBand, score float64) *string {
	for _, band := range bands {
		if score >= band.MinScore && score <= band.MaxScore {
			letter := band.LetterGrade
			return &letter
		}
	}
	return nil
}
