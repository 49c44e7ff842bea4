// Package grading holds the pure arithmetic of the gradebook: component
// shape validation, submission validation and grade band resolution. Nothing
// in this package touches the database.
package grading

import (
	"fmt"
	"math"
	"sort"
	"strings"

	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

// ComponentInput is a proposed scheme component.
type ComponentInput struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight"`
}

// EntryInput is one submitted component score.
type EntryInput struct {
	ComponentName string  `json:"component_name" validate:"required"`
	Score         float64 `json:"score"`
}

// ValidatedSubmission is the typed result of a successful submission check.
type ValidatedSubmission struct {
	Scores     []EntryInput
	TotalScore float64
}

// weightCents converts a weight to integer cents so the sum-to-100 check is
// exact rather than subject to floating point drift.
func weightCents(w float64) int64 {
	return int64(math.Round(w * 100))
}

// ValidateComponents checks the shape rules for a scheme's component list:
// non-empty list, non-empty unique names, weights within [0,100] and summing
// to exactly 100.
func ValidateComponents(components []ComponentInput) error {
	if len(components) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one component is required")
	}
	seen := make(map[string]struct{}, len(components))
	var cents int64
	for _, comp := range components {
		name := strings.TrimSpace(comp.Name)
		if name == "" {
			return appErrors.Clone(appErrors.ErrValidation, "component name must not be empty")
		}
		if _, ok := seen[name]; ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate component %q", name))
		}
		seen[name] = struct{}{}
		if comp.Weight < 0 || comp.Weight > 100 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("component %q weight must be within [0,100]", name))
		}
		cents += weightCents(comp.Weight)
	}
	if cents != 10000 {
		return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("component weights must sum to 100, got %g", float64(cents)/100))
	}
	return nil
}

// ValidateSubmission checks a score submission against the scheme's
// components. The submitted name set must equal the scheme's exactly; a
// submission missing a component or naming an unknown one is rejected
// wholesale. Scores must be finite and within [0,100]. The total is the
// plain sum of submitted scores; declared weights bound the scheme's shape
// but are not multiplied in.
func ValidateSubmission(components []ComponentInput, entries []EntryInput) (*ValidatedSubmission, error) {
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one component score is required")
	}

	expected := make(map[string]struct{}, len(components))
	for _, comp := range components {
		expected[strings.TrimSpace(comp.Name)] = struct{}{}
	}

	submitted := make(map[string]struct{}, len(entries))
	total := 0.0
	for _, entry := range entries {
		name := strings.TrimSpace(entry.ComponentName)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "component name must not be empty")
		}
		if _, ok := submitted[name]; ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate score for component %q", name))
		}
		submitted[name] = struct{}{}
		if _, ok := expected[name]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("component %q is not part of the grading scheme", name))
		}
		if math.IsNaN(entry.Score) || math.IsInf(entry.Score, 0) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score for %q must be a finite number", name))
		}
		if entry.Score < 0 || entry.Score > 100 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score for %q must be within [0,100]", name))
		}
		total += entry.Score
	}

	if missing := missingNames(expected, submitted); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing scores for components: %s", strings.Join(missing, ", ")))
	}

	normalized := make([]EntryInput, len(entries))
	for i, entry := range entries {
		normalized[i] = EntryInput{ComponentName: strings.TrimSpace(entry.ComponentName), Score: entry.Score}
	}
	return &ValidatedSubmission{Scores: normalized, TotalScore: total}, nil
}

func missingNames(expected, submitted map[string]struct{}) []string {
	var missing []string
	for name := range expected {
		if _, ok := submitted[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
