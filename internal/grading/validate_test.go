package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateComponents(t *testing.T) {
	tests := []struct {
		name       string
		components []ComponentInput
		wantErr    string
	}{
		{
			name:       "valid pair",
			components: []ComponentInput{{Name: "CA", Weight: 30}, {Name: "Exam", Weight: 70}},
		},
		{
			name:       "fractional weights summing exactly",
			components: []ComponentInput{{Name: "CA", Weight: 33.33}, {Name: "Project", Weight: 33.33}, {Name: "Exam", Weight: 33.34}},
		},
		{
			name:    "empty list",
			wantErr: "at least one component",
		},
		{
			name:       "sum below 100",
			components: []ComponentInput{{Name: "CA", Weight: 30}, {Name: "Exam", Weight: 69}},
			wantErr:    "must sum to 100",
		},
		{
			name:       "sum above 100",
			components: []ComponentInput{{Name: "CA", Weight: 31}, {Name: "Exam", Weight: 70}},
			wantErr:    "must sum to 100",
		},
		{
			name:       "duplicate name",
			components: []ComponentInput{{Name: "CA", Weight: 50}, {Name: "CA", Weight: 50}},
			wantErr:    "duplicate component",
		},
		{
			name:       "blank name",
			components: []ComponentInput{{Name: "  ", Weight: 100}},
			wantErr:    "must not be empty",
		},
		{
			name:       "negative weight",
			components: []ComponentInput{{Name: "CA", Weight: -10}, {Name: "Exam", Weight: 110}},
			wantErr:    "within [0,100]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateComponents(tc.components)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateSubmission(t *testing.T) {
	scheme := []ComponentInput{{Name: "CA", Weight: 30}, {Name: "Exam", Weight: 70}}

	t.Run("valid submission sums raw scores", func(t *testing.T) {
		validated, err := ValidateSubmission(scheme, []EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "Exam", Score: 65},
		})
		require.NoError(t, err)
		assert.Equal(t, 90.0, validated.TotalScore)
		assert.Len(t, validated.Scores, 2)
	})

	t.Run("weights do not scale the total", func(t *testing.T) {
		validated, err := ValidateSubmission(scheme, []EntryInput{
			{ComponentName: "CA", Score: 100},
			{ComponentName: "Exam", Score: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, 100.0, validated.TotalScore)
	})

	t.Run("missing component rejected wholesale", func(t *testing.T) {
		_, err := ValidateSubmission(scheme, []EntryInput{{ComponentName: "CA", Score: 25}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing scores for components: Exam")
	})

	t.Run("unknown component rejected", func(t *testing.T) {
		_, err := ValidateSubmission(scheme, []EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "Quiz", Score: 65},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"Quiz" is not part of the grading scheme`)
	})

	t.Run("duplicate component rejected", func(t *testing.T) {
		_, err := ValidateSubmission(scheme, []EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "CA", Score: 30},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate score")
	})

	t.Run("out of range score rejected", func(t *testing.T) {
		_, err := ValidateSubmission(scheme, []EntryInput{
			{ComponentName: "CA", Score: -1},
			{ComponentName: "Exam", Score: 65},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "within [0,100]")
	})

	t.Run("non-finite score rejected", func(t *testing.T) {
		_, err := ValidateSubmission(scheme, []EntryInput{
			{ComponentName: "CA", Score: math.NaN()},
			{ComponentName: "Exam", Score: 65},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "finite number")
	})

	t.Run("empty submission rejected", func(t *testing.T) {
		_, err := ValidateSubmission(scheme, nil)
		require.Error(t, err)
	})
}
