package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/grading"
	"github.com/schoolcore/gradebook-api/internal/models"
	"github.com/schoolcore/gradebook-api/internal/repository"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

type mockBatchStore struct {
	applied   [][]models.ScoreRecord
	conflicts []string
	err       error
}

func (m *mockBatchStore) ApplyBatch(ctx context.Context, schemeID string, records []models.ScoreRecord, replace bool) ([]string, error) {
	if m.err != nil {
		return m.conflicts, m.err
	}
	m.applied = append(m.applied, records)
	return nil, nil
}

func fullScores() []grading.EntryInput {
	return []grading.EntryInput{
		{ComponentName: "CA", Score: 25},
		{ComponentName: "Exam", Score: 65},
	}
}

func batchFailures(t *testing.T, err error) []appErrors.EntryFailure {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "BATCH_REJECTED", appErr.Code)
	failures, ok := appErr.Details.([]appErrors.EntryFailure)
	require.True(t, ok, "expected failure details, got %T", appErr.Details)
	return failures
}

func TestScoreBatchServiceCreate(t *testing.T) {
	store := &mockBatchStore{}
	cache := &mockInvalidator{}
	svc := NewScoreBatchService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, cache, nil, validator.New(), zap.NewNop())

	result, err := svc.Create(context.Background(), teacherClaims(), BatchScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		Entries: []BatchEntry{
			{StudentID: "stu1", Scores: fullScores()},
			{StudentID: "stu2", Scores: fullScores()},
			{StudentID: "stu3", Scores: fullScores()},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Applied)
	require.Len(t, store.applied, 1)
	assert.Len(t, store.applied[0], 3)
	assert.Equal(t, 90.0, store.applied[0][0].TotalScore)
	assert.Equal(t, []string{"class1"}, cache.classes)
}

func TestScoreBatchServiceRejectsWholeBatchOnOneBadEntry(t *testing.T) {
	store := &mockBatchStore{}
	svc := NewScoreBatchService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, nil, validator.New(), zap.NewNop())

	entries := []BatchEntry{
		{StudentID: "stu1", Scores: fullScores()},
		{StudentID: "stu2", Scores: fullScores()},
		{StudentID: "stu3", Scores: fullScores()},
		{StudentID: "stu4", Scores: fullScores()},
		{StudentID: "stu5", Scores: fullScores()},
		{StudentID: "stu6", Scores: []grading.EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "Exam", Score: 120},
		}},
	}
	_, err := svc.Create(context.Background(), teacherClaims(), BatchScoreRequest{
		ClassID: "class1", SubjectID: "sub1", Entries: entries,
	})
	require.Error(t, err)

	failures := batchFailures(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "stu6", failures[0].StudentID)
	assert.Empty(t, store.applied, "no records may be written when any entry fails")
}

func TestScoreBatchServiceCollectsEveryFailure(t *testing.T) {
	store := &mockBatchStore{}
	enrollments := &mockEnrollmentChecker{notEnrolled: map[string]bool{"stu2": true}}
	svc := NewScoreBatchService(store, &mockSchemeReader{scheme: testScheme()}, enrollments, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), BatchScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		Entries: []BatchEntry{
			{StudentID: "stu1", Scores: []grading.EntryInput{{ComponentName: "CA", Score: 25}}},
			{StudentID: "stu2", Scores: fullScores()},
			{StudentID: "stu3", Scores: fullScores()},
		},
	})
	require.Error(t, err)

	failures := batchFailures(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "stu1", failures[0].StudentID)
	assert.Equal(t, "stu2", failures[1].StudentID)
	assert.Empty(t, store.applied)
}

func TestScoreBatchServiceRejectsDuplicateStudent(t *testing.T) {
	store := &mockBatchStore{}
	svc := NewScoreBatchService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), BatchScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		Entries: []BatchEntry{
			{StudentID: "stu1", Scores: fullScores()},
			{StudentID: "stu1", Scores: fullScores()},
		},
	})
	require.Error(t, err)

	failures := batchFailures(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "stu1", failures[0].StudentID)
	assert.Empty(t, store.applied)
}

func TestScoreBatchServiceRecordsMetrics(t *testing.T) {
	store := &mockBatchStore{}
	metrics := NewMetricsService()
	svc := NewScoreBatchService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, metrics, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), BatchScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		Entries: []BatchEntry{
			{StudentID: "stu1", Scores: fullScores()},
			{StudentID: "stu2", Scores: fullScores()},
		},
	})
	require.NoError(t, err)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.ScoreBatchesApplied)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
}

func TestScoreBatchServiceCreateExistingRecords(t *testing.T) {
	store := &mockBatchStore{conflicts: []string{"stu2"}, err: repository.ErrBatchExisting}
	svc := NewScoreBatchService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), BatchScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		Entries: []BatchEntry{
			{StudentID: "stu1", Scores: fullScores()},
			{StudentID: "stu2", Scores: fullScores()},
		},
	})
	require.Error(t, err)

	failures := batchFailures(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "stu2", failures[0].StudentID)
	assert.Contains(t, failures[0].Reason, "already exists")
}

func TestScoreBatchServiceUpdateMissingRecords(t *testing.T) {
	store := &mockBatchStore{conflicts: []string{"stu1"}, err: repository.ErrBatchMissing}
	svc := NewScoreBatchService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), teacherClaims(), BatchScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		Entries:   []BatchEntry{{StudentID: "stu1", Scores: fullScores()}},
	})
	require.Error(t, err)

	failures := batchFailures(t, err)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "no score record")
}
