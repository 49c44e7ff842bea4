package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/grading"
	"github.com/schoolcore/gradebook-api/internal/models"
)

type mockScoreStore struct {
	records map[string]*models.ScoreRecord
	creates int
	updates int
}

func recordKey(schemeID, studentID, classID string) string {
	return schemeID + "/" + studentID + "/" + classID
}

func (m *mockScoreStore) FindByKey(ctx context.Context, schemeID, studentID, classID string) (*models.ScoreRecord, error) {
	if record, ok := m.records[recordKey(schemeID, studentID, classID)]; ok {
		return record, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScoreStore) Create(ctx context.Context, record *models.ScoreRecord) error {
	if m.records == nil {
		m.records = make(map[string]*models.ScoreRecord)
	}
	record.ID = "rec1"
	m.records[recordKey(record.SchemeID, record.StudentID, record.ClassID)] = record
	m.creates++
	return nil
}

func (m *mockScoreStore) Update(ctx context.Context, record *models.ScoreRecord) error {
	m.records[recordKey(record.SchemeID, record.StudentID, record.ClassID)] = record
	m.updates++
	return nil
}

func (m *mockScoreStore) ListForScheme(ctx context.Context, schemeID, classID string) ([]models.ClassScoreRow, error) {
	return nil, nil
}

type mockSchemeReader struct {
	scheme *models.GradingScheme
}

func (m *mockSchemeReader) FindByScope(ctx context.Context, scope models.SchemeScope) (*models.GradingScheme, error) {
	if m.scheme == nil {
		return nil, sql.ErrNoRows
	}
	return m.scheme, nil
}

type mockEnrollmentChecker struct {
	notEnrolled map[string]bool
}

func (m *mockEnrollmentChecker) IsEnrolled(ctx context.Context, studentID, classID string) (bool, error) {
	return !m.notEnrolled[studentID], nil
}

type mockInvalidator struct {
	classes []string
}

func (m *mockInvalidator) InvalidateClass(ctx context.Context, classID string) error {
	m.classes = append(m.classes, classID)
	return nil
}

func testScheme() *models.GradingScheme {
	return &models.GradingScheme{
		ID:        "sch1",
		SchoolID:  "school1",
		ClassID:   "class1",
		SubjectID: "sub1",
		TeacherID: "teach1",
		Components: []models.SchemeComponent{
			{Name: "CA", Weight: 30},
			{Name: "Exam", Weight: 70},
		},
	}
}

func TestScoreServiceCreateSumsRawScores(t *testing.T) {
	store := &mockScoreStore{}
	cache := &mockInvalidator{}
	svc := NewScoreService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, cache, validator.New(), zap.NewNop())

	record, err := svc.Create(context.Background(), teacherClaims(), SubmitScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		StudentID: "stu1",
		Scores: []grading.EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "Exam", Score: 65},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 90.0, record.TotalScore)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, []string{"class1"}, cache.classes)
}

func TestScoreServiceCreateRejectsIncompleteSubmission(t *testing.T) {
	store := &mockScoreStore{}
	svc := NewScoreService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), SubmitScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		StudentID: "stu1",
		Scores:    []grading.EntryInput{{ComponentName: "CA", Score: 25}},
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", errCode(t, err))
	assert.Zero(t, store.creates)
}

func TestScoreServiceCreateConflict(t *testing.T) {
	store := &mockScoreStore{records: map[string]*models.ScoreRecord{
		recordKey("sch1", "stu1", "class1"): {ID: "rec1"},
	}}
	svc := NewScoreService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), SubmitScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		StudentID: "stu1",
		Scores: []grading.EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "Exam", Score: 65},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestScoreServiceUpdateMissingRecordNotFound(t *testing.T) {
	store := &mockScoreStore{}
	svc := NewScoreService(store, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), teacherClaims(), SubmitScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		StudentID: "stu1",
		Scores: []grading.EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "Exam", Score: 65},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
	assert.Equal(t, 404, errStatus(t, err))
	assert.Zero(t, store.updates)
}

func TestScoreServiceCreateUnenrolledStudent(t *testing.T) {
	svc := NewScoreService(&mockScoreStore{}, &mockSchemeReader{scheme: testScheme()}, &mockEnrollmentChecker{notEnrolled: map[string]bool{"stu1": true}}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), SubmitScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		StudentID: "stu1",
		Scores: []grading.EntryInput{
			{ComponentName: "CA", Score: 25},
			{ComponentName: "Exam", Score: 65},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestScoreServiceCreateNoScheme(t *testing.T) {
	svc := NewScoreService(&mockScoreStore{}, &mockSchemeReader{}, &mockEnrollmentChecker{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims(), SubmitScoreRequest{
		ClassID:   "class1",
		SubjectID: "sub1",
		StudentID: "stu1",
		Scores:    []grading.EntryInput{{ComponentName: "Exam", Score: 65}},
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}
