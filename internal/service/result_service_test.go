package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/models"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

func floatPtr(v float64) *float64 { return &v }

type mockResultScores struct {
	detailsByClass map[string][]models.StudentScoreDetail
	detailsByTerm  map[string][]models.StudentScoreDetail
	classCells     map[string][]models.ClassResultCell
	stats          map[string]*models.ClassSubjectStats
	statsCalls     int
}

func (m *mockResultScores) ListByStudentClass(ctx context.Context, studentID, classID string) ([]models.StudentScoreDetail, error) {
	return m.detailsByClass[classID], nil
}

func (m *mockResultScores) ListForStudentTerm(ctx context.Context, studentID, schoolID, termID string) ([]models.StudentScoreDetail, error) {
	return m.detailsByTerm[termID], nil
}

func (m *mockResultScores) ListClassSubjectScores(ctx context.Context, classID string) (map[string][]models.ClassResultCell, error) {
	return m.classCells, nil
}

func (m *mockResultScores) SubjectStats(ctx context.Context, classID, subjectID string) (*models.ClassSubjectStats, error) {
	m.statsCalls++
	if stats, ok := m.stats[classID+"/"+subjectID]; ok {
		return stats, nil
	}
	return nil, sql.ErrNoRows
}

type mockBandReader struct {
	bands []models.GradeBand
}

func (m *mockBandReader) ListBySchool(ctx context.Context, schoolID string) ([]models.GradeBand, error) {
	return m.bands, nil
}

type mockEnrollmentLister struct {
	students []models.EnrolledStudent
}

func (m *mockEnrollmentLister) ListEnrolled(ctx context.Context, classID, sessionID, termID string) ([]models.EnrolledStudent, error) {
	return m.students, nil
}

type mockSessionReader struct {
	sessions []models.Session
}

func (m *mockSessionReader) ListWithTerms(ctx context.Context, schoolID string) ([]models.Session, error) {
	return m.sessions, nil
}

type mockStatsCache struct {
	entries map[string]*models.ClassSubjectStats
	sets    int
}

func (m *mockStatsCache) GetStats(ctx context.Context, classID, subjectID string) (*models.ClassSubjectStats, error) {
	if stats, ok := m.entries[classID+"/"+subjectID]; ok {
		return stats, nil
	}
	return nil, appErrors.ErrCacheMiss
}

func (m *mockStatsCache) SetStats(ctx context.Context, classID, subjectID string, stats *models.ClassSubjectStats) error {
	if m.entries == nil {
		m.entries = make(map[string]*models.ClassSubjectStats)
	}
	m.entries[classID+"/"+subjectID] = stats
	m.sets++
	return nil
}

func defaultBands() []models.GradeBand {
	return []models.GradeBand{
		{LetterGrade: "A", MinScore: 80, MaxScore: 100},
		{LetterGrade: "B", MinScore: 70, MaxScore: 79.99},
		{LetterGrade: "C", MinScore: 60, MaxScore: 69.99},
		{LetterGrade: "F", MinScore: 0, MaxScore: 59.99},
	}
}

func TestResultServiceSubjectStatisticsCaches(t *testing.T) {
	scores := &mockResultScores{stats: map[string]*models.ClassSubjectStats{
		"class1/sub1": {SubjectID: "sub1", Average: floatPtr(70), Lowest: floatPtr(60), Highest: floatPtr(80), GradedCount: 3},
	}}
	cache := &mockStatsCache{}
	svc := NewResultService(scores, &mockBandReader{}, &mockEnrollmentLister{}, &mockSessionReader{}, cache, nil, zap.NewNop())

	stats, err := svc.SubjectStatistics(context.Background(), "class1", "sub1")
	require.NoError(t, err)
	assert.Equal(t, 70.0, *stats.Average)
	assert.Equal(t, 60.0, *stats.Lowest)
	assert.Equal(t, 80.0, *stats.Highest)
	assert.Equal(t, 3, stats.GradedCount)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.SubjectStatistics(context.Background(), "class1", "sub1")
	require.NoError(t, err)
	assert.Equal(t, 1, scores.statsCalls, "second read must come from cache")
}

func TestResultServiceSubjectStatisticsRecordsCacheMetrics(t *testing.T) {
	scores := &mockResultScores{stats: map[string]*models.ClassSubjectStats{
		"class1/sub1": {SubjectID: "sub1", Average: floatPtr(70), GradedCount: 3},
	}}
	metrics := NewMetricsService()
	svc := NewResultService(scores, &mockBandReader{}, &mockEnrollmentLister{}, &mockSessionReader{}, &mockStatsCache{}, metrics, zap.NewNop())

	_, err := svc.SubjectStatistics(context.Background(), "class1", "sub1")
	require.NoError(t, err)
	_, err = svc.SubjectStatistics(context.Background(), "class1", "sub1")
	require.NoError(t, err)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, 0.5, snapshot.CacheHitRatio)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
}

func TestResultServiceSubjectStatisticsNoRecords(t *testing.T) {
	svc := NewResultService(&mockResultScores{}, &mockBandReader{}, &mockEnrollmentLister{}, &mockSessionReader{}, nil, nil, zap.NewNop())

	stats, err := svc.SubjectStatistics(context.Background(), "class1", "sub1")
	require.NoError(t, err)
	assert.Nil(t, stats.Average)
	assert.Zero(t, stats.GradedCount)
}

func TestResultServiceStudentReport(t *testing.T) {
	scores := &mockResultScores{
		detailsByClass: map[string][]models.StudentScoreDetail{
			"class1": {
				{RecordID: "rec1", SubjectID: "sub1", SubjectName: "Mathematics", TotalScore: 80,
					Components: []models.ComponentResult{{Name: "CA", Weight: 30, Score: 25}, {Name: "Exam", Weight: 70, Score: 55}}},
				{RecordID: "rec2", SubjectID: "sub2", SubjectName: "Physics", TotalScore: 79},
			},
		},
		stats: map[string]*models.ClassSubjectStats{
			"class1/sub1": {SubjectID: "sub1", Average: floatPtr(72.5), GradedCount: 2},
		},
	}
	svc := NewResultService(scores, &mockBandReader{bands: defaultBands()}, &mockEnrollmentLister{}, &mockSessionReader{}, nil, nil, zap.NewNop())

	report, err := svc.StudentReport(context.Background(), teacherClaims(), "stu1", "class1")
	require.NoError(t, err)
	require.Len(t, report.Subjects, 2)

	math := report.Subjects[0]
	require.NotNil(t, math.LetterGrade)
	assert.Equal(t, "A", *math.LetterGrade)
	require.NotNil(t, math.ClassAverage)
	assert.Equal(t, 72.5, *math.ClassAverage)

	physics := report.Subjects[1]
	require.NotNil(t, physics.LetterGrade)
	assert.Equal(t, "B", *physics.LetterGrade)
}

func TestResultServiceStudentReportOwnOnly(t *testing.T) {
	svc := NewResultService(&mockResultScores{}, &mockBandReader{}, &mockEnrollmentLister{}, &mockSessionReader{}, nil, nil, zap.NewNop())

	claims := models.TenantClaims{UserID: "stu1", SchoolID: "school1", Role: models.RoleStudent}
	_, err := svc.StudentReport(context.Background(), claims, "stu2", "class1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestResultServiceClassResults(t *testing.T) {
	scores := &mockResultScores{
		classCells: map[string][]models.ClassResultCell{
			"stu1": {{SubjectID: "sub1", SubjectName: "Mathematics", TotalScore: floatPtr(85)}},
		},
	}
	enrollments := &mockEnrollmentLister{students: []models.EnrolledStudent{
		{StudentID: "stu1", StudentName: "Ada Obi"},
		{StudentID: "stu2", StudentName: "Ben Eze"},
	}}
	svc := NewResultService(scores, &mockBandReader{bands: defaultBands()}, enrollments, &mockSessionReader{}, nil, nil, zap.NewNop())

	sheet, err := svc.ClassResults(context.Background(), teacherClaims(), "class1")
	require.NoError(t, err)
	assert.Equal(t, "sess1", sheet.SessionID)
	assert.Equal(t, "term1", sheet.TermID)
	require.Len(t, sheet.Students, 2)

	graded := sheet.Students[0]
	require.Len(t, graded.Subjects, 1)
	require.NotNil(t, graded.Subjects[0].LetterGrade)
	assert.Equal(t, "A", *graded.Subjects[0].LetterGrade)

	ungraded := sheet.Students[1]
	assert.Empty(t, ungraded.Subjects)
}

func TestResultServiceMultiTermReportOmitsEmptyTerms(t *testing.T) {
	scores := &mockResultScores{
		detailsByTerm: map[string][]models.StudentScoreDetail{
			"term1": {{RecordID: "rec1", ClassID: "class1", SubjectID: "sub1", SubjectName: "Mathematics", TotalScore: 65}},
		},
	}
	sessions := &mockSessionReader{sessions: []models.Session{
		{ID: "sess1", Name: "2025/2026", Terms: []models.Term{
			{ID: "term1", Name: "First Term"},
			{ID: "term2", Name: "Second Term"},
		}},
		{ID: "sess0", Name: "2024/2025", Terms: []models.Term{{ID: "term0", Name: "First Term"}}},
	}}
	svc := NewResultService(scores, &mockBandReader{bands: defaultBands()}, &mockEnrollmentLister{}, sessions, nil, nil, zap.NewNop())

	report, err := svc.MultiTermReport(context.Background(), teacherClaims(), "stu1")
	require.NoError(t, err)
	require.Len(t, report.Sessions, 1)
	require.Len(t, report.Sessions[0].Terms, 1)

	term := report.Sessions[0].Terms[0]
	assert.Equal(t, "term1", term.TermID)
	require.Len(t, term.Subjects, 1)
	require.NotNil(t, term.Subjects[0].LetterGrade)
	assert.Equal(t, "C", *term.Subjects[0].LetterGrade)
}
