package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/gradebook-api/internal/models"
)

func TestScoreRepositoryListForScheme(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	now := time.Now()
	total := 90.0
	recordID := "rec-1"
	rows := sqlmock.NewRows([]string{"student_id", "student_name", "record_id", "total_score", "updated_at"}).
		AddRow("stu-1", "Ada Obi", &recordID, &total, &now).
		AddRow("stu-2", "Ben Eze", nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.student_id, st.full_name AS student_name, sr.id AS record_id, sr.total_score, sr.updated_at")).
		WithArgs("sch-1", "class-1", models.EnrollmentStatusActive).
		WillReturnRows(rows)

	result, err := repo.ListForScheme(context.Background(), "sch-1", "class-1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result[0].TotalScore)
	require.Nil(t, result[1].TotalScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositorySubjectStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "average", "lowest", "highest", "graded_count"}).
		AddRow("sub-1", 70.0, 60.0, 80.0, 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT gs.subject_id, AVG(sr.total_score) AS average, MIN(sr.total_score) AS lowest, MAX(sr.total_score) AS highest, COUNT(sr.id) AS graded_count")).
		WithArgs("class-1", "sub-1").
		WillReturnRows(rows)

	stats, err := repo.SubjectStats(context.Background(), "class-1", "sub-1")
	require.NoError(t, err)
	require.NotNil(t, stats.Average)
	require.Equal(t, 70.0, *stats.Average)
	require.Equal(t, 60.0, *stats.Lowest)
	require.Equal(t, 80.0, *stats.Highest)
	require.Equal(t, 3, stats.GradedCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryApplyBatchCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	records := []models.ScoreRecord{
		{SchemeID: "sch-1", StudentID: "stu-1", ClassID: "class-1", TeacherID: "teach-1", SchoolID: "school-1", TotalScore: 90,
			ComponentScores: []models.ComponentScore{{ComponentName: "CA", Score: 25}, {ComponentName: "Exam", Score: 65}}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id FROM score_records")).
		WithArgs("sch-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO score_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM component_scores")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO component_scores")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO component_scores")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	conflicts, err := repo.ApplyBatch(context.Background(), "sch-1", records, false)
	require.NoError(t, err)
	require.Empty(t, conflicts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryApplyBatchCreateRejectsExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	records := []models.ScoreRecord{
		{SchemeID: "sch-1", StudentID: "stu-1", ClassID: "class-1", TotalScore: 90},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id FROM score_records")).
		WithArgs("sch-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id"}).AddRow("rec-1", "stu-1"))
	mock.ExpectRollback()

	conflicts, err := repo.ApplyBatch(context.Background(), "sch-1", records, false)
	require.ErrorIs(t, err, ErrBatchExisting)
	require.Equal(t, []string{"stu-1"}, conflicts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryApplyBatchUpdateRejectsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	records := []models.ScoreRecord{
		{SchemeID: "sch-1", StudentID: "stu-1", ClassID: "class-1", TotalScore: 90},
		{SchemeID: "sch-1", StudentID: "stu-2", ClassID: "class-1", TotalScore: 80},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id FROM score_records")).
		WithArgs("sch-1", "stu-1", "stu-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id"}).AddRow("rec-1", "stu-1"))
	mock.ExpectRollback()

	conflicts, err := repo.ApplyBatch(context.Background(), "sch-1", records, true)
	require.ErrorIs(t, err, ErrBatchMissing)
	require.Equal(t, []string{"stu-2"}, conflicts)
	require.NoError(t, mock.ExpectationsWereMet())
}
