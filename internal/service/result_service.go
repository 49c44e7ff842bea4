package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/grading"
	"github.com/schoolcore/gradebook-api/internal/models"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

type resultScoreReader interface {
	ListByStudentClass(ctx context.Context, studentID, classID string) ([]models.StudentScoreDetail, error)
	ListForStudentTerm(ctx context.Context, studentID, schoolID, termID string) ([]models.StudentScoreDetail, error)
	ListClassSubjectScores(ctx context.Context, classID string) (map[string][]models.ClassResultCell, error)
	SubjectStats(ctx context.Context, classID, subjectID string) (*models.ClassSubjectStats, error)
}

type bandReader interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.GradeBand, error)
}

type enrollmentLister interface {
	ListEnrolled(ctx context.Context, classID, sessionID, termID string) ([]models.EnrolledStudent, error)
}

type sessionReader interface {
	ListWithTerms(ctx context.Context, schoolID string) ([]models.Session, error)
}

type statsCache interface {
	GetStats(ctx context.Context, classID, subjectID string) (*models.ClassSubjectStats, error)
	SetStats(ctx context.Context, classID, subjectID string, stats *models.ClassSubjectStats) error
}

// ResultService aggregates recorded scores into reports: a student's own
// scores, class-wide result sheets and cumulative multi-term reports. Letter
// grades are resolved at read time against the school's current bands.
type ResultService struct {
	scores      resultScoreReader
	bands       bandReader
	enrollments enrollmentLister
	sessions    sessionReader
	cache       statsCache
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewResultService constructs ResultService.
func NewResultService(scores resultScoreReader, bands bandReader, enrollments enrollmentLister, sessions sessionReader, cache statsCache, metrics *MetricsService, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{
		scores:      scores,
		bands:       bands,
		enrollments: enrollments,
		sessions:    sessions,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// StudentReport returns the student's scores across subjects in a class,
// with component breakdowns, resolved letter grades and class averages.
// Students may only read their own report.
func (s *ResultService) StudentReport(ctx context.Context, claims models.TenantClaims, studentID, classID string) (*models.StudentScoreReport, error) {
	if claims.Role == models.RoleStudent && claims.UserID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own scores")
	}

	details, err := s.scores.ListByStudentClass(ctx, studentID, classID)
	if err != nil {
		return nil, internalErr(err, "list student scores")
	}
	bands, err := s.loadBands(ctx, claims.SchoolID)
	if err != nil {
		return nil, err
	}

	subjects := make([]models.SubjectScore, 0, len(details))
	for _, detail := range details {
		stats := s.subjectStats(ctx, classID, detail.SubjectID)
		subject := models.SubjectScore{
			SubjectID:   detail.SubjectID,
			SubjectName: detail.SubjectName,
			TotalScore:  detail.TotalScore,
			LetterGrade: grading.ResolveLetter(bands, detail.TotalScore),
			Components:  detail.Components,
		}
		if stats != nil {
			subject.ClassAverage = stats.Average
		}
		subjects = append(subjects, subject)
	}

	return &models.StudentScoreReport{StudentID: studentID, ClassID: classID, Subjects: subjects}, nil
}

// ClassResults builds the class result sheet for the caller's active
// session/term: one row per enrolled student, one cell per graded subject.
func (s *ResultService) ClassResults(ctx context.Context, claims models.TenantClaims, classID string) (*models.ClassResultSheet, error) {
	students, err := s.enrollments.ListEnrolled(ctx, classID, claims.ActiveSessionID, claims.ActiveTermID)
	if err != nil {
		return nil, internalErr(err, "list enrolled students")
	}
	cellsByStudent, err := s.scores.ListClassSubjectScores(ctx, classID)
	if err != nil {
		return nil, internalErr(err, "list class scores")
	}
	bands, err := s.loadBands(ctx, claims.SchoolID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.StudentResultRow, 0, len(students))
	for _, student := range students {
		cells := cellsByStudent[student.StudentID]
		for i := range cells {
			if cells[i].TotalScore != nil {
				cells[i].LetterGrade = grading.ResolveLetter(bands, *cells[i].TotalScore)
			}
		}
		rows = append(rows, models.StudentResultRow{
			StudentID:   student.StudentID,
			StudentName: student.StudentName,
			Subjects:    cells,
		})
	}

	return &models.ClassResultSheet{
		ClassID:   classID,
		SessionID: claims.ActiveSessionID,
		TermID:    claims.ActiveTermID,
		Students:  rows,
	}, nil
}

// MultiTermReport assembles the student's cumulative results across every
// session and term of the school. Terms without any record are omitted.
func (s *ResultService) MultiTermReport(ctx context.Context, claims models.TenantClaims, studentID string) (*models.MultiTermReport, error) {
	if claims.Role == models.RoleStudent && claims.UserID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own results")
	}

	sessions, err := s.sessions.ListWithTerms(ctx, claims.SchoolID)
	if err != nil {
		return nil, internalErr(err, "list sessions")
	}
	bands, err := s.loadBands(ctx, claims.SchoolID)
	if err != nil {
		return nil, err
	}

	report := &models.MultiTermReport{StudentID: studentID, SchoolID: claims.SchoolID}
	for _, session := range sessions {
		sessionResult := models.SessionResult{SessionID: session.ID, SessionName: session.Name}
		for _, term := range session.Terms {
			details, err := s.scores.ListForStudentTerm(ctx, studentID, claims.SchoolID, term.ID)
			if err != nil {
				return nil, internalErr(err, "list term scores")
			}
			if len(details) == 0 {
				continue
			}
			termResult := models.TermResult{TermID: term.ID, TermName: term.Name}
			for _, detail := range details {
				subject := models.TermSubjectResult{
					SubjectID:   detail.SubjectID,
					SubjectName: detail.SubjectName,
					TotalScore:  detail.TotalScore,
					LetterGrade: grading.ResolveLetter(bands, detail.TotalScore),
				}
				if stats := s.subjectStats(ctx, detail.ClassID, detail.SubjectID); stats != nil {
					subject.ClassAverage = stats.Average
					subject.LowestScore = stats.Lowest
					subject.HighestScore = stats.Highest
				}
				termResult.Subjects = append(termResult.Subjects, subject)
			}
			sessionResult.Terms = append(sessionResult.Terms, termResult)
		}
		if len(sessionResult.Terms) > 0 {
			report.Sessions = append(report.Sessions, sessionResult)
		}
	}
	return report, nil
}

// SubjectStatistics returns average, lowest and highest totals across graded
// students for a subject in a class. Results are cached per class/subject.
func (s *ResultService) SubjectStatistics(ctx context.Context, classID, subjectID string) (*models.ClassSubjectStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetStats(ctx, classID, subjectID); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if errors.Is(err, appErrors.ErrCacheMiss) {
			s.metrics.RecordCacheOperation(false)
		} else {
			s.logger.Warn("read cached stats", zap.String("class_id", classID), zap.Error(err))
		}
	}

	start := time.Now()
	stats, err := s.scores.SubjectStats(ctx, classID, subjectID)
	s.metrics.ObserveDBQuery("subject_stats", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			stats = &models.ClassSubjectStats{SubjectID: subjectID}
		} else {
			return nil, internalErr(err, "aggregate subject stats")
		}
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, classID, subjectID, stats); err != nil {
			s.logger.Warn("cache subject stats", zap.String("class_id", classID), zap.Error(err))
		}
	}
	return stats, nil
}

// subjectStats is the lenient variant used while assembling reports: a stats
// failure degrades the report instead of failing it.
func (s *ResultService) subjectStats(ctx context.Context, classID, subjectID string) *models.ClassSubjectStats {
	stats, err := s.SubjectStatistics(ctx, classID, subjectID)
	if err != nil {
		s.logger.Warn("subject stats unavailable",
			zap.String("class_id", classID),
			zap.String("subject_id", subjectID),
			zap.Error(err))
		return nil
	}
	return stats
}

func (s *ResultService) loadBands(ctx context.Context, schoolID string) ([]models.GradeBand, error) {
	bands, err := s.bands.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, internalErr(err, "list grade bands")
	}
	return bands, nil
}
