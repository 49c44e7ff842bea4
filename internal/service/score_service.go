package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/grading"
	"github.com/schoolcore/gradebook-api/internal/models"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

type scoreRepo interface {
	FindByKey(ctx context.Context, schemeID, studentID, classID string) (*models.ScoreRecord, error)
	Create(ctx context.Context, record *models.ScoreRecord) error
	Update(ctx context.Context, record *models.ScoreRecord) error
	ListForScheme(ctx context.Context, schemeID, classID string) ([]models.ClassScoreRow, error)
}

type schemeReader interface {
	FindByScope(ctx context.Context, scope models.SchemeScope) (*models.GradingScheme, error)
}

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, classID string) (bool, error)
}

type resultInvalidator interface {
	InvalidateClass(ctx context.Context, classID string) error
}

// SubmitScoreRequest records one student's component scores against the
// caller's scheme for a class/subject pair.
type SubmitScoreRequest struct {
	ClassID   string               `json:"class_id" validate:"required"`
	SubjectID string               `json:"subject_id" validate:"required"`
	StudentID string               `json:"student_id" validate:"required"`
	Scores    []grading.EntryInput `json:"scores" validate:"required,dive"`
}

// ScoreService handles single-student score submission and score listings.
type ScoreService struct {
	scores      scoreRepo
	schemes     schemeReader
	enrollments enrollmentChecker
	results     resultInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScoreService constructs ScoreService.
func NewScoreService(scores scoreRepo, schemes schemeReader, enrollments enrollmentChecker, results resultInvalidator, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{
		scores:      scores,
		schemes:     schemes,
		enrollments: enrollments,
		results:     results,
		validator:   validate,
		logger:      logger,
	}
}

// Create records a new score record. The submission must cover the scheme's
// components exactly, the student must be actively enrolled in the class, and
// no record may already exist for the (scheme, student, class) key.
func (s *ScoreService) Create(ctx context.Context, claims models.TenantClaims, req SubmitScoreRequest) (*models.ScoreRecord, error) {
	scheme, validated, err := s.prepare(ctx, claims, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.scores.FindByKey(ctx, scheme.ID, req.StudentID, req.ClassID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a score record already exists for this student")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalErr(err, "check existing score record")
	}

	record := buildRecord(scheme, claims, req, validated)
	if err := s.scores.Create(ctx, record); err != nil {
		return nil, internalErr(err, "create score record")
	}
	s.invalidate(ctx, req.ClassID)

	s.logger.Info("score record created",
		zap.String("record_id", record.ID),
		zap.String("student_id", record.StudentID),
		zap.Float64("total_score", record.TotalScore))
	return record, nil
}

// Update overwrites an existing score record in full. A missing record is
// reported as not found rather than created implicitly.
func (s *ScoreService) Update(ctx context.Context, claims models.TenantClaims, req SubmitScoreRequest) (*models.ScoreRecord, error) {
	scheme, validated, err := s.prepare(ctx, claims, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.scores.FindByKey(ctx, scheme.ID, req.StudentID, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no score record exists for this student")
		}
		return nil, internalErr(err, "load score record")
	}

	record := buildRecord(scheme, claims, req, validated)
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if err := s.scores.Update(ctx, record); err != nil {
		return nil, internalErr(err, "update score record")
	}
	s.invalidate(ctx, req.ClassID)

	s.logger.Info("score record updated",
		zap.String("record_id", record.ID),
		zap.Float64("total_score", record.TotalScore))
	return record, nil
}

// ListForScheme returns every enrolled student in the class beside their
// record for the caller's scheme, ungraded students included.
func (s *ScoreService) ListForScheme(ctx context.Context, claims models.TenantClaims, classID, subjectID string) ([]models.ClassScoreRow, error) {
	scheme, err := s.findScheme(ctx, claims, classID, subjectID)
	if err != nil {
		return nil, err
	}
	rows, err := s.scores.ListForScheme(ctx, scheme.ID, classID)
	if err != nil {
		return nil, internalErr(err, "list scheme scores")
	}
	return rows, nil
}

// prepare resolves the scheme, checks enrollment and validates the submitted
// scores against the scheme's component set.
func (s *ScoreService) prepare(ctx context.Context, claims models.TenantClaims, req SubmitScoreRequest) (*models.GradingScheme, *grading.ValidatedSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}

	scheme, err := s.findScheme(ctx, claims, req.ClassID, req.SubjectID)
	if err != nil {
		return nil, nil, err
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, req.StudentID, req.ClassID)
	if err != nil {
		return nil, nil, internalErr(err, "check enrollment")
	}
	if !enrolled {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student is not actively enrolled in the class")
	}

	validated, err := grading.ValidateSubmission(componentInputs(scheme), req.Scores)
	if err != nil {
		return nil, nil, err
	}
	return scheme, validated, nil
}

func (s *ScoreService) findScheme(ctx context.Context, claims models.TenantClaims, classID, subjectID string) (*models.GradingScheme, error) {
	return findSchemeByScope(ctx, s.schemes, claims, classID, subjectID)
}

// findSchemeByScope resolves the caller's scheme for a class/subject pair,
// mapping a missing scheme to not found.
func findSchemeByScope(ctx context.Context, schemes schemeReader, claims models.TenantClaims, classID, subjectID string) (*models.GradingScheme, error) {
	scheme, err := schemes.FindByScope(ctx, models.SchemeScope{
		SchoolID:  claims.SchoolID,
		ClassID:   classID,
		SubjectID: subjectID,
		TeacherID: claims.UserID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no grading scheme defined for this class and subject")
		}
		return nil, internalErr(err, "load grading scheme")
	}
	return scheme, nil
}

func (s *ScoreService) invalidate(ctx context.Context, classID string) {
	if s.results == nil {
		return
	}
	if err := s.results.InvalidateClass(ctx, classID); err != nil {
		s.logger.Warn("invalidate cached results", zap.String("class_id", classID), zap.Error(err))
	}
}

func componentInputs(scheme *models.GradingScheme) []grading.ComponentInput {
	inputs := make([]grading.ComponentInput, len(scheme.Components))
	for i, c := range scheme.Components {
		inputs[i] = grading.ComponentInput{Name: c.Name, Weight: c.Weight}
	}
	return inputs
}

func buildRecord(scheme *models.GradingScheme, claims models.TenantClaims, req SubmitScoreRequest, validated *grading.ValidatedSubmission) *models.ScoreRecord {
	scores := make([]models.ComponentScore, len(validated.Scores))
	for i, entry := range validated.Scores {
		scores[i] = models.ComponentScore{ComponentName: entry.ComponentName, Score: entry.Score}
	}
	return &models.ScoreRecord{
		SchemeID:        scheme.ID,
		StudentID:       req.StudentID,
		ClassID:         req.ClassID,
		TeacherID:       claims.UserID,
		SchoolID:        claims.SchoolID,
		TotalScore:      validated.TotalScore,
		ComponentScores: scores,
	}
}
