package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/grading"
	"github.com/schoolcore/gradebook-api/internal/models"
	"github.com/schoolcore/gradebook-api/internal/repository"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

type batchScoreRepo interface {
	ApplyBatch(ctx context.Context, schemeID string, records []models.ScoreRecord, replace bool) ([]string, error)
}

// BatchEntry is one student's submission inside a batch.
type BatchEntry struct {
	StudentID string               `json:"student_id" validate:"required"`
	Scores    []grading.EntryInput `json:"scores" validate:"required,dive"`
}

// BatchScoreRequest submits scores for many students of one class/subject in
// a single all-or-nothing transaction.
type BatchScoreRequest struct {
	ClassID   string       `json:"class_id" validate:"required"`
	SubjectID string       `json:"subject_id" validate:"required"`
	Entries   []BatchEntry `json:"entries" validate:"required,min=1,dive"`
}

// BatchScoreResult summarises an applied batch.
type BatchScoreResult struct {
	SchemeID string `json:"scheme_id"`
	Applied  int    `json:"applied"`
}

// ScoreBatchService coordinates bulk score submission. Every entry is
// validated up front; a single failing entry rejects the whole batch with the
// full failure list, and nothing is written.
type ScoreBatchService struct {
	scores      batchScoreRepo
	schemes     schemeReader
	enrollments enrollmentChecker
	results     resultInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScoreBatchService constructs ScoreBatchService.
func NewScoreBatchService(scores batchScoreRepo, schemes schemeReader, enrollments enrollmentChecker, results resultInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScoreBatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreBatchService{
		scores:      scores,
		schemes:     schemes,
		enrollments: enrollments,
		results:     results,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Create records a batch of new score records. Replace semantics are the
// mirror image: Update rewrites records that must already exist.
func (s *ScoreBatchService) Create(ctx context.Context, claims models.TenantClaims, req BatchScoreRequest) (*BatchScoreResult, error) {
	return s.apply(ctx, claims, req, false)
}

// Update rewrites a batch of existing score records.
func (s *ScoreBatchService) Update(ctx context.Context, claims models.TenantClaims, req BatchScoreRequest) (*BatchScoreResult, error) {
	return s.apply(ctx, claims, req, true)
}

func (s *ScoreBatchService) apply(ctx context.Context, claims models.TenantClaims, req BatchScoreRequest, replace bool) (*BatchScoreResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	scheme, err := s.findScheme(ctx, claims, req.ClassID, req.SubjectID)
	if err != nil {
		return nil, err
	}

	records, failures := s.validateEntries(ctx, scheme, claims, req)
	if len(failures) > 0 {
		return nil, appErrors.NewBatch("batch rejected; no scores were recorded", failures)
	}

	start := time.Now()
	conflicts, err := s.scores.ApplyBatch(ctx, scheme.ID, records, replace)
	s.metrics.ObserveDBQuery("score_batch_apply", time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBatchExisting):
			return nil, appErrors.NewBatch("batch rejected; no scores were recorded", conflictFailures(conflicts, "a score record already exists for this student"))
		case errors.Is(err, repository.ErrBatchMissing):
			return nil, appErrors.NewBatch("batch rejected; no scores were recorded", conflictFailures(conflicts, "no score record exists for this student"))
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "apply score batch")
		}
	}
	s.metrics.ObserveBatch(len(records))
	s.invalidateClass(ctx, req.ClassID)

	s.logger.Info("score batch applied",
		zap.String("scheme_id", scheme.ID),
		zap.Int("records", len(records)),
		zap.Bool("replace", replace))
	return &BatchScoreResult{SchemeID: scheme.ID, Applied: len(records)}, nil
}

// validateEntries runs the full per-entry validation pass before anything is
// written, collecting every failure instead of stopping at the first.
func (s *ScoreBatchService) validateEntries(ctx context.Context, scheme *models.GradingScheme, claims models.TenantClaims, req BatchScoreRequest) ([]models.ScoreRecord, []appErrors.EntryFailure) {
	components := componentInputs(scheme)
	seen := make(map[string]struct{}, len(req.Entries))
	records := make([]models.ScoreRecord, 0, len(req.Entries))
	var failures []appErrors.EntryFailure

	for _, entry := range req.Entries {
		if _, dup := seen[entry.StudentID]; dup {
			failures = append(failures, appErrors.EntryFailure{StudentID: entry.StudentID, Reason: "student appears more than once in the batch"})
			continue
		}
		seen[entry.StudentID] = struct{}{}

		enrolled, err := s.enrollments.IsEnrolled(ctx, entry.StudentID, req.ClassID)
		if err != nil {
			failures = append(failures, appErrors.EntryFailure{StudentID: entry.StudentID, Reason: "enrollment lookup failed"})
			continue
		}
		if !enrolled {
			failures = append(failures, appErrors.EntryFailure{StudentID: entry.StudentID, Reason: "student is not actively enrolled in the class"})
			continue
		}

		validated, err := grading.ValidateSubmission(components, entry.Scores)
		if err != nil {
			failures = append(failures, appErrors.EntryFailure{StudentID: entry.StudentID, Reason: failureReason(err)})
			continue
		}

		scores := make([]models.ComponentScore, len(validated.Scores))
		for i, score := range validated.Scores {
			scores[i] = models.ComponentScore{ComponentName: score.ComponentName, Score: score.Score}
		}
		records = append(records, models.ScoreRecord{
			SchemeID:        scheme.ID,
			StudentID:       entry.StudentID,
			ClassID:         req.ClassID,
			TeacherID:       claims.UserID,
			SchoolID:        claims.SchoolID,
			TotalScore:      validated.TotalScore,
			ComponentScores: scores,
		})
	}
	return records, failures
}

func (s *ScoreBatchService) findScheme(ctx context.Context, claims models.TenantClaims, classID, subjectID string) (*models.GradingScheme, error) {
	return findSchemeByScope(ctx, s.schemes, claims, classID, subjectID)
}

func (s *ScoreBatchService) invalidateClass(ctx context.Context, classID string) {
	if s.results == nil {
		return
	}
	if err := s.results.InvalidateClass(ctx, classID); err != nil {
		s.logger.Warn("invalidate cached results", zap.String("class_id", classID), zap.Error(err))
	}
}

func conflictFailures(studentIDs []string, reason string) []appErrors.EntryFailure {
	failures := make([]appErrors.EntryFailure, len(studentIDs))
	for i, id := range studentIDs {
		failures[i] = appErrors.EntryFailure{StudentID: id, Reason: reason}
	}
	return failures
}

func failureReason(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
