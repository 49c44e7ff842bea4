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

type schemeRepo interface {
	FindByScope(ctx context.Context, scope models.SchemeScope) (*models.GradingScheme, error)
	Exists(ctx context.Context, scope models.SchemeScope) (bool, error)
	Create(ctx context.Context, scheme *models.GradingScheme) error
	Update(ctx context.Context, scheme *models.GradingScheme) error
	Delete(ctx context.Context, id string) error
	ListByClass(ctx context.Context, classID string) ([]models.GradingScheme, error)
}

type schemeScoreChecker interface {
	ExistsForScheme(ctx context.Context, schemeID string) (bool, error)
}

type schemeDirectory interface {
	ClassExists(ctx context.Context, schoolID, classID string) (bool, error)
	SubjectBelongsTo(ctx context.Context, subjectID, classID, teacherID, schoolID string) (bool, error)
	SubjectApproved(ctx context.Context, subjectID string) (bool, error)
	TeacherApproved(ctx context.Context, teacherID, schoolID string) (bool, error)
}

// CreateSchemeRequest defines a new grading scheme for a class/subject pair.
type CreateSchemeRequest struct {
	ClassID    string                   `json:"class_id" validate:"required"`
	SubjectID  string                   `json:"subject_id" validate:"required"`
	Components []grading.ComponentInput `json:"components" validate:"required,dive"`
}

// UpdateSchemeRequest replaces a scheme's component list in full.
type UpdateSchemeRequest struct {
	Components []grading.ComponentInput `json:"components" validate:"required,dive"`
}

// SchemeService orchestrates grading scheme lifecycle: creation with
// directory preconditions, full component replacement and guarded deletion.
type SchemeService struct {
	schemes   schemeRepo
	scores    schemeScoreChecker
	directory schemeDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchemeService constructs SchemeService.
func NewSchemeService(schemes schemeRepo, scores schemeScoreChecker, directory schemeDirectory, validate *validator.Validate, logger *zap.Logger) *SchemeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemeService{
		schemes:   schemes,
		scores:    scores,
		directory: directory,
		validator: validate,
		logger:    logger,
	}
}

// Create registers a grading scheme for the caller's (class, subject) scope.
// The class must belong to the school, the subject must be assigned to the
// teacher in that class, and both the subject and the teacher must be
// approved before any scheme can exist.
func (s *SchemeService) Create(ctx context.Context, claims models.TenantClaims, req CreateSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheme payload")
	}
	if err := grading.ValidateComponents(req.Components); err != nil {
		return nil, err
	}

	scope := models.SchemeScope{
		SchoolID:  claims.SchoolID,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		TeacherID: claims.UserID,
	}
	if err := s.checkScope(ctx, scope); err != nil {
		return nil, err
	}

	exists, err := s.schemes.Exists(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check existing scheme")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a grading scheme already exists for this class and subject")
	}

	scheme := &models.GradingScheme{
		SchoolID:   scope.SchoolID,
		ClassID:    scope.ClassID,
		SubjectID:  scope.SubjectID,
		TeacherID:  scope.TeacherID,
		Components: toComponents(req.Components),
	}
	if err := s.schemes.Create(ctx, scheme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create grading scheme")
	}

	s.logger.Info("grading scheme created",
		zap.String("scheme_id", scheme.ID),
		zap.String("class_id", scheme.ClassID),
		zap.String("subject_id", scheme.SubjectID))
	return scheme, nil
}

// GetByScope returns the caller's scheme for a class/subject pair.
func (s *SchemeService) GetByScope(ctx context.Context, claims models.TenantClaims, classID, subjectID string) (*models.GradingScheme, error) {
	scope := models.SchemeScope{
		SchoolID:  claims.SchoolID,
		ClassID:   classID,
		SubjectID: subjectID,
		TeacherID: claims.UserID,
	}
	scheme, err := s.schemes.FindByScope(ctx, scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading scheme not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load grading scheme")
	}
	return scheme, nil
}

// ListByClass returns every scheme defined for a class, across subjects and
// teachers.
func (s *SchemeService) ListByClass(ctx context.Context, claims models.TenantClaims, classID string) ([]models.GradingScheme, error) {
	classOK, err := s.directory.ClassExists(ctx, claims.SchoolID, classID)
	if err != nil {
		return nil, internalErr(err, "check class")
	}
	if !classOK {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found in school")
	}
	schemes, err := s.schemes.ListByClass(ctx, classID)
	if err != nil {
		return nil, internalErr(err, "list grading schemes")
	}
	return schemes, nil
}

// Update replaces the scheme's components wholesale. Scores already recorded
// against the scheme are left untouched; they are revalidated only when
// resubmitted.
func (s *SchemeService) Update(ctx context.Context, claims models.TenantClaims, classID, subjectID string, req UpdateSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheme payload")
	}
	if err := grading.ValidateComponents(req.Components); err != nil {
		return nil, err
	}

	scheme, err := s.GetByScope(ctx, claims, classID, subjectID)
	if err != nil {
		return nil, err
	}
	scheme.Components = toComponents(req.Components)
	if err := s.schemes.Update(ctx, scheme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update grading scheme")
	}

	s.logger.Info("grading scheme updated", zap.String("scheme_id", scheme.ID))
	return scheme, nil
}

// Delete removes the caller's scheme. Deletion is refused while any score
// record still references the scheme.
func (s *SchemeService) Delete(ctx context.Context, claims models.TenantClaims, classID, subjectID string) error {
	scheme, err := s.GetByScope(ctx, claims, classID, subjectID)
	if err != nil {
		return err
	}
	referenced, err := s.scores.ExistsForScheme(ctx, scheme.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check scheme references")
	}
	if referenced {
		return appErrors.Clone(appErrors.ErrConflict, "scheme has recorded scores and cannot be deleted")
	}
	if err := s.schemes.Delete(ctx, scheme.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete grading scheme")
	}

	s.logger.Info("grading scheme deleted", zap.String("scheme_id", scheme.ID))
	return nil
}

func (s *SchemeService) checkScope(ctx context.Context, scope models.SchemeScope) error {
	classOK, err := s.directory.ClassExists(ctx, scope.SchoolID, scope.ClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check class")
	}
	if !classOK {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found in school")
	}

	assigned, err := s.directory.SubjectBelongsTo(ctx, scope.SubjectID, scope.ClassID, scope.TeacherID, scope.SchoolID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check subject assignment")
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to this teacher in the class")
	}

	subjectOK, err := s.directory.SubjectApproved(ctx, scope.SubjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check subject approval")
	}
	if !subjectOK {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "subject is awaiting approval")
	}

	teacherOK, err := s.directory.TeacherApproved(ctx, scope.TeacherID, scope.SchoolID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check teacher approval")
	}
	if !teacherOK {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher is awaiting approval")
	}
	return nil
}

func toComponents(inputs []grading.ComponentInput) []models.SchemeComponent {
	components := make([]models.SchemeComponent, len(inputs))
	for i, in := range inputs {
		components[i] = models.SchemeComponent{Name: in.Name, Weight: in.Weight, Position: i}
	}
	return components
}

// internalErr wraps storage failures into the shared internal error shape.
func internalErr(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
