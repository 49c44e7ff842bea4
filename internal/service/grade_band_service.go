package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolcore/gradebook-api/internal/grading"
	"github.com/schoolcore/gradebook-api/internal/models"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
)

type gradeBandRepo interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.GradeBand, error)
	Replace(ctx context.Context, schoolID string, bands []models.GradeBand) error
}

// ReplaceBandsRequest rewrites the school's grade band set.
type ReplaceBandsRequest struct {
	Bands []grading.BandInput `json:"bands" validate:"required,min=1,dive"`
}

// GradeBandService manages the school's letter grade bands. Bands apply to
// results at read time only, so replacing them never rewrites stored scores.
type GradeBandService struct {
	bands     gradeBandRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeBandService constructs GradeBandService.
func NewGradeBandService(bands gradeBandRepo, validate *validator.Validate, logger *zap.Logger) *GradeBandService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeBandService{bands: bands, validator: validate, logger: logger}
}

// List returns the school's bands in insertion order.
func (s *GradeBandService) List(ctx context.Context, claims models.TenantClaims) ([]models.GradeBand, error) {
	bands, err := s.bands.ListBySchool(ctx, claims.SchoolID)
	if err != nil {
		return nil, internalErr(err, "list grade bands")
	}
	return bands, nil
}

// Replace swaps the school's band set wholesale. Only admins may change
// bands, and overlapping or out-of-range bands are rejected before any write.
func (s *GradeBandService) Replace(ctx context.Context, claims models.TenantClaims, req ReplaceBandsRequest) ([]models.GradeBand, error) {
	if claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may manage grade bands")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid band payload")
	}
	if err := grading.ValidateBands(req.Bands); err != nil {
		return nil, err
	}

	bands := make([]models.GradeBand, len(req.Bands))
	for i, in := range req.Bands {
		bands[i] = models.GradeBand{
			LetterGrade: in.LetterGrade,
			MinScore:    in.MinScore,
			MaxScore:    in.MaxScore,
			Position:    i,
		}
	}
	if err := s.bands.Replace(ctx, claims.SchoolID, bands); err != nil {
		return nil, internalErr(err, "replace grade bands")
	}

	s.logger.Info("grade bands replaced",
		zap.String("school_id", claims.SchoolID),
		zap.Int("bands", len(bands)))
	return s.List(ctx, claims)
}
