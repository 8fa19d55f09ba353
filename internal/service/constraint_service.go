package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/scheduler"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

type constraintRepository interface {
	List(ctx context.Context) ([]models.Constraint, error)
	FindByID(ctx context.Context, id string) (*models.Constraint, error)
	Update(ctx context.Context, constraint *models.Constraint) error
	SeedDefaults(ctx context.Context, constraints []models.Constraint) error
}

// ConstraintService manages the toggleable scheduling rules.
type ConstraintService struct {
	repo      constraintRepository
	catalog   []models.Constraint
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConstraintService builds the service. An empty catalog falls back to the embedded defaults.
func NewConstraintService(repo constraintRepository, catalog []models.Constraint, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ConstraintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(catalog) == 0 {
		catalog = scheduler.DefaultConstraints()
	}
	return &ConstraintService{repo: repo, catalog: catalog, cache: cache, validator: validate, logger: logger}
}

// Seed stores catalogue entries missing from storage.
func (s *ConstraintService) Seed(ctx context.Context) error {
	if err := s.repo.SeedDefaults(ctx, s.catalog); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed constraints")
	}
	s.logger.Info("constraint catalogue seeded", zap.Int("count", len(s.catalog)))
	return nil
}

// List returns the stored constraints, seeding the catalogue when storage is empty.
func (s *ConstraintService) List(ctx context.Context) ([]models.Constraint, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list constraints")
	}
	if len(list) > 0 {
		return list, nil
	}
	if err := s.Seed(ctx); err != nil {
		return nil, err
	}
	list, err = s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list constraints")
	}
	return list, nil
}

// Patch toggles, re-ranks or re-describes a constraint.
func (s *ConstraintService) Patch(ctx context.Context, id string, req dto.ConstraintPatchRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid constraint payload")
	}
	if req.Enabled == nil && req.Priority == nil && req.Description == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	constraint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if constraint.Value == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidConstraint, "stored value is malformed; replace it with PUT")
	}
	if req.Enabled != nil {
		constraint.Enabled = *req.Enabled
	}
	if req.Priority != nil {
		constraint.Priority = *req.Priority
	}
	if req.Description != nil {
		constraint.Description = *req.Description
	}
	return s.save(ctx, constraint)
}

// Replace swaps a constraint's payload and flags. The kind is fixed per id.
func (s *ConstraintService) Replace(ctx context.Context, id string, req dto.ConstraintReplaceRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid constraint payload")
	}
	constraint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	value, err := models.DecodeConstraintValue(constraint.Kind, req.Value)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidConstraint.Code, appErrors.ErrInvalidConstraint.Status, err.Error())
	}
	constraint.Value = value
	constraint.Enabled = req.Enabled
	constraint.Priority = req.Priority
	if req.Description != "" {
		constraint.Description = req.Description
	}
	return s.save(ctx, constraint)
}

func (s *ConstraintService) find(ctx context.Context, id string) (*models.Constraint, error) {
	constraint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "constraint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraint")
	}
	return constraint, nil
}

func (s *ConstraintService) save(ctx context.Context, constraint *models.Constraint) (*models.Constraint, error) {
	if err := s.repo.Update(ctx, constraint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "constraint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update constraint")
	}
	s.cache.InvalidateStats(ctx)
	s.logger.Info("constraint updated",
		zap.String("constraint_id", constraint.ID),
		zap.String("kind", string(constraint.Kind)),
		zap.Bool("enabled", constraint.Enabled),
		zap.Int("priority", constraint.Priority),
	)
	return constraint, nil
}
