package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

type coachPreferenceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Coach, error)
	UpdatePreferences(ctx context.Context, exec sqlx.ExtContext, id string, prefs models.CoachPreferences) error
}

// CoachPreferenceService reads and replaces coach scheduling preferences.
type CoachPreferenceService struct {
	coaches   coachPreferenceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCoachPreferenceService builds the service.
func NewCoachPreferenceService(coaches coachPreferenceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CoachPreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachPreferenceService{coaches: coaches, cache: cache, validator: validate, logger: logger}
}

// Get returns the stored preferences with the daily cap normalised.
func (s *CoachPreferenceService) Get(ctx context.Context, coachID string) (*models.CoachPreferences, error) {
	coach, err := s.find(ctx, coachID)
	if err != nil {
		return nil, err
	}
	prefs := coach.Preferences.Clone()
	prefs.MaxSessionsPerDay = prefs.DailyCap()
	return &prefs, nil
}

// Update replaces a coach's preferences.
func (s *CoachPreferenceService) Update(ctx context.Context, coachID string, req dto.CoachPreferencesRequest) (*models.CoachPreferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid preference payload")
	}
	prefs, err := parsePreferences(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, coachID); err != nil {
		return nil, err
	}
	if err := s.coaches.UpdatePreferences(ctx, nil, coachID, prefs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coach not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update coach preferences")
	}
	s.cache.InvalidateStats(ctx)
	s.logger.Info("coach preferences updated", zap.String("coach_id", coachID), zap.Int("max_sessions_per_day", prefs.MaxSessionsPerDay))
	return &prefs, nil
}

func (s *CoachPreferenceService) find(ctx context.Context, coachID string) (*models.Coach, error) {
	if coachID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "coach id is required")
	}
	coach, err := s.coaches.FindByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coach not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coach")
	}
	return coach, nil
}

func parsePreferences(req dto.CoachPreferencesRequest) (models.CoachPreferences, error) {
	prefs := models.CoachPreferences{MaxSessionsPerDay: req.MaxSessionsPerDay}
	var err error
	if prefs.PreferredSlots, err = parseSlots(req.PreferredSlots); err != nil {
		return prefs, err
	}
	if prefs.AvoidSlots, err = parseSlots(req.AvoidSlots); err != nil {
		return prefs, err
	}
	if prefs.PreferredDays, err = parseDays(req.PreferredDays); err != nil {
		return prefs, err
	}
	if prefs.AvoidDays, err = parseDays(req.AvoidDays); err != nil {
		return prefs, err
	}
	return prefs, nil
}

func parseSlots(raw []string) ([]models.Slot, error) {
	slots := make([]models.Slot, 0, len(raw))
	for _, item := range raw {
		slot, ok := models.ParseSlot(item)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown slot %q", item))
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func parseDays(raw []string) ([]models.Day, error) {
	days := make([]models.Day, 0, len(raw))
	for _, item := range raw {
		day, ok := models.ParseDay(item)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", item))
		}
		days = append(days, day)
	}
	return days, nil
}

func parseCell(day, slot string) (models.Cell, error) {
	d, ok := models.ParseDay(day)
	if !ok {
		return models.Cell{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", day))
	}
	sl, ok := models.ParseSlot(slot)
	if !ok {
		return models.Cell{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown slot %q", slot))
	}
	return models.Cell{Day: d, Slot: sl}, nil
}
