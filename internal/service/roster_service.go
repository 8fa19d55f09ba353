package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

type rosterCoachRepository interface {
	List(ctx context.Context) ([]models.Coach, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, coach *models.Coach) error
	UpdatePreferences(ctx context.Context, exec sqlx.ExtContext, id string, prefs models.CoachPreferences) error
}

type rosterStudentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, students []models.Student) error
	Delete(ctx context.Context, id string) error
}

// RosterService imports and lists coaches and students.
type RosterService struct {
	coaches   rosterCoachRepository
	students  rosterStudentRepository
	tx        txProvider
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService builds the service.
func NewRosterService(coaches rosterCoachRepository, students rosterStudentRepository, tx txProvider, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{coaches: coaches, students: students, tx: tx, cache: cache, validator: validate, logger: logger}
}

// Import upserts the given coaches and students in one transaction. Every
// student must reference a coach that is stored or part of the same import.
func (s *RosterService) Import(ctx context.Context, req dto.RosterImportRequest) (resp *dto.RosterImportResponse, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid roster payload")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	existing, err := s.coaches.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coaches")
	}
	known := make(map[string]bool, len(existing)+len(req.Coaches))
	for _, coach := range existing {
		known[coach.ID] = true
	}

	coaches := make([]models.Coach, 0, len(req.Coaches))
	prefs := make(map[string]models.CoachPreferences)
	seen := make(map[string]bool, len(req.Coaches))
	for _, item := range req.Coaches {
		if seen[item.ID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("coach %s listed twice", item.ID))
		}
		seen[item.ID] = true
		known[item.ID] = true
		coaches = append(coaches, models.Coach{ID: item.ID, Name: strings.TrimSpace(item.Name)})
		if item.Preferences != nil {
			parsed, err := parsePreferences(*item.Preferences)
			if err != nil {
				return nil, err
			}
			prefs[item.ID] = parsed
		}
	}

	students := make([]models.Student, 0, len(req.Students))
	for _, item := range req.Students {
		if !known[item.CoachID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s references unknown coach %s", item.Name, item.CoachID))
		}
		student := models.Student{
			ID:             item.ID,
			Name:           strings.TrimSpace(item.Name),
			CoachID:        item.CoachID,
			LessonsPerWeek: item.LessonsPerWeek,
		}
		for _, raw := range item.UnavailableSlots {
			cell, err := parseCell(raw.Day, raw.Slot)
			if err != nil {
				return nil, err
			}
			if !student.UnavailableSlots.Contains(cell) {
				student.UnavailableSlots = append(student.UnavailableSlots, cell)
			}
		}
		students = append(students, student)
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range coaches {
		if err = s.coaches.Upsert(ctx, tx, &coaches[i]); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert coach")
			return nil, err
		}
		if p, ok := prefs[coaches[i].ID]; ok {
			if err = s.coaches.UpdatePreferences(ctx, tx, coaches[i].ID, p); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store coach preferences")
				return nil, err
			}
		}
	}
	if err = s.students.UpsertBatch(ctx, tx, students); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert students")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit roster import")
		return nil, err
	}

	s.cache.InvalidateStats(ctx)
	s.logger.Info("roster imported", zap.Int("coaches", len(coaches)), zap.Int("students", len(students)))
	return &dto.RosterImportResponse{Coaches: len(coaches), Students: len(students)}, nil
}

// List returns coaches and the students matching the query.
func (s *RosterService) List(ctx context.Context, query dto.RosterQuery) (*dto.RosterResponse, error) {
	coaches, err := s.coaches.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coaches")
	}
	students, err := s.students.List(ctx, models.StudentFilter{CoachID: query.CoachID, Search: strings.TrimSpace(query.Search)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if coaches == nil {
		coaches = []models.Coach{}
	}
	if students == nil {
		students = []models.Student{}
	}
	return &dto.RosterResponse{Coaches: coaches, Students: students}, nil
}

// DeleteStudent removes a student from the roster.
func (s *RosterService) DeleteStudent(ctx context.Context, id string) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.cache.InvalidateStats(ctx)
	return nil
}
