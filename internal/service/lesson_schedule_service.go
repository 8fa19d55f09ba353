package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/scheduler"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

const scheduleAlgorithm = "greedy_multipass_v1"

type lessonScheduleRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, schedule *models.LessonSchedule) error
	ListByTerm(ctx context.Context, termID string) ([]models.LessonSchedule, error)
	FindByID(ctx context.Context, id string) (*models.LessonSchedule, error)
	Latest(ctx context.Context, termID string) (*models.LessonSchedule, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.LessonScheduleStatus, meta types.JSONText) error
	Delete(ctx context.Context, id string) error
}

type scheduleEntryRepository interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, scheduleID string, entries []models.ScheduleEntry) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleEntry, error)
	ListLocked(ctx context.Context, scheduleID string) ([]models.ScheduleEntry, error)
	SetLocked(ctx context.Context, scheduleID, entryID string, locked bool) error
}

type coachLister interface {
	List(ctx context.Context) ([]models.Coach, error)
}

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

type constraintLister interface {
	List(ctx context.Context) ([]models.Constraint, error)
}

type runLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// LessonScheduleConfig governs scheduling runs.
type LessonScheduleConfig struct {
	Passes  int
	Seed    int64
	Weights scheduler.Weights
	LockTTL time.Duration
}

// LessonScheduleService runs the assignment engine and persists versioned schedules.
type LessonScheduleService struct {
	schedules   lessonScheduleRepository
	entries     scheduleEntryRepository
	coaches     coachLister
	students    studentLister
	constraints constraintLister
	locks       runLocker
	tx          txProvider
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         LessonScheduleConfig
}

// NewLessonScheduleService wires scheduling dependencies.
func NewLessonScheduleService(
	schedules lessonScheduleRepository,
	entries scheduleEntryRepository,
	coaches coachLister,
	students studentLister,
	constraints constraintLister,
	locks runLocker,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg LessonScheduleConfig,
) *LessonScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Passes <= 0 {
		cfg.Passes = scheduler.DefaultPasses
	}
	if cfg.Weights == (scheduler.Weights{}) {
		cfg.Weights = scheduler.DefaultWeights()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &LessonScheduleService{
		schedules:   schedules,
		entries:     entries,
		coaches:     coaches,
		students:    students,
		constraints: constraints,
		locks:       locks,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

func runLockKey(termID string) string {
	return "lesson-schedule:run:" + termID
}

// Generate runs the engine for a term and stores the result as a new version.
func (s *LessonScheduleService) Generate(ctx context.Context, req dto.GenerateLessonScheduleRequest) (*dto.GenerateLessonScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid schedule generation payload")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	key := runLockKey(req.TermID)
	token, acquired, err := s.locks.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		s.metrics.ObserveScheduleRun(RunOutcomeError, 0, 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire run lock")
	}
	if !acquired {
		s.metrics.ObserveScheduleRun(RunOutcomeInProgress, 0, 0, 0)
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, fmt.Sprintf("a scheduling run for term %s is already in progress", req.TermID))
	}
	defer func() {
		if releaseErr := s.locks.Release(context.Background(), key, token); releaseErr != nil {
			s.logger.Warn("failed to release run lock", zap.String("term_id", req.TermID), zap.Error(releaseErr))
		}
	}()

	in, err := s.loadInput(ctx)
	if err != nil {
		s.metrics.ObserveScheduleRun(RunOutcomeError, 0, 0, 0)
		return nil, err
	}
	if len(in.Students) == 0 {
		s.metrics.ObserveScheduleRun(RunOutcomeEmpty, 0, 0, 0)
		return nil, nothingToSchedule()
	}
	if req.KeepLocked {
		locked, err := s.lockedEntries(ctx, req.TermID)
		if err != nil {
			s.metrics.ObserveScheduleRun(RunOutcomeError, 0, 0, 0)
			return nil, err
		}
		in.Locked = locked
	}

	passes := s.cfg.Passes
	if req.Passes > 0 {
		passes = req.Passes
	}
	seed := s.cfg.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	engine := scheduler.NewEngine(scheduler.Options{
		Passes:  passes,
		Seed:    seed,
		Weights: s.cfg.Weights,
		Logger:  s.logger.With(zap.String("term_id", req.TermID)),
	})

	started := time.Now()
	result, err := engine.Schedule(in)
	elapsed := time.Since(started)
	if err != nil {
		if errors.Is(err, scheduler.ErrNothingToSchedule) {
			s.metrics.ObserveScheduleRun(RunOutcomeEmpty, elapsed, 0, 0)
			return nil, nothingToSchedule()
		}
		s.metrics.ObserveScheduleRun(RunOutcomeError, elapsed, 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "scheduling run failed")
	}

	stats := scheduler.Report(result.Entries, in.Students, in.Coaches, in.Constraints...)
	record, err := s.persist(ctx, req.TermID, passes, result, stats)
	if err != nil {
		s.metrics.ObserveScheduleRun(RunOutcomeError, elapsed, 0, 0)
		return nil, err
	}

	s.metrics.ObserveScheduleRun(RunOutcomeSuccess, elapsed, len(result.Entries), len(result.Unscheduled))
	s.cache.StoreStats(ctx, record.ID, stats)

	s.logger.Info("lesson schedule generated",
		zap.String("schedule_id", record.ID),
		zap.String("term_id", record.TermID),
		zap.Int("version", record.Version),
		zap.Int64("seed", result.Seed),
		zap.Int("lessons", len(result.Entries)),
		zap.Int("unscheduled", len(result.Unscheduled)),
		zap.Duration("duration", elapsed),
	)

	return &dto.GenerateLessonScheduleResponse{
		Schedule:       *record,
		Entries:        result.Entries,
		Unscheduled:    result.Unscheduled,
		RejectedLocked: result.RejectedLocked,
		PassProgress:   result.PassProgress,
		Stats:          stats,
	}, nil
}

func (s *LessonScheduleService) persist(ctx context.Context, termID string, passes int, result *scheduler.Result, stats models.ScheduleStats) (record *models.LessonSchedule, err error) {
	meta, marshalErr := json.Marshal(map[string]any{
		"algorithm":      scheduleAlgorithm,
		"passes":         passes,
		"passProgress":   result.PassProgress,
		"rejectedLocked": len(result.RejectedLocked),
		"stats":          stats,
		"generatedAt":    time.Now().UTC(),
	})
	if marshalErr != nil {
		return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode schedule metadata")
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

	record = &models.LessonSchedule{
		TermID: termID,
		Status: models.LessonScheduleStatusDraft,
		Seed:   result.Seed,
		Meta:   types.JSONText(meta),
	}
	started := time.Now()
	if err = s.schedules.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson schedule")
		return nil, err
	}
	if err = s.entries.InsertBatch(ctx, tx, record.ID, result.Entries); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lesson schedule entries")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit lesson schedule transaction")
		return nil, err
	}
	s.metrics.ObserveDBQuery("lesson_schedule.persist", time.Since(started))
	return record, nil
}

func (s *LessonScheduleService) loadInput(ctx context.Context) (scheduler.Input, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveDBQuery("lesson_schedule.load_input", time.Since(started)) }()

	coaches, err := s.coaches.List(ctx)
	if err != nil {
		return scheduler.Input{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coaches")
	}
	students, err := s.students.List(ctx, models.StudentFilter{})
	if err != nil {
		return scheduler.Input{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	constraints, err := s.activeConstraints(ctx)
	if err != nil {
		return scheduler.Input{}, err
	}
	return scheduler.Input{
		Students:    students,
		Coaches:     scheduler.FoldPreferences(coaches, constraints),
		Constraints: constraints,
	}, nil
}

func (s *LessonScheduleService) activeConstraints(ctx context.Context) ([]models.Constraint, error) {
	constraints, err := s.constraints.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraints")
	}
	if len(constraints) == 0 {
		return scheduler.DefaultConstraints(), nil
	}
	return constraints, nil
}

func (s *LessonScheduleService) lockedEntries(ctx context.Context, termID string) ([]models.ScheduleEntry, error) {
	latest, err := s.schedules.Latest(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest lesson schedule")
	}
	locked, err := s.entries.ListLocked(ctx, latest.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load locked entries")
	}
	return locked, nil
}

func nothingToSchedule() error {
	return appErrors.Clone(appErrors.ErrPreconditionFailed, "nothing to schedule: roster has no students")
}

// List returns every stored version for a term, newest first.
func (s *LessonScheduleService) List(ctx context.Context, query dto.LessonScheduleQuery) ([]models.LessonSchedule, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "termId is required")
	}
	list, err := s.schedules.ListByTerm(ctx, query.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson schedules")
	}
	return list, nil
}

// Get returns a stored version with its entries in grid order.
func (s *LessonScheduleService) Get(ctx context.Context, scheduleID string) (*dto.LessonScheduleDetail, error) {
	record, err := s.find(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson schedule entries")
	}
	return &dto.LessonScheduleDetail{Schedule: *record, Entries: entries}, nil
}

// Stats reports utilization for a stored version against the current roster.
// The boolean is true when the result came from the cache.
func (s *LessonScheduleService) Stats(ctx context.Context, scheduleID string) (*models.ScheduleStats, bool, error) {
	if cached, hit := s.cache.Stats(ctx, scheduleID); hit {
		return cached, true, nil
	}

	detail, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, false, err
	}
	in, err := s.loadInput(ctx)
	if err != nil {
		return nil, false, err
	}
	stats := scheduler.Report(detail.Entries, in.Students, in.Coaches, in.Constraints...)
	s.cache.StoreStats(ctx, scheduleID, stats)
	return &stats, false, nil
}

// SetEntryLock pins or unpins one entry of a stored version.
func (s *LessonScheduleService) SetEntryLock(ctx context.Context, scheduleID, entryID string, req dto.UpdateEntryLockRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "locked is required")
	}
	if _, err := s.find(ctx, scheduleID); err != nil {
		return err
	}
	if err := s.entries.SetLocked(ctx, scheduleID, entryID, *req.Locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule entry")
	}
	return nil
}

// Publish marks a stored version as the published timetable. Publishing twice is a no-op.
func (s *LessonScheduleService) Publish(ctx context.Context, scheduleID string) (*models.LessonSchedule, error) {
	record, err := s.find(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if record.Status == models.LessonScheduleStatusPublished {
		return record, nil
	}
	if err := s.schedules.UpdateStatus(ctx, nil, scheduleID, models.LessonScheduleStatusPublished, nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish lesson schedule")
	}
	record.Status = models.LessonScheduleStatusPublished
	s.logger.Info("lesson schedule published", zap.String("schedule_id", scheduleID), zap.String("term_id", record.TermID), zap.Int("version", record.Version))
	return record, nil
}

// Delete removes a draft version and its entries.
func (s *LessonScheduleService) Delete(ctx context.Context, scheduleID string) error {
	record, err := s.find(ctx, scheduleID)
	if err != nil {
		return err
	}
	if record.Status == models.LessonScheduleStatusPublished {
		return appErrors.Clone(appErrors.ErrConflict, "published schedules cannot be deleted")
	}
	if err := s.schedules.Delete(ctx, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson schedule")
	}
	s.cache.DropStats(ctx, scheduleID)
	return nil
}

func (s *LessonScheduleService) find(ctx context.Context, scheduleID string) (*models.LessonSchedule, error) {
	if scheduleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	record, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson schedule")
	}
	return record, nil
}
