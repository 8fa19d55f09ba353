package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

// LessonScheduleRepository persists versioned weekly timetables.
type LessonScheduleRepository struct {
	db *sqlx.DB
}

// NewLessonScheduleRepository constructs repository.
func NewLessonScheduleRepository(db *sqlx.DB) *LessonScheduleRepository {
	return &LessonScheduleRepository{db: db}
}

func (r *LessonScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a schedule assigning the next version for the term.
func (r *LessonScheduleRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, schedule *models.LessonSchedule) error {
	if schedule == nil {
		return fmt.Errorf("schedule payload is nil")
	}
	if schedule.TermID == "" {
		return fmt.Errorf("term_id is required")
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.Status == "" {
		schedule.Status = models.LessonScheduleStatusDraft
	}
	if len(schedule.Meta) == 0 {
		schedule.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM lesson_schedules WHERE term_id = $1`
	if err := sqlx.GetContext(ctx, target, &schedule.Version, nextVersionQuery, schedule.TermID); err != nil {
		return fmt.Errorf("compute next lesson schedule version: %w", err)
	}

	const insertQuery = `
INSERT INTO lesson_schedules (id, term_id, version, status, seed, meta, created_at, updated_at)
VALUES (:id, :term_id, :version, :status, :seed, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, schedule); err != nil {
		return fmt.Errorf("insert lesson schedule: %w", err)
	}
	return nil
}

// ListByTerm returns all versions for a term, newest first.
func (r *LessonScheduleRepository) ListByTerm(ctx context.Context, termID string) ([]models.LessonSchedule, error) {
	const query = `SELECT id, term_id, version, status, seed, meta, created_at, updated_at
FROM lesson_schedules WHERE term_id = $1 ORDER BY version DESC`
	var schedules []models.LessonSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, termID); err != nil {
		return nil, fmt.Errorf("list lesson schedules: %w", err)
	}
	return schedules, nil
}

// FindByID loads a schedule by its identifier.
func (r *LessonScheduleRepository) FindByID(ctx context.Context, id string) (*models.LessonSchedule, error) {
	const query = `SELECT id, term_id, version, status, seed, meta, created_at, updated_at FROM lesson_schedules WHERE id = $1`
	var schedule models.LessonSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Latest returns the newest version for a term.
func (r *LessonScheduleRepository) Latest(ctx context.Context, termID string) (*models.LessonSchedule, error) {
	const query = `SELECT id, term_id, version, status, seed, meta, created_at, updated_at
FROM lesson_schedules WHERE term_id = $1 ORDER BY version DESC LIMIT 1`
	var schedule models.LessonSchedule
	if err := r.db.GetContext(ctx, &schedule, query, termID); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// UpdateStatus updates the status (and optionally meta) of a schedule.
func (r *LessonScheduleRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.LessonScheduleStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	var (
		query string
		args  []interface{}
	)
	if len(meta) > 0 {
		query = `UPDATE lesson_schedules SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, meta, now, id}
	} else {
		query = `UPDATE lesson_schedules SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	}
	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lesson schedule status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("lesson schedule status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a stored schedule version; entries cascade.
func (r *LessonScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM lesson_schedules WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete lesson schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("lesson schedule rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
