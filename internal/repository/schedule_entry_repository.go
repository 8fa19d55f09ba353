package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

// ScheduleEntryRepository manages the placements of a lesson schedule.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository builds repository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

func (r *ScheduleEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch stores entries for a schedule, assigning ids where missing.
func (r *ScheduleEntryRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, scheduleID string, entries []models.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO lesson_schedule_entries (id, schedule_id, day, slot, coach_id, student_id, student_name, locked, created_at)
VALUES (:id, :schedule_id, :day, :slot, :coach_id, :student_id, :student_name, :locked, :created_at)`

	for i := range entries {
		entry := &entries[i]
		entry.ID = uuid.NewString()
		entry.ScheduleID = scheduleID
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("insert lesson schedule entry: %w", err)
		}
	}
	return nil
}

// ListBySchedule returns entries in grid order.
func (r *ScheduleEntryRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, schedule_id, day, slot, coach_id, student_id, student_name, locked, created_at
FROM lesson_schedule_entries WHERE schedule_id = $1
ORDER BY array_position(ARRAY['mon','tue','wed','thu','fri'], day), array_position(ARRAY['breakfast','fruit','rest'], slot), coach_id`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list lesson schedule entries: %w", err)
	}
	return entries, nil
}

// ListLocked returns the locked entries of a schedule.
func (r *ScheduleEntryRepository) ListLocked(ctx context.Context, scheduleID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, schedule_id, day, slot, coach_id, student_id, student_name, locked, created_at
FROM lesson_schedule_entries WHERE schedule_id = $1 AND locked = TRUE`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list locked lesson schedule entries: %w", err)
	}
	return entries, nil
}

// SetLocked pins or unpins an entry within a schedule.
func (r *ScheduleEntryRepository) SetLocked(ctx context.Context, scheduleID, entryID string, locked bool) error {
	const query = `UPDATE lesson_schedule_entries SET locked = $1 WHERE id = $2 AND schedule_id = $3`
	result, err := r.db.ExecContext(ctx, query, locked, entryID, scheduleID)
	if err != nil {
		return fmt.Errorf("update lesson schedule entry lock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("lesson schedule entry rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
