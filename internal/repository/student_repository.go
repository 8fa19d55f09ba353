package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns students matching the provided filters ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CoachID != "" {
		conditions = append(conditions, fmt.Sprintf("coach_id = $%d", len(args)+1))
		args = append(args, filter.CoachID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := fmt.Sprintf(`SELECT id, name, coach_id, lessons_per_week, unavailable_slots, created_at, updated_at FROM students WHERE %s ORDER BY name ASC`,
		strings.Join(conditions, " AND "))

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// UpsertBatch inserts or updates the given students.
func (r *StudentRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO students (id, name, coach_id, lessons_per_week, unavailable_slots, created_at, updated_at)
VALUES (:id, :name, :coach_id, :lessons_per_week, :unavailable_slots, :created_at, :updated_at)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    coach_id = EXCLUDED.coach_id,
    lessons_per_week = EXCLUDED.lessons_per_week,
    unavailable_slots = EXCLUDED.unavailable_slots,
    updated_at = EXCLUDED.updated_at`

	for i := range students {
		student := &students[i]
		if student.ID == "" {
			student.ID = uuid.NewString()
		}
		if student.CreatedAt.IsZero() {
			student.CreatedAt = now
		}
		student.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, student); err != nil {
			return fmt.Errorf("upsert student %s: %w", student.ID, err)
		}
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("student rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
