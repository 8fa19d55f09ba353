package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

// ConstraintRepository persists the scheduling constraint catalogue.
type ConstraintRepository struct {
	db *sqlx.DB
}

// NewConstraintRepository constructs the repository.
func NewConstraintRepository(db *sqlx.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// List returns every constraint in priority order. Undecodable payloads come
// back with a nil Value.
func (r *ConstraintRepository) List(ctx context.Context) ([]models.Constraint, error) {
	const query = `SELECT id, kind, description, enabled, priority, value, created_at, updated_at FROM scheduling_constraints ORDER BY priority ASC, id ASC`
	var records []models.ConstraintRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list scheduling constraints: %w", err)
	}
	constraints := make([]models.Constraint, 0, len(records))
	for _, record := range records {
		constraints = append(constraints, record.Constraint())
	}
	return constraints, nil
}

// FindByID loads a constraint.
func (r *ConstraintRepository) FindByID(ctx context.Context, id string) (*models.Constraint, error) {
	const query = `SELECT id, kind, description, enabled, priority, value, created_at, updated_at FROM scheduling_constraints WHERE id = $1`
	var record models.ConstraintRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	constraint := record.Constraint()
	return &constraint, nil
}

// Update persists enabled, priority, description and value for an existing constraint.
func (r *ConstraintRepository) Update(ctx context.Context, constraint *models.Constraint) error {
	constraint.UpdatedAt = time.Now().UTC()
	record, err := models.NewConstraintRecord(*constraint)
	if err != nil {
		return err
	}
	const query = `UPDATE scheduling_constraints
SET description = :description, enabled = :enabled, priority = :priority, value = :value, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update scheduling constraint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("scheduling constraint rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SeedDefaults inserts catalogue entries that are not stored yet.
func (r *ConstraintRepository) SeedDefaults(ctx context.Context, constraints []models.Constraint) error {
	const query = `INSERT INTO scheduling_constraints (id, kind, description, enabled, priority, value, created_at, updated_at)
VALUES (:id, :kind, :description, :enabled, :priority, :value, :created_at, :updated_at)
ON CONFLICT (id) DO NOTHING`
	now := time.Now().UTC()
	for _, constraint := range constraints {
		record, err := models.NewConstraintRecord(constraint)
		if err != nil {
			return err
		}
		record.CreatedAt = now
		record.UpdatedAt = now
		if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
			return fmt.Errorf("seed scheduling constraint %s: %w", constraint.ID, err)
		}
	}
	return nil
}
