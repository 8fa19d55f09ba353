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

// CoachRepository persists coaches and their scheduling preferences.
type CoachRepository struct {
	db *sqlx.DB
}

// NewCoachRepository constructs the repository.
func NewCoachRepository(db *sqlx.DB) *CoachRepository {
	return &CoachRepository{db: db}
}

func (r *CoachRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns every coach ordered by name.
func (r *CoachRepository) List(ctx context.Context) ([]models.Coach, error) {
	const query = `SELECT id, name, preferences, created_at, updated_at FROM coaches ORDER BY name ASC`
	var coaches []models.Coach
	if err := r.db.SelectContext(ctx, &coaches, query); err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	return coaches, nil
}

// FindByID loads a coach.
func (r *CoachRepository) FindByID(ctx context.Context, id string) (*models.Coach, error) {
	const query = `SELECT id, name, preferences, created_at, updated_at FROM coaches WHERE id = $1`
	var coach models.Coach
	if err := r.db.GetContext(ctx, &coach, query, id); err != nil {
		return nil, err
	}
	return &coach, nil
}

// Upsert inserts or renames a coach, keeping stored preferences on conflict.
func (r *CoachRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, coach *models.Coach) error {
	if coach.ID == "" {
		coach.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if coach.CreatedAt.IsZero() {
		coach.CreatedAt = now
	}
	coach.UpdatedAt = now

	const query = `INSERT INTO coaches (id, name, preferences, created_at, updated_at)
		VALUES (:id, :name, :preferences, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, coach); err != nil {
		return fmt.Errorf("upsert coach: %w", err)
	}
	return nil
}

// UpdatePreferences replaces a coach's preferences.
func (r *CoachRepository) UpdatePreferences(ctx context.Context, exec sqlx.ExtContext, id string, prefs models.CoachPreferences) error {
	const query = `UPDATE coaches SET preferences = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, prefs, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update coach preferences: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("coach preferences rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
