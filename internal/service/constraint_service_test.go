package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

type constraintRepoStub struct {
	items  map[string]models.Constraint
	seeded int
}

func (s *constraintRepoStub) List(context.Context) ([]models.Constraint, error) {
	out := make([]models.Constraint, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *constraintRepoStub) FindByID(_ context.Context, id string) (*models.Constraint, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (s *constraintRepoStub) Update(_ context.Context, constraint *models.Constraint) error {
	if _, ok := s.items[constraint.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[constraint.ID] = *constraint
	return nil
}

func (s *constraintRepoStub) SeedDefaults(_ context.Context, constraints []models.Constraint) error {
	s.seeded++
	for _, c := range constraints {
		if _, ok := s.items[c.ID]; !ok {
			s.items[c.ID] = c
		}
	}
	return nil
}

func TestConstraintServiceListSeedsEmptyStorage(t *testing.T) {
	repo := &constraintRepoStub{items: map[string]models.Constraint{}}
	svc := NewConstraintService(repo, nil, nil, nil, nil)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 6)
	assert.Equal(t, 1, repo.seeded)

	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.seeded, "non-empty storage is not reseeded")
}

func TestConstraintServicePatchTogglesAndInvalidatesStats(t *testing.T) {
	repo := &constraintRepoStub{items: map[string]models.Constraint{
		"reduce-friday-rest": {
			ID: "reduce-friday-rest", Kind: models.ConstraintReduceSlot, Priority: 2,
			Value: models.ReduceSlotValue{Day: models.DayFriday, Slot: models.SlotRest, Reduction: 50},
		},
	}}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	cache.StoreStats(context.Background(), "s1", models.ScheduleStats{TotalLessons: 1})
	require.Len(t, cacheRepo.items, 1)
	svc := NewConstraintService(repo, nil, cache, nil, nil)

	enabled := true
	priority := 9
	updated, err := svc.Patch(context.Background(), "reduce-friday-rest", dto.ConstraintPatchRequest{Enabled: &enabled, Priority: &priority})
	require.NoError(t, err)
	assert.True(t, updated.Enabled)
	assert.Equal(t, 9, updated.Priority)
	assert.True(t, repo.items["reduce-friday-rest"].Enabled)
	assert.Empty(t, cacheRepo.items)
}

func TestConstraintServicePatchErrors(t *testing.T) {
	repo := &constraintRepoStub{items: map[string]models.Constraint{
		"broken": {ID: "broken", Kind: models.ConstraintMaxCoaches},
	}}
	svc := NewConstraintService(repo, nil, nil, nil, nil)
	enabled := true

	_, err := svc.Patch(context.Background(), "missing", dto.ConstraintPatchRequest{Enabled: &enabled})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Patch(context.Background(), "broken", dto.ConstraintPatchRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Patch(context.Background(), "broken", dto.ConstraintPatchRequest{Enabled: &enabled})
	assert.Equal(t, appErrors.ErrInvalidConstraint.Code, appErrors.FromError(err).Code)
}

func TestConstraintServiceReplaceDecodesByKind(t *testing.T) {
	repo := &constraintRepoStub{items: map[string]models.Constraint{
		"max-coaches": {ID: "max-coaches", Kind: models.ConstraintMaxCoaches, Enabled: true, Priority: 1, Value: models.MaxCoachesValue{Max: 3}},
	}}
	svc := NewConstraintService(repo, nil, nil, nil, nil)

	updated, err := svc.Replace(context.Background(), "max-coaches", dto.ConstraintReplaceRequest{
		Enabled:  true,
		Priority: 1,
		Value:    json.RawMessage(`{"max":2}`),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaxCoachesValue{Max: 2}, updated.Value)

	_, err = svc.Replace(context.Background(), "max-coaches", dto.ConstraintReplaceRequest{
		Enabled: true,
		Value:   json.RawMessage(`{"max":0}`),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidConstraint.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.MaxCoachesValue{Max: 2}, repo.items["max-coaches"].Value)

	_, err = svc.Replace(context.Background(), "max-coaches", dto.ConstraintReplaceRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
