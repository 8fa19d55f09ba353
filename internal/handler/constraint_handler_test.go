package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

type constraintManagerMock struct {
	patched  dto.ConstraintPatchRequest
	replaced dto.ConstraintReplaceRequest
}

func (m *constraintManagerMock) List(context.Context) ([]models.Constraint, error) {
	return []models.Constraint{{ID: "max_coaches", Kind: models.ConstraintMaxCoaches, Enabled: true}}, nil
}

func (m *constraintManagerMock) Patch(_ context.Context, id string, req dto.ConstraintPatchRequest) (*models.Constraint, error) {
	m.patched = req
	return &models.Constraint{ID: id}, nil
}

func (m *constraintManagerMock) Replace(_ context.Context, id string, req dto.ConstraintReplaceRequest) (*models.Constraint, error) {
	m.replaced = req
	if string(req.Value) == `"bad"` {
		return nil, appErrors.Clone(appErrors.ErrInvalidConstraint, "value must be an object")
	}
	return &models.Constraint{ID: id}, nil
}

type coachPreferenceMock struct {
	updated dto.CoachPreferencesRequest
}

func (m *coachPreferenceMock) Get(_ context.Context, coachID string) (*models.CoachPreferences, error) {
	if coachID != "c1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "coach not found")
	}
	return &models.CoachPreferences{MaxSessionsPerDay: 3}, nil
}

func (m *coachPreferenceMock) Update(_ context.Context, _ string, req dto.CoachPreferencesRequest) (*models.CoachPreferences, error) {
	m.updated = req
	return &models.CoachPreferences{MaxSessionsPerDay: req.MaxSessionsPerDay}, nil
}

func TestConstraintHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &constraintManagerMock{}
	h := &ConstraintHandler{service: svc}
	r := gin.New()
	r.GET("/constraints", h.List)
	r.PATCH("/constraints/:id", h.Patch)
	r.PUT("/constraints/:id", h.Replace)

	w := serve(r, http.MethodGet, "/constraints", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "max_coaches")

	w = serve(r, http.MethodPatch, "/constraints/max_coaches", []byte(`{"enabled":false}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.patched.Enabled)
	assert.False(t, *svc.patched.Enabled)

	w = serve(r, http.MethodPut, "/constraints/max_coaches", []byte(`{"enabled":true,"priority":1,"value":{"default":2}}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"default":2}`, string(svc.replaced.Value))

	w = serve(r, http.MethodPut, "/constraints/max_coaches", []byte(`{"value":"bad"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CONSTRAINT")
}

func TestCoachPreferenceHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &coachPreferenceMock{}
	h := &CoachPreferenceHandler{service: svc}
	r := gin.New()
	r.GET("/coaches/:id/preferences", h.Get)
	r.PUT("/coaches/:id/preferences", h.Update)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/coaches/c1/preferences", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/coaches/c9/preferences", nil).Code)

	w := serve(r, http.MethodPut, "/coaches/c1/preferences", []byte(`{"avoidSlots":["rest"],"maxSessionsPerDay":2}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rest"}, svc.updated.AvoidSlots)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPut, "/coaches/c1/preferences", []byte(`[`)).Code)
}
