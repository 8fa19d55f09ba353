package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/response"
)

type coachPreferenceManager interface {
	Get(ctx context.Context, coachID string) (*models.CoachPreferences, error)
	Update(ctx context.Context, coachID string, req dto.CoachPreferencesRequest) (*models.CoachPreferences, error)
}

// CoachPreferenceHandler exposes per-coach scheduling preferences.
type CoachPreferenceHandler struct {
	service coachPreferenceManager
}

// NewCoachPreferenceHandler constructs the handler.
func NewCoachPreferenceHandler(svc *service.CoachPreferenceService) *CoachPreferenceHandler {
	return &CoachPreferenceHandler{service: svc}
}

// Get godoc
// @Summary Get coach scheduling preferences
// @Tags Coaches
// @Produce json
// @Param id path string true "Coach ID"
// @Success 200 {object} response.Envelope
// @Router /coaches/{id}/preferences [get]
func (h *CoachPreferenceHandler) Get(c *gin.Context) {
	prefs, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs)
}

// Update godoc
// @Summary Replace coach scheduling preferences
// @Tags Coaches
// @Accept json
// @Produce json
// @Param id path string true "Coach ID"
// @Param payload body dto.CoachPreferencesRequest true "Preferences payload"
// @Success 200 {object} response.Envelope
// @Router /coaches/{id}/preferences [put]
func (h *CoachPreferenceHandler) Update(c *gin.Context) {
	var req dto.CoachPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid preferences payload"))
		return
	}
	prefs, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs)
}
