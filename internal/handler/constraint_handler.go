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

type constraintManager interface {
	List(ctx context.Context) ([]models.Constraint, error)
	Patch(ctx context.Context, id string, req dto.ConstraintPatchRequest) (*models.Constraint, error)
	Replace(ctx context.Context, id string, req dto.ConstraintReplaceRequest) (*models.Constraint, error)
}

// ConstraintHandler manages the scheduling constraint catalogue.
type ConstraintHandler struct {
	service constraintManager
}

// NewConstraintHandler constructs the handler.
func NewConstraintHandler(svc *service.ConstraintService) *ConstraintHandler {
	return &ConstraintHandler{service: svc}
}

// List godoc
// @Summary List scheduling constraints
// @Tags Constraints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /constraints [get]
func (h *ConstraintHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Patch godoc
// @Summary Toggle or re-rank a constraint
// @Tags Constraints
// @Accept json
// @Produce json
// @Param id path string true "Constraint ID"
// @Param payload body dto.ConstraintPatchRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /constraints/{id} [patch]
func (h *ConstraintHandler) Patch(c *gin.Context) {
	var req dto.ConstraintPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid constraint payload"))
		return
	}
	constraint, err := h.service.Patch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraint)
}

// Replace godoc
// @Summary Replace a constraint's value
// @Tags Constraints
// @Accept json
// @Produce json
// @Param id path string true "Constraint ID"
// @Param payload body dto.ConstraintReplaceRequest true "Replace payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /constraints/{id} [put]
func (h *ConstraintHandler) Replace(c *gin.Context) {
	var req dto.ConstraintReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid constraint payload"))
		return
	}
	constraint, err := h.service.Replace(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraint)
}
