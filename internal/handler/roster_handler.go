package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/response"
)

type rosterManager interface {
	Import(ctx context.Context, req dto.RosterImportRequest) (*dto.RosterImportResponse, error)
	List(ctx context.Context, query dto.RosterQuery) (*dto.RosterResponse, error)
	DeleteStudent(ctx context.Context, id string) error
}

// RosterHandler manages coaches and students.
type RosterHandler struct {
	service rosterManager
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// Import godoc
// @Summary Import coaches and students
// @Description Upserts the supplied coaches and students in one transaction.
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.RosterImportRequest true "Roster payload"
// @Success 200 {object} response.Envelope
// @Router /roster/import [post]
func (h *RosterHandler) Import(c *gin.Context) {
	var req dto.RosterImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid roster payload"))
		return
	}
	result, err := h.service.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// List godoc
// @Summary List the roster
// @Tags Roster
// @Produce json
// @Param coachId query string false "Coach ID"
// @Param search query string false "Student name filter"
// @Success 200 {object} response.Envelope
// @Router /roster [get]
func (h *RosterHandler) List(c *gin.Context) {
	var query dto.RosterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid roster query"))
		return
	}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// DeleteStudent godoc
// @Summary Remove a student from the roster
// @Tags Roster
// @Param id path string true "Student ID"
// @Success 204
// @Router /roster/students/{id} [delete]
func (h *RosterHandler) DeleteStudent(c *gin.Context) {
	if err := h.service.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
