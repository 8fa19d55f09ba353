package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/middleware"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/response"
)

type lessonScheduler interface {
	Generate(ctx context.Context, req dto.GenerateLessonScheduleRequest) (*dto.GenerateLessonScheduleResponse, error)
	List(ctx context.Context, query dto.LessonScheduleQuery) ([]models.LessonSchedule, error)
	Get(ctx context.Context, scheduleID string) (*dto.LessonScheduleDetail, error)
	Stats(ctx context.Context, scheduleID string) (*models.ScheduleStats, bool, error)
	SetEntryLock(ctx context.Context, scheduleID, entryID string, req dto.UpdateEntryLockRequest) error
	Publish(ctx context.Context, scheduleID string) (*models.LessonSchedule, error)
	Delete(ctx context.Context, scheduleID string) error
}

type timetableExporter interface {
	Export(ctx context.Context, scheduleID string, query dto.ExportQuery) (*service.ExportResult, error)
}

// LessonScheduleHandler exposes scheduling runs and their stored versions.
type LessonScheduleHandler struct {
	service  lessonScheduler
	exporter timetableExporter
}

// NewLessonScheduleHandler constructs the handler.
func NewLessonScheduleHandler(svc *service.LessonScheduleService, exporter *service.ExportService) *LessonScheduleHandler {
	return &LessonScheduleHandler{service: svc, exporter: exporter}
}

// Generate godoc
// @Summary Generate a weekly lesson timetable
// @Description Runs the multi-pass scheduler over the current roster and stores the result as a new version.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateLessonScheduleRequest true "Generation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /lesson-schedules/generate [post]
func (h *LessonScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateLessonScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List stored schedule versions for a term
// @Tags Scheduler
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-schedules [get]
func (h *LessonScheduleHandler) List(c *gin.Context) {
	query := dto.LessonScheduleQuery{TermID: c.Query("termId")}
	items, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(items))
	response.JSON(c, http.StatusOK, items, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get one schedule version with its entries
// @Tags Scheduler
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lesson-schedules/{id} [get]
func (h *LessonScheduleHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Stats godoc
// @Summary Summarise a stored schedule
// @Description Totals, per-coach utilisation and students left short of their weekly lessons.
// @Tags Scheduler
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-schedules/{id}/stats [get]
func (h *LessonScheduleHandler) Stats(c *gin.Context) {
	stats, hit, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download a schedule as CSV or PDF
// @Tags Scheduler
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Schedule ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /lesson-schedules/{id}/export [get]
func (h *LessonScheduleHandler) Export(c *gin.Context) {
	query := dto.ExportQuery{Format: c.Query("format")}
	result, err := h.exporter.Export(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}

// SetEntryLock godoc
// @Summary Pin or unpin a schedule entry
// @Description Locked entries are carried into the next run when keepLocked is set.
// @Tags Scheduler
// @Accept json
// @Param id path string true "Schedule ID"
// @Param entryId path string true "Entry ID"
// @Param payload body dto.UpdateEntryLockRequest true "Lock payload"
// @Success 204
// @Router /lesson-schedules/{id}/entries/{entryId} [patch]
func (h *LessonScheduleHandler) SetEntryLock(c *gin.Context) {
	var req dto.UpdateEntryLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid lock payload"))
		return
	}
	if err := h.service.SetEntryLock(c.Request.Context(), c.Param("id"), c.Param("entryId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Publish godoc
// @Summary Publish a schedule version
// @Tags Scheduler
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-schedules/{id}/publish [post]
func (h *LessonScheduleHandler) Publish(c *gin.Context) {
	record, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Delete godoc
// @Summary Delete a draft schedule version
// @Tags Scheduler
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /lesson-schedules/{id} [delete]
func (h *LessonScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
