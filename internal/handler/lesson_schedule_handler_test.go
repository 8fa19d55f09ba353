package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	internalmiddleware "github.com/noah-isme/tennis-lesson-scheduler/internal/middleware"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

type lessonSchedulerMock struct {
	captured    dto.GenerateLessonScheduleRequest
	generateErr error
	statsHit    bool
	lockReq     dto.UpdateEntryLockRequest
	lockIDs     [2]string
}

func (m *lessonSchedulerMock) Generate(_ context.Context, req dto.GenerateLessonScheduleRequest) (*dto.GenerateLessonScheduleResponse, error) {
	m.captured = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateLessonScheduleResponse{Schedule: models.LessonSchedule{ID: "sched-1", TermID: req.TermID, Version: 1}}, nil
}

func (m *lessonSchedulerMock) List(_ context.Context, query dto.LessonScheduleQuery) ([]models.LessonSchedule, error) {
	if query.TermID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId is required")
	}
	return []models.LessonSchedule{{ID: "sched-1", TermID: query.TermID, Version: 1}}, nil
}

func (m *lessonSchedulerMock) Get(_ context.Context, id string) (*dto.LessonScheduleDetail, error) {
	if id != "sched-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson schedule not found")
	}
	return &dto.LessonScheduleDetail{Schedule: models.LessonSchedule{ID: id}}, nil
}

func (m *lessonSchedulerMock) Stats(_ context.Context, _ string) (*models.ScheduleStats, bool, error) {
	return &models.ScheduleStats{TotalLessons: 4}, m.statsHit, nil
}

func (m *lessonSchedulerMock) SetEntryLock(_ context.Context, scheduleID, entryID string, req dto.UpdateEntryLockRequest) error {
	m.lockIDs = [2]string{scheduleID, entryID}
	m.lockReq = req
	return nil
}

func (m *lessonSchedulerMock) Publish(_ context.Context, id string) (*models.LessonSchedule, error) {
	return &models.LessonSchedule{ID: id, Status: models.LessonScheduleStatusPublished}, nil
}

func (m *lessonSchedulerMock) Delete(_ context.Context, id string) error {
	if id == "published" {
		return appErrors.Clone(appErrors.ErrConflict, "published schedules cannot be deleted")
	}
	return nil
}

type exporterMock struct{}

func (exporterMock) Export(_ context.Context, _ string, query dto.ExportQuery) (*service.ExportResult, error) {
	if query.Format == "xlsx" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportResult{Filename: "lessons_t1_v1.csv", ContentType: "text/csv", Data: []byte("Coach,Day\n")}, nil
}

func newLessonScheduleRouter(svc *lessonSchedulerMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &LessonScheduleHandler{service: svc, exporter: exporterMock{}}
	r := gin.New()
	r.Use(internalmiddleware.WithResponseMeta())
	r.POST("/lesson-schedules/generate", h.Generate)
	r.GET("/lesson-schedules", h.List)
	r.GET("/lesson-schedules/:id", h.Get)
	r.GET("/lesson-schedules/:id/stats", h.Stats)
	r.GET("/lesson-schedules/:id/export", h.Export)
	r.PATCH("/lesson-schedules/:id/entries/:entryId", h.SetEntryLock)
	r.POST("/lesson-schedules/:id/publish", h.Publish)
	r.DELETE("/lesson-schedules/:id", h.Delete)
	return r
}

func serve(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLessonScheduleGenerate(t *testing.T) {
	svc := &lessonSchedulerMock{}
	r := newLessonScheduleRouter(svc)

	w := serve(r, http.MethodPost, "/lesson-schedules/generate", []byte(`{"termId":"t1","passes":3,"seed":42,"keepLocked":true}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "t1", svc.captured.TermID)
	assert.Equal(t, 3, svc.captured.Passes)
	require.NotNil(t, svc.captured.Seed)
	assert.EqualValues(t, 42, *svc.captured.Seed)
	assert.True(t, svc.captured.KeepLocked)
}

func TestLessonScheduleGenerateErrors(t *testing.T) {
	r := newLessonScheduleRouter(&lessonSchedulerMock{})
	w := serve(r, http.MethodPost, "/lesson-schedules/generate", []byte(`{"termId":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r = newLessonScheduleRouter(&lessonSchedulerMock{generateErr: appErrors.ErrRunInProgress})
	w = serve(r, http.MethodPost, "/lesson-schedules/generate", []byte(`{"termId":"t1"}`))
	assert.Equal(t, appErrors.ErrRunInProgress.Status, w.Code)

	r = newLessonScheduleRouter(&lessonSchedulerMock{generateErr: appErrors.Clone(appErrors.ErrPreconditionFailed, "nothing to schedule: roster has no students")})
	w = serve(r, http.MethodPost, "/lesson-schedules/generate", []byte(`{"termId":"t1"}`))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Status, w.Code)
	assert.Contains(t, w.Body.String(), "nothing to schedule")
}

func TestLessonScheduleListAndGet(t *testing.T) {
	r := newLessonScheduleRouter(&lessonSchedulerMock{})

	w := serve(r, http.MethodGet, "/lesson-schedules?termId=t1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []models.LessonSchedule `json:"data"`
		Meta map[string]interface{}  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.EqualValues(t, 1, body.Meta["count"])

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/lesson-schedules", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/lesson-schedules/sched-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/lesson-schedules/missing", nil).Code)
}

func TestLessonScheduleStatsReportsCacheHit(t *testing.T) {
	r := newLessonScheduleRouter(&lessonSchedulerMock{statsHit: true})

	w := serve(r, http.MethodGet, "/lesson-schedules/sched-1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.ScheduleStats   `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.TotalLessons)
	assert.Equal(t, true, body.Meta["cache_hit"])
}

func TestLessonScheduleExport(t *testing.T) {
	r := newLessonScheduleRouter(&lessonSchedulerMock{})

	w := serve(r, http.MethodGet, "/lesson-schedules/sched-1/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "lessons_t1_v1.csv")
	assert.Equal(t, "Coach,Day\n", w.Body.String())

	w = serve(r, http.MethodGet, "/lesson-schedules/sched-1/export?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLessonScheduleSetEntryLock(t *testing.T) {
	svc := &lessonSchedulerMock{}
	r := newLessonScheduleRouter(svc)

	w := serve(r, http.MethodPatch, "/lesson-schedules/sched-1/entries/e1", []byte(`{"locked":true}`))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, [2]string{"sched-1", "e1"}, svc.lockIDs)
	require.NotNil(t, svc.lockReq.Locked)
	assert.True(t, *svc.lockReq.Locked)
}

func TestLessonSchedulePublishAndDelete(t *testing.T) {
	r := newLessonScheduleRouter(&lessonSchedulerMock{})

	w := serve(r, http.MethodPost, "/lesson-schedules/sched-1/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PUBLISHED")

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/lesson-schedules/sched-1", nil).Code)
	assert.Equal(t, http.StatusConflict, serve(r, http.MethodDelete, "/lesson-schedules/published", nil).Code)
}
