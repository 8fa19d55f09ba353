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

type rosterManagerMock struct {
	imported dto.RosterImportRequest
	query    dto.RosterQuery
	deleted  []string
}

func (m *rosterManagerMock) Import(_ context.Context, req dto.RosterImportRequest) (*dto.RosterImportResponse, error) {
	m.imported = req
	return &dto.RosterImportResponse{Coaches: len(req.Coaches), Students: len(req.Students)}, nil
}

func (m *rosterManagerMock) List(_ context.Context, query dto.RosterQuery) (*dto.RosterResponse, error) {
	m.query = query
	return &dto.RosterResponse{Coaches: []models.Coach{}, Students: []models.Student{}}, nil
}

func (m *rosterManagerMock) DeleteStudent(_ context.Context, id string) error {
	if id == "missing" {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestRosterHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &rosterManagerMock{}
	h := &RosterHandler{service: svc}
	r := gin.New()
	r.POST("/roster/import", h.Import)
	r.GET("/roster", h.List)
	r.DELETE("/roster/students/:id", h.DeleteStudent)

	w := serve(r, http.MethodPost, "/roster/import", []byte(`{"coaches":[{"id":"c1","name":"Alice"}],"students":[{"name":"Ana","coachId":"c1","lessonsPerWeek":2}]}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"coaches":1,"students":1}}`, w.Body.String())
	assert.Equal(t, "Ana", svc.imported.Students[0].Name)

	w = serve(r, http.MethodGet, "/roster?coachId=c1&search=an", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.RosterQuery{CoachID: "c1", Search: "an"}, svc.query)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/roster/students/s1", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/roster/students/missing", nil).Code)
	assert.Equal(t, []string{"s1"}, svc.deleted)
}
