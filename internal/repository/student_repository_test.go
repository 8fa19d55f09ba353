package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "coach_id", "lessons_per_week", "unavailable_slots", "created_at", "updated_at"}).
		AddRow("s1", "Citra", "c1", 2, []byte(`[{"day":"mon","slot":"rest"}]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE 1=1 AND coach_id = $1 AND LOWER(name) LIKE $2 ORDER BY name ASC")).
		WithArgs("c1", "%cit%").
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.StudentFilter{CoachID: "c1", Search: "Cit"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.True(t, students[0].IsUnavailable(models.Cell{Day: models.DayMonday, Slot: models.SlotRest}))
	assert.False(t, students[0].IsUnavailable(models.Cell{Day: models.DayMonday, Slot: models.SlotFruit}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs(sqlmock.AnyArg(), "Citra", "c1", 2, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs("s2", "Dewi", "c2", 1, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	students := []models.Student{
		{Name: "Citra", CoachID: "c1", LessonsPerWeek: 2},
		{ID: "s2", Name: "Dewi", CoachID: "c2", LessonsPerWeek: 1},
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), nil, students))
	assert.NotEmpty(t, students[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
