package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/dto"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

func TestLessonScheduleServiceGenerateSuccess(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	seed := int64(42)
	resp, err := fx.service.Generate(context.Background(), dto.GenerateLessonScheduleRequest{TermID: "term-1", Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Schedule.Version)
	assert.Equal(t, int64(42), resp.Schedule.Seed)
	assert.Equal(t, models.LessonScheduleStatusDraft, resp.Schedule.Status)
	assert.Len(t, resp.Entries, 4)
	assert.Empty(t, resp.Unscheduled)
	assert.Equal(t, 4, resp.Stats.TotalLessons)
	assert.Len(t, resp.PassProgress, 3)
	assert.Len(t, fx.entries.inserted[resp.Schedule.ID], 4)
	assert.Contains(t, string(resp.Schedule.Meta), `"algorithm":"greedy_multipass_v1"`)

	cached, hit := fx.cache.Stats(context.Background(), resp.Schedule.ID)
	require.True(t, hit)
	assert.Equal(t, 4, cached.TotalLessons)

	assert.Empty(t, fx.locks.held, "run lock must be released")
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestLessonScheduleServiceGenerateEmptyRoster(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.students.items = nil

	_, err := fx.service.Generate(context.Background(), dto.GenerateLessonScheduleRequest{TermID: "term-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Equal(t, "nothing to schedule: roster has no students", appErr.Message)
	assert.Empty(t, fx.locks.held)
}

func TestLessonScheduleServiceGenerateRunInProgress(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.locks.held[runLockKey("term-1")] = "other"

	_, err := fx.service.Generate(context.Background(), dto.GenerateLessonScheduleRequest{TermID: "term-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRunInProgress.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "other", fx.locks.held[runLockKey("term-1")])
}

func TestLessonScheduleServiceGenerateValidation(t *testing.T) {
	fx := newLessonScheduleFixture(t)

	_, err := fx.service.Generate(context.Background(), dto.GenerateLessonScheduleRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = fx.service.Generate(context.Background(), dto.GenerateLessonScheduleRequest{TermID: "term-1", Passes: 11})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLessonScheduleServiceGenerateKeepsLockedEntries(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.schedules.items["prev"] = &models.LessonSchedule{ID: "prev", TermID: "term-1", Version: 1}
	fx.entries.locked["prev"] = []models.ScheduleEntry{
		{Day: models.DayFriday, Slot: models.SlotRest, CoachID: "c1", StudentID: "s1", StudentName: "Ana", Locked: true},
	}
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	seed := int64(7)
	resp, err := fx.service.Generate(context.Background(), dto.GenerateLessonScheduleRequest{TermID: "term-1", Seed: &seed, KeepLocked: true})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Schedule.Version)

	var pinned int
	for _, entry := range resp.Entries {
		if entry.Locked {
			pinned++
			assert.Equal(t, models.Cell{Day: models.DayFriday, Slot: models.SlotRest}, entry.Cell())
		}
	}
	assert.Equal(t, 1, pinned)
	assert.Len(t, resp.Entries, 4)
}

func TestLessonScheduleServiceGeneratePersistFailureRollsBack(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.entries.insertErr = errors.New("disk full")
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.service.Generate(context.Background(), dto.GenerateLessonScheduleRequest{TermID: "term-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fx.locks.held)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestLessonScheduleServiceGetNotFound(t *testing.T) {
	fx := newLessonScheduleFixture(t)

	_, err := fx.service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLessonScheduleServiceStatsComputesAndCaches(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.schedules.items["sched-1"] = &models.LessonSchedule{ID: "sched-1", TermID: "term-1", Version: 1}
	fx.entries.byID["sched-1"] = []models.ScheduleEntry{
		{Day: models.DayMonday, Slot: models.SlotBreakfast, CoachID: "c1", StudentID: "s1", StudentName: "Ana"},
	}

	stats, hit, err := fx.service.Stats(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, stats.TotalLessons)
	assert.Equal(t, 1, stats.CoachUtilization["Coach One"])
	assert.Equal(t, []string{"Bo"}, stats.UnscheduledStudents)

	fx.entries.byID["sched-1"] = nil
	again, hit, err := fx.service.Stats(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, again.TotalLessons)
}

func TestLessonScheduleServiceSetEntryLock(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.schedules.items["sched-1"] = &models.LessonSchedule{ID: "sched-1", TermID: "term-1"}
	fx.entries.byID["sched-1"] = []models.ScheduleEntry{{ID: "e1", CoachID: "c1"}}

	locked := true
	require.NoError(t, fx.service.SetEntryLock(context.Background(), "sched-1", "e1", dto.UpdateEntryLockRequest{Locked: &locked}))
	assert.True(t, fx.entries.byID["sched-1"][0].Locked)

	err := fx.service.SetEntryLock(context.Background(), "sched-1", "missing", dto.UpdateEntryLockRequest{Locked: &locked})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = fx.service.SetEntryLock(context.Background(), "sched-1", "e1", dto.UpdateEntryLockRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLessonScheduleServiceListRequiresTerm(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	fx.schedules.items["a"] = &models.LessonSchedule{ID: "a", TermID: "term-1", Version: 1}
	fx.schedules.items["b"] = &models.LessonSchedule{ID: "b", TermID: "term-2", Version: 1}

	_, err := fx.service.List(context.Background(), dto.LessonScheduleQuery{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	list, err := fx.service.List(context.Background(), dto.LessonScheduleQuery{TermID: "term-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}

func TestLessonScheduleServicePublishAndDelete(t *testing.T) {
	fx := newLessonScheduleFixture(t)
	ctx := context.Background()
	fx.schedules.items["draft"] = &models.LessonSchedule{ID: "draft", TermID: "term-1", Version: 1, Status: models.LessonScheduleStatusDraft}
	fx.schedules.items["live"] = &models.LessonSchedule{ID: "live", TermID: "term-1", Version: 2, Status: models.LessonScheduleStatusDraft}
	fx.cache.StoreStats(ctx, "draft", models.ScheduleStats{TotalLessons: 2})

	published, err := fx.service.Publish(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, models.LessonScheduleStatusPublished, published.Status)
	assert.Equal(t, models.LessonScheduleStatusPublished, fx.schedules.items["live"].Status)

	again, err := fx.service.Publish(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, models.LessonScheduleStatusPublished, again.Status)

	err = fx.service.Delete(ctx, "live")
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	require.NoError(t, fx.service.Delete(ctx, "draft"))
	_, ok := fx.schedules.items["draft"]
	assert.False(t, ok)
	_, hit := fx.cache.Stats(ctx, "draft")
	assert.False(t, hit)

	err = fx.service.Delete(ctx, "draft")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type lessonScheduleFixture struct {
	service   *LessonScheduleService
	schedules *lessonScheduleRepoStub
	entries   *scheduleEntryRepoStub
	students  *studentListerStub
	locks     *runLockStub
	cache     *CacheService
	mock      sqlmock.Sqlmock
}

func newLessonScheduleFixture(t *testing.T) *lessonScheduleFixture {
	t.Helper()
	tx, mock := newSQLMockTx(t)
	schedules := &lessonScheduleRepoStub{items: map[string]*models.LessonSchedule{}}
	entries := &scheduleEntryRepoStub{byID: map[string][]models.ScheduleEntry{}, locked: map[string][]models.ScheduleEntry{}, inserted: map[string][]models.ScheduleEntry{}}
	coaches := &coachListerStub{items: []models.Coach{
		{ID: "c1", Name: "Coach One", Preferences: models.CoachPreferences{MaxSessionsPerDay: 3}},
	}}
	students := &studentListerStub{items: []models.Student{
		{ID: "s1", Name: "Ana", CoachID: "c1", LessonsPerWeek: 2},
		{ID: "s2", Name: "Bo", CoachID: "c1", LessonsPerWeek: 2},
	}}
	locks := &runLockStub{held: map[string]string{}}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)

	svc := NewLessonScheduleService(schedules, entries, coaches, students, &constraintListerStub{}, locks, tx, cache, NewMetricsService(), nil, nil, LessonScheduleConfig{})
	return &lessonScheduleFixture{
		service:   svc,
		schedules: schedules,
		entries:   entries,
		students:  students,
		locks:     locks,
		cache:     cache,
		mock:      mock,
	}
}

type sqlmockTx struct {
	db *sqlx.DB
}

func newSQLMockTx(t *testing.T) (*sqlmockTx, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &sqlmockTx{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (p *sqlmockTx) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

type lessonScheduleRepoStub struct {
	items map[string]*models.LessonSchedule
}

func (s *lessonScheduleRepoStub) CreateVersioned(_ context.Context, _ sqlx.ExtContext, schedule *models.LessonSchedule) error {
	version := 0
	for _, item := range s.items {
		if item.TermID == schedule.TermID && item.Version > version {
			version = item.Version
		}
	}
	schedule.ID = "sched-new"
	schedule.Version = version + 1
	copied := *schedule
	s.items[schedule.ID] = &copied
	return nil
}

func (s *lessonScheduleRepoStub) ListByTerm(_ context.Context, termID string) ([]models.LessonSchedule, error) {
	var out []models.LessonSchedule
	for _, item := range s.items {
		if item.TermID == termID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *lessonScheduleRepoStub) FindByID(_ context.Context, id string) (*models.LessonSchedule, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (s *lessonScheduleRepoStub) Latest(_ context.Context, termID string) (*models.LessonSchedule, error) {
	var latest *models.LessonSchedule
	for _, item := range s.items {
		if item.TermID == termID && (latest == nil || item.Version > latest.Version) {
			latest = item
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	copied := *latest
	return &copied, nil
}

func (s *lessonScheduleRepoStub) UpdateStatus(_ context.Context, _ sqlx.ExtContext, id string, status models.LessonScheduleStatus, _ types.JSONText) error {
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	return nil
}

func (s *lessonScheduleRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

type scheduleEntryRepoStub struct {
	byID      map[string][]models.ScheduleEntry
	locked    map[string][]models.ScheduleEntry
	inserted  map[string][]models.ScheduleEntry
	insertErr error
}

func (s *scheduleEntryRepoStub) InsertBatch(_ context.Context, _ sqlx.ExtContext, scheduleID string, entries []models.ScheduleEntry) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted[scheduleID] = append([]models.ScheduleEntry(nil), entries...)
	return nil
}

func (s *scheduleEntryRepoStub) ListBySchedule(_ context.Context, scheduleID string) ([]models.ScheduleEntry, error) {
	return s.byID[scheduleID], nil
}

func (s *scheduleEntryRepoStub) ListLocked(_ context.Context, scheduleID string) ([]models.ScheduleEntry, error) {
	return s.locked[scheduleID], nil
}

func (s *scheduleEntryRepoStub) SetLocked(_ context.Context, scheduleID, entryID string, locked bool) error {
	for i := range s.byID[scheduleID] {
		if s.byID[scheduleID][i].ID == entryID {
			s.byID[scheduleID][i].Locked = locked
			return nil
		}
	}
	return sql.ErrNoRows
}

type coachListerStub struct {
	items []models.Coach
	err   error
}

func (s *coachListerStub) List(context.Context) ([]models.Coach, error) {
	return s.items, s.err
}

type studentListerStub struct {
	items []models.Student
}

func (s *studentListerStub) List(context.Context, models.StudentFilter) ([]models.Student, error) {
	return s.items, nil
}

type constraintListerStub struct {
	items []models.Constraint
}

func (s *constraintListerStub) List(context.Context) ([]models.Constraint, error) {
	return s.items, nil
}

type runLockStub struct {
	held map[string]string
}

func (s *runLockStub) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if _, ok := s.held[key]; ok {
		return "", false, nil
	}
	s.held[key] = "token"
	return "token", true, nil
}

func (s *runLockStub) Release(_ context.Context, key, token string) error {
	if s.held[key] == token {
		delete(s.held, key)
	}
	return nil
}
