package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// LessonScheduleStatus represents lifecycle phases for generated schedules.
type LessonScheduleStatus string

const (
	LessonScheduleStatusDraft     LessonScheduleStatus = "DRAFT"
	LessonScheduleStatusPublished LessonScheduleStatus = "PUBLISHED"
)

// LessonSchedule is one versioned scheduling run for a term.
type LessonSchedule struct {
	ID        string               `db:"id" json:"id"`
	TermID    string               `db:"term_id" json:"term_id"`
	Version   int                  `db:"version" json:"version"`
	Status    LessonScheduleStatus `db:"status" json:"status"`
	Seed      int64                `db:"seed" json:"seed"`
	Meta      types.JSONText       `db:"meta" json:"meta"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt time.Time            `db:"updated_at" json:"updated_at"`
}

// ScheduleEntry places one student with one coach in one cell.
type ScheduleEntry struct {
	ID          string    `db:"id" json:"id"`
	ScheduleID  string    `db:"schedule_id" json:"schedule_id,omitempty"`
	Day         Day       `db:"day" json:"day"`
	Slot        Slot      `db:"slot" json:"slot"`
	CoachID     string    `db:"coach_id" json:"coach_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	Locked      bool      `db:"locked" json:"locked"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Cell returns the entry's grid position.
func (e ScheduleEntry) Cell() Cell {
	return Cell{Day: e.Day, Slot: e.Slot}
}

// UnscheduledStudent reports a student left short of their weekly lessons.
type UnscheduledStudent struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Needed    int    `json:"needed"`
	Scheduled int    `json:"scheduled"`
}

// ScheduleStats summarises a finished schedule.
type ScheduleStats struct {
	TotalLessons         int                  `json:"total_lessons"`
	UnscheduledStudents  []string             `json:"unscheduled_students"`
	UnderScheduled       []UnscheduledStudent `json:"under_scheduled"`
	CoachUtilization     map[string]int       `json:"coach_utilization"`
	SlotUtilization      map[string]int       `json:"slot_utilization"`
	CoachBalanceExceeded bool                 `json:"coach_balance_exceeded"`
}
