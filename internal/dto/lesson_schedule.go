package dto

import (
	"encoding/json"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

// GenerateLessonScheduleRequest triggers a scheduling run for a term.
type GenerateLessonScheduleRequest struct {
	TermID     string `json:"termId" validate:"required"`
	Passes     int    `json:"passes" validate:"omitempty,min=1,max=10"`
	Seed       *int64 `json:"seed"`
	KeepLocked bool   `json:"keepLocked"`
}

// GenerateLessonScheduleResponse returns the stored run and its diagnostics.
type GenerateLessonScheduleResponse struct {
	Schedule       models.LessonSchedule       `json:"schedule"`
	Entries        []models.ScheduleEntry      `json:"entries"`
	Unscheduled    []models.UnscheduledStudent `json:"unscheduled"`
	RejectedLocked []models.ScheduleEntry      `json:"rejectedLocked,omitempty"`
	PassProgress   []int                       `json:"passProgress"`
	Stats          models.ScheduleStats        `json:"stats"`
}

// LessonScheduleQuery filters schedule versions by term.
type LessonScheduleQuery struct {
	TermID string `form:"termId" json:"termId" validate:"required"`
}

// LessonScheduleDetail is one stored version with its entries.
type LessonScheduleDetail struct {
	Schedule models.LessonSchedule  `json:"schedule"`
	Entries  []models.ScheduleEntry `json:"entries"`
}

// UpdateEntryLockRequest pins or unpins an entry.
type UpdateEntryLockRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

// ExportQuery selects the export encoding.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ConstraintPatchRequest toggles or re-ranks a constraint.
type ConstraintPatchRequest struct {
	Enabled     *bool   `json:"enabled"`
	Priority    *int    `json:"priority" validate:"omitempty,min=0"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// ConstraintReplaceRequest replaces a constraint's payload and flags.
type ConstraintReplaceRequest struct {
	Description string          `json:"description" validate:"max=255"`
	Enabled     bool            `json:"enabled"`
	Priority    int             `json:"priority" validate:"min=0"`
	Value       json.RawMessage `json:"value" validate:"required"`
}

// CoachPreferencesRequest replaces a coach's scheduling preferences.
type CoachPreferencesRequest struct {
	PreferredSlots    []string `json:"preferredSlots" validate:"omitempty,dive,oneof=breakfast fruit rest"`
	AvoidSlots        []string `json:"avoidSlots" validate:"omitempty,dive,oneof=breakfast fruit rest"`
	PreferredDays     []string `json:"preferredDays" validate:"omitempty,dive,required"`
	AvoidDays         []string `json:"avoidDays" validate:"omitempty,dive,required"`
	MaxSessionsPerDay int      `json:"maxSessionsPerDay" validate:"required,min=1,max=3"`
}

// RosterCellRequest names a blocked day/slot pair.
type RosterCellRequest struct {
	Day  string `json:"day" validate:"required"`
	Slot string `json:"slot" validate:"required,oneof=breakfast fruit rest"`
}

// RosterCoachRequest is one coach in a roster import.
type RosterCoachRequest struct {
	ID          string                   `json:"id" validate:"required"`
	Name        string                   `json:"name" validate:"required"`
	Preferences *CoachPreferencesRequest `json:"preferences" validate:"omitempty"`
}

// RosterStudentRequest is one student in a roster import.
type RosterStudentRequest struct {
	ID               string              `json:"id"`
	Name             string              `json:"name" validate:"required"`
	CoachID          string              `json:"coachId" validate:"required"`
	LessonsPerWeek   int                 `json:"lessonsPerWeek" validate:"min=0,max=15"`
	UnavailableSlots []RosterCellRequest `json:"unavailableSlots" validate:"omitempty,dive"`
}

// RosterImportRequest upserts coaches and students in one transaction.
type RosterImportRequest struct {
	Coaches  []RosterCoachRequest   `json:"coaches" validate:"omitempty,dive"`
	Students []RosterStudentRequest `json:"students" validate:"required,min=1,dive"`
}

// RosterImportResponse summarises an import.
type RosterImportResponse struct {
	Coaches  int `json:"coaches"`
	Students int `json:"students"`
}

// RosterQuery filters roster listings.
type RosterQuery struct {
	CoachID string `form:"coachId"`
	Search  string `form:"search"`
}

// RosterResponse lists the current roster.
type RosterResponse struct {
	Coaches  []models.Coach   `json:"coaches"`
	Students []models.Student `json:"students"`
}
