package models

import "time"

// Student needs LessonsPerWeek lessons with their owning coach.
type Student struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	CoachID          string    `db:"coach_id" json:"coach_id"`
	LessonsPerWeek   int       `db:"lessons_per_week" json:"lessons_per_week"`
	UnavailableSlots CellList  `db:"unavailable_slots" json:"unavailable_slots"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// IsUnavailable reports whether the student blocked the cell.
func (s Student) IsUnavailable(cell Cell) bool {
	return s.UnavailableSlots.Contains(cell)
}

// StudentFilter narrows roster listings.
type StudentFilter struct {
	CoachID string
	Search  string
}
