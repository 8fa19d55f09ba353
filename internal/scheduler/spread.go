package scheduler

import "github.com/noah-isme/tennis-lesson-scheduler/internal/models"

// spreadRule returns the first active student_spread payload.
func spreadRule(constraints []models.Constraint) *models.StudentSpreadValue {
	for _, c := range constraints {
		if !c.Active() {
			continue
		}
		if v, ok := c.Value.(models.StudentSpreadValue); ok {
			return &v
		}
	}
	return nil
}

// CanPlaceOnDay reports whether day keeps at least MinDaysBetween+1 days of
// distance from every day the student already uses. A nil rule always passes.
func CanPlaceOnDay(day models.Day, usedDays []models.Day, rule *models.StudentSpreadValue) bool {
	if rule == nil || len(usedDays) == 0 {
		return true
	}
	idx := day.Index()
	for _, used := range usedDays {
		distance := idx - used.Index()
		if distance < 0 {
			distance = -distance
		}
		if distance <= rule.MinDaysBetween {
			return false
		}
	}
	return true
}
