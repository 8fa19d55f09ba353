package scheduler

import "github.com/noah-isme/tennis-lesson-scheduler/internal/models"

// Report derives summary statistics for a schedule. Coach utilisation is keyed
// by coach name, falling back to the coach id for coaches missing from coaches.
func Report(entries []models.ScheduleEntry, students []models.Student, coaches []models.Coach, constraints ...models.Constraint) models.ScheduleStats {
	stats := models.ScheduleStats{
		TotalLessons:        len(entries),
		UnscheduledStudents: []string{},
		UnderScheduled:      []models.UnscheduledStudent{},
		CoachUtilization:    make(map[string]int, len(coaches)),
		SlotUtilization:     make(map[string]int),
	}

	names := make(map[string]string, len(coaches))
	perCoach := make(map[string]int, len(coaches))
	for _, coach := range coaches {
		names[coach.ID] = coach.Name
		stats.CoachUtilization[coach.Name] = 0
		perCoach[coach.ID] = 0
	}
	for _, cell := range models.WeekCells() {
		stats.SlotUtilization[cell.Label()] = 0
	}

	perStudent := make(map[string]int, len(students))
	for _, entry := range entries {
		perStudent[entry.StudentID]++
		perCoach[entry.CoachID]++
		key, ok := names[entry.CoachID]
		if !ok {
			key = entry.CoachID
		}
		stats.CoachUtilization[key]++
		stats.SlotUtilization[entry.Cell().Label()]++
	}

	for _, student := range students {
		placed := perStudent[student.ID]
		if placed == 0 && student.LessonsPerWeek > 0 {
			stats.UnscheduledStudents = append(stats.UnscheduledStudents, student.Name)
		}
		if placed < student.LessonsPerWeek {
			stats.UnderScheduled = append(stats.UnderScheduled, models.UnscheduledStudent{
				StudentID: student.ID,
				Name:      student.Name,
				Needed:    student.LessonsPerWeek,
				Scheduled: placed,
			})
		}
	}

	if rule := balanceRule(constraints); rule != nil && len(perCoach) > 1 {
		first := true
		var lo, hi int
		for _, n := range perCoach {
			if first {
				lo, hi, first = n, n, false
				continue
			}
			if n < lo {
				lo = n
			}
			if n > hi {
				hi = n
			}
		}
		stats.CoachBalanceExceeded = hi-lo > rule.MaxDifference
	}
	return stats
}

func balanceRule(constraints []models.Constraint) *models.CoachBalanceValue {
	for _, c := range constraints {
		if !c.Active() {
			continue
		}
		if v, ok := c.Value.(models.CoachBalanceValue); ok {
			return &v
		}
	}
	return nil
}
