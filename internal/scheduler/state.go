package scheduler

import "github.com/noah-isme/tennis-lesson-scheduler/internal/models"

// state accumulates placements across all passes of a single run.
type state struct {
	capacity map[models.Cell]int
	spread   *models.StudentSpreadValue

	entries       []models.ScheduleEntry
	cellLoad      map[models.Cell]int
	coachCells    map[string]map[models.Cell]bool
	coachDayLoad  map[string]map[models.Day]int
	studentDays   map[string][]models.Day
	studentPlaced map[string]int
}

func newState(constraints []models.Constraint) *state {
	return &state{
		capacity:      capacityGrid(constraints),
		spread:        spreadRule(constraints),
		cellLoad:      make(map[models.Cell]int),
		coachCells:    make(map[string]map[models.Cell]bool),
		coachDayLoad:  make(map[string]map[models.Day]int),
		studentDays:   make(map[string][]models.Day),
		studentPlaced: make(map[string]int),
	}
}

// fits checks the hard constraints shared by automatic and pinned placements.
func (s *state) fits(coach models.Coach, cell models.Cell) bool {
	if s.cellLoad[cell] >= s.capacity[cell] {
		return false
	}
	if s.coachCells[coach.ID][cell] {
		return false
	}
	return s.coachDayLoad[coach.ID][cell.Day] < coach.Preferences.DailyCap()
}

func (s *state) place(entry models.ScheduleEntry) {
	cell := entry.Cell()
	s.entries = append(s.entries, entry)
	s.cellLoad[cell]++

	if s.coachCells[entry.CoachID] == nil {
		s.coachCells[entry.CoachID] = make(map[models.Cell]bool)
	}
	s.coachCells[entry.CoachID][cell] = true

	if s.coachDayLoad[entry.CoachID] == nil {
		s.coachDayLoad[entry.CoachID] = make(map[models.Day]int)
	}
	s.coachDayLoad[entry.CoachID][cell.Day]++

	s.studentDays[entry.StudentID] = append(s.studentDays[entry.StudentID], cell.Day)
	s.studentPlaced[entry.StudentID]++
}

func (s *state) remaining(student models.Student) int {
	return student.LessonsPerWeek - s.studentPlaced[student.ID]
}

// unmet totals the lessons still missing across students.
func (s *state) unmet(students []models.Student) int {
	total := 0
	for _, student := range students {
		if n := s.remaining(student); n > 0 {
			total += n
		}
	}
	return total
}
