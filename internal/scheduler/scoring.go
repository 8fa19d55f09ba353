package scheduler

import (
	"math"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

// Infeasible is the score of a cell that violates a hard constraint.
var Infeasible = math.Inf(-1)

// Weights tunes the soft scoring terms. Penalties are stored as positive magnitudes.
type Weights struct {
	Base            float64
	PreferredSlot   float64
	AvoidSlot       float64
	PreferredDay    float64
	AvoidDay        float64
	SameDayLoad     float64
	SpareCapacity   float64
	Midweek         float64
	SpreadViolation float64
	BreakfastBonus  float64
	FruitBonus      float64
	RestBonus       float64
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Base:            1000,
		PreferredSlot:   50,
		AvoidSlot:       100,
		PreferredDay:    30,
		AvoidDay:        80,
		SameDayLoad:     20,
		SpareCapacity:   10,
		Midweek:         15,
		SpreadViolation: 200,
		BreakfastBonus:  5,
		FruitBonus:      3,
		RestBonus:       0,
	}
}

func (w Weights) slotBonus(slot models.Slot) float64 {
	switch slot {
	case models.SlotBreakfast:
		return w.BreakfastBonus
	case models.SlotFruit:
		return w.FruitBonus
	case models.SlotRest:
		return w.RestBonus
	default:
		return 0
	}
}

func isMidweek(day models.Day) bool {
	return day == models.DayTuesday || day == models.DayWednesday || day == models.DayThursday
}

// score rates placing student with coach in cell against the current state.
func (s *state) score(w Weights, student models.Student, coach models.Coach, cell models.Cell) float64 {
	if !s.fits(coach, cell) || student.IsUnavailable(cell) {
		return Infeasible
	}

	prefs := coach.Preferences
	dayLoad := s.coachDayLoad[coach.ID][cell.Day]
	spare := s.capacity[cell] - s.cellLoad[cell]

	score := w.Base
	if prefs.PrefersSlot(cell.Slot) {
		score += w.PreferredSlot
	}
	if prefs.AvoidsSlot(cell.Slot) {
		score -= w.AvoidSlot
	}
	if prefs.PrefersDay(cell.Day) {
		score += w.PreferredDay
	}
	if prefs.AvoidsDay(cell.Day) {
		score -= w.AvoidDay
	}
	score -= float64(dayLoad) * w.SameDayLoad
	score += float64(spare) * w.SpareCapacity
	if isMidweek(cell.Day) {
		score += w.Midweek
	}
	if !CanPlaceOnDay(cell.Day, s.studentDays[student.ID], s.spread) {
		score -= w.SpreadViolation
	}
	return score + w.slotBonus(cell.Slot)
}

// Score rates a candidate placement against an existing set of entries.
// Infeasible placements return Infeasible.
func Score(w Weights, student models.Student, coach models.Coach, cell models.Cell, placed []models.ScheduleEntry, constraints []models.Constraint) float64 {
	st := newState(constraints)
	for _, entry := range placed {
		st.place(entry)
	}
	return st.score(w, student, coach, cell)
}
