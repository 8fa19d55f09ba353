package scheduler

import "github.com/noah-isme/tennis-lesson-scheduler/internal/models"

const (
	// DefaultMaxCoaches is the max_coaches value shipped in the default catalogue.
	DefaultMaxCoaches = 3
	// FallbackCapacity applies when no max_coaches constraint is active.
	FallbackCapacity = DefaultMaxCoaches + 1
)

// BaseCapacity returns the value of the first active max_coaches constraint,
// or FallbackCapacity.
func BaseCapacity(constraints []models.Constraint) int {
	for _, c := range constraints {
		if !c.Active() {
			continue
		}
		if v, ok := c.Value.(models.MaxCoachesValue); ok {
			return v.Max
		}
	}
	return FallbackCapacity
}

// Capacity returns how many concurrent lessons the cell can host. Only the first
// active reduce_slot constraint targeting the cell applies; reductions never stack.
func Capacity(cell models.Cell, constraints []models.Constraint) int {
	base := BaseCapacity(constraints)
	for _, c := range constraints {
		if !c.Active() {
			continue
		}
		v, ok := c.Value.(models.ReduceSlotValue)
		if !ok || v.Cell() != cell {
			continue
		}
		return base * (100 - v.Reduction) / 100
	}
	return base
}

func capacityGrid(constraints []models.Constraint) map[models.Cell]int {
	grid := make(map[models.Cell]int, len(models.WeekDays)*len(models.DailySlots))
	for _, cell := range models.WeekCells() {
		grid[cell] = Capacity(cell, constraints)
	}
	return grid
}
