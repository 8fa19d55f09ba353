package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

func TestFoldPreferences(t *testing.T) {
	coaches := []models.Coach{
		{ID: "c1", Preferences: models.CoachPreferences{AvoidSlots: []models.Slot{models.SlotRest}}},
		{ID: "c2"},
	}
	constraints := []models.Constraint{
		{ID: "a", Kind: models.ConstraintAvoidSlot, Enabled: true, Value: models.AvoidSlotValue{CoachID: "c1", Day: models.DayFriday, Slot: models.SlotRest}},
		{ID: "b", Kind: models.ConstraintCoachPreference, Enabled: true, Value: models.CoachPreferenceValue{
			CoachID:           models.AllCoaches,
			PreferredSlots:    []models.Slot{models.SlotBreakfast},
			MaxSessionsPerDay: 2,
		}},
		{ID: "c", Kind: models.ConstraintAvoidSlot, Enabled: false, Value: models.AvoidSlotValue{CoachID: "c2", Day: models.DayMonday}},
	}

	folded := FoldPreferences(coaches, constraints)
	require.Len(t, folded, 2)

	assert.Equal(t, []models.Slot{models.SlotRest}, folded[0].Preferences.AvoidSlots)
	assert.Equal(t, []models.Day{models.DayFriday}, folded[0].Preferences.AvoidDays)
	assert.Equal(t, []models.Slot{models.SlotBreakfast}, folded[0].Preferences.PreferredSlots)
	assert.Equal(t, 2, folded[0].Preferences.DailyCap())

	assert.Empty(t, folded[1].Preferences.AvoidDays)
	assert.Equal(t, []models.Slot{models.SlotBreakfast}, folded[1].Preferences.PreferredSlots)

	assert.Nil(t, coaches[0].Preferences.AvoidDays, "input coaches must not be mutated")
	assert.Empty(t, coaches[1].Preferences.PreferredSlots)
}
