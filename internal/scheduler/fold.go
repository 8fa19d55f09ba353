package scheduler

import "github.com/noah-isme/tennis-lesson-scheduler/internal/models"

// FoldPreferences returns copies of coaches with active avoid_slot and
// coach_preference constraints merged into their preferences. An avoid_slot
// naming both a day and a slot avoids each independently.
func FoldPreferences(coaches []models.Coach, constraints []models.Constraint) []models.Coach {
	folded := make([]models.Coach, len(coaches))
	for i, coach := range coaches {
		coach.Preferences = coach.Preferences.Clone()
		for _, c := range constraints {
			if !c.Active() {
				continue
			}
			switch v := c.Value.(type) {
			case models.AvoidSlotValue:
				if !v.AppliesTo(coach.ID) {
					continue
				}
				if v.Day != "" {
					coach.Preferences.AvoidDays = addDay(coach.Preferences.AvoidDays, v.Day)
				}
				if v.Slot != "" {
					coach.Preferences.AvoidSlots = addSlot(coach.Preferences.AvoidSlots, v.Slot)
				}
			case models.CoachPreferenceValue:
				if !v.AppliesTo(coach.ID) {
					continue
				}
				p := &coach.Preferences
				for _, s := range v.PreferredSlots {
					p.PreferredSlots = addSlot(p.PreferredSlots, s)
				}
				for _, s := range v.AvoidSlots {
					p.AvoidSlots = addSlot(p.AvoidSlots, s)
				}
				for _, d := range v.PreferredDays {
					p.PreferredDays = addDay(p.PreferredDays, d)
				}
				for _, d := range v.AvoidDays {
					p.AvoidDays = addDay(p.AvoidDays, d)
				}
				if v.MaxSessionsPerDay > 0 {
					p.MaxSessionsPerDay = v.MaxSessionsPerDay
				}
			}
		}
		folded[i] = coach
	}
	return folded
}

func addSlot(list []models.Slot, slot models.Slot) []models.Slot {
	for _, s := range list {
		if s == slot {
			return list
		}
	}
	return append(list, slot)
}

func addDay(list []models.Day, day models.Day) []models.Day {
	for _, d := range list {
		if d == day {
			return list
		}
	}
	return append(list, day)
}
