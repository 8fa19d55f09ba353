package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// DefaultMaxSessionsPerDay applies when a coach has no usable daily cap.
const DefaultMaxSessionsPerDay = 3

// CoachPreferences holds a coach's soft slot/day preferences and daily cap.
type CoachPreferences struct {
	PreferredSlots    []Slot `json:"preferred_slots"`
	AvoidSlots        []Slot `json:"avoid_slots"`
	PreferredDays     []Day  `json:"preferred_days"`
	AvoidDays         []Day  `json:"avoid_days"`
	MaxSessionsPerDay int    `json:"max_sessions_per_day"`
}

// PrefersSlot reports whether the slot is in the preferred set.
func (p CoachPreferences) PrefersSlot(slot Slot) bool { return containsSlot(p.PreferredSlots, slot) }

// AvoidsSlot reports whether the slot is in the avoided set.
func (p CoachPreferences) AvoidsSlot(slot Slot) bool { return containsSlot(p.AvoidSlots, slot) }

// PrefersDay reports whether the day is in the preferred set.
func (p CoachPreferences) PrefersDay(day Day) bool { return containsDay(p.PreferredDays, day) }

// AvoidsDay reports whether the day is in the avoided set.
func (p CoachPreferences) AvoidsDay(day Day) bool { return containsDay(p.AvoidDays, day) }

// DailyCap returns MaxSessionsPerDay, falling back to the default for values below 1.
func (p CoachPreferences) DailyCap() int {
	if p.MaxSessionsPerDay < 1 {
		return DefaultMaxSessionsPerDay
	}
	return p.MaxSessionsPerDay
}

// Clone returns a deep copy.
func (p CoachPreferences) Clone() CoachPreferences {
	return CoachPreferences{
		PreferredSlots:    append([]Slot(nil), p.PreferredSlots...),
		AvoidSlots:        append([]Slot(nil), p.AvoidSlots...),
		PreferredDays:     append([]Day(nil), p.PreferredDays...),
		AvoidDays:         append([]Day(nil), p.AvoidDays...),
		MaxSessionsPerDay: p.MaxSessionsPerDay,
	}
}

// Value implements driver.Valuer.
func (p CoachPreferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *CoachPreferences) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*p = CoachPreferences{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// Coach teaches lessons; immutable for the duration of a scheduling run.
type Coach struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Preferences CoachPreferences `db:"preferences" json:"preferences"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

func containsSlot(list []Slot, slot Slot) bool {
	for _, s := range list {
		if s == slot {
			return true
		}
	}
	return false
}

func containsDay(list []Day, day Day) bool {
	for _, d := range list {
		if d == day {
			return true
		}
	}
	return false
}
