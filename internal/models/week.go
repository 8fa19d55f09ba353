package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Day is a lesson weekday code.
type Day string

const (
	DayMonday    Day = "mon"
	DayTuesday   Day = "tue"
	DayWednesday Day = "wed"
	DayThursday  Day = "thu"
	DayFriday    Day = "fri"
)

// WeekDays lists the scheduling days in enumeration order.
var WeekDays = []Day{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday}

var dayLabels = map[Day]string{
	DayMonday:    "Mon",
	DayTuesday:   "Tue",
	DayWednesday: "Wed",
	DayThursday:  "Thu",
	DayFriday:    "Fri",
}

var dayAliases = map[string]Day{
	"mon": DayMonday, "monday": DayMonday,
	"tue": DayTuesday, "tuesday": DayTuesday,
	"wed": DayWednesday, "wednesday": DayWednesday,
	"thu": DayThursday, "thursday": DayThursday,
	"fri": DayFriday, "friday": DayFriday,
}

// Valid reports whether d is one of the five lesson days.
func (d Day) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// Index returns 0..4 for Mon..Fri, -1 for unknown days.
func (d Day) Index() int {
	for i, day := range WeekDays {
		if day == d {
			return i
		}
	}
	return -1
}

// Label returns the short display name.
func (d Day) Label() string {
	if label, ok := dayLabels[d]; ok {
		return label
	}
	return string(d)
}

// ParseDay accepts short or long English day names in any case.
func ParseDay(raw string) (Day, bool) {
	day, ok := dayAliases[strings.ToLower(strings.TrimSpace(raw))]
	return day, ok
}

// Slot is one of the three fixed lesson windows in a day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotFruit     Slot = "fruit"
	SlotRest      Slot = "rest"
)

// DailySlots lists the slots in enumeration order.
var DailySlots = []Slot{SlotBreakfast, SlotFruit, SlotRest}

var slotLabels = map[Slot]string{
	SlotBreakfast: "Breakfast",
	SlotFruit:     "Fruit",
	SlotRest:      "Rest",
}

var slotTimes = map[Slot]string{
	SlotBreakfast: "07:45-08:30",
	SlotFruit:     "10:15-11:00",
	SlotRest:      "13:00-13:45",
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	_, ok := slotLabels[s]
	return ok
}

// Label returns the display name.
func (s Slot) Label() string {
	if label, ok := slotLabels[s]; ok {
		return label
	}
	return string(s)
}

// TimeLabel returns the wall-clock window of the slot.
func (s Slot) TimeLabel() string {
	return slotTimes[s]
}

// ParseSlot accepts slot names in any case.
func ParseSlot(raw string) (Slot, bool) {
	slot := Slot(strings.ToLower(strings.TrimSpace(raw)))
	return slot, slot.Valid()
}

// Cell is a (day, slot) position in the weekly grid.
type Cell struct {
	Day  Day  `json:"day" yaml:"day"`
	Slot Slot `json:"slot" yaml:"slot"`
}

// Valid reports whether both coordinates are known.
func (c Cell) Valid() bool {
	return c.Day.Valid() && c.Slot.Valid()
}

// Label renders the cell as "Mon Breakfast".
func (c Cell) Label() string {
	return fmt.Sprintf("%s %s", c.Day.Label(), c.Slot.Label())
}

// WeekCells returns all 15 cells, days outer and slots inner.
func WeekCells() []Cell {
	cells := make([]Cell, 0, len(WeekDays)*len(DailySlots))
	for _, day := range WeekDays {
		for _, slot := range DailySlots {
			cells = append(cells, Cell{Day: day, Slot: slot})
		}
	}
	return cells
}

// CellList is a JSON-backed column of cells.
type CellList []Cell

// Contains reports whether the list holds the cell.
func (l CellList) Contains(cell Cell) bool {
	for _, c := range l {
		if c == cell {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (l CellList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *CellList) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", src)
	}
}
