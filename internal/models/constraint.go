package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ConstraintKind tags the payload carried by a Constraint.
type ConstraintKind string

const (
	ConstraintMaxCoaches      ConstraintKind = "max_coaches"
	ConstraintReduceSlot      ConstraintKind = "reduce_slot"
	ConstraintAvoidSlot       ConstraintKind = "avoid_slot"
	ConstraintCoachPreference ConstraintKind = "coach_preference"
	ConstraintStudentSpread   ConstraintKind = "student_spread"
	ConstraintCoachBalance    ConstraintKind = "coach_balance"
)

// AllCoaches as a coach_id targets every coach.
const AllCoaches = "*"

// ErrMalformedConstraint marks a payload that cannot be applied.
var ErrMalformedConstraint = errors.New("malformed constraint value")

func appliesTo(target, coachID string) bool {
	return target == AllCoaches || target == coachID
}

// ConstraintValue is implemented by every typed constraint payload.
type ConstraintValue interface {
	Kind() ConstraintKind
	Validate() error
}

// MaxCoachesValue caps concurrent lessons per cell.
type MaxCoachesValue struct {
	Max int `json:"max" yaml:"max"`
}

func (MaxCoachesValue) Kind() ConstraintKind { return ConstraintMaxCoaches }

func (v MaxCoachesValue) Validate() error {
	if v.Max < 1 {
		return fmt.Errorf("%w: max must be >= 1", ErrMalformedConstraint)
	}
	return nil
}

// ReduceSlotValue reduces one cell's capacity by Reduction percent.
type ReduceSlotValue struct {
	Day       Day  `json:"day" yaml:"day"`
	Slot      Slot `json:"slot" yaml:"slot"`
	Reduction int  `json:"reduction" yaml:"reduction"`
}

func (ReduceSlotValue) Kind() ConstraintKind { return ConstraintReduceSlot }

func (v ReduceSlotValue) Validate() error {
	if !v.Day.Valid() || !v.Slot.Valid() {
		return fmt.Errorf("%w: unknown cell %s/%s", ErrMalformedConstraint, v.Day, v.Slot)
	}
	if v.Reduction < 0 || v.Reduction > 100 {
		return fmt.Errorf("%w: reduction %d outside 0-100", ErrMalformedConstraint, v.Reduction)
	}
	return nil
}

// Cell returns the targeted cell.
func (v ReduceSlotValue) Cell() Cell { return Cell{Day: v.Day, Slot: v.Slot} }

// AvoidSlotValue marks a day and/or slot a coach would rather not teach.
type AvoidSlotValue struct {
	CoachID string `json:"coach_id" yaml:"coach_id"`
	Day     Day    `json:"day,omitempty" yaml:"day,omitempty"`
	Slot    Slot   `json:"slot,omitempty" yaml:"slot,omitempty"`
}

func (AvoidSlotValue) Kind() ConstraintKind { return ConstraintAvoidSlot }

// AppliesTo reports whether the payload targets coachID.
func (v AvoidSlotValue) AppliesTo(coachID string) bool { return appliesTo(v.CoachID, coachID) }

func (v AvoidSlotValue) Validate() error {
	if v.CoachID == "" {
		return fmt.Errorf("%w: coach_id required", ErrMalformedConstraint)
	}
	if v.Day == "" && v.Slot == "" {
		return fmt.Errorf("%w: day or slot required", ErrMalformedConstraint)
	}
	if (v.Day != "" && !v.Day.Valid()) || (v.Slot != "" && !v.Slot.Valid()) {
		return fmt.Errorf("%w: unknown day or slot", ErrMalformedConstraint)
	}
	return nil
}

// CoachPreferenceValue carries preferences to merge into one coach.
type CoachPreferenceValue struct {
	CoachID           string `json:"coach_id" yaml:"coach_id"`
	PreferredSlots    []Slot `json:"preferred_slots,omitempty" yaml:"preferred_slots,omitempty"`
	AvoidSlots        []Slot `json:"avoid_slots,omitempty" yaml:"avoid_slots,omitempty"`
	PreferredDays     []Day  `json:"preferred_days,omitempty" yaml:"preferred_days,omitempty"`
	AvoidDays         []Day  `json:"avoid_days,omitempty" yaml:"avoid_days,omitempty"`
	MaxSessionsPerDay int    `json:"max_sessions_per_day,omitempty" yaml:"max_sessions_per_day,omitempty"`
}

func (CoachPreferenceValue) Kind() ConstraintKind { return ConstraintCoachPreference }

// AppliesTo reports whether the payload targets coachID.
func (v CoachPreferenceValue) AppliesTo(coachID string) bool { return appliesTo(v.CoachID, coachID) }

func (v CoachPreferenceValue) Validate() error {
	if v.CoachID == "" {
		return fmt.Errorf("%w: coach_id required", ErrMalformedConstraint)
	}
	for _, s := range append(append([]Slot(nil), v.PreferredSlots...), v.AvoidSlots...) {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown slot %q", ErrMalformedConstraint, s)
		}
	}
	for _, d := range append(append([]Day(nil), v.PreferredDays...), v.AvoidDays...) {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown day %q", ErrMalformedConstraint, d)
		}
	}
	if v.MaxSessionsPerDay < 0 {
		return fmt.Errorf("%w: negative max_sessions_per_day", ErrMalformedConstraint)
	}
	return nil
}

// StudentSpreadValue discourages a student's lessons within MinDaysBetween days.
type StudentSpreadValue struct {
	MinDaysBetween int `json:"min_days_between" yaml:"min_days_between"`
}

func (StudentSpreadValue) Kind() ConstraintKind { return ConstraintStudentSpread }

func (v StudentSpreadValue) Validate() error {
	if v.MinDaysBetween < 0 || v.MinDaysBetween >= len(WeekDays) {
		return fmt.Errorf("%w: min_days_between %d outside 0-%d", ErrMalformedConstraint, v.MinDaysBetween, len(WeekDays)-1)
	}
	return nil
}

// CoachBalanceValue flags uneven lesson counts across coaches.
type CoachBalanceValue struct {
	MaxDifference int `json:"max_difference" yaml:"max_difference"`
}

func (CoachBalanceValue) Kind() ConstraintKind { return ConstraintCoachBalance }

func (v CoachBalanceValue) Validate() error {
	if v.MaxDifference < 0 {
		return fmt.Errorf("%w: negative max_difference", ErrMalformedConstraint)
	}
	return nil
}

// Constraint is a user-toggleable scheduling rule. Value is nil when the stored
// payload could not be decoded; such constraints never match anything.
type Constraint struct {
	ID          string          `json:"id"`
	Kind        ConstraintKind  `json:"kind"`
	Description string          `json:"description"`
	Enabled     bool            `json:"enabled"`
	Priority    int             `json:"priority"`
	Value       ConstraintValue `json:"value"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type constraintEnvelope struct {
	ID          string          `json:"id"`
	Kind        ConstraintKind  `json:"kind"`
	Description string          `json:"description"`
	Enabled     bool            `json:"enabled"`
	Priority    int             `json:"priority"`
	Value       json.RawMessage `json:"value"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UnmarshalJSON decodes the payload according to Kind. A bad payload leaves
// Value nil instead of failing the whole document.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var env constraintEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*c = Constraint{
		ID:          env.ID,
		Kind:        env.Kind,
		Description: env.Description,
		Enabled:     env.Enabled,
		Priority:    env.Priority,
		UpdatedAt:   env.UpdatedAt,
	}
	if value, err := DecodeConstraintValue(env.Kind, env.Value); err == nil {
		c.Value = value
	}
	return nil
}

// Active reports whether the constraint is enabled and carries a usable payload.
// Out-of-range payloads built in code are inert just like undecodable ones.
func (c Constraint) Active() bool {
	return c.Enabled && c.Value != nil && c.Value.Kind() == c.Kind && c.Value.Validate() == nil
}

// DecodeConstraintValue parses raw JSON into the payload type for kind.
func DecodeConstraintValue(kind ConstraintKind, raw []byte) (ConstraintValue, error) {
	var value ConstraintValue
	var err error
	switch kind {
	case ConstraintMaxCoaches:
		var v MaxCoachesValue
		err = json.Unmarshal(raw, &v)
		value = v
	case ConstraintReduceSlot:
		var v ReduceSlotValue
		err = json.Unmarshal(raw, &v)
		value = v
	case ConstraintAvoidSlot:
		var v AvoidSlotValue
		err = json.Unmarshal(raw, &v)
		value = v
	case ConstraintCoachPreference:
		var v CoachPreferenceValue
		err = json.Unmarshal(raw, &v)
		value = v
	case ConstraintStudentSpread:
		var v StudentSpreadValue
		err = json.Unmarshal(raw, &v)
		value = v
	case ConstraintCoachBalance:
		var v CoachBalanceValue
		err = json.Unmarshal(raw, &v)
		value = v
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedConstraint, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConstraint, err)
	}
	if err := value.Validate(); err != nil {
		return nil, err
	}
	return value, nil
}

// ConstraintRecord is the scheduling_constraints row.
type ConstraintRecord struct {
	ID          string         `db:"id"`
	Kind        ConstraintKind `db:"kind"`
	Description string         `db:"description"`
	Enabled     bool           `db:"enabled"`
	Priority    int            `db:"priority"`
	Value       types.JSONText `db:"value"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Constraint converts the row, dropping undecodable payloads.
func (r ConstraintRecord) Constraint() Constraint {
	c := Constraint{
		ID:          r.ID,
		Kind:        r.Kind,
		Description: r.Description,
		Enabled:     r.Enabled,
		Priority:    r.Priority,
		UpdatedAt:   r.UpdatedAt,
	}
	if value, err := DecodeConstraintValue(r.Kind, r.Value); err == nil {
		c.Value = value
	}
	return c
}

// NewConstraintRecord encodes a constraint for storage.
func NewConstraintRecord(c Constraint) (ConstraintRecord, error) {
	raw := types.JSONText(`{}`)
	if c.Value != nil {
		encoded, err := json.Marshal(c.Value)
		if err != nil {
			return ConstraintRecord{}, fmt.Errorf("encode constraint value: %w", err)
		}
		raw = types.JSONText(encoded)
	}
	return ConstraintRecord{
		ID:          c.ID,
		Kind:        c.Kind,
		Description: c.Description,
		Enabled:     c.Enabled,
		Priority:    c.Priority,
		Value:       raw,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}
