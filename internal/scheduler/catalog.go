package scheduler

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	defaultOnce        sync.Once
	defaultConstraints []models.Constraint
)

type catalogFile struct {
	Constraints []catalogEntry `yaml:"constraints"`
}

type catalogEntry struct {
	ID          string                `yaml:"id"`
	Kind        models.ConstraintKind `yaml:"kind"`
	Description string                `yaml:"description"`
	Enabled     bool                  `yaml:"enabled"`
	Priority    int                   `yaml:"priority"`
	Value       yaml.Node             `yaml:"value"`
}

// DefaultConstraints returns a fresh copy of the built-in constraint catalogue.
func DefaultConstraints() []models.Constraint {
	defaultOnce.Do(func() {
		catalog, err := LoadCatalog(bytes.NewReader(defaultCatalog))
		if err != nil {
			panic(fmt.Sprintf("scheduler: embedded catalog: %v", err))
		}
		defaultConstraints = catalog
	})
	return append([]models.Constraint(nil), defaultConstraints...)
}

// LoadCatalogFile reads a catalogue from disk.
func LoadCatalogFile(path string) ([]models.Constraint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog parses a YAML constraint catalogue. Entries whose payload does
// not decode are kept with a nil Value so they stay visible but inert.
func LoadCatalog(r io.Reader) ([]models.Constraint, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Constraints))
	constraints := make([]models.Constraint, 0, len(file.Constraints))
	for _, entry := range file.Constraints {
		if entry.ID == "" {
			return nil, fmt.Errorf("catalog entry of kind %q has no id", entry.Kind)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}

		c := models.Constraint{
			ID:          entry.ID,
			Kind:        entry.Kind,
			Description: entry.Description,
			Enabled:     entry.Enabled,
			Priority:    entry.Priority,
		}
		if value, err := decodeYAMLValue(entry.Kind, &entry.Value); err == nil {
			c.Value = value
		}
		constraints = append(constraints, c)
	}
	return constraints, nil
}

func decodeYAMLValue(kind models.ConstraintKind, node *yaml.Node) (models.ConstraintValue, error) {
	var value models.ConstraintValue
	var err error
	switch kind {
	case models.ConstraintMaxCoaches:
		var v models.MaxCoachesValue
		err = node.Decode(&v)
		value = v
	case models.ConstraintReduceSlot:
		var v models.ReduceSlotValue
		err = node.Decode(&v)
		value = v
	case models.ConstraintAvoidSlot:
		var v models.AvoidSlotValue
		err = node.Decode(&v)
		value = v
	case models.ConstraintCoachPreference:
		var v models.CoachPreferenceValue
		err = node.Decode(&v)
		value = v
	case models.ConstraintStudentSpread:
		var v models.StudentSpreadValue
		err = node.Decode(&v)
		value = v
	case models.ConstraintCoachBalance:
		var v models.CoachBalanceValue
		err = node.Decode(&v)
		value = v
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", models.ErrMalformedConstraint, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedConstraint, err)
	}
	if err := value.Validate(); err != nil {
		return nil, err
	}
	return value, nil
}
