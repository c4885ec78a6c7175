// Package catalog loads ability catalogues and encounter plans from YAML
// (JSON documents are accepted as well).
package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/roster"
)

var validate = validator.New()

// File is the on-disk catalogue layout.
type File struct {
	Abilities []model.Ability     `yaml:"abilities" validate:"required,dive"`
	Stack     *model.StackResource `yaml:"stack,omitempty"`
}

// Plan is the on-disk encounter plan.
type Plan struct {
	Events      []model.Event     `yaml:"events" validate:"dive"`
	RawRoster   any               `yaml:"roster"`
	Level       int               `yaml:"level" validate:"gte=0"`
	Assignments model.Assignments `yaml:"assignments" validate:"dive,dive"`

	Roster roster.Selection `yaml:"-"`
}

// State converts the plan into an engine snapshot.
func (p Plan) State() cooldown.State {
	as := p.Assignments
	if as == nil {
		as = model.Assignments{}
	}
	return cooldown.State{Events: p.Events, Assignments: as, Roster: p.Roster, Level: p.Level}
}

// LoadCatalog reads and validates a catalogue file.
func LoadCatalog(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a catalogue document.
func ParseCatalog(data []byte) (*model.Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := checkCatalog(f); err != nil {
		return nil, err
	}
	return model.NewCatalog(f.Abilities, f.Stack), nil
}

// checkCatalog enforces the cross-record rules struct tags cannot express.
func checkCatalog(f File) error {
	ids := make(map[string]struct{}, len(f.Abilities))
	for _, a := range f.Abilities {
		if _, dup := ids[a.ID]; dup {
			return fmt.Errorf("%w: duplicate ability %q", ErrInvalidCatalog, a.ID)
		}
		ids[a.ID] = struct{}{}
	}
	for _, a := range f.Abilities {
		if w := a.RequiresActiveWindow; w != nil {
			if _, ok := ids[w.AbilityID]; !ok {
				return fmt.Errorf("%w: %q requires unknown ability %q", ErrInvalidCatalog, a.ID, w.AbilityID)
			}
		}
		if (a.ConsumesStack || a.ProvidesStack) && f.Stack == nil {
			return fmt.Errorf("%w: %q uses the stack resource but none is defined", ErrInvalidCatalog, a.ID)
		}
		if a.IsRoleShared && len(a.Jobs) == 0 {
			return fmt.Errorf("%w: role-shared %q has no jobs", ErrInvalidCatalog, a.ID)
		}
	}
	return nil
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("reading plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates a plan document. The roster accepts every
// shape roster.Normalize does.
func ParsePlan(data []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := validate.Struct(p); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	sel, err := roster.Normalize(p.RawRoster)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	p.Roster = sel
	seen := make(map[string]struct{}, len(p.Events))
	for _, ev := range p.Events {
		if _, dup := seen[ev.ID]; dup {
			return Plan{}, fmt.Errorf("%w: duplicate event %q", ErrInvalidPlan, ev.ID)
		}
		seen[ev.ID] = struct{}{}
	}
	return p, nil
}
