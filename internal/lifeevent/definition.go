package lifeevent

import (
	"errors"
	"fmt"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/query"
)

var ErrInvalidDefinition = errors.New("invalid life event definition")

// Probability yields the chance an event fires for a bound instance.
type Probability interface {
	Of(w *ecs.World, inst *Instance) float64
}

// Constant is a fixed probability.
type Constant float64

func (c Constant) Of(*ecs.World, *Instance) float64 { return float64(c) }

// ProbabilityFunc computes a probability from the world and the bound roles.
type ProbabilityFunc func(w *ecs.World, inst *Instance) float64

func (f ProbabilityFunc) Of(w *ecs.World, inst *Instance) float64 { return f(w, inst) }

// SelectMode controls how candidate bindings become firing attempts.
type SelectMode uint8

const (
	// SelectEach gates every candidate binding independently.
	SelectEach SelectMode = iota
	// SelectOne draws a single binding from the pool by weight.
	SelectOne
)

// RoleSpec names a role and the binder that fills it.
type RoleSpec struct {
	Name   string
	Binder Binder
}

// Effect mutates the world when an event fires.
type Effect func(w *ecs.World, inst *Instance) error

// Definition describes a life event. Exactly one of Pattern or Roles
// produces its candidate bindings.
type Definition struct {
	Name    string
	Pattern *query.Query
	Roles   []RoleSpec

	// Distinct rejects bindings that put one entity in two roles.
	Distinct bool
	Select   SelectMode
	// Weight scores a candidate for SelectOne. Nil means uniform.
	Weight func(w *ecs.World, roles []Role) float64

	Probability Probability
	Effect      Effect
}

func (d *Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("missing name: %w", ErrInvalidDefinition)
	}
	if (d.Pattern == nil) == (len(d.Roles) == 0) {
		return fmt.Errorf("%s: needs exactly one of pattern or roles: %w", d.Name, ErrInvalidDefinition)
	}
	if d.Effect == nil {
		return fmt.Errorf("%s: missing effect: %w", d.Name, ErrInvalidDefinition)
	}
	seen := map[string]bool{}
	for _, r := range d.Roles {
		if !query.ValidVariable(r.Name) {
			return fmt.Errorf("%s: role %q: %w", d.Name, r.Name, query.ErrInvalidVariable)
		}
		if seen[r.Name] {
			return fmt.Errorf("%s: role %q listed twice: %w", d.Name, r.Name, ErrInvalidDefinition)
		}
		if r.Binder == nil {
			return fmt.Errorf("%s: role %q has no binder: %w", d.Name, r.Name, ErrInvalidDefinition)
		}
		seen[r.Name] = true
	}
	return nil
}

func (d *Definition) roleNames() []string {
	if d.Pattern != nil {
		return d.Pattern.Find()
	}
	names := make([]string, len(d.Roles))
	for i, r := range d.Roles {
		names[i] = r.Name
	}
	return names
}

func (d *Definition) probability(w *ecs.World, inst *Instance) float64 {
	if d.Probability == nil {
		return 1
	}
	p := d.Probability.Of(w, inst)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func distinct(roles []Role) bool {
	seen := make(map[ecs.EntityID]bool, len(roles))
	for _, r := range roles {
		if seen[r.Entity] {
			return false
		}
		seen[r.Entity] = true
	}
	return true
}
