package lifeevent

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hamlet/internal/defs"
	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/simtime"
)

// Engine holds registered life events and evaluates them against a world.
// It reads the world's *entropy.Rand, *simtime.Clock and *Dispatcher resources.
type Engine struct {
	defs     []*Definition
	byName   map[string]*Definition
	disabled map[string]bool
}

func NewEngine() *Engine {
	return &Engine{byName: make(map[string]*Definition), disabled: make(map[string]bool)}
}

// Register validates and adds definitions. Evaluation follows registration order.
func (e *Engine) Register(list ...*Definition) error {
	for _, d := range list {
		if err := d.validate(); err != nil {
			return err
		}
		if _, dup := e.byName[d.Name]; dup {
			return fmt.Errorf("life event %q: %w", d.Name, defs.ErrDuplicateDefinition)
		}
		e.defs = append(e.defs, d)
		e.byName[d.Name] = d
	}
	return nil
}

// Get returns the named definition.
func (e *Engine) Get(name string) (*Definition, error) {
	d, ok := e.byName[name]
	if !ok {
		return nil, fmt.Errorf("life event %q: %w", name, defs.ErrUnknownDefinition)
	}
	return d, nil
}

// Definitions returns registered definitions in order.
func (e *Engine) Definitions() []*Definition {
	return append([]*Definition(nil), e.defs...)
}

// SetEnabled turns an event on or off for Step.
func (e *Engine) SetEnabled(name string, on bool) {
	if on {
		delete(e.disabled, name)
	} else {
		e.disabled[name] = true
	}
}

func (e *Engine) Enabled(name string) bool { return !e.disabled[name] }

// Step evaluates every enabled event once and returns the instances that fired.
func (e *Engine) Step(w *ecs.World) ([]*Instance, error) {
	var fired []*Instance
	for _, d := range e.defs {
		if e.disabled[d.Name] {
			continue
		}
		got, err := e.Evaluate(w, d)
		if err != nil {
			return fired, err
		}
		fired = append(fired, got...)
	}
	return fired, nil
}

// Candidates returns every binding that currently satisfies d's preconditions.
func (e *Engine) Candidates(w *ecs.World, d *Definition) [][]Role {
	names := d.roleNames()
	var out [][]Role

	if d.Pattern != nil {
		for _, t := range d.Pattern.Evaluate(w) {
			roles := rolesFrom(names, t)
			if d.Distinct && !distinct(roles) {
				continue
			}
			out = append(out, roles)
		}
		return out
	}

	pools := make([][]ecs.EntityID, len(d.Roles))
	for i, r := range d.Roles {
		pools[i] = r.Binder.Enumerate(w)
		if len(pools[i]) == 0 {
			return nil
		}
	}
	cross(pools, make([]ecs.EntityID, 0, len(pools)), func(t []ecs.EntityID) {
		roles := rolesFrom(names, t)
		if d.Distinct && !distinct(roles) {
			return
		}
		out = append(out, roles)
	})
	return out
}

func cross(pools [][]ecs.EntityID, prefix []ecs.EntityID, emit func([]ecs.EntityID)) {
	if len(prefix) == len(pools) {
		emit(append([]ecs.EntityID(nil), prefix...))
		return
	}
	for _, id := range pools[len(prefix)] {
		cross(pools, append(prefix, id), emit)
	}
}

// Valid re-checks a binding against the current world.
func (e *Engine) Valid(w *ecs.World, d *Definition, roles []Role) bool {
	if d.Distinct && !distinct(roles) {
		return false
	}
	if d.Pattern != nil {
		return len(d.Pattern.EvaluateWith(w, roleMap(roles))) > 0
	}
	if len(roles) != len(d.Roles) {
		return false
	}
	for i, r := range d.Roles {
		if roles[i].Name != r.Name || !r.Binder.Validate(w, roles[i].Entity) {
			return false
		}
	}
	return true
}

// Evaluate discovers candidates for d, selects among them and fires those
// that pass the probability gate.
func (e *Engine) Evaluate(w *ecs.World, d *Definition) ([]*Instance, error) {
	cands := e.Candidates(w, d)
	if len(cands) == 0 {
		return nil, nil
	}

	if d.Select == SelectOne {
		rng, err := ecs.Resource[*entropy.Rand](w)
		if err != nil {
			return nil, err
		}
		weights := make([]float64, len(cands))
		for i, c := range cands {
			weights[i] = 1
			if d.Weight != nil {
				weights[i] = d.Weight(w, c)
			}
		}
		idx, ok := rng.WeightedIndex(weights)
		if !ok {
			return nil, nil
		}
		inst, err := e.Fire(w, d, cands[idx])
		if err != nil || inst == nil {
			return nil, err
		}
		return []*Instance{inst}, nil
	}

	var fired []*Instance
	for _, c := range cands {
		// Earlier firings may have invalidated later bindings.
		if len(fired) > 0 && !e.Valid(w, d, c) {
			continue
		}
		inst, err := e.Fire(w, d, c)
		if err != nil {
			return fired, err
		}
		if inst != nil {
			fired = append(fired, inst)
		}
	}
	return fired, nil
}

// Fire runs the probability gate for a binding and, on success, applies the
// effect and records the event. It returns nil when the gate fails.
func (e *Engine) Fire(w *ecs.World, d *Definition, roles []Role) (*Instance, error) {
	rng, err := ecs.Resource[*entropy.Rand](w)
	if err != nil {
		return nil, err
	}
	clock, err := ecs.Resource[*simtime.Clock](w)
	if err != nil {
		return nil, err
	}
	disp, err := ecs.Resource[*Dispatcher](w)
	if err != nil {
		return nil, err
	}

	inst := &Instance{Type: d.Name, Date: clock.Now, Roles: roles}
	p := d.probability(w, inst)
	if rng.Float() >= p {
		slog.Debug("life event gated", "type", d.Name, "p", p)
		return nil, nil
	}

	if err := d.Effect(w, inst); err != nil {
		return nil, fmt.Errorf("life event %s: %w", d.Name, err)
	}
	if err := disp.Record(w, inst); err != nil {
		return nil, err
	}
	return inst, nil
}
