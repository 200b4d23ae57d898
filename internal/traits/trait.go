// Package traits models traits: named bundles of reversible effects with
// optional durations and mutual exclusions, attachable to characters and
// relationships alike.
package traits

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/talgya/hamlet/internal/defs"
	"github.com/talgya/hamlet/internal/stats"
)

var (
	ErrConflict       = errors.New("trait conflict")
	ErrAlreadyApplied = errors.New("trait already applied")
)

// ConflictError reports the applied traits that block a new one.
type ConflictError struct {
	Trait     string
	Conflicts []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("trait %q conflicts with %s", e.Trait, strings.Join(e.Conflicts, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Definition describes a trait. Definitions are immutable once registered.
type Definition struct {
	ID            string
	Name          string
	Description   string
	ConflictsWith []string
	Duration      int // ticks; 0 means permanent

	OnApply   []Effect
	Recurring []RecurringEffect
}

func (d *Definition) DefinitionID() string { return d.ID }

// Conflicts reports whether d excludes other, checking both definitions.
func (d *Definition) Conflicts(other *Definition) bool {
	return slices.Contains(d.ConflictsWith, other.ID) || slices.Contains(other.ConflictsWith, d.ID)
}

// Library is the registry of trait definitions.
type Library = defs.Library[*Definition]

func NewLibrary() *Library { return defs.NewLibrary[*Definition]("trait") }

// Holder is anything traits can attach to.
type Holder interface {
	Stats() *stats.Set
	Traits() *Set
}

// RuleHolder is a Holder that tracks social rules.
type RuleHolder interface {
	Holder
	AddRule(id string)
	RemoveRule(id string)
}

// PreferenceHolder is a Holder with location preferences keyed by source.
type PreferenceHolder interface {
	Holder
	AddPreference(source, kind string, weight float64)
	RemovePreferences(source string)
}

// Options control a single Add call.
type Options struct {
	// Override removes conflicting traits instead of failing.
	Override bool
	// Duration replaces the definition's duration when positive.
	Duration int
	// Source records who attached the trait.
	Source string
}

// Add attaches def to h and applies its on-apply effects.
func Add(h Holder, def *Definition, opts Options) error {
	set := h.Traits()
	if set.Has(def.ID) {
		return fmt.Errorf("%q: %w", def.ID, ErrAlreadyApplied)
	}

	conflicts := set.conflicting(def)
	if len(conflicts) > 0 {
		if !opts.Override {
			return &ConflictError{Trait: def.ID, Conflicts: conflicts}
		}
		for _, id := range conflicts {
			Remove(h, id)
		}
	}

	inst := &Instance{Def: def, Source: opts.Source, key: modifierSource(def.ID)}
	if opts.Duration > 0 {
		inst.Remaining = opts.Duration
	} else {
		inst.Remaining = def.Duration
	}
	inst.Timed = inst.Remaining > 0

	for _, e := range def.OnApply {
		if err := e.Apply(h, inst.key); err != nil {
			for i := len(inst.applied) - 1; i >= 0; i-- {
				inst.applied[i].Remove(h, inst.key)
			}
			return fmt.Errorf("apply trait %q: %w", def.ID, err)
		}
		inst.applied = append(inst.applied, e)
	}

	set.insert(inst)
	return nil
}

// Ensure attaches def unless it is already present.
func Ensure(h Holder, def *Definition, opts Options) error {
	err := Add(h, def, opts)
	if errors.Is(err, ErrAlreadyApplied) {
		return nil
	}
	return err
}

// Remove detaches the trait and reverses the effects recorded when it was applied.
func Remove(h Holder, id string) bool {
	set := h.Traits()
	inst, ok := set.items[id]
	if !ok {
		return false
	}
	for i := len(inst.applied) - 1; i >= 0; i-- {
		inst.applied[i].Remove(h, inst.key)
	}
	set.delete(id)
	return true
}

// Tick counts down timed traits by one and removes those that expire.
// It returns the IDs of the removed traits.
func Tick(h Holder) []string {
	set := h.Traits()
	var expired []string
	for _, id := range set.IDs() {
		inst := set.items[id]
		if !inst.Timed {
			continue
		}
		inst.Remaining--
		if inst.Remaining <= 0 {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		Remove(h, id)
	}
	return expired
}

// ApplyRecurring runs the recurring effects of every attached trait.
func ApplyRecurring(h Holder) error {
	set := h.Traits()
	for _, id := range set.IDs() {
		for _, e := range set.items[id].Def.Recurring {
			if err := e.Apply(h); err != nil {
				return fmt.Errorf("recurring effect of %q: %w", id, err)
			}
		}
	}
	return nil
}

func modifierSource(id string) string { return "trait:" + id }
