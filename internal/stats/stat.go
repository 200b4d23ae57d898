// Package stats implements bounded numeric stats with stacked modifiers.
//
// A stat's effective value is (base + sum of flat modifiers) * (1 + sum of
// percent modifiers), clamped to its bounds. The value is cached and only
// recomputed after a change.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownStat = errors.New("unknown stat")

// ModifierKind selects how a modifier combines with the base value.
type ModifierKind uint8

const (
	Flat    ModifierKind = iota // added to base
	Percent                     // summed, then scales the flat total
)

// Modifier adjusts a stat. Source identifies who applied it so it can be removed later.
type Modifier struct {
	Value  float64      `json:"value"`
	Kind   ModifierKind `json:"kind"`
	Source string       `json:"source"`
}

// Stat is a bounded value with modifiers.
type Stat struct {
	base      float64
	min, max  float64
	discrete  bool
	modifiers []Modifier

	value      float64
	dirty      bool
	recomputes int
}

// New creates a stat clamped to [min, max].
func New(base, min, max float64) *Stat {
	s := &Stat{min: min, max: max, dirty: true}
	s.base = s.clamp(base)
	return s
}

// NewDiscrete creates a stat whose effective value is rounded to an integer.
func NewDiscrete(base, min, max float64) *Stat {
	s := New(base, min, max)
	s.discrete = true
	return s
}

func (s *Stat) Base() float64 { return s.base }

func (s *Stat) Bounds() (float64, float64) { return s.min, s.max }

// SetBase replaces the base value.
func (s *Stat) SetBase(v float64) {
	s.base = s.clamp(v)
	s.dirty = true
}

// AddBase shifts the base value by delta.
func (s *Stat) AddBase(delta float64) {
	s.SetBase(s.base + delta)
}

// AddModifier attaches a modifier.
func (s *Stat) AddModifier(m Modifier) {
	s.modifiers = append(s.modifiers, m)
	s.dirty = true
}

// RemoveModifiersFromSource detaches every modifier applied by source and
// returns how many were removed.
func (s *Stat) RemoveModifiersFromSource(source string) int {
	kept := s.modifiers[:0]
	removed := 0
	for _, m := range s.modifiers {
		if m.Source == source {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.modifiers = kept
	if removed > 0 {
		s.dirty = true
	}
	return removed
}

// Modifiers returns a copy of the attached modifiers.
func (s *Stat) Modifiers() []Modifier {
	out := make([]Modifier, len(s.modifiers))
	copy(out, s.modifiers)
	return out
}

// Value returns the effective value.
func (s *Stat) Value() float64 {
	if s.dirty {
		s.recompute()
	}
	return s.value
}

func (s *Stat) recompute() {
	s.recomputes++
	flat, pct := 0.0, 0.0
	for _, m := range s.modifiers {
		switch m.Kind {
		case Flat:
			flat += m.Value
		case Percent:
			pct += m.Value
		}
	}
	v := s.clamp((s.base + flat) * (1 + pct))
	if s.discrete {
		v = math.Round(v)
	}
	s.value = v
	s.dirty = false
}

func (s *Stat) clamp(v float64) float64 {
	if v < s.min {
		return s.min
	}
	if v > s.max {
		return s.max
	}
	return v
}

func (s *Stat) String() string {
	return fmt.Sprintf("%.3f (base %.3f, %d mods)", s.Value(), s.base, len(s.modifiers))
}

// Set is a named collection of stats.
type Set struct {
	stats map[string]*Stat
}

func NewSet() *Set {
	return &Set{stats: make(map[string]*Stat)}
}

// Add registers a stat under name, replacing any existing one.
func (s *Set) Add(name string, st *Stat) *Stat {
	s.stats[name] = st
	return st
}

// Get returns the named stat.
func (s *Set) Get(name string) (*Stat, error) {
	st, ok := s.stats[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStat)
	}
	return st, nil
}

func (s *Set) Has(name string) bool {
	_, ok := s.stats[name]
	return ok
}

// Value returns the named stat's effective value, or 0 when it does not exist.
func (s *Set) Value(name string) float64 {
	st, ok := s.stats[name]
	if !ok {
		return 0
	}
	return st.Value()
}

// Names returns the stat names in sorted order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.stats))
	for n := range s.stats {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns the effective values keyed by name.
func (s *Set) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.stats))
	for n, st := range s.stats {
		out[n] = st.Value()
	}
	return out
}
