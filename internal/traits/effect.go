package traits

import (
	"errors"
	"fmt"

	"github.com/talgya/hamlet/internal/stats"
)

var ErrUnsupportedHolder = errors.New("holder does not support effect")

// Effect is applied when a trait is attached and reversed when it is removed.
type Effect interface {
	Apply(h Holder, source string) error
	Remove(h Holder, source string)
	Describe() string
}

// RecurringEffect runs every time recurring effects are processed.
// It is never reversed.
type RecurringEffect interface {
	Apply(h Holder) error
	Describe() string
}

// StatModifier attaches a modifier to one of the holder's stats.
type StatModifier struct {
	Stat  string
	Value float64
	Kind  stats.ModifierKind
}

func (e StatModifier) Apply(h Holder, source string) error {
	st, err := h.Stats().Get(e.Stat)
	if err != nil {
		return fmt.Errorf("stat modifier: %w", err)
	}
	st.AddModifier(stats.Modifier{Value: e.Value, Kind: e.Kind, Source: source})
	return nil
}

func (e StatModifier) Remove(h Holder, source string) {
	if st, err := h.Stats().Get(e.Stat); err == nil {
		st.RemoveModifiersFromSource(source)
	}
}

func (e StatModifier) Describe() string {
	if e.Kind == stats.Percent {
		return fmt.Sprintf("%+.0f%% %s", e.Value*100, e.Stat)
	}
	return fmt.Sprintf("%+g %s", e.Value, e.Stat)
}

// SocialRule grants the holder a reference-counted social rule.
type SocialRule struct {
	Rule string
}

func (e SocialRule) Apply(h Holder, _ string) error {
	rh, ok := h.(RuleHolder)
	if !ok {
		return fmt.Errorf("social rule %q: %w", e.Rule, ErrUnsupportedHolder)
	}
	rh.AddRule(e.Rule)
	return nil
}

func (e SocialRule) Remove(h Holder, _ string) {
	if rh, ok := h.(RuleHolder); ok {
		rh.RemoveRule(e.Rule)
	}
}

func (e SocialRule) Describe() string { return "rule " + e.Rule }

// LocationPreference biases which kinds of business the holder frequents.
type LocationPreference struct {
	Kind   string
	Weight float64
}

func (e LocationPreference) Apply(h Holder, source string) error {
	ph, ok := h.(PreferenceHolder)
	if !ok {
		return fmt.Errorf("location preference %q: %w", e.Kind, ErrUnsupportedHolder)
	}
	ph.AddPreference(source, e.Kind, e.Weight)
	return nil
}

func (e LocationPreference) Remove(h Holder, source string) {
	if ph, ok := h.(PreferenceHolder); ok {
		ph.RemovePreferences(source)
	}
}

func (e LocationPreference) Describe() string { return fmt.Sprintf("%+g preference for %s", e.Weight, e.Kind) }

// StatGrowth permanently shifts a stat's base value.
type StatGrowth struct {
	Stat  string
	Delta float64
}

func (e StatGrowth) Apply(h Holder) error {
	st, err := h.Stats().Get(e.Stat)
	if err != nil {
		return fmt.Errorf("stat growth: %w", err)
	}
	st.AddBase(e.Delta)
	return nil
}

func (e StatGrowth) Describe() string { return fmt.Sprintf("%+g %s per tick", e.Delta, e.Stat) }
