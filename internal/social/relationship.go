// Package social holds the directed relationship graph between entities.
package social

import (
	"slices"
	"sort"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/stats"
	"github.com/talgya/hamlet/internal/traits"
)

// Relationship stat names.
const (
	Romance       = "romance"
	Friendship    = "friendship"
	Compatibility = "compatibility"
	Reputation    = "reputation"
	Interaction   = "interaction"
)

// Common relationship tags.
const (
	TagFriend           = "Friend"
	TagEnemy            = "Enemy"
	TagDating           = "Dating"
	TagSignificantOther = "Significant Other"
	TagSpouse           = "Spouse"
	TagFamily           = "Family"
	TagParent           = "Parent"
	TagChild            = "Child"
	TagSibling          = "Sibling"
)

// Relationship is the directed edge owner -> target. The reverse edge is a
// separate Relationship with its own state.
type Relationship struct {
	Owner  ecs.EntityID
	Target ecs.EntityID
	Active bool

	stats  *stats.Set
	traits *traits.Set
	tags   map[string]struct{}
	rules  map[string]int
}

// DefaultStats builds the stat set every new edge starts with.
func DefaultStats() *stats.Set {
	s := stats.NewSet()
	s.Add(Romance, stats.New(0, -1, 1))
	s.Add(Friendship, stats.New(0, -1, 1))
	s.Add(Compatibility, stats.New(0, -1, 1))
	s.Add(Reputation, stats.New(0, -100, 100))
	s.Add(Interaction, stats.NewDiscrete(0, 0, 100))
	return s
}

func newRelationship(owner, target ecs.EntityID, st *stats.Set) *Relationship {
	return &Relationship{
		Owner:  owner,
		Target: target,
		Active: true,
		stats:  st,
		traits: traits.NewSet(),
		tags:   make(map[string]struct{}),
		rules:  make(map[string]int),
	}
}

func (r *Relationship) Stats() *stats.Set   { return r.stats }
func (r *Relationship) Traits() *traits.Set { return r.traits }

// Stat returns the effective value of a stat, or 0 if the edge has no such stat.
func (r *Relationship) Stat(name string) float64 { return r.stats.Value(name) }

func (r *Relationship) AddRule(id string) { r.rules[id]++ }

func (r *Relationship) RemoveRule(id string) {
	r.rules[id]--
	if r.rules[id] <= 0 {
		delete(r.rules, id)
	}
}

// HasRule reports whether at least one source currently grants the rule.
func (r *Relationship) HasRule(id string) bool { return r.rules[id] > 0 }

func (r *Relationship) AddTags(tags ...string) {
	for _, t := range tags {
		r.tags[t] = struct{}{}
	}
}

func (r *Relationship) RemoveTags(tags ...string) {
	for _, t := range tags {
		delete(r.tags, t)
	}
}

// HasTags reports whether the edge carries every listed tag.
func (r *Relationship) HasTags(tags ...string) bool {
	for _, t := range tags {
		if _, ok := r.tags[t]; !ok {
			return false
		}
	}
	return true
}

// HasAnyTag reports whether the edge carries at least one listed tag.
func (r *Relationship) HasAnyTag(tags ...string) bool {
	return slices.ContainsFunc(tags, func(t string) bool {
		_, ok := r.tags[t]
		return ok
	})
}

// Tags returns the edge's tags sorted.
func (r *Relationship) Tags() []string {
	out := make([]string, 0, len(r.tags))
	for t := range r.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
