package town

import (
	"fmt"

	"github.com/talgya/hamlet/internal/defs"
	"github.com/talgya/hamlet/internal/social"
	"github.com/talgya/hamlet/internal/stats"
	"github.com/talgya/hamlet/internal/traits"
)

// Trait IDs used by the built-in content.
const (
	TraitFriendly    = "friendly"
	TraitRude        = "rude"
	TraitAmbitious   = "ambitious"
	TraitLazy        = "lazy"
	TraitCharming    = "charming"
	TraitHeartbroken = "heartbroken"
	TraitWidowed     = "widowed"
	TraitRetired     = "retired"

	// Relationship traits.
	TraitBoss     = "boss"
	TraitEmployee = "employee"
	TraitCoworker = "coworker"
	TraitFamily   = "family"
)

// Social rules granted by traits.
const (
	RuleSeeksCompany = "seeks_company"
	RuleDefers       = "defers"
)

// PersonalityTraits are drawn for newly spawned characters.
var PersonalityTraits = []string{TraitFriendly, TraitRude, TraitAmbitious, TraitLazy, TraitCharming}

// JobRole is a position at a business.
type JobRole struct {
	ID       string
	Name     string
	MinStage LifeStage
	// Trait holds the reversible effects of holding the job.
	Trait *traits.Definition
	// Recurring effects apply once per month worked and are never undone.
	Recurring []traits.RecurringEffect
}

func (j *JobRole) DefinitionID() string { return j.ID }

// BusinessType is a template for new businesses.
type BusinessType struct {
	ID        string
	Name      string
	OwnerRole string
	Openings  map[string]int
	Lifespan  float64
}

func (b *BusinessType) DefinitionID() string { return b.ID }

// Content bundles the definition libraries the domain reads from.
type Content struct {
	Traits        *traits.Library
	Jobs          *defs.Library[*JobRole]
	BusinessTypes *defs.Library[*BusinessType]
}

// Trait looks up a trait definition.
func (c *Content) Trait(id string) (*traits.Definition, error) {
	return c.Traits.Get(id)
}

func jobTrait(id string, effects ...traits.Effect) *traits.Definition {
	return &traits.Definition{ID: "job:" + id, Name: id, OnApply: effects}
}

// DefaultContent builds the built-in traits, job roles and business types.
func DefaultContent() (*Content, error) {
	c := &Content{
		Traits:        traits.NewLibrary(),
		Jobs:          defs.NewLibrary[*JobRole]("job role"),
		BusinessTypes: defs.NewLibrary[*BusinessType]("business type"),
	}

	traitDefs := []*traits.Definition{
		{
			ID: TraitFriendly, Name: "Friendly",
			ConflictsWith: []string{TraitRude},
			OnApply: []traits.Effect{
				traits.StatModifier{Stat: StatSociability, Value: 15},
				traits.SocialRule{Rule: RuleSeeksCompany},
				traits.LocationPreference{Kind: "tavern", Weight: 1},
			},
		},
		{
			ID: TraitRude, Name: "Rude",
			OnApply: []traits.Effect{traits.StatModifier{Stat: StatSociability, Value: -15}},
		},
		{
			ID: TraitAmbitious, Name: "Ambitious",
			ConflictsWith: []string{TraitLazy},
			OnApply: []traits.Effect{
				traits.StatModifier{Stat: StatManagement, Value: 0.25, Kind: stats.Percent},
				traits.LocationPreference{Kind: "general_store", Weight: 0.5},
			},
		},
		{
			ID: TraitLazy, Name: "Lazy",
			OnApply: []traits.Effect{
				traits.StatModifier{Stat: StatCraft, Value: -0.25, Kind: stats.Percent},
				traits.LocationPreference{Kind: "tavern", Weight: 0.5},
			},
		},
		{
			ID: TraitCharming, Name: "Charming",
			OnApply: []traits.Effect{traits.StatModifier{Stat: StatAttractiveness, Value: 15}},
		},
		{
			ID: TraitHeartbroken, Name: "Heartbroken", Duration: 6,
			OnApply: []traits.Effect{traits.StatModifier{Stat: StatSociability, Value: -25}},
		},
		{
			ID: TraitWidowed, Name: "Widowed", Duration: 12,
			OnApply: []traits.Effect{traits.StatModifier{Stat: StatSociability, Value: -20}},
		},
		{
			ID: TraitRetired, Name: "Retired",
			OnApply: []traits.Effect{
				traits.StatModifier{Stat: StatSociability, Value: 5},
				traits.LocationPreference{Kind: "bakery", Weight: 0.5},
			},
		},
		{
			ID: TraitBoss, Name: "Boss",
			OnApply: []traits.Effect{
				traits.StatModifier{Stat: social.Reputation, Value: 5},
				traits.SocialRule{Rule: RuleDefers},
			},
		},
		{
			ID: TraitEmployee, Name: "Employee",
			OnApply: []traits.Effect{traits.StatModifier{Stat: social.Reputation, Value: 2}},
		},
		{
			ID: TraitCoworker, Name: "Coworker",
			OnApply: []traits.Effect{traits.StatModifier{Stat: social.Friendship, Value: 0.1}},
		},
		{
			ID: TraitFamily, Name: "Family",
			OnApply: []traits.Effect{traits.StatModifier{Stat: social.Friendship, Value: 0.3}},
		},
	}

	jobs := []*JobRole{
		{
			ID: "owner", Name: "Owner", MinStage: YoungAdult,
			Trait:     jobTrait("owner", traits.StatModifier{Stat: StatSociability, Value: 5}),
			Recurring: []traits.RecurringEffect{traits.StatGrowth{Stat: StatManagement, Delta: 1}},
		},
		{
			ID: "manager", Name: "Manager", MinStage: YoungAdult,
			Trait:     jobTrait("manager"),
			Recurring: []traits.RecurringEffect{traits.StatGrowth{Stat: StatManagement, Delta: 0.5}},
		},
		{
			ID: "cashier", Name: "Cashier", MinStage: YoungAdult,
			Trait:     jobTrait("cashier", traits.StatModifier{Stat: StatSociability, Value: 2}),
			Recurring: []traits.RecurringEffect{traits.StatGrowth{Stat: StatService, Delta: 0.5}},
		},
		{
			ID: "baker", Name: "Baker", MinStage: YoungAdult,
			Trait:     jobTrait("baker"),
			Recurring: []traits.RecurringEffect{traits.StatGrowth{Stat: StatCraft, Delta: 0.5}},
		},
		{
			ID: "smith", Name: "Smith", MinStage: YoungAdult,
			Trait:     jobTrait("smith"),
			Recurring: []traits.RecurringEffect{traits.StatGrowth{Stat: StatCraft, Delta: 0.75}},
		},
		{
			ID: "barkeep", Name: "Barkeep", MinStage: YoungAdult,
			Trait:     jobTrait("barkeep", traits.StatModifier{Stat: StatSociability, Value: 5}),
			Recurring: []traits.RecurringEffect{traits.StatGrowth{Stat: StatService, Delta: 0.5}},
		},
	}

	types := []*BusinessType{
		{ID: "bakery", Name: "Bakery", OwnerRole: "owner", Openings: map[string]int{"baker": 2, "cashier": 1}, Lifespan: 30},
		{ID: "general_store", Name: "General Store", OwnerRole: "owner", Openings: map[string]int{"cashier": 2, "manager": 1}, Lifespan: 40},
		{ID: "smithy", Name: "Smithy", OwnerRole: "owner", Openings: map[string]int{"smith": 2}, Lifespan: 35},
		{ID: "tavern", Name: "Tavern", OwnerRole: "owner", Openings: map[string]int{"barkeep": 1, "cashier": 1}, Lifespan: 25},
	}

	for _, d := range traitDefs {
		if err := c.Traits.Add(d); err != nil {
			return nil, err
		}
	}
	for _, j := range jobs {
		if err := c.Jobs.Add(j); err != nil {
			return nil, err
		}
	}
	for _, b := range types {
		for role := range b.Openings {
			if _, err := c.Jobs.Get(role); err != nil {
				return nil, fmt.Errorf("business type %s: %w", b.ID, err)
			}
		}
		if err := c.BusinessTypes.Add(b); err != nil {
			return nil, err
		}
	}
	return c, nil
}
