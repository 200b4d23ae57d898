// Package town is the social simulation's domain: characters, households,
// businesses and districts, the life events that move them, and the
// systems that age them.
package town

import (
	"maps"
	"slices"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/stats"
	"github.com/talgya/hamlet/internal/traits"
	"github.com/talgya/hamlet/internal/world"
)

// Sex of a character.
type Sex uint8

const (
	SexMale Sex = iota
	SexFemale
)

func (s Sex) String() string {
	if s == SexFemale {
		return "female"
	}
	return "male"
}

// LifeStage is derived from age.
type LifeStage uint8

const (
	Child LifeStage = iota
	Adolescent
	YoungAdult
	Adult
	Senior
)

var stageNames = [...]string{"child", "adolescent", "young adult", "adult", "senior"}

func (l LifeStage) String() string {
	if int(l) < len(stageNames) {
		return stageNames[l]
	}
	return "unknown"
}

// Age thresholds in years for each stage.
var stageAges = [...]float64{Child: 0, Adolescent: 13, YoungAdult: 18, Adult: 30, Senior: 65}

// StageForAge returns the life stage for an age in years.
func StageForAge(years float64) LifeStage {
	stage := Child
	for s := Child; s <= Senior; s++ {
		if years >= stageAges[s] {
			stage = s
		}
	}
	return stage
}

// Character identifies a person.
type Character struct {
	First string
	Last  string
	Sex   Sex
	Stage LifeStage
	Born  simtime.Date
}

func (c *Character) FullName() string { return c.First + " " + c.Last }

// Character stat names.
const (
	StatHealth         = "health"
	StatFertility      = "fertility"
	StatSociability    = "sociability"
	StatAttractiveness = "attractiveness"
	StatCraft          = "craft"
	StatService        = "service"
	StatManagement     = "management"
)

// Attributes carries an entity's stats, traits and social rules.
type Attributes struct {
	stats  *stats.Set
	traits *traits.Set
	rules  map[string]int
	prefs  map[string]map[string]float64
}

// NewAttributes wraps a stat set.
func NewAttributes(s *stats.Set) *Attributes {
	return &Attributes{
		stats:  s,
		traits: traits.NewSet(),
		rules:  make(map[string]int),
		prefs:  make(map[string]map[string]float64),
	}
}

// CharacterStats builds the stats every character starts with.
func CharacterStats() *stats.Set {
	s := stats.NewSet()
	s.Add(StatHealth, stats.New(100, 0, 100))
	s.Add(StatFertility, stats.New(50, 0, 100))
	s.Add(StatSociability, stats.New(0, -100, 100))
	s.Add(StatAttractiveness, stats.New(50, 0, 100))
	s.Add(StatCraft, stats.New(0, 0, 100))
	s.Add(StatService, stats.New(0, 0, 100))
	s.Add(StatManagement, stats.New(0, 0, 100))
	return s
}

func (a *Attributes) Stats() *stats.Set   { return a.stats }
func (a *Attributes) Traits() *traits.Set { return a.traits }

func (a *Attributes) AddRule(id string) { a.rules[id]++ }

func (a *Attributes) RemoveRule(id string) {
	a.rules[id]--
	if a.rules[id] <= 0 {
		delete(a.rules, id)
	}
}

func (a *Attributes) HasRule(id string) bool { return a.rules[id] > 0 }

func (a *Attributes) AddPreference(source, kind string, weight float64) {
	if a.prefs[source] == nil {
		a.prefs[source] = make(map[string]float64)
	}
	a.prefs[source][kind] += weight
}

func (a *Attributes) RemovePreferences(source string) { delete(a.prefs, source) }

// Preference sums every source's weight for a business type, in source
// order so replays add in the same sequence.
func (a *Attributes) Preference(kind string) float64 {
	var total float64
	for _, src := range slices.Sorted(maps.Keys(a.prefs)) {
		total += a.prefs[src][kind]
	}
	return total
}

// Age in years.
type Age struct {
	Years float64
}

// Lifespan is the age at which a character may die of old age.
type Lifespan struct {
	Years float64
}

// Status markers.
type (
	Active         struct{}
	Departed       struct{}
	Deceased       struct{}
	Retired        struct{}
	CanGetPregnant struct{}
)

// Pregnant marks an expecting character.
type Pregnant struct {
	Partner ecs.EntityID
	Due     simtime.Date
}

// Unemployed counts days without work.
type Unemployed struct {
	DurationDays int
}

// Occupation is a character's job.
type Occupation struct {
	Business     ecs.EntityID
	Role         string
	Start        simtime.Date
	MonthsWorked int
}

// Resident points at the residence a character lives in.
type Resident struct {
	Residence ecs.EntityID
}

// FrequentedLocations are the businesses a character spends time at.
type FrequentedLocations struct {
	Businesses []ecs.EntityID
	Year       int // year the list was drawn
}

// Residence is a home in a district.
type Residence struct {
	District  ecs.EntityID
	Capacity  int
	Owners    []ecs.EntityID
	Residents []ecs.EntityID
}

// Vacant marks a residence nobody lives in.
type Vacant struct{}

// OpenForBusiness marks a business that is trading.
type OpenForBusiness struct{}

// ClosedForBusiness marks a business that shut down.
type ClosedForBusiness struct{}

// District is one plot of the settlement.
type District struct {
	Name             string
	Settlement       ecs.EntityID
	Coord            world.HexCoord
	Desirability     float64
	ResidentialSlots int
	BusinessSlots    int
	Residences       []ecs.EntityID
	Businesses       []ecs.EntityID
}

// FreeResidentialSlots is the number of homes that can still be built.
func (d *District) FreeResidentialSlots() int { return d.ResidentialSlots - len(d.Residences) }

// Settlement is the town itself.
type Settlement struct {
	Name      string
	Districts []ecs.EntityID
}
