// Per-tick systems: settlement setup, aging, migration, socializing,
// work, births and deaths.
package town

import (
	"log/slog"
	"math"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hamlet/internal/config"
	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/lifeevent"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/social"
	"github.com/talgya/hamlet/internal/traits"
	"github.com/talgya/hamlet/internal/world"
)

// System names.
const (
	SysInitializeSettlement  = "initialize_settlement"
	SysAging                 = "aging"
	SysLifeStage             = "life_stage"
	SysUnemploymentDuration  = "unemployment_duration"
	SysSpawnResidents        = "spawn_residents"
	SysSpawnBusinesses       = "spawn_businesses"
	SysFrequentedLocations   = "update_frequented_locations"
	SysSocialize             = "socialize"
	SysJobRoleMonthlyEffects = "job_role_monthly_effects"
	SysLifeEvents            = "life_events"
	SysChildBirth            = "child_birth"
	SysCharacterLifespan     = "character_lifespan"
	SysTickTraits            = "tick_traits"
	SysYearlyReport          = "yearly_report"
)

func record(w *ecs.World, eventType string, roles ...lifeevent.Role) error {
	disp := ecs.MustResource[*lifeevent.Dispatcher](w)
	now := ecs.MustResource[*simtime.Clock](w).Now
	return disp.Record(w, disp.NewInstance(eventType, now, roles...))
}

// Living returns active characters in ascending ID order.
func Living(w *ecs.World) []ecs.EntityID {
	return w.With(ecs.TypeOf[Character](), ecs.TypeOf[Active]())
}

// InitializeSettlement lays out districts, builds the first homes and
// businesses and moves in the founding families.
func InitializeSettlement(cfg *config.Config) ecs.System {
	return ecs.SystemFunc{Label: SysInitializeSettlement, Fn: func(w *ecs.World) error {
		rng := ecs.MustResource[*entropy.Rand](w)
		spawner := ecs.MustResource[*Spawner](w)
		content := ecs.MustResource[*Content](w)

		layout := world.Generate(world.GenConfig{
			Name:             cfg.Settlement.Name,
			Radius:           cfg.Settlement.Radius,
			ResidentialSlots: cfg.Settlement.ResidentialSlots,
			BusinessSlots:    cfg.Settlement.BusinessSlots,
		}, rng)
		ecs.SetResource(w, layout)

		settlement := &Settlement{Name: layout.Name}
		sid := w.Spawn(layout.Name, settlement)
		for _, p := range layout.Ordered() {
			d := &District{
				Name:             p.Name,
				Settlement:       sid,
				Coord:            p.Coord,
				Desirability:     p.Desirability,
				ResidentialSlots: p.ResidentialSlots,
				BusinessSlots:    p.BusinessSlots,
			}
			settlement.Districts = append(settlement.Districts, w.Spawn(p.Name, d))
		}

		for i := 0; i < cfg.Settlement.SeedFamilies; i++ {
			district, ok := districtWithRoom(w, settlement, func(d *District) bool { return d.FreeResidentialSlots() > 0 })
			if !ok {
				slog.Warn("settlement full before all families moved in", "placed", i)
				break
			}
			home, err := spawner.SpawnResidence(w, district)
			if err != nil {
				return err
			}
			if _, err := spawner.SpawnHousehold(w, home); err != nil {
				return err
			}
		}

		types := content.BusinessTypes.IDs()
		for _, did := range settlement.Districts {
			if ecs.Get[District](w, did).BusinessSlots == 0 {
				continue
			}
			if _, err := spawner.SpawnBusiness(w, did, types[rng.Intn(len(types))]); err != nil {
				return err
			}
		}

		slog.Info("settlement founded",
			"name", layout.Name,
			"districts", len(settlement.Districts),
			"residents", len(Living(w)),
		)
		return nil
	}}
}

// districtWithRoom returns the most desirable district passing ok.
func districtWithRoom(w *ecs.World, s *Settlement, ok func(*District) bool) (ecs.EntityID, bool) {
	var (
		best  ecs.EntityID
		score = -1.0
	)
	for _, id := range s.Districts {
		d := ecs.Get[District](w, id)
		if d != nil && ok(d) && d.Desirability > score {
			best, score = id, d.Desirability
		}
	}
	return best, best != 0
}

func settlement(w *ecs.World) *Settlement {
	ids := ecs.Each[Settlement](w)
	if len(ids) == 0 {
		return nil
	}
	return ecs.Get[Settlement](w, ids[0])
}

// Aging advances every living character's age by one tick.
func Aging(daysPerTick int) ecs.System {
	years := float64(daysPerTick) / simtime.DaysPerYear
	return ecs.SystemFunc{Label: SysAging, Fn: func(w *ecs.World) error {
		for _, id := range Living(w) {
			if age := ecs.Get[Age](w, id); age != nil {
				age.Years += years
			}
		}
		return nil
	}}
}

// LifeStageSystem moves characters between life stages. Characters
// coming of age start looking for work.
func LifeStageSystem() ecs.System {
	return ecs.SystemFunc{Label: SysLifeStage, Fn: func(w *ecs.World) error {
		for _, id := range Living(w) {
			c, age := ecs.Get[Character](w, id), ecs.Get[Age](w, id)
			if age == nil {
				continue
			}
			next := StageForAge(age.Years)
			if next == c.Stage {
				continue
			}
			c.Stage = next
			if next == WorkingAge {
				if err := MakeUnemployed(w, id); err != nil {
					return err
				}
			}
		}
		return nil
	}}
}

// UnemploymentDuration counts days out of work.
func UnemploymentDuration(daysPerTick int) ecs.System {
	return ecs.SystemFunc{Label: SysUnemploymentDuration, Fn: func(w *ecs.World) error {
		for _, id := range ecs.Each[Unemployed](w) {
			ecs.Get[Unemployed](w, id).DurationDays += daysPerTick
		}
		return nil
	}}
}

// SpawnResidents moves a new household into town, building a home when
// none is vacant.
func SpawnResidents(chance float64) ecs.System {
	return ecs.SystemFunc{Label: SysSpawnResidents, Fn: func(w *ecs.World) error {
		rng := ecs.MustResource[*entropy.Rand](w)
		if !rng.Chance(chance) {
			return nil
		}
		spawner := ecs.MustResource[*Spawner](w)

		var home ecs.EntityID
		if vacant := VacantResidences(w); len(vacant) > 0 {
			home = vacant[rng.Intn(len(vacant))]
		} else {
			s := settlement(w)
			if s == nil {
				return nil
			}
			district, ok := districtWithRoom(w, s, func(d *District) bool { return d.FreeResidentialSlots() > 0 })
			if !ok {
				return nil
			}
			var err error
			if home, err = spawner.SpawnResidence(w, district); err != nil {
				return err
			}
		}

		members, err := spawner.SpawnHousehold(w, home)
		if err != nil {
			return err
		}
		return record(w, EventMoveIn, lifeevent.Role{Name: "Resident", Entity: members[0]})
	}}
}

// SpawnBusinesses opens a new business where a district has room.
func SpawnBusinesses(chance float64) ecs.System {
	return ecs.SystemFunc{Label: SysSpawnBusinesses, Fn: func(w *ecs.World) error {
		rng := ecs.MustResource[*entropy.Rand](w)
		if !rng.Chance(chance) {
			return nil
		}
		s := settlement(w)
		if s == nil {
			return nil
		}
		district, ok := districtWithRoom(w, s, func(d *District) bool { return openBusinesses(w, d) < d.BusinessSlots })
		if !ok {
			return nil
		}
		types := ecs.MustResource[*Content](w).BusinessTypes.IDs()
		id, err := ecs.MustResource[*Spawner](w).SpawnBusiness(w, district, types[rng.Intn(len(types))])
		if err != nil {
			return err
		}
		slog.Debug("business opened", "name", DisplayName(w, id))
		return nil
	}}
}

// MaxFrequentedLocations caps how many businesses a character visits.
const MaxFrequentedLocations = 3

// UpdateFrequentedLocations draws each character's regular haunts. Lists
// are drawn for newcomers, redrawn when one of the haunts has closed, and
// redrawn for everyone once a year.
func UpdateFrequentedLocations() ecs.System {
	return ecs.SystemFunc{Label: SysFrequentedLocations, Fn: func(w *ecs.World) error {
		rng := ecs.MustResource[*entropy.Rand](w)
		year := ecs.MustResource[*simtime.Clock](w).Now.Year()
		open := ecs.Each[OpenForBusiness](w)
		living := Living(w)

		for _, id := range w.Without(living, ecs.TypeOf[FrequentedLocations]()) {
			fl := &FrequentedLocations{Businesses: pickLocations(w, rng, id, open), Year: year}
			if err := ecs.Add(w, id, fl); err != nil {
				return err
			}
		}
		for _, id := range living {
			fl := ecs.Get[FrequentedLocations](w, id)
			if fl.Year == year && !slices.ContainsFunc(fl.Businesses, func(b ecs.EntityID) bool {
				return !ecs.Has[OpenForBusiness](w, b)
			}) {
				continue
			}
			fl.Businesses, fl.Year = pickLocations(w, rng, id, open), year
		}
		return nil
	}}
}

// pickLocations draws up to MaxFrequentedLocations open businesses without
// replacement. Trait preferences for a business type add to its weight,
// and businesses in or beside the character's home district are favored.
func pickLocations(w *ecs.World, rng *entropy.Rand, id ecs.EntityID, open []ecs.EntityID) []ecs.EntityID {
	if len(open) == 0 {
		return nil
	}
	a := attrs(w, id)
	home, near := homeDistricts(w, id)
	weights := make([]float64, len(open))
	for i, bid := range open {
		b := ecs.Get[Business](w, bid)
		weight := 1.0
		if a != nil {
			weight += a.Preference(b.Type)
		}
		switch {
		case b.District == home:
			weight *= 2
		case near[b.District]:
			weight *= 1.5
		}
		weights[i] = max(weight, 0.1)
	}

	var out []ecs.EntityID
	for len(out) < MaxFrequentedLocations {
		i, ok := rng.WeightedIndex(weights)
		if !ok {
			break
		}
		out = append(out, open[i])
		weights[i] = 0
	}
	slices.Sort(out)
	return out
}

// homeDistricts returns the district a character lives in and the
// districts bordering it on the settlement layout.
func homeDistricts(w *ecs.World, id ecs.EntityID) (ecs.EntityID, map[ecs.EntityID]bool) {
	r := ecs.Get[Resident](w, id)
	if r == nil {
		return 0, nil
	}
	res := ecs.Get[Residence](w, r.Residence)
	if res == nil {
		return 0, nil
	}
	d := ecs.Get[District](w, res.District)
	layout, err := ecs.Resource[*world.Layout](w)
	if d == nil || err != nil {
		return res.District, nil
	}
	s := ecs.Get[Settlement](w, d.Settlement)
	if s == nil {
		return res.District, nil
	}
	coords := make(map[world.HexCoord]bool)
	for _, p := range layout.Adjacent(d.Coord) {
		coords[p.Coord] = true
	}
	near := make(map[ecs.EntityID]bool)
	for _, did := range s.Districts {
		if other := ecs.Get[District](w, did); other != nil && coords[other.Coord] {
			near[did] = true
		}
	}
	return res.District, near
}

// patronIndex maps each business to the living characters who frequent it,
// in ascending ID order.
func patronIndex(w *ecs.World, living []ecs.EntityID) map[ecs.EntityID][]ecs.EntityID {
	idx := make(map[ecs.EntityID][]ecs.EntityID)
	for _, id := range living {
		if fl := ecs.Get[FrequentedLocations](w, id); fl != nil {
			for _, b := range fl.Businesses {
				idx[b] = append(idx[b], id)
			}
		}
	}
	return idx
}

// contacts lists who a character meets this tick: their household, their
// workplace, one fellow patron at each place they frequent and one random
// townsperson, two for those who seek company.
func contacts(w *ecs.World, rng *entropy.Rand, id ecs.EntityID, living []ecs.EntityID, patrons map[ecs.EntityID][]ecs.EntityID) []ecs.EntityID {
	seen := map[ecs.EntityID]bool{id: true}
	var out []ecs.EntityID
	add := func(other ecs.EntityID) {
		if !seen[other] && IsAlive(w, other) {
			seen[other] = true
			out = append(out, other)
		}
	}

	for _, m := range Household(w, id) {
		add(m)
	}
	if occ := ecs.Get[Occupation](w, id); occ != nil {
		if b := ecs.Get[Business](w, occ.Business); b != nil {
			if b.HasOwner() {
				add(b.Owner)
			}
			for _, e := range b.Employees() {
				add(e.ID)
			}
		}
	}
	if fl := ecs.Get[FrequentedLocations](w, id); fl != nil {
		for _, b := range fl.Businesses {
			// regulars includes id; draw among the others.
			if regulars := patrons[b]; len(regulars) > 1 {
				pick := regulars[rng.Intn(len(regulars)-1)]
				if pick == id {
					pick = regulars[len(regulars)-1]
				}
				add(pick)
			}
		}
	}
	strangers := 1
	if a := attrs(w, id); a != nil && a.HasRule(RuleSeeksCompany) {
		strangers++
	}
	for i := 0; i < strangers && len(living) > 1; i++ {
		add(living[rng.Intn(len(living))])
	}
	return out
}

func canRomance(w *ecs.World, g *social.Graph, a, b ecs.EntityID) bool {
	ca, cb := ecs.Get[Character](w, a), ecs.Get[Character](w, b)
	if ca.Stage < Adolescent || cb.Stage < Adolescent {
		return false
	}
	if math.Abs(ecs.Get[Age](w, a).Years-ecs.Get[Age](w, b).Years) > 12 {
		return false
	}
	return !bloodKin(g, a, b)
}

// bloodKin reports a parent, child or sibling link. Spouses are family but
// not kin.
func bloodKin(g *social.Graph, a, b ecs.EntityID) bool {
	r, err := g.Get(a, b)
	return err == nil && r.HasAnyTag(social.TagParent, social.TagChild, social.TagSibling)
}

func addBase(r *social.Relationship, stat string, delta float64) {
	if st, err := r.Stats().Get(stat); err == nil {
		st.AddBase(delta)
	}
}

// interact drifts a's view of b. Compatibility is rolled on first meeting
// and shared by both directions.
func interact(w *ecs.World, g *social.Graph, rng *entropy.Rand, a, b ecs.EntityID) {
	r := g.GetOrCreate(a, b)
	if r.Stat(social.Interaction) == 0 {
		back := g.GetOrCreate(b, a)
		compat := back.Stat(social.Compatibility)
		if back.Stat(social.Interaction) == 0 {
			compat = rng.Range(-1, 1)
			if st, err := back.Stats().Get(social.Compatibility); err == nil {
				st.SetBase(compat)
			}
		}
		if st, err := r.Stats().Get(social.Compatibility); err == nil {
			st.SetBase(compat)
		}
	}
	addBase(r, social.Interaction, 1)

	compat := r.Stat(social.Compatibility)
	sociability := attrs(w, a).Stats().Value(StatSociability) / 100
	addBase(r, social.Friendship, 0.03*compat+0.01*sociability+rng.Norm(0, 0.01))
	addBase(r, social.Reputation, compat*0.5)
	if r.HasRule(RuleDefers) {
		addBase(r, social.Reputation, 1)
	}

	if canRomance(w, g, a, b) {
		appeal := attrs(w, b).Stats().Value(StatAttractiveness)/100 - 0.5
		addBase(r, social.Romance, 0.03*compat+0.02*appeal+rng.Norm(0, 0.01))
	}
}

// Socialize lets every living character interact with their contacts.
func Socialize() ecs.System {
	return ecs.SystemFunc{Label: SysSocialize, Fn: func(w *ecs.World) error {
		rng := ecs.MustResource[*entropy.Rand](w)
		g := ecs.MustResource[*social.Graph](w)
		living := Living(w)
		patrons := patronIndex(w, living)
		for _, a := range living {
			for _, b := range contacts(w, rng, a, living, patrons) {
				interact(w, g, rng, a, b)
			}
		}
		return nil
	}}
}

// JobRoleMonthlyEffects applies each job's recurring effects once per
// month worked.
func JobRoleMonthlyEffects() ecs.System {
	return ecs.SystemFunc{Label: SysJobRoleMonthlyEffects, Fn: func(w *ecs.World) error {
		now := ecs.MustResource[*simtime.Clock](w).Now
		jobs := ecs.MustResource[*Content](w).Jobs
		for _, id := range ecs.Each[Occupation](w) {
			occ := ecs.Get[Occupation](w, id)
			job, err := jobs.Get(occ.Role)
			if err != nil {
				return err
			}
			a := attrs(w, id)
			months := (now.Days - occ.Start.Days) / simtime.DaysPerMonth
			for ; occ.MonthsWorked < months; occ.MonthsWorked++ {
				if a == nil {
					continue
				}
				for _, eff := range job.Recurring {
					if err := eff.Apply(a); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}}
}

// LifeEvents evaluates the registered life events.
func LifeEvents(engine *lifeevent.Engine) ecs.System {
	return ecs.SystemFunc{Label: SysLifeEvents, Fn: func(w *ecs.World) error {
		_, err := engine.Step(w)
		return err
	}}
}

// ChildBirth delivers babies whose due date has arrived.
func ChildBirth() ecs.System {
	return ecs.SystemFunc{Label: SysChildBirth, Fn: func(w *ecs.World) error {
		now := ecs.MustResource[*simtime.Clock](w).Now
		spawner := ecs.MustResource[*Spawner](w)
		for _, mother := range ecs.Each[Pregnant](w) {
			p := ecs.Get[Pregnant](w, mother)
			if now.Before(p.Due) {
				continue
			}
			ecs.Remove[Pregnant](w, mother)
			if !IsAlive(w, mother) {
				continue
			}
			baby, err := spawner.SpawnChild(w, mother, p.Partner)
			if err != nil {
				return err
			}
			roles := []lifeevent.Role{{Name: "Mother", Entity: mother}, {Name: "Baby", Entity: baby}}
			if p.Partner != 0 {
				roles = append(roles, lifeevent.Role{Name: "Other", Entity: p.Partner})
			}
			if err := record(w, EventGiveBirth, roles...); err != nil {
				return err
			}
		}
		return nil
	}}
}

// CharacterLifespan kills anyone who outlives their lifespan by more than maxPast years.
func CharacterLifespan(maxPast float64) ecs.System {
	return ecs.SystemFunc{Label: SysCharacterLifespan, Fn: func(w *ecs.World) error {
		for _, id := range Living(w) {
			age, span := ecs.Get[Age](w, id), ecs.Get[Lifespan](w, id)
			if age == nil || span == nil || age.Years < span.Years+maxPast {
				continue
			}
			if err := Die(w, id); err != nil {
				return err
			}
			if err := record(w, EventDie, lifeevent.Role{Name: "Character", Entity: id}); err != nil {
				return err
			}
		}
		return nil
	}}
}

// TickTraits counts down timed traits on characters and active
// relationships and applies recurring trait effects.
func TickTraits() ecs.System {
	return ecs.SystemFunc{Label: SysTickTraits, Fn: func(w *ecs.World) error {
		for _, id := range Living(w) {
			a := attrs(w, id)
			if a == nil {
				continue
			}
			if expired := traits.Tick(a); len(expired) > 0 {
				slog.Debug("traits expired", "character", DisplayName(w, id), "traits", expired)
			}
			if err := traits.ApplyRecurring(a); err != nil {
				return err
			}
		}
		for _, r := range ecs.MustResource[*social.Graph](w).Edges() {
			if r.Active {
				traits.Tick(r)
			}
		}
		return nil
	}}
}

// YearlyReport logs a population summary at the start of each year.
func YearlyReport() ecs.System {
	return ecs.SystemFunc{Label: SysYearlyReport, Fn: func(w *ecs.World) error {
		now := ecs.MustResource[*simtime.Clock](w).Now
		if now.Month() != 1 || now.Day() != 1 {
			return nil
		}
		living := Living(w)
		employed, unemployed := 0, 0
		for _, id := range living {
			switch {
			case ecs.Has[Occupation](w, id):
				employed++
			case ecs.Has[Unemployed](w, id):
				unemployed++
			}
		}
		open := len(w.With(ecs.TypeOf[Business](), ecs.TypeOf[OpenForBusiness]()))
		history := ecs.MustResource[*lifeevent.Dispatcher](w).History()

		counts := history.Counts()
		names := make([]string, 0, len(counts))
		for k := range counts {
			names = append(names, k)
		}
		slices.Sort(names)
		args := []any{
			"year", now.Year(),
			"population", humanize.Comma(int64(len(living))),
			"employed", employed,
			"unemployed", unemployed,
			"businesses", open,
			"events", humanize.Comma(int64(history.Len())),
		}
		for _, n := range names {
			args = append(args, n, counts[n])
		}
		slog.Info("yearly report", args...)
		return nil
	}}
}
