package town

import (
	"errors"
	"math"
	"reflect"

	"github.com/talgya/hamlet/internal/config"
	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/lifeevent"
	"github.com/talgya/hamlet/internal/query"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/social"
	"github.com/talgya/hamlet/internal/traits"
)

// Built-in life event names. Config overrides are keyed by these.
const (
	EventBecomeFriends           = "BecomeFriends"
	EventBecomeEnemies           = "BecomeEnemies"
	EventStartDating             = "StartDating"
	EventDatingBreakUp           = "DatingBreakUp"
	EventGetMarried              = "GetMarried"
	EventDivorce                 = "Divorce"
	EventGotPregnant             = "GotPregnant"
	EventDieOfOldAge             = "DieOfOldAge"
	EventGoOutOfBusiness         = "GoOutOfBusiness"
	EventFindOwnPlace            = "FindOwnPlace"
	EventDepartDueToUnemployment = "DepartDueToUnemployment"
	EventRetire                  = "Retire"
	EventFindJob                 = "FindJob"
	EventBecomeBusinessOwner     = "BecomeBusinessOwner"

	// Recorded directly by systems rather than through the engine.
	EventGiveBirth = "GiveBirth"
	EventDie       = "Die"
	EventMoveIn    = "MoveIn"
)

// Role names shared by the pairwise events.
const (
	RoleInitiator = "Initiator"
	RoleOther     = "Other"
	anyone        = "Anyone"
)

// BuiltinEvents builds the default life events with cfg's overrides applied.
func BuiltinEvents(cfg *config.Config) ([]*lifeevent.Definition, error) {
	builders := []func(*config.Config) (*lifeevent.Definition, error){
		becomeFriends,
		becomeEnemies,
		startDating,
		datingBreakUp,
		getMarried,
		divorce,
		gotPregnant,
		dieOfOldAge,
		goOutOfBusiness,
		findOwnPlace,
		departDueToUnemployment,
		retireEvent,
		findJob,
		becomeBusinessOwner,
	}
	out := make([]*lifeevent.Definition, 0, len(builders))
	for _, b := range builders {
		d, err := b(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// RegisterBuiltins registers the default events and disables those the config turns off.
func RegisterBuiltins(e *lifeevent.Engine, cfg *config.Config) error {
	list, err := BuiltinEvents(cfg)
	if err != nil {
		return err
	}
	if err := e.Register(list...); err != nil {
		return err
	}
	for _, d := range list {
		e.SetEnabled(d.Name, cfg.EventEnabled(d.Name))
	}
	return nil
}

func character(v string) query.Clause {
	return query.HasComponents(v, ecs.TypeOf[Character](), ecs.TypeOf[Active]())
}

func stageAtLeast(min LifeStage) query.FilterFunc {
	return func(w *ecs.World, ids ...ecs.EntityID) bool {
		for _, id := range ids {
			c := ecs.Get[Character](w, id)
			if c == nil || c.Stage < min {
				return false
			}
		}
		return true
	}
}

// mutual requires rel to hold in both directions between Initiator and Other.
func mutual(rel query.Relation) []query.Clause {
	return []query.Clause{
		query.Where(rel, RoleInitiator, RoleOther),
		query.Where(rel, RoleOther, RoleInitiator),
	}
}

func pair(clauses ...[]query.Clause) (*query.Query, error) {
	all := []query.Clause{character(RoleInitiator)}
	for _, c := range clauses {
		all = append(all, c...)
	}
	all = append(all, character(RoleOther), query.NotEqual(RoleInitiator, RoleOther))
	return query.New([]string{RoleInitiator, RoleOther}, all...)
}

func tagBoth(w *ecs.World, a, b ecs.EntityID, tags ...string) {
	g := ecs.MustResource[*social.Graph](w)
	g.AddTags(a, b, tags...)
	g.AddTags(b, a, tags...)
}

func untagBoth(w *ecs.World, a, b ecs.EntityID, tags ...string) {
	g := ecs.MustResource[*social.Graph](w)
	g.RemoveTags(a, b, tags...)
	g.RemoveTags(b, a, tags...)
}

func becomeFriends(cfg *config.Config) (*lifeevent.Definition, error) {
	thr := cfg.EventThreshold(EventBecomeFriends, 0.7)
	q, err := pair(
		mutual(query.RelationshipStat(social.Friendship, query.GreaterEqual, thr)),
		[]query.Clause{query.WhereNot(query.RelationshipHasTags(social.TagFriend), RoleInitiator, RoleOther)},
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventBecomeFriends,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventBecomeFriends, 0.5)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			a, b := inst.Role(RoleInitiator), inst.Role(RoleOther)
			untagBoth(w, a, b, social.TagEnemy)
			tagBoth(w, a, b, social.TagFriend)
			return nil
		},
	}, nil
}

func becomeEnemies(cfg *config.Config) (*lifeevent.Definition, error) {
	thr := cfg.EventThreshold(EventBecomeEnemies, -0.3)
	q, err := pair(
		mutual(query.RelationshipStat(social.Friendship, query.LessEqual, thr)),
		[]query.Clause{query.WhereNot(query.RelationshipHasTags(social.TagEnemy), RoleInitiator, RoleOther)},
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventBecomeEnemies,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventBecomeEnemies, 0.5)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			a, b := inst.Role(RoleInitiator), inst.Role(RoleOther)
			untagBoth(w, a, b, social.TagFriend)
			tagBoth(w, a, b, social.TagEnemy)
			return nil
		},
	}, nil
}

func startDating(cfg *config.Config) (*lifeevent.Definition, error) {
	thr := cfg.EventThreshold(EventStartDating, 0.7)
	single := query.RelationshipHasTags(social.TagSignificantOther)
	q, err := pair(
		[]query.Clause{query.Filter(stageAtLeast(Adolescent), RoleInitiator)},
		mutual(query.RelationshipStat(social.Romance, query.Greater, thr)),
		[]query.Clause{
			query.Filter(stageAtLeast(Adolescent), RoleOther),
			query.WhereNot(single, RoleInitiator, anyone),
			query.WhereNot(single, RoleOther, anyone),
			query.WhereNot(query.RelationshipHasTags(social.TagFamily), RoleInitiator, RoleOther),
		},
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventStartDating,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventStartDating, 0.5)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			tagBoth(w, inst.Role(RoleInitiator), inst.Role(RoleOther), social.TagDating, social.TagSignificantOther)
			return nil
		},
	}, nil
}

func heartbreak(w *ecs.World, ids ...ecs.EntityID) error {
	for _, id := range ids {
		err := AddCharacterTrait(w, id, TraitHeartbroken, traits.Options{})
		if err != nil && !errors.Is(err, traits.ErrConflict) {
			return err
		}
	}
	return nil
}

func datingBreakUp(cfg *config.Config) (*lifeevent.Definition, error) {
	thr := cfg.EventThreshold(EventDatingBreakUp, -0.1)
	q, err := pair(
		mutual(query.RelationshipHasTags(social.TagDating)),
		mutual(query.RelationshipStat(social.Romance, query.Less, thr)),
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventDatingBreakUp,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventDatingBreakUp, 0.5)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			a, b := inst.Role(RoleInitiator), inst.Role(RoleOther)
			untagBoth(w, a, b, social.TagDating, social.TagSignificantOther)
			return heartbreak(w, a, b)
		},
	}, nil
}

// datingYears is how long a has been dating b according to a's history.
func datingYears(w *ecs.World, a, b ecs.EntityID) float64 {
	h := ecs.Get[lifeevent.PersonalHistory](w, a)
	if h == nil {
		return 0
	}
	now := ecs.MustResource[*simtime.Clock](w).Now
	for i := len(h.Events) - 1; i >= 0; i-- {
		ev := h.Events[i]
		if ev.Type != EventStartDating {
			continue
		}
		for _, r := range ev.Roles {
			if r.Entity == b {
				return now.YearsSince(ev.Date)
			}
		}
	}
	return 0
}

func getMarried(cfg *config.Config) (*lifeevent.Definition, error) {
	thr := cfg.EventThreshold(EventGetMarried, 0.6)
	q, err := pair(
		mutual(query.RelationshipHasTags(social.TagDating)),
		mutual(query.RelationshipStat(social.Romance, query.GreaterEqual, thr)),
		[]query.Clause{
			query.Filter(stageAtLeast(YoungAdult), RoleInitiator, RoleOther),
			query.Filter(func(w *ecs.World, ids ...ecs.EntityID) bool {
				return datingYears(w, ids[0], ids[1]) >= 1
			}, RoleInitiator, RoleOther),
		},
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventGetMarried,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventGetMarried, 0.3)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			a, b := inst.Role(RoleInitiator), inst.Role(RoleOther)
			Marry(w, a, b)
			return moveInTogether(w, a, b)
		},
	}, nil
}

// moveInTogether moves other and their dependents into initiator's home and
// gives them initiator's last name.
func moveInTogether(w *ecs.World, initiator, other ecs.EntityID) error {
	home := ecs.Get[Resident](w, initiator)
	from := ecs.Get[Resident](w, other)
	if home == nil || (from != nil && from.Residence == home.Residence) {
		return nil
	}

	movers := []ecs.EntityID{other}
	if from != nil {
		for _, kid := range Children(w, other) {
			r := ecs.Get[Resident](w, kid)
			c := ecs.Get[Character](w, kid)
			if r != nil && r.Residence == from.Residence && c != nil && c.Stage < YoungAdult {
				movers = append(movers, kid)
			}
		}
	}

	last := ecs.Get[Character](w, initiator).Last
	for i, id := range movers {
		if err := SetResidence(w, id, home.Residence, i == 0); err != nil {
			if errors.Is(err, ErrResidenceFull) {
				break
			}
			return err
		}
		if c := ecs.Get[Character](w, id); c != nil {
			c.Last = last
			if err := w.SetName(id, c.FullName()); err != nil {
				return err
			}
		}
	}
	return nil
}

func divorce(cfg *config.Config) (*lifeevent.Definition, error) {
	thr := cfg.EventThreshold(EventDivorce, -0.25)
	q, err := pair(
		mutual(query.RelationshipHasTags(social.TagSpouse)),
		mutual(query.RelationshipStat(social.Romance, query.LessEqual, thr)),
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventDivorce,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventDivorce, 0.3)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			a, b := inst.Role(RoleInitiator), inst.Role(RoleOther)
			untagBoth(w, a, b, social.TagSpouse, social.TagSignificantOther, social.TagFamily)
			if vacant := VacantResidences(w); len(vacant) > 0 {
				rng := ecs.MustResource[*entropy.Rand](w)
				if err := SetResidence(w, b, vacant[rng.Intn(len(vacant))], true); err != nil {
					return err
				}
			}
			return heartbreak(w, a, b)
		},
	}, nil
}

// PregnancyChance falls off linearly with the number of children and is
// zero at five or more.
func PregnancyChance(base float64, children int) float64 {
	if children >= 5 {
		return 0
	}
	return base * (1 - float64(children)/5)
}

func gotPregnant(cfg *config.Config) (*lifeevent.Definition, error) {
	const mother = "PregnantOne"
	base := cfg.EventProbability(EventGotPregnant, 0.1)
	q, err := query.New([]string{mother, RoleOther},
		query.HasComponents(mother, ecs.TypeOf[Character](), ecs.TypeOf[Active](), ecs.TypeOf[CanGetPregnant]()),
		query.WhereNot(query.Components(ecs.TypeOf[Pregnant]()), mother),
		query.Filter(stageAtLeast(YoungAdult), mother),
		query.Filter(func(w *ecs.World, ids ...ecs.EntityID) bool {
			c := ecs.Get[Character](w, ids[0])
			return c != nil && c.Stage < Senior
		}, mother),
		character(RoleOther),
		query.WhereAny(
			query.Where(query.RelationshipHasTags(social.TagDating), mother, RoleOther),
			query.Where(query.RelationshipHasTags(social.TagSpouse), mother, RoleOther),
		),
		query.NotEqual(mother, RoleOther),
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:    EventGotPregnant,
		Pattern: q,
		Probability: lifeevent.ProbabilityFunc(func(w *ecs.World, inst *lifeevent.Instance) float64 {
			return PregnancyChance(base, len(Children(w, inst.Role(mother))))
		}),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			now := ecs.MustResource[*simtime.Clock](w).Now
			return ecs.Add(w, inst.Role(mother), &Pregnant{Partner: inst.Role(RoleOther), Due: now.AddMonths(9)})
		},
	}, nil
}

func dieOfOldAge(cfg *config.Config) (*lifeevent.Definition, error) {
	const who = "Deceased"
	q, err := query.New([]string{who},
		character(who),
		query.Filter(func(w *ecs.World, ids ...ecs.EntityID) bool {
			age, span := ecs.Get[Age](w, ids[0]), ecs.Get[Lifespan](w, ids[0])
			return age != nil && span != nil && age.Years >= span.Years
		}, who),
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventDieOfOldAge,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventDieOfOldAge, 0.8)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			return Die(w, inst.Role(who))
		},
	}, nil
}

// ClosureChance is zero for young businesses, grows with age and caps at
// late once the business outlives its expected lifespan.
func ClosureChance(years, lifespan, late float64) float64 {
	switch {
	case years < 5:
		return 0
	case years < lifespan:
		return years / lifespan
	default:
		return late
	}
}

func goOutOfBusiness(cfg *config.Config) (*lifeevent.Definition, error) {
	const biz = "Business"
	late := cfg.EventProbability(EventGoOutOfBusiness, 0.7)
	// Checked monthly, so the yearly chance is spread across the year.
	perTick := func(p float64) float64 { return 1 - math.Pow(1-p, 1.0/simtime.MonthsPerYear) }
	q, err := query.New([]string{biz},
		query.HasComponents(biz, ecs.TypeOf[Business](), ecs.TypeOf[OpenForBusiness](), ecs.TypeOf[Active]()),
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:    EventGoOutOfBusiness,
		Pattern: q,
		Probability: lifeevent.ProbabilityFunc(func(w *ecs.World, inst *lifeevent.Instance) float64 {
			b := ecs.Get[Business](w, inst.Role(biz))
			now := ecs.MustResource[*simtime.Clock](w).Now
			return perTick(ClosureChance(now.YearsSince(b.Founded), b.Lifespan, late))
		}),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			return CloseBusiness(w, inst.Role(biz))
		},
	}, nil
}

func findOwnPlace(cfg *config.Config) (*lifeevent.Definition, error) {
	const who = "Character"
	q, err := query.New([]string{who},
		query.HasComponents(who, ecs.TypeOf[Character](), ecs.TypeOf[Active](), ecs.TypeOf[Occupation](), ecs.TypeOf[Resident]()),
		query.Filter(stageAtLeast(YoungAdult), who),
		query.Filter(func(w *ecs.World, ids ...ecs.EntityID) bool {
			res := ecs.Get[Residence](w, ecs.Get[Resident](w, ids[0]).Residence)
			if res == nil {
				return false
			}
			for _, o := range res.Owners {
				if o == ids[0] {
					return false
				}
			}
			return true
		}, who),
	)
	if err != nil {
		return nil, err
	}
	return &lifeevent.Definition{
		Name:        EventFindOwnPlace,
		Pattern:     q,
		Probability: lifeevent.Constant(cfg.EventProbability(EventFindOwnPlace, 0.05)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			id := inst.Role(who)
			vacant := VacantResidences(w)
			if len(vacant) == 0 {
				return DepartTown(w, id)
			}
			rng := ecs.MustResource[*entropy.Rand](w)
			return SetResidence(w, id, vacant[rng.Intn(len(vacant))], true)
		},
	}, nil
}

// UnemployedLongerThan binds characters who have been out of work for more
// than days.
func UnemployedLongerThan(days int) lifeevent.Binder {
	return lifeevent.Eligible(
		[]reflect.Type{ecs.TypeOf[Character](), ecs.TypeOf[Active](), ecs.TypeOf[Unemployed]()},
		func(w *ecs.World, id ecs.EntityID) bool {
			return ecs.Get[Unemployed](w, id).DurationDays > days
		},
	)
}

func departDueToUnemployment(cfg *config.Config) (*lifeevent.Definition, error) {
	const who = "Character"
	days := int(cfg.EventThreshold(EventDepartDueToUnemployment, 30))
	return &lifeevent.Definition{
		Name:        EventDepartDueToUnemployment,
		Roles:       []lifeevent.RoleSpec{{Name: who, Binder: UnemployedLongerThan(days)}},
		Select:      lifeevent.SelectOne,
		Probability: lifeevent.Constant(cfg.EventProbability(EventDepartDueToUnemployment, 0.3)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			id := inst.Role(who)
			leaving := []ecs.EntityID{id}
			// A household left without adults goes too.
			if !otherAdultAtHome(w, id) {
				leaving = Household(w, id)
			}
			for _, p := range leaving {
				if err := DepartTown(w, p); err != nil {
					return err
				}
			}
			return nil
		},
	}, nil
}

func otherAdultAtHome(w *ecs.World, id ecs.EntityID) bool {
	for _, p := range Household(w, id) {
		if p == id {
			continue
		}
		if c := ecs.Get[Character](w, p); c != nil && c.Stage >= YoungAdult {
			return true
		}
	}
	return false
}

// Successor picks the employee the owner holds in highest reputation.
// Equal reputations go to the lowest entity ID. Returns 0 with no staff.
func Successor(w *ecs.World, business ecs.EntityID) ecs.EntityID {
	b := ecs.Get[Business](w, business)
	if b == nil {
		return 0
	}
	g := ecs.MustResource[*social.Graph](w)
	var (
		best    ecs.EntityID
		bestRep = math.Inf(-1)
	)
	for _, e := range b.Employees() {
		if !IsAlive(w, e.ID) {
			continue
		}
		rep := 0.0
		if b.HasOwner() {
			if r, err := g.Get(b.Owner, e.ID); err == nil {
				rep = r.Stat(social.Reputation)
			}
		}
		if rep > bestRep || (rep == bestRep && e.ID < best) {
			best, bestRep = e.ID, rep
		}
	}
	return best
}

// Retire ends a character's working life. A retiring owner hands the
// business to their successor, or closes it when nobody works there.
func Retire(w *ecs.World, retiree ecs.EntityID) error {
	if occ := ecs.Get[Occupation](w, retiree); occ != nil {
		b := ecs.Get[Business](w, occ.Business)
		if b != nil && b.Owner == retiree {
			heir := Successor(w, occ.Business)
			if heir == 0 {
				if err := CloseBusiness(w, occ.Business); err != nil {
					return err
				}
			} else {
				if err := LeaveJob(w, retiree); err != nil {
					return err
				}
				if err := LeaveJob(w, heir); err != nil {
					return err
				}
				if err := SetOwner(w, occ.Business, heir); err != nil {
					return err
				}
			}
		}
		if err := LeaveJob(w, retiree); err != nil {
			return err
		}
	}
	ecs.Remove[Unemployed](w, retiree)
	if err := ecs.Add(w, retiree, &Retired{}); err != nil {
		return err
	}
	return AddCharacterTrait(w, retiree, TraitRetired, traits.Options{})
}

func retireEvent(cfg *config.Config) (*lifeevent.Definition, error) {
	const who = "Retiree"
	return &lifeevent.Definition{
		Name: EventRetire,
		Roles: []lifeevent.RoleSpec{{
			Name: who,
			Binder: lifeevent.Eligible(
				[]reflect.Type{ecs.TypeOf[Character](), ecs.TypeOf[Active](), ecs.TypeOf[Occupation]()},
				func(w *ecs.World, id ecs.EntityID) bool {
					return ecs.Get[Character](w, id).Stage == Senior && !ecs.Has[Retired](w, id)
				},
			),
		}},
		Probability: lifeevent.Constant(cfg.EventProbability(EventRetire, 0.4)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			return Retire(w, inst.Role(who))
		},
	}, nil
}

const (
	rolePerson   = "Person"
	roleBusiness = "Business"
)

func jobSeekers() lifeevent.Binder {
	return lifeevent.Eligible(
		[]reflect.Type{ecs.TypeOf[Character](), ecs.TypeOf[Active](), ecs.TypeOf[Unemployed]()},
		func(w *ecs.World, id ecs.EntityID) bool {
			return ecs.Get[Character](w, id).Stage >= WorkingAge && !ecs.Has[Retired](w, id)
		},
	)
}

// FittingRoles lists a business's open roles person is old enough for.
func FittingRoles(w *ecs.World, business, person ecs.EntityID) []string {
	b := ecs.Get[Business](w, business)
	c := ecs.Get[Character](w, person)
	if b == nil || c == nil {
		return nil
	}
	jobs := ecs.MustResource[*Content](w).Jobs
	var out []string
	for _, role := range b.OpenRoles() {
		if job, err := jobs.Get(role); err == nil && c.Stage >= job.MinStage {
			out = append(out, role)
		}
	}
	return out
}

func findJob(cfg *config.Config) (*lifeevent.Definition, error) {
	return &lifeevent.Definition{
		Name: EventFindJob,
		Roles: []lifeevent.RoleSpec{
			{Name: rolePerson, Binder: jobSeekers()},
			{Name: roleBusiness, Binder: lifeevent.Eligible(
				[]reflect.Type{ecs.TypeOf[Business](), ecs.TypeOf[OpenForBusiness]()},
				func(w *ecs.World, id ecs.EntityID) bool { return ecs.Get[Business](w, id).OpenSlots() > 0 },
			)},
		},
		Select: lifeevent.SelectOne,
		Weight: func(w *ecs.World, roles []lifeevent.Role) float64 {
			if len(FittingRoles(w, roles[1].Entity, roles[0].Entity)) == 0 {
				return 0
			}
			return float64(ecs.Get[Business](w, roles[1].Entity).OpenSlots())
		},
		Probability: lifeevent.Constant(cfg.EventProbability(EventFindJob, 0.7)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			person, business := inst.Role(rolePerson), inst.Role(roleBusiness)
			roles := FittingRoles(w, business, person)
			if len(roles) == 0 {
				return ErrNoOpenSlots
			}
			return AddEmployee(w, business, person, roles[0])
		},
	}, nil
}

func becomeBusinessOwner(cfg *config.Config) (*lifeevent.Definition, error) {
	return &lifeevent.Definition{
		Name: EventBecomeBusinessOwner,
		Roles: []lifeevent.RoleSpec{
			{Name: rolePerson, Binder: jobSeekers()},
			{Name: roleBusiness, Binder: lifeevent.Eligible(
				[]reflect.Type{ecs.TypeOf[Business](), ecs.TypeOf[OpenForBusiness]()},
				func(w *ecs.World, id ecs.EntityID) bool { return !ecs.Get[Business](w, id).HasOwner() },
			)},
		},
		Select: lifeevent.SelectOne,
		Weight: func(w *ecs.World, roles []lifeevent.Role) float64 {
			return 1 + attrs(w, roles[0].Entity).Stats().Value(StatManagement)
		},
		Probability: lifeevent.Constant(cfg.EventProbability(EventBecomeBusinessOwner, 0.5)),
		Effect: func(w *ecs.World, inst *lifeevent.Instance) error {
			return SetOwner(w, inst.Role(roleBusiness), inst.Role(rolePerson))
		},
	}, nil
}
