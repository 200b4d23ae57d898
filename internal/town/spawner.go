// Character, household and building spawning.
package town

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/social"
	"github.com/talgya/hamlet/internal/traits"
)

// Spawner creates characters and buildings. It draws from the world's
// shared random stream so spawning stays reproducible.
type Spawner struct {
	rng *entropy.Rand
}

func NewSpawner(rng *entropy.Rand) *Spawner {
	return &Spawner{rng: rng}
}

// CharacterSpec fixes some attributes of a new character. Empty fields are rolled.
type CharacterSpec struct {
	First  string
	Last   string
	Female *bool
	Age    float64
}

// SpawnCharacter creates an active character.
func (s *Spawner) SpawnCharacter(w *ecs.World, cs CharacterSpec) (ecs.EntityID, error) {
	sex := SexMale
	if cs.Female != nil {
		if *cs.Female {
			sex = SexFemale
		}
	} else if s.rng.Float() < 0.5 {
		sex = SexFemale
	}

	first := cs.First
	if first == "" {
		first = s.firstName(sex)
	}
	last := cs.Last
	if last == "" {
		last = lastNames[s.rng.Intn(len(lastNames))]
	}

	clock := ecs.MustResource[*simtime.Clock](w)
	born := clock.Now.AddDays(-int(cs.Age * simtime.DaysPerYear))

	a := NewAttributes(CharacterStats())
	s.rollStats(a)

	ch := &Character{First: first, Last: last, Sex: sex, Stage: StageForAge(cs.Age), Born: born}
	id := w.Spawn(ch.FullName(),
		ch,
		a,
		&Age{Years: cs.Age},
		&Lifespan{Years: s.lifespan()},
		&Active{},
	)
	if sex == SexFemale {
		if err := ecs.Add(w, id, &CanGetPregnant{}); err != nil {
			return 0, err
		}
	}
	if err := s.rollPersonality(w, a); err != nil {
		return 0, fmt.Errorf("spawn %s: %w", ch.FullName(), err)
	}
	return id, nil
}

func (s *Spawner) rollStats(a *Attributes) {
	set := a.Stats()
	if st, err := set.Get(StatFertility); err == nil {
		st.SetBase(s.rng.Range(30, 90))
	}
	if st, err := set.Get(StatSociability); err == nil {
		st.SetBase(s.rng.Norm(0, 20))
	}
	if st, err := set.Get(StatAttractiveness); err == nil {
		st.SetBase(s.rng.Range(20, 80))
	}
}

// lifespan is a bell curve around 75 years, range 50 to 100.
func (s *Spawner) lifespan() float64 {
	return max(50, min(100, s.rng.Norm(75, 8)))
}

// rollPersonality attaches up to two personality traits, skipping conflicts.
func (s *Spawner) rollPersonality(w *ecs.World, a *Attributes) error {
	content := ecs.MustResource[*Content](w)
	n := s.rng.Intn(3)
	for i := 0; i < n; i++ {
		def, err := content.Trait(PersonalityTraits[s.rng.Intn(len(PersonalityTraits))])
		if err != nil {
			return err
		}
		err = traits.Add(a, def, traits.Options{Source: "birth"})
		if err != nil && !errors.Is(err, traits.ErrConflict) && !errors.Is(err, traits.ErrAlreadyApplied) {
			return err
		}
	}
	return nil
}

func (s *Spawner) firstName(sex Sex) string {
	if sex == SexMale {
		return maleNames[s.rng.Intn(len(maleNames))]
	}
	return femaleNames[s.rng.Intn(len(femaleNames))]
}

// LinkParent records the parent/child relationship in both directions.
func LinkParent(w *ecs.World, parent, child ecs.EntityID) error {
	g := ecs.MustResource[*social.Graph](w)
	g.AddTags(parent, child, social.TagChild, social.TagFamily)
	g.AddTags(child, parent, social.TagParent, social.TagFamily)
	if err := edgeTrait(w, parent, child, TraitFamily); err != nil {
		return err
	}
	return edgeTrait(w, child, parent, TraitFamily)
}

// LinkSiblings records a sibling relationship in both directions.
func LinkSiblings(w *ecs.World, a, b ecs.EntityID) error {
	g := ecs.MustResource[*social.Graph](w)
	g.AddTags(a, b, social.TagSibling, social.TagFamily)
	g.AddTags(b, a, social.TagSibling, social.TagFamily)
	if err := edgeTrait(w, a, b, TraitFamily); err != nil {
		return err
	}
	return edgeTrait(w, b, a, TraitFamily)
}

// Marry tags a couple as spouses.
func Marry(w *ecs.World, a, b ecs.EntityID) {
	g := ecs.MustResource[*social.Graph](w)
	g.RemoveTags(a, b, social.TagDating)
	g.RemoveTags(b, a, social.TagDating)
	g.AddTags(a, b, social.TagSpouse, social.TagSignificantOther, social.TagFamily)
	g.AddTags(b, a, social.TagSpouse, social.TagSignificantOther, social.TagFamily)
}

// SpawnHousehold fills a residence with a couple or a single adult plus children.
func (s *Spawner) SpawnHousehold(w *ecs.World, residence ecs.EntityID) ([]ecs.EntityID, error) {
	female, male := true, false
	last := lastNames[s.rng.Intn(len(lastNames))]

	headAge := s.rng.Range(22, 50)
	head, err := s.SpawnCharacter(w, CharacterSpec{Last: last, Female: &male, Age: headAge})
	if err != nil {
		return nil, err
	}
	members := []ecs.EntityID{head}
	if err := SetResidence(w, head, residence, true); err != nil {
		return nil, err
	}

	if s.rng.Float() < 0.3 {
		return members, nil
	}

	partner, err := s.SpawnCharacter(w, CharacterSpec{Last: last, Female: &female, Age: max(18, headAge+s.rng.Norm(0, 3))})
	if err != nil {
		return nil, err
	}
	if err := SetResidence(w, partner, residence, true); err != nil {
		return nil, err
	}
	members = append(members, partner)
	Marry(w, head, partner)
	g := ecs.MustResource[*social.Graph](w)
	for _, pair := range [][2]ecs.EntityID{{head, partner}, {partner, head}} {
		r := g.GetOrCreate(pair[0], pair[1])
		if st, err := r.Stats().Get(social.Romance); err == nil {
			st.SetBase(s.rng.Range(0.5, 0.9))
		}
		if st, err := r.Stats().Get(social.Friendship); err == nil {
			st.SetBase(s.rng.Range(0.3, 0.8))
		}
	}

	youngest := min(headAge, ecs.Get[Age](w, partner).Years)
	var kids []ecs.EntityID
	if youngest > 20 {
		n := s.rng.Intn(4)
		for i := 0; i < n; i++ {
			kid, err := s.SpawnCharacter(w, CharacterSpec{Last: last, Age: s.rng.Range(0, youngest-18)})
			if err != nil {
				return nil, err
			}
			if err := SetResidence(w, kid, residence, false); err != nil {
				break
			}
			for _, parent := range []ecs.EntityID{head, partner} {
				if err := LinkParent(w, parent, kid); err != nil {
					return nil, err
				}
			}
			for _, sib := range kids {
				if err := LinkSiblings(w, sib, kid); err != nil {
					return nil, err
				}
			}
			kids = append(kids, kid)
		}
	}
	members = append(members, kids...)
	for _, id := range members {
		if err := MakeUnemployed(w, id); err != nil {
			return nil, err
		}
	}
	return members, nil
}

// SpawnChild creates a newborn to mother and father and moves it into the
// mother's home. Father may be zero.
func (s *Spawner) SpawnChild(w *ecs.World, mother, father ecs.EntityID) (ecs.EntityID, error) {
	last := ""
	for _, p := range []ecs.EntityID{father, mother} {
		if c := ecs.Get[Character](w, p); c != nil {
			last = c.Last
			break
		}
	}
	kid, err := s.SpawnCharacter(w, CharacterSpec{Last: last})
	if err != nil {
		return 0, err
	}

	var parents []ecs.EntityID
	for _, p := range []ecs.EntityID{mother, father} {
		if p != 0 && w.Exists(p) {
			parents = append(parents, p)
		}
	}
	siblings := map[ecs.EntityID]bool{}
	for _, p := range parents {
		for _, sib := range Children(w, p) {
			siblings[sib] = true
		}
		if err := LinkParent(w, p, kid); err != nil {
			return 0, err
		}
	}
	for _, sib := range sortedIDs(siblings) {
		if sib == kid || !IsAlive(w, sib) {
			continue
		}
		if err := LinkSiblings(w, sib, kid); err != nil {
			return 0, err
		}
	}

	if res := ecs.Get[Resident](w, mother); res != nil {
		if err := SetResidence(w, kid, res.Residence, false); err != nil && !errors.Is(err, ErrResidenceFull) {
			return 0, err
		}
	}
	return kid, nil
}

func sortedIDs(set map[ecs.EntityID]bool) []ecs.EntityID {
	out := make([]ecs.EntityID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// HomeCapacity is the number of people a residence holds.
const HomeCapacity = 6

// SpawnResidence builds an empty home in district.
func (s *Spawner) SpawnResidence(w *ecs.World, district ecs.EntityID) (ecs.EntityID, error) {
	d := ecs.Get[District](w, district)
	if d == nil {
		return 0, fmt.Errorf("district %d: %w", district, ecs.ErrEntityNotFound)
	}
	if d.FreeResidentialSlots() <= 0 {
		return 0, fmt.Errorf("%s: %w", d.Name, ErrNoOpenSlots)
	}
	name := fmt.Sprintf("House %d, %s", len(d.Residences)+1, d.Name)
	id := w.Spawn(name, &Residence{District: district, Capacity: HomeCapacity}, &Vacant{})
	d.Residences = append(d.Residences, id)
	return id, nil
}

// SpawnBusiness opens a business of the given type in district.
func (s *Spawner) SpawnBusiness(w *ecs.World, district ecs.EntityID, typeID string) (ecs.EntityID, error) {
	d := ecs.Get[District](w, district)
	if d == nil {
		return 0, fmt.Errorf("district %d: %w", district, ecs.ErrEntityNotFound)
	}
	if openBusinesses(w, d) >= d.BusinessSlots {
		return 0, fmt.Errorf("%s: %w", d.Name, ErrNoOpenSlots)
	}
	typ, err := ecs.MustResource[*Content](w).BusinessTypes.Get(typeID)
	if err != nil {
		return 0, err
	}

	name := lastNames[s.rng.Intn(len(lastNames))] + " " + typ.Name
	b := NewBusiness(name, typ.ID, typ.OwnerRole, typ.Openings)
	b.District = district
	b.Founded = ecs.MustResource[*simtime.Clock](w).Now
	b.Lifespan = typ.Lifespan * s.rng.Range(0.75, 1.25)

	id := w.Spawn(name, b, &OpenForBusiness{}, &Active{})
	d.Businesses = append(d.Businesses, id)
	return id, nil
}

var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth", "Halvard",
	"Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils", "Oswin", "Per",
	"Quinn", "Rowan", "Stellan", "Theron", "Ulric", "Varen", "Wren", "Yorick",
	"Zander", "Arlen", "Beric", "Cade", "Dorian", "Edric", "Falk", "Gunnar",
	"Hugo", "Ivar", "Jorik",
}

var femaleNames = []string{
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta", "Helene",
	"Iris", "Juno", "Kira", "Lena", "Mira", "Nessa", "Olwen", "Petra",
	"Runa", "Senna", "Thea", "Una", "Vera", "Willa", "Yara", "Zara",
	"Ava", "Birgit", "Cora", "Dagny", "Eira", "Fern", "Gwen", "Hilde",
	"Inga", "Johanna", "Katla",
}

var lastNames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Copperfield", "Ravenmoor", "Silverdale", "Wolfsbane", "Stoneheart",
	"Deepwell", "Brightwater", "Oakenshield", "Redforge", "Windholm",
	"Marshwood", "Goldhaven", "Nightingale", "Riverstone", "Steelworth",
	"Embercroft", "Holloway", "Dawnridge", "Farrow", "Wyatt", "Thatcher",
	"Briar", "Caldwell", "Frost", "Harper", "Mercer", "Ward", "Cross",
}
