package town

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/social"
	"github.com/talgya/hamlet/internal/traits"
)

func attrs(w *ecs.World, id ecs.EntityID) *Attributes {
	return ecs.Get[Attributes](w, id)
}

// IsAlive reports whether id is an active character.
func IsAlive(w *ecs.World, id ecs.EntityID) bool {
	return ecs.Has[Character](w, id) && ecs.Has[Active](w, id)
}

// DisplayName returns a character's full name or the entity name.
func DisplayName(w *ecs.World, id ecs.EntityID) string {
	if c := ecs.Get[Character](w, id); c != nil {
		return c.FullName()
	}
	name, err := w.Name(id)
	if err != nil {
		return fmt.Sprintf("#%d", id)
	}
	return name
}

func edgeTrait(w *ecs.World, owner, target ecs.EntityID, id string) error {
	content := ecs.MustResource[*Content](w)
	def, err := content.Trait(id)
	if err != nil {
		return err
	}
	r := ecs.MustResource[*social.Graph](w).GetOrCreate(owner, target)
	return traits.Ensure(r, def, traits.Options{})
}

func dropEdgeTrait(w *ecs.World, owner, target ecs.EntityID, id string) {
	if r, err := ecs.MustResource[*social.Graph](w).Get(owner, target); err == nil {
		traits.Remove(r, id)
	}
}

// AddCharacterTrait attaches a trait from the content library to a character.
func AddCharacterTrait(w *ecs.World, id ecs.EntityID, traitID string, opts traits.Options) error {
	a := attrs(w, id)
	if a == nil {
		return fmt.Errorf("%d has no attributes: %w", id, ecs.ErrEntityNotFound)
	}
	def, err := ecs.MustResource[*Content](w).Trait(traitID)
	if err != nil {
		return err
	}
	return traits.Ensure(a, def, opts)
}

func linkBoss(w *ecs.World, owner, employee ecs.EntityID) error {
	if err := edgeTrait(w, employee, owner, TraitBoss); err != nil {
		return err
	}
	return edgeTrait(w, owner, employee, TraitEmployee)
}

func unlinkBoss(w *ecs.World, owner, employee ecs.EntityID) {
	dropEdgeTrait(w, employee, owner, TraitBoss)
	dropEdgeTrait(w, owner, employee, TraitEmployee)
}

func startJob(w *ecs.World, business, person ecs.EntityID, role string) error {
	job, err := ecs.MustResource[*Content](w).Jobs.Get(role)
	if err != nil {
		return err
	}
	clock := ecs.MustResource[*simtime.Clock](w)
	if err := ecs.Add(w, person, &Occupation{Business: business, Role: role, Start: clock.Now}); err != nil {
		return err
	}
	ecs.Remove[Unemployed](w, person)
	if a := attrs(w, person); a != nil && job.Trait != nil {
		return traits.Ensure(a, job.Trait, traits.Options{Source: DisplayName(w, business)})
	}
	return nil
}

// AddEmployee hires person into role at business and links them to the
// owner and coworkers.
func AddEmployee(w *ecs.World, business, person ecs.EntityID, role string) error {
	b := ecs.Get[Business](w, business)
	if b == nil {
		return fmt.Errorf("business %d: %w", business, ecs.ErrEntityNotFound)
	}
	if ecs.Has[Occupation](w, person) || !ecs.Has[Active](w, person) {
		return fmt.Errorf("%s: %w", DisplayName(w, person), ErrNotEmployable)
	}
	if _, err := ecs.MustResource[*Content](w).Jobs.Get(role); err != nil {
		return err
	}
	if err := b.AddEmployee(person, role); err != nil {
		return err
	}
	if err := startJob(w, business, person, role); err != nil {
		return err
	}

	if b.HasOwner() {
		if err := linkBoss(w, b.Owner, person); err != nil {
			return err
		}
	}
	for _, e := range b.Employees() {
		if e.ID == person {
			continue
		}
		if err := edgeTrait(w, person, e.ID, TraitCoworker); err != nil {
			return err
		}
		if err := edgeTrait(w, e.ID, person, TraitCoworker); err != nil {
			return err
		}
	}
	return nil
}

// SetOwner makes person the owner of business.
func SetOwner(w *ecs.World, business, person ecs.EntityID) error {
	b := ecs.Get[Business](w, business)
	if b == nil {
		return fmt.Errorf("business %d: %w", business, ecs.ErrEntityNotFound)
	}
	if ecs.Has[Occupation](w, person) || !ecs.Has[Active](w, person) {
		return fmt.Errorf("%s: %w", DisplayName(w, person), ErrNotEmployable)
	}
	if b.HasOwner() {
		if err := LeaveJob(w, b.Owner); err != nil {
			return err
		}
	}
	if err := b.SetOwner(person); err != nil {
		return err
	}
	if err := startJob(w, business, person, b.OwnerRole); err != nil {
		return err
	}
	for _, e := range b.Employees() {
		if err := linkBoss(w, person, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// LeaveJob removes person from their workplace and reverses the job's effects.
// It does nothing for characters without an occupation.
func LeaveJob(w *ecs.World, person ecs.EntityID) error {
	occ := ecs.Get[Occupation](w, person)
	if occ == nil {
		return nil
	}

	if b := ecs.Get[Business](w, occ.Business); b != nil {
		if b.Owner == person {
			b.Owner = 0
			for _, e := range b.Employees() {
				unlinkBoss(w, person, e.ID)
			}
		} else {
			if err := b.RemoveEmployee(person); err != nil {
				return err
			}
			if b.HasOwner() {
				unlinkBoss(w, b.Owner, person)
			}
			for _, e := range b.Employees() {
				dropEdgeTrait(w, person, e.ID, TraitCoworker)
				dropEdgeTrait(w, e.ID, person, TraitCoworker)
			}
		}
	}

	if job, err := ecs.MustResource[*Content](w).Jobs.Get(occ.Role); err == nil && job.Trait != nil {
		if a := attrs(w, person); a != nil {
			traits.Remove(a, job.Trait.ID)
		}
	}
	ecs.Remove[Occupation](w, person)
	return nil
}

// WorkingAge is the youngest life stage that looks for work.
const WorkingAge = YoungAdult

// MakeUnemployed marks an active, working-age, non-retired character as job seeking.
func MakeUnemployed(w *ecs.World, person ecs.EntityID) error {
	if !ecs.Has[Active](w, person) || ecs.Has[Retired](w, person) || ecs.Has[Occupation](w, person) {
		return nil
	}
	if c := ecs.Get[Character](w, person); c == nil || c.Stage < WorkingAge {
		return nil
	}
	if ecs.Has[Unemployed](w, person) {
		return nil
	}
	return ecs.Add(w, person, &Unemployed{})
}

// LayOff ends person's job and marks them as job seeking.
func LayOff(w *ecs.World, person ecs.EntityID) error {
	if err := LeaveJob(w, person); err != nil {
		return err
	}
	return MakeUnemployed(w, person)
}

// CloseBusiness lays off all staff and marks the business closed.
func CloseBusiness(w *ecs.World, business ecs.EntityID) error {
	b := ecs.Get[Business](w, business)
	if b == nil {
		return fmt.Errorf("business %d: %w", business, ecs.ErrEntityNotFound)
	}
	staff := b.Employees()
	for _, e := range staff {
		if err := LayOff(w, e.ID); err != nil {
			return err
		}
	}
	if owner := b.Owner; owner != 0 {
		if err := LayOff(w, owner); err != nil {
			return err
		}
	}
	ecs.Remove[OpenForBusiness](w, business)
	ecs.Remove[Active](w, business)
	return ecs.Add(w, business, &ClosedForBusiness{})
}

// SetResidence moves person into residence, optionally as an owner.
func SetResidence(w *ecs.World, person, residence ecs.EntityID, owner bool) error {
	r := ecs.Get[Residence](w, residence)
	if r == nil {
		return fmt.Errorf("residence %d: %w", residence, ecs.ErrEntityNotFound)
	}
	if cur := ecs.Get[Resident](w, person); cur != nil && cur.Residence == residence {
		return nil
	}
	if len(r.Residents) >= r.Capacity {
		return fmt.Errorf("%s: %w", DisplayName(w, residence), ErrResidenceFull)
	}
	if err := MoveOut(w, person); err != nil {
		return err
	}

	r.Residents = append(r.Residents, person)
	if owner {
		r.Owners = append(r.Owners, person)
	}
	ecs.Remove[Vacant](w, residence)
	return ecs.Add(w, person, &Resident{Residence: residence})
}

// MoveOut removes person from their residence. An emptied residence becomes vacant.
func MoveOut(w *ecs.World, person ecs.EntityID) error {
	res := ecs.Get[Resident](w, person)
	if res == nil {
		return nil
	}
	ecs.Remove[Resident](w, person)
	r := ecs.Get[Residence](w, res.Residence)
	if r == nil {
		return nil
	}
	r.Residents = slices.DeleteFunc(r.Residents, func(id ecs.EntityID) bool { return id == person })
	r.Owners = slices.DeleteFunc(r.Owners, func(id ecs.EntityID) bool { return id == person })
	if len(r.Residents) > 0 {
		return nil
	}
	r.Owners = nil
	return ecs.Add(w, res.Residence, &Vacant{})
}

// Household returns everyone living with person, person included.
func Household(w *ecs.World, person ecs.EntityID) []ecs.EntityID {
	res := ecs.Get[Resident](w, person)
	if res == nil {
		return []ecs.EntityID{person}
	}
	r := ecs.Get[Residence](w, res.Residence)
	if r == nil {
		return []ecs.EntityID{person}
	}
	return slices.Clone(r.Residents)
}

// VacantResidences lists empty homes in ascending ID order.
func VacantResidences(w *ecs.World) []ecs.EntityID {
	return w.With(ecs.TypeOf[Residence](), ecs.TypeOf[Vacant]())
}

func retire(w *ecs.World, id ecs.EntityID) {
	ecs.Remove[Active](w, id)
	ecs.Remove[Unemployed](w, id)
	ecs.Remove[Pregnant](w, id)
	ecs.MustResource[*social.Graph](w).Deactivate(id)
}

// DepartTown removes person from the town.
func DepartTown(w *ecs.World, person ecs.EntityID) error {
	if err := LeaveJob(w, person); err != nil {
		return err
	}
	if err := MoveOut(w, person); err != nil {
		return err
	}
	retire(w, person)
	return ecs.Add(w, person, &Departed{})
}

// Die marks person deceased and widows their spouses.
func Die(w *ecs.World, person ecs.EntityID) error {
	if err := LeaveJob(w, person); err != nil {
		return err
	}
	if err := MoveOut(w, person); err != nil {
		return err
	}

	g := ecs.MustResource[*social.Graph](w)
	for _, spouse := range g.WithTags(person, social.TagSpouse) {
		if !IsAlive(w, spouse) {
			continue
		}
		err := AddCharacterTrait(w, spouse, TraitWidowed, traits.Options{Source: DisplayName(w, person)})
		if err != nil && !errors.Is(err, traits.ErrConflict) {
			return err
		}
	}

	retire(w, person)
	return ecs.Add(w, person, &Deceased{})
}

// Children returns the entities person has a Child edge toward.
func Children(w *ecs.World, person ecs.EntityID) []ecs.EntityID {
	return ecs.MustResource[*social.Graph](w).WithTags(person, social.TagChild)
}

// openBusinesses counts trading businesses in a district.
func openBusinesses(w *ecs.World, d *District) int {
	n := 0
	for _, b := range d.Businesses {
		if ecs.Has[OpenForBusiness](w, b) {
			n++
		}
	}
	return n
}
