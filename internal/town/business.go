package town

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/simtime"
)

var (
	ErrOwnerAsEmployee = errors.New("owner cannot be an employee")
	ErrAlreadyEmployed = errors.New("already employed here")
	ErrUnknownJobRole  = errors.New("business has no such role")
	ErrNoOpenSlots     = errors.New("no open slots for role")
	ErrNotEmployee     = errors.New("not an employee")
	ErrNotEmployable   = errors.New("character cannot take a job")
	ErrResidenceFull   = errors.New("residence is full")
)

// Employee is one staff entry.
type Employee struct {
	ID   ecs.EntityID
	Role string
}

// Business is a workplace in a district.
type Business struct {
	Name      string
	Type      string
	District  ecs.EntityID
	Founded   simtime.Date
	Lifespan  float64 // years before closing becomes likely
	OwnerRole string
	Owner     ecs.EntityID

	openings  map[string]int
	employees []Employee
}

// NewBusiness creates a business offering the given role slots.
func NewBusiness(name, typ, ownerRole string, openings map[string]int) *Business {
	o := make(map[string]int, len(openings))
	for k, v := range openings {
		o[k] = v
	}
	return &Business{Name: name, Type: typ, OwnerRole: ownerRole, openings: o}
}

// HasOwner reports whether someone owns the business.
func (b *Business) HasOwner() bool { return b.Owner != 0 }

// IsEmployee reports whether id works here (owner excluded).
func (b *Business) IsEmployee(id ecs.EntityID) bool {
	for _, e := range b.employees {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Employees returns staff in hiring order.
func (b *Business) Employees() []Employee {
	return append([]Employee(nil), b.employees...)
}

// Filled counts staff holding role.
func (b *Business) Filled(role string) int {
	n := 0
	for _, e := range b.employees {
		if e.Role == role {
			n++
		}
	}
	return n
}

// OpenRoles lists roles with free slots, sorted.
func (b *Business) OpenRoles() []string {
	var out []string
	for role, slots := range b.openings {
		if b.Filled(role) < slots {
			out = append(out, role)
		}
	}
	sort.Strings(out)
	return out
}

// OpenSlots counts free slots across roles.
func (b *Business) OpenSlots() int {
	n := 0
	for role, slots := range b.openings {
		n += slots - b.Filled(role)
	}
	return n
}

// AddEmployee hires id into role.
func (b *Business) AddEmployee(id ecs.EntityID, role string) error {
	if id == b.Owner {
		return fmt.Errorf("%s: %w", b.Name, ErrOwnerAsEmployee)
	}
	if b.IsEmployee(id) {
		return fmt.Errorf("%s: %w", b.Name, ErrAlreadyEmployed)
	}
	slots, ok := b.openings[role]
	if !ok {
		return fmt.Errorf("%s role %q: %w", b.Name, role, ErrUnknownJobRole)
	}
	if b.Filled(role) >= slots {
		return fmt.Errorf("%s role %q: %w", b.Name, role, ErrNoOpenSlots)
	}
	b.employees = append(b.employees, Employee{ID: id, Role: role})
	return nil
}

// RemoveEmployee drops id from the staff.
func (b *Business) RemoveEmployee(id ecs.EntityID) error {
	for i, e := range b.employees {
		if e.ID == id {
			b.employees = append(b.employees[:i], b.employees[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %d: %w", b.Name, id, ErrNotEmployee)
}

// SetOwner assigns the owner. The new owner must not be on the staff.
func (b *Business) SetOwner(id ecs.EntityID) error {
	if b.IsEmployee(id) {
		return fmt.Errorf("%s: %w", b.Name, ErrOwnerAsEmployee)
	}
	b.Owner = id
	return nil
}
