// Package lifeevent discovers, gates and fires life events: rule-based
// occurrences (dating, marriage, retirement, ...) that bind entities to
// roles, mutate the world, and are recorded in personal and global history.
package lifeevent

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/simtime"
)

// Role binds a role name to an entity.
type Role struct {
	Name   string       `json:"name"`
	Entity ecs.EntityID `json:"entity"`
}

// Instance is one occurrence of a life event.
type Instance struct {
	UID   uuid.UUID    `json:"uid"`
	Type  string       `json:"type"`
	Date  simtime.Date `json:"date"`
	Roles []Role       `json:"roles"`
}

// Role returns the entity bound to name, or 0.
func (i *Instance) Role(name string) ecs.EntityID {
	for _, r := range i.Roles {
		if r.Name == name {
			return r.Entity
		}
	}
	return 0
}

// Entities returns the distinct role entities in role order.
func (i *Instance) Entities() []ecs.EntityID {
	out := make([]ecs.EntityID, 0, len(i.Roles))
	seen := make(map[ecs.EntityID]bool, len(i.Roles))
	for _, r := range i.Roles {
		if seen[r.Entity] {
			continue
		}
		seen[r.Entity] = true
		out = append(out, r.Entity)
	}
	return out
}

func (i *Instance) String() string {
	parts := make([]string, len(i.Roles))
	for n, r := range i.Roles {
		parts[n] = fmt.Sprintf("%s=%d", r.Name, r.Entity)
	}
	return fmt.Sprintf("%s [%s] %s", i.Type, strings.Join(parts, " "), i.Date)
}

// Describe renders the instance with entity names.
func (i *Instance) Describe(w *ecs.World) string {
	parts := make([]string, len(i.Roles))
	for n, r := range i.Roles {
		name, err := w.Name(r.Entity)
		if err != nil {
			name = fmt.Sprintf("#%d", r.Entity)
		}
		parts[n] = r.Name + "=" + name
	}
	return fmt.Sprintf("%s: %s (%s)", i.Date, i.Type, strings.Join(parts, ", "))
}

func rolesFrom(names []string, ids []ecs.EntityID) []Role {
	out := make([]Role, len(names))
	for i, n := range names {
		out[i] = Role{Name: n, Entity: ids[i]}
	}
	return out
}

func roleMap(roles []Role) map[string]ecs.EntityID {
	m := make(map[string]ecs.EntityID, len(roles))
	for _, r := range roles {
		m[r.Name] = r.Entity
	}
	return m
}
