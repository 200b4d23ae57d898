package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/lifeevent"
	"github.com/talgya/hamlet/internal/social"
	"github.com/talgya/hamlet/internal/town"
)

// EntityRecord is the flattened, storable view of one entity.
type EntityRecord struct {
	ID        uint64             `db:"id" json:"id"`
	Name      string             `db:"name" json:"name"`
	Kind      string             `db:"kind" json:"kind"`
	Status    string             `db:"status" json:"status"`
	Age       float64            `db:"age" json:"age,omitempty"`
	Stage     string             `db:"stage" json:"stage,omitempty"`
	Workplace uint64             `db:"workplace" json:"workplace,omitempty"`
	Role      string             `db:"role" json:"role,omitempty"`
	Residence uint64             `db:"residence" json:"residence,omitempty"`
	Traits    []string           `db:"-" json:"traits,omitempty"`
	Stats     map[string]float64 `db:"-" json:"stats,omitempty"`
}

// RelationshipRecord is one directed edge.
type RelationshipRecord struct {
	Owner  uint64             `json:"owner"`
	Target uint64             `json:"target"`
	Active bool               `json:"active"`
	Tags   []string           `json:"tags,omitempty"`
	Traits []string           `json:"traits,omitempty"`
	Stats  map[string]float64 `json:"stats"`
}

// EventRecord is a stored life event.
type EventRecord struct {
	UID   string            `db:"uid" json:"uid"`
	Type  string            `db:"type" json:"type"`
	Days  int               `db:"date_days" json:"date_days"`
	Date  string            `db:"date" json:"date"`
	Roles string            `db:"roles_json" json:"-"`
	Bound map[string]uint64 `db:"-" json:"roles"`
}

func kindOf(w *ecs.World, id ecs.EntityID) string {
	switch {
	case ecs.Has[town.Character](w, id):
		return "character"
	case ecs.Has[town.Business](w, id):
		return "business"
	case ecs.Has[town.Residence](w, id):
		return "residence"
	case ecs.Has[town.District](w, id):
		return "district"
	case ecs.Has[town.Settlement](w, id):
		return "settlement"
	}
	return "entity"
}

func statusOf(w *ecs.World, id ecs.EntityID) string {
	switch {
	case ecs.Has[town.Deceased](w, id):
		return "deceased"
	case ecs.Has[town.Departed](w, id):
		return "departed"
	case ecs.Has[town.ClosedForBusiness](w, id):
		return "closed"
	case ecs.Has[town.Retired](w, id):
		return "retired"
	case ecs.Has[town.Vacant](w, id):
		return "vacant"
	case ecs.Has[town.Active](w, id):
		return "active"
	}
	return ""
}

// EntityRecords flattens every entity in the world, in ID order.
func EntityRecords(w *ecs.World) []EntityRecord {
	ids := w.Entities()
	out := make([]EntityRecord, 0, len(ids))
	for _, id := range ids {
		name, _ := w.Name(id)
		rec := EntityRecord{ID: uint64(id), Name: name, Kind: kindOf(w, id), Status: statusOf(w, id)}
		if c := ecs.Get[town.Character](w, id); c != nil {
			rec.Stage = c.Stage.String()
		}
		if a := ecs.Get[town.Age](w, id); a != nil {
			rec.Age = a.Years
		}
		if o := ecs.Get[town.Occupation](w, id); o != nil {
			rec.Workplace, rec.Role = uint64(o.Business), o.Role
		}
		if r := ecs.Get[town.Resident](w, id); r != nil {
			rec.Residence = uint64(r.Residence)
		}
		if a := ecs.Get[town.Attributes](w, id); a != nil {
			rec.Traits = a.Traits().IDs()
			rec.Stats = a.Stats().Snapshot()
		}
		out = append(out, rec)
	}
	return out
}

// RelationshipRecords flattens the graph in edge creation order.
func RelationshipRecords(g *social.Graph) []RelationshipRecord {
	edges := g.Edges()
	out := make([]RelationshipRecord, 0, len(edges))
	for _, r := range edges {
		out = append(out, RelationshipRecord{
			Owner:  uint64(r.Owner),
			Target: uint64(r.Target),
			Active: r.Active,
			Tags:   r.Tags(),
			Traits: r.Traits().IDs(),
			Stats:  r.Stats().Snapshot(),
		})
	}
	return out
}

// NewEventRecord converts a life event instance.
func NewEventRecord(inst *lifeevent.Instance) (EventRecord, error) {
	bound := make(map[string]uint64, len(inst.Roles))
	for _, r := range inst.Roles {
		bound[r.Name] = uint64(r.Entity)
	}
	roles, err := json.Marshal(bound)
	if err != nil {
		return EventRecord{}, fmt.Errorf("event %s roles: %w", inst.UID, err)
	}
	return EventRecord{
		UID:   inst.UID.String(),
		Type:  inst.Type,
		Days:  inst.Date.Days,
		Date:  inst.Date.String(),
		Roles: string(roles),
		Bound: bound,
	}, nil
}

func (e *EventRecord) decodeRoles() error {
	if e.Roles == "" {
		return nil
	}
	return json.Unmarshal([]byte(e.Roles), &e.Bound)
}
