package lifeevent

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/simtime"
)

// PersonalHistory is the component listing the events an entity took part in.
type PersonalHistory struct {
	Events []*Instance
}

// Last returns the most recent event of the given type, or nil.
func (h *PersonalHistory) Last(eventType string) *Instance {
	for i := len(h.Events) - 1; i >= 0; i-- {
		if h.Events[i].Type == eventType {
			return h.Events[i]
		}
	}
	return nil
}

// Count returns how many events of the given type are recorded.
func (h *PersonalHistory) Count(eventType string) int {
	n := 0
	for _, e := range h.Events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// GlobalHistory is the resource holding every dispatched event.
type GlobalHistory struct {
	events []*Instance
	byUID  map[uuid.UUID]*Instance
	counts map[string]int
}

func NewGlobalHistory() *GlobalHistory {
	return &GlobalHistory{byUID: make(map[uuid.UUID]*Instance), counts: make(map[string]int)}
}

func (g *GlobalHistory) append(inst *Instance) {
	g.events = append(g.events, inst)
	g.byUID[inst.UID] = inst
	g.counts[inst.Type]++
}

// Events returns every recorded event in dispatch order.
func (g *GlobalHistory) Events() []*Instance {
	return append([]*Instance(nil), g.events...)
}

func (g *GlobalHistory) Len() int { return len(g.events) }

// Lookup returns the event with the given UID.
func (g *GlobalHistory) Lookup(uid uuid.UUID) (*Instance, bool) {
	inst, ok := g.byUID[uid]
	return inst, ok
}

// Counts returns how many events of each type were recorded.
func (g *GlobalHistory) Counts() map[string]int {
	out := make(map[string]int, len(g.counts))
	for k, v := range g.counts {
		out[k] = v
	}
	return out
}

// AddToPersonalHistory appends inst to the entity's history, creating the
// component on first use.
func AddToPersonalHistory(w *ecs.World, id ecs.EntityID, inst *Instance) error {
	h := ecs.Get[PersonalHistory](w, id)
	if h == nil {
		h = &PersonalHistory{}
		if err := ecs.Add(w, id, h); err != nil {
			return fmt.Errorf("personal history: %w", err)
		}
	}
	h.Events = append(h.Events, inst)
	return nil
}

// Listener receives every dispatched event.
type Listener func(w *ecs.World, inst *Instance)

// Dispatcher assigns event UIDs, records history and notifies listeners in
// registration order.
type Dispatcher struct {
	namespace uuid.UUID
	seq       uint64
	history   *GlobalHistory
	listeners []Listener
}

// NewDispatcher creates a dispatcher whose UIDs derive from runID, so a
// seeded run always produces the same UIDs.
func NewDispatcher(runID uuid.UUID, history *GlobalHistory) *Dispatcher {
	return &Dispatcher{namespace: runID, history: history}
}

// RunID derives a stable run identifier from a seed.
func RunID(seed int64) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("hamlet/%d", seed)))
}

func (d *Dispatcher) Listen(l Listener) {
	d.listeners = append(d.listeners, l)
}

func (d *Dispatcher) History() *GlobalHistory { return d.history }

// NewInstance builds an event instance with a fresh UID.
func (d *Dispatcher) NewInstance(eventType string, date simtime.Date, roles ...Role) *Instance {
	inst := &Instance{Type: eventType, Date: date, Roles: roles}
	d.assign(inst)
	return inst
}

func (d *Dispatcher) assign(inst *Instance) {
	d.seq++
	inst.UID = uuid.NewSHA1(d.namespace, []byte(fmt.Sprintf("%d", d.seq)))
}

// Record attaches inst to the personal history of each role entity exactly
// once, then dispatches it.
func (d *Dispatcher) Record(w *ecs.World, inst *Instance) error {
	if inst.UID == uuid.Nil {
		d.assign(inst)
	}
	for _, id := range inst.Entities() {
		if err := AddToPersonalHistory(w, id, inst); err != nil {
			return fmt.Errorf("record %s: %w", inst.Type, err)
		}
	}
	d.Dispatch(w, inst)
	return nil
}

// Dispatch appends inst to the global history and calls every listener.
func (d *Dispatcher) Dispatch(w *ecs.World, inst *Instance) {
	d.history.append(inst)
	slog.Info("life event", "type", inst.Type, "date", inst.Date.String(), "roles", inst.Describe(w))
	for _, l := range d.listeners {
		l(w, inst)
	}
}
