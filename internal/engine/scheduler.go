package engine

import (
	"fmt"

	"github.com/talgya/hamlet/internal/ecs"
)

// Group is a phase of the tick. Groups always run in declaration order.
type Group uint8

const (
	Initialization Group = iota // runs once, on the first tick
	EarlyUpdate
	Update
	LateUpdate
	groupCount
)

var groupNames = [groupCount]string{"initialization", "early_update", "update", "late_update"}

func (g Group) String() string {
	if g >= groupCount {
		return fmt.Sprintf("group(%d)", g)
	}
	return groupNames[g]
}

type systemGroup struct {
	systems []ecs.System
	active  bool
}

// Scheduler runs systems in group order, then registration order within a group.
type Scheduler struct {
	groups [groupCount]*systemGroup
}

func NewScheduler() *Scheduler {
	s := &Scheduler{}
	for i := range s.groups {
		s.groups[i] = &systemGroup{active: true}
	}
	return s
}

// Add appends systems to a group.
func (s *Scheduler) Add(g Group, systems ...ecs.System) {
	s.groups[g].systems = append(s.groups[g].systems, systems...)
}

// Systems lists a group's systems in run order.
func (s *Scheduler) Systems(g Group) []ecs.System {
	return append([]ecs.System(nil), s.groups[g].systems...)
}

// Active reports whether the group still runs.
func (s *Scheduler) Active(g Group) bool { return s.groups[g].active }

// SetActive enables or disables a group.
func (s *Scheduler) SetActive(g Group, on bool) { s.groups[g].active = on }

// Step runs one tick. The first system error aborts the rest of the tick.
// The initialization group deactivates after it completes.
func (s *Scheduler) Step(w *ecs.World) error {
	if err := s.Initialize(w); err != nil {
		return err
	}
	for g := EarlyUpdate; g < groupCount; g++ {
		grp := s.groups[g]
		if !grp.active {
			continue
		}
		for _, sys := range grp.systems {
			if err := sys.Update(w); err != nil {
				return fmt.Errorf("%s/%s: %w", g, sys.Name(), err)
			}
		}
	}
	return nil
}

// Initialize runs only the initialization group, if it is still active.
func (s *Scheduler) Initialize(w *ecs.World) error {
	grp := s.groups[Initialization]
	if !grp.active {
		return nil
	}
	for _, sys := range grp.systems {
		if err := sys.Update(w); err != nil {
			return fmt.Errorf("%s/%s: %w", Initialization, sys.Name(), err)
		}
	}
	grp.active = false
	return nil
}
