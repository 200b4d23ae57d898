// Simulation ties together the world, its resources and the town systems.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/hamlet/internal/config"
	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/entropy"
	"github.com/talgya/hamlet/internal/lifeevent"
	"github.com/talgya/hamlet/internal/simtime"
	"github.com/talgya/hamlet/internal/social"
	"github.com/talgya/hamlet/internal/town"
)

// Simulation holds the complete world state and wires systems together.
type Simulation struct {
	Config     *config.Config
	World      *ecs.World
	Scheduler  *Scheduler
	Events     *lifeevent.Engine
	Dispatcher *lifeevent.Dispatcher
	Clock      *simtime.Clock
	Rand       *entropy.Rand
	Graph      *social.Graph
	Engine     *Engine
	RunID      uuid.UUID

	// Statistics refreshed after every tick.
	Stats SimStats
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Population int `json:"population"`
	Businesses int `json:"businesses"`
	Births     int `json:"births"`
	Deaths     int `json:"deaths"`
	Departures int `json:"departures"`
	Events     int `json:"events"`
}

// NewSimulation builds a world from cfg. A zero seed is replaced with a random one.
func NewSimulation(cfg *config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.NewSeed()
		cfg.Seed = seed
	}

	content, err := town.DefaultContent()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	w := ecs.NewWorld()
	rng := entropy.New(seed)
	clock := &simtime.Clock{Now: simtime.New(cfg.StartYear, 1, 1)}
	graph := social.NewGraph(nil)
	runID := lifeevent.RunID(seed)
	disp := lifeevent.NewDispatcher(runID, lifeevent.NewGlobalHistory())
	events := lifeevent.NewEngine()
	if err := town.RegisterBuiltins(events, cfg); err != nil {
		return nil, fmt.Errorf("life events: %w", err)
	}

	ecs.SetResource(w, cfg)
	ecs.SetResource(w, rng)
	ecs.SetResource(w, clock)
	ecs.SetResource(w, graph)
	ecs.SetResource(w, content)
	ecs.SetResource(w, disp)
	ecs.SetResource(w, events)
	ecs.SetResource(w, town.NewSpawner(rng))

	sim := &Simulation{
		Config:     cfg,
		World:      w,
		Scheduler:  NewScheduler(),
		Events:     events,
		Dispatcher: disp,
		Clock:      clock,
		Rand:       rng,
		Graph:      graph,
		RunID:      runID,
	}
	sim.registerSystems()
	sim.Engine = NewEngine(sim.Step)

	slog.Info("simulation created", "seed", seed, "run", runID, "start", clock.Now.String())
	return sim, nil
}

func (s *Simulation) registerSystems() {
	cfg := s.Config
	s.Scheduler.Add(Initialization,
		town.InitializeSettlement(cfg),
	)
	s.Scheduler.Add(EarlyUpdate,
		town.Aging(cfg.DaysPerTick),
		town.LifeStageSystem(),
		town.UnemploymentDuration(cfg.DaysPerTick),
	)
	s.Scheduler.Add(Update,
		town.SpawnResidents(cfg.Settlement.MoveInChance),
		town.SpawnBusinesses(cfg.Settlement.NewBusinessChance),
		town.UpdateFrequentedLocations(),
		town.Socialize(),
		town.JobRoleMonthlyEffects(),
		town.LifeEvents(s.Events),
		town.ChildBirth(),
		town.CharacterLifespan(cfg.MaxYearsPastLifespan),
	)
	s.Scheduler.Add(LateUpdate,
		town.TickTraits(),
		town.YearlyReport(),
	)
}

// Step runs the scheduler once and advances the date by one tick.
func (s *Simulation) Step() error {
	if err := s.Scheduler.Step(s.World); err != nil {
		return err
	}
	s.Clock.Advance(s.Config.DaysPerTick)
	s.updateStats()
	return nil
}

// Ticks is the number of ticks in the configured run length.
func (s *Simulation) Ticks() uint64 {
	return uint64(s.Config.Years * simtime.DaysPerYear / s.Config.DaysPerTick)
}

// Run steps through the configured number of years.
func (s *Simulation) Run(ctx context.Context) error {
	return s.Engine.Run(ctx, s.Ticks())
}

// Listen subscribes fn to every recorded life event.
func (s *Simulation) Listen(fn lifeevent.Listener) {
	s.Dispatcher.Listen(fn)
}

// History returns the global event history.
func (s *Simulation) History() *lifeevent.GlobalHistory {
	return s.Dispatcher.History()
}

func (s *Simulation) updateStats() {
	w := s.World
	counts := s.History().Counts()
	s.Stats = SimStats{
		Population: len(town.Living(w)),
		Businesses: len(w.With(ecs.TypeOf[town.Business](), ecs.TypeOf[town.OpenForBusiness]())),
		Births:     counts[town.EventGiveBirth],
		Deaths:     len(ecs.Each[town.Deceased](w)),
		Departures: len(ecs.Each[town.Departed](w)),
		Events:     s.History().Len(),
	}
}
