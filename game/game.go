// Package game runs the outbreak population: it owns the ECS world, keeps
// the ordered prey, predator and obstacle sets, and advances everything one
// fixed tick at a time.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/config"
	"github.com/pthm-cable/outbreak/steering"
	"github.com/pthm-cable/outbreak/systems"
	"github.com/pthm-cable/outbreak/telemetry"
)

// Options configures a new game.
type Options struct {
	Config         *config.Config // nil uses config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 uses the configured window
	OutputDir      string  // empty disables CSV output
	StepsPerUpdate int     // ticks per UpdateHeadless call
	SkipPopulation bool    // start with an empty arena
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	world *ecs.World

	agentMapper    *ecs.Map2[steering.Body, components.Agent]
	obstacleMapper *ecs.Map1[components.Obstacle]
	agentFilter    *ecs.Filter2[steering.Body, components.Agent]
	obstacleFilter *ecs.Filter1[components.Obstacle]
	bodyMap        *ecs.Map[steering.Body]
	agentMap       *ecs.Map[components.Agent]

	// Ordered sets, insertion order
	prey      []ecs.Entity
	predators []ecs.Entity
	obstacles []ecs.Entity
	tracked   map[ecs.Entity]components.Agent // ID and kind as first seen; zero for obstacles

	view       systems.View
	locomotion *systems.LocomotionSystem

	tick           int32
	nextID         uint32
	stepsPerUpdate int

	// Telemetry
	collector        *telemetry.Collector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	logStats         bool
	events           []telemetry.Event
	lastStats        telemetry.WindowStats
	lastBookmark     *telemetry.Bookmark
}

// NewGame creates a game with default options and a fixed seed.
func NewGame() *Game {
	return NewGameWithOptions(Options{Seed: 42})
}

// NewGameWithOptions creates a new game and spawns the initial population.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	g := &Game{
		cfg:   cfg,
		rng:   rng,
		seed:  opts.Seed,
		world: world,

		agentMapper:    ecs.NewMap2[steering.Body, components.Agent](world),
		obstacleMapper: ecs.NewMap1[components.Obstacle](world),
		agentFilter:    ecs.NewFilter2[steering.Body, components.Agent](world),
		obstacleFilter: ecs.NewFilter1[components.Obstacle](world),
		bodyMap:        ecs.NewMap[steering.Body](world),
		agentMap:       ecs.NewMap[components.Agent](world),

		tracked:        make(map[ecs.Entity]components.Agent),
		nextID:         1,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		logStats:       opts.LogStats,
	}

	g.locomotion = systems.NewLocomotionSystem(world, newPolicies(cfg, rng), cfg.Physics.DT)

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Physics.DT)
	g.lifetimeTracker = telemetry.NewLifetimeTracker()
	g.bookmarkDetector = telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, telemetry.SurgeParams{
		Multiplier:     cfg.Bookmarks.ConversionSurge.Multiplier,
		MinConversions: cfg.Bookmarks.ConversionSurge.MinConversions,
	})
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	if !opts.SkipPopulation {
		g.spawnInitialPopulation()
	}

	return g
}

// newPolicies builds the per-kind steering policies from config.
func newPolicies(cfg *config.Config, rng *rand.Rand) systems.Policies {
	kernel := steering.Params{
		Lookahead:       cfg.Steering.Lookahead,
		WanderForward:   cfg.Steering.WanderForward,
		WanderSpread:    cfg.Steering.WanderSpread,
		WanderDamping:   cfg.Steering.WanderDamping,
		AvoidRange:      cfg.Steering.AvoidRange,
		SeparationRange: cfg.Steering.SeparationRange,
	}

	return systems.Policies{
		components.KindPrey: systems.NewPreyPolicy(systems.PreyParams{
			ThreatRadius:   cfg.Prey.ThreatRadius,
			BoundaryWeight: cfg.Prey.BoundaryWeight,
			Home:           cfg.Derived.PreyHome,
			HalfExtent:     cfg.Arena.HalfExtent,
		}, kernel, rng),
		components.KindPredator: systems.NewPredatorPolicy(systems.PredatorParams{
			PursuitWeight:  cfg.Predator.PursuitWeight,
			BoundaryWeight: cfg.Predator.BoundaryWeight,
			Home:           cfg.Derived.PredatorHome,
			HalfExtent:     cfg.Arena.HalfExtent,
		}, kernel, rng),
	}
}

// UpdateHeadless runs StepsPerUpdate ticks.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// Step advances the simulation by exactly one tick.
func (g *Game) Step() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseCap)
	g.enforcePredatorCap()

	g.perfCollector.StartPhase(telemetry.PhaseRefresh)
	g.refresh()
	g.rebuildView()

	g.perfCollector.StartPhase(telemetry.PhaseSteering)
	g.locomotion.Update(g.prey, &g.view)
	g.locomotion.Update(g.predators, &g.view)

	g.perfCollector.StartPhase(telemetry.PhaseContact)
	g.resolveContact()

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.recordMovement()
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.seed
}

// PreyCount returns the number of prey in the ordered set.
func (g *Game) PreyCount() int {
	return len(g.prey)
}

// PredatorCount returns the number of predators in the ordered set.
func (g *Game) PredatorCount() int {
	return len(g.predators)
}

// ObstacleCount returns the number of obstacles in the ordered set.
func (g *Game) ObstacleCount() int {
	return len(g.obstacles)
}

// Stats returns the most recently flushed telemetry window.
func (g *Game) Stats() telemetry.WindowStats {
	return g.lastStats
}

// PerfStats returns timing statistics over the recent ticks.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame records frame timing for the viewer's FPS readout.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// World returns the ECS world. Entities created directly in it are picked up
// at the next refresh.
func (g *Game) World() *ecs.World {
	return g.world
}

// Unload releases output files.
func (g *Game) Unload() {
	g.flushEvents()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
