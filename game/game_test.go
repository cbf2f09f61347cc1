package game

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/config"
	"github.com/pthm-cable/outbreak/steering"
	"github.com/pthm-cable/outbreak/telemetry"
)

func init() {
	config.MustInit("")
}

func emptyGame(t *testing.T) *Game {
	t.Helper()
	return NewGameWithOptions(Options{Seed: 1, SkipPopulation: true})
}

func TestInitialPopulation(t *testing.T) {
	g := NewGameWithOptions(Options{Seed: 7})
	cfg := config.Cfg()

	if g.PreyCount() != cfg.Population.InitialPrey {
		t.Errorf("prey = %d, want %d", g.PreyCount(), cfg.Population.InitialPrey)
	}
	if g.PredatorCount() != cfg.Population.InitialPredators {
		t.Errorf("predators = %d, want %d", g.PredatorCount(), cfg.Population.InitialPredators)
	}
	if g.ObstacleCount() != cfg.Population.Obstacles {
		t.Errorf("obstacles = %d, want %d", g.ObstacleCount(), cfg.Population.Obstacles)
	}

	snap := g.Snapshot()
	for _, a := range snap.Agents {
		if math.Abs(a.X) > cfg.Arena.HalfExtent || math.Abs(a.Z) > cfg.Arena.HalfExtent {
			t.Errorf("agent %d spawned outside the arena at (%v, %v)", a.ID, a.X, a.Z)
		}
		if a.Y != cfg.Arena.SpawnHeight {
			t.Errorf("agent %d spawned at height %v", a.ID, a.Y)
		}
		if a.Heading < -180 || a.Heading >= 180 {
			t.Errorf("agent %d heading %v out of range", a.ID, a.Heading)
		}
	}
	for _, o := range snap.Obstacles {
		if o.Radius != cfg.Population.ObstacleRadius || o.Y != cfg.Arena.ObstacleHeight {
			t.Errorf("unexpected obstacle %+v", o)
		}
	}
}

func TestPredatorCapEvictsOnePerTick(t *testing.T) {
	g := emptyGame(t)
	for i := 0; i < 25; i++ {
		g.spawnAgent(components.KindPredator, r3.Vec{X: float64(i) - 12, Y: 0.5}, 0)
	}
	evicted := g.predators[1]
	survivor := g.predators[2]

	g.Step()

	if g.PredatorCount() != 24 {
		t.Fatalf("predators after one tick = %d, want 24", g.PredatorCount())
	}
	if g.world.Alive(evicted) {
		t.Error("predator at index 1 should have been destroyed")
	}
	if g.predators[1] != survivor {
		t.Error("eviction should preserve the order of the remaining predators")
	}

	for i := 0; i < 10; i++ {
		g.Step()
	}
	if g.PredatorCount() != 20 {
		t.Errorf("predators after settling = %d, want cap 20", g.PredatorCount())
	}
}

// stepToContact runs one tick up to, but not including, the contact phase.
func stepToContact(g *Game) {
	g.enforcePredatorCap()
	g.refresh()
	g.rebuildView()
	g.locomotion.Update(g.prey, &g.view)
	g.locomotion.Update(g.predators, &g.view)
}

func eventsOfType(g *Game, typ telemetry.EventType) []telemetry.Event {
	var out []telemetry.Event
	for _, ev := range g.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestConversion(t *testing.T) {
	g := emptyGame(t)
	g.spawnAgent(components.KindPrey, r3.Vec{Y: 0.5}, 0)
	g.spawnAgent(components.KindPredator, r3.Vec{X: 0.5, Y: 0.5}, 0)
	preyID := g.agentMap.Get(g.prey[0]).ID
	catcherID := g.agentMap.Get(g.predators[0]).ID

	stepToContact(g)
	caught := *g.bodyMap.Get(g.prey[0])
	g.resolveContact()

	if g.PreyCount() != 0 || g.PredatorCount() != 2 {
		t.Fatalf("counts = %d prey / %d predators, want 0 / 2", g.PreyCount(), g.PredatorCount())
	}

	converted := g.bodyMap.Get(g.predators[1])
	if converted.Position != caught.Position {
		t.Errorf("converted predator at %+v, want the prey's position %+v", converted.Position, caught.Position)
	}
	if converted.Heading() != caught.Heading() {
		t.Errorf("converted predator heading = %v, want the prey's heading %v", converted.Heading(), caught.Heading())
	}
	if math.Abs(converted.Heading()+90) > 1e-9 {
		t.Errorf("prey should have fled towards -X, heading = %v", converted.Heading())
	}
	if converted.MaxSpeed != config.Cfg().Predator.MaxSpeed || converted.Mass != config.Cfg().Predator.Mass {
		t.Errorf("converted predator has prey tuning: %+v", converted)
	}
	if converted.Velocity != (r3.Vec{}) {
		t.Errorf("converted predator should start at rest, got %+v", converted.Velocity)
	}

	if g.collector.Flush(g.tick, g.samplePopulation()).Conversions != 1 {
		t.Error("conversion not recorded")
	}

	conversions := eventsOfType(g, telemetry.EventConversion)
	if len(conversions) != 1 || conversions[0].EntityID != preyID {
		t.Fatalf("conversion events = %+v, want one for prey %d", conversions, preyID)
	}
	if conversions[0].X != caught.Position.X || conversions[0].Z != caught.Position.Z {
		t.Errorf("conversion event at (%v, %v), want (%v, %v)",
			conversions[0].X, conversions[0].Z, caught.Position.X, caught.Position.Z)
	}
	if g.lifetimeTracker.Get(preyID) != nil {
		t.Error("caught prey still has an open lifetime record")
	}
	if got := g.lifetimeTracker.Get(catcherID); got == nil || got.Conversions != 1 {
		t.Errorf("catcher lifetime = %+v, want one catch", got)
	}
}

func TestEvictionCarriesLifetime(t *testing.T) {
	g := emptyGame(t)
	for i := 0; i < 20; i++ {
		g.spawnAgent(components.KindPredator, r3.Vec{X: float64(i) - 10, Y: 0.5}, 0)
	}
	victimID := g.agentMap.Get(g.predators[1]).ID

	for i := 0; i < 3; i++ {
		g.Step()
	}
	g.spawnAgent(components.KindPredator, r3.Vec{Z: 5, Y: 0.5}, 0)
	g.Step()

	evictions := eventsOfType(g, telemetry.EventEviction)
	if len(evictions) != 1 || evictions[0].EntityID != victimID {
		t.Fatalf("eviction events = %+v, want one for predator %d", evictions, victimID)
	}
	want := 3 * g.cfg.Physics.DT
	if math.Abs(evictions[0].SurvivalSec-want) > 1e-9 {
		t.Errorf("evicted survival = %v, want %v", evictions[0].SurvivalSec, want)
	}
	if evictions[0].Distance <= 0 {
		t.Error("evicted predator should have travelled before eviction")
	}
	if g.lifetimeTracker.Count() != 20 {
		t.Errorf("open lifetimes = %d, want 20", g.lifetimeTracker.Count())
	}
}

func TestExternalRemovalClosesLifetimes(t *testing.T) {
	g := emptyGame(t)
	for i := 0; i < 5; i++ {
		g.spawnAgent(components.KindPrey, r3.Vec{X: float64(i) * 3, Y: 0.5}, 0)
	}
	g.Step()
	g.Step()

	for _, e := range g.prey {
		g.World().RemoveEntity(e)
	}
	g.Step()

	if g.PreyCount() != 0 {
		t.Fatalf("prey = %d, want 0", g.PreyCount())
	}
	if g.lifetimeTracker.Count() != 0 {
		t.Errorf("lifetime tracker holds %d records for removed agents", g.lifetimeTracker.Count())
	}
	if len(g.tracked) != 0 {
		t.Errorf("tracked handles = %d, want 0", len(g.tracked))
	}

	removed := eventsOfType(g, telemetry.EventRemoved)
	if len(removed) != 5 {
		t.Fatalf("removal events = %d, want 5", len(removed))
	}
	want := 2 * g.cfg.Physics.DT
	for _, ev := range removed {
		if ev.Kind != components.KindPrey {
			t.Errorf("removal event kind = %v, want prey", ev.Kind)
		}
		if math.Abs(ev.SurvivalSec-want) > 1e-9 {
			t.Errorf("survival = %v, want %v", ev.SurvivalSec, want)
		}
		if ev.Distance <= 0 {
			t.Errorf("prey %d has no recorded distance", ev.EntityID)
		}
	}
}

func TestConversionAtMostOnePerTick(t *testing.T) {
	g := emptyGame(t)
	g.spawnAgent(components.KindPrey, r3.Vec{Y: 0.5}, 0)
	g.spawnAgent(components.KindPrey, r3.Vec{X: 10, Y: 0.5}, 0)
	g.spawnAgent(components.KindPredator, r3.Vec{X: 0.3, Y: 0.5}, 0)
	g.spawnAgent(components.KindPredator, r3.Vec{X: 10.3, Y: 0.5}, 0)
	first := g.prey[0]

	g.Step()

	if g.PreyCount() != 1 || g.PredatorCount() != 3 {
		t.Fatalf("counts = %d/%d, want 1/3", g.PreyCount(), g.PredatorCount())
	}
	// Last match wins, so the second prey is the one converted
	if g.prey[0] != first {
		t.Error("expected the first prey to survive this tick")
	}

	g.Step()
	if g.PreyCount() != 0 || g.PredatorCount() != 4 {
		t.Errorf("counts after second tick = %d/%d, want 0/4", g.PreyCount(), g.PredatorCount())
	}
}

func TestCapRunsBeforeConversion(t *testing.T) {
	g := emptyGame(t)
	for i := 0; i < 21; i++ {
		g.spawnAgent(components.KindPredator, r3.Vec{X: float64(i) - 10, Y: 0.5, Z: 15}, 0)
	}
	g.spawnAgent(components.KindPrey, r3.Vec{X: -10, Y: 0.5, Z: 14.5}, 0)

	g.Step()

	// 21 -> 20 by eviction, then +1 from the conversion
	if g.PredatorCount() != 21 || g.PreyCount() != 0 {
		t.Fatalf("counts = %d prey / %d predators, want 0 / 21", g.PreyCount(), g.PredatorCount())
	}

	g.Step()
	if g.PredatorCount() != 20 {
		t.Errorf("predators = %d, want 20 after the next cap phase", g.PredatorCount())
	}
}

func TestSpawnCap(t *testing.T) {
	g := emptyGame(t)
	limit := config.Cfg().Population.SpawnCap

	for i := 0; i < limit; i++ {
		if _, ok := g.SpawnPrey(); !ok {
			t.Fatalf("spawn %d refused below the cap", i)
		}
	}
	e, ok := g.SpawnPrey()
	if ok || e != (ecs.Entity{}) {
		t.Errorf("spawn at the cap = (%v, %v), want refusal", e, ok)
	}
	if g.PreyCount() != limit {
		t.Errorf("prey = %d, want %d", g.PreyCount(), limit)
	}

	// Kinds are capped independently
	if _, ok := g.SpawnPredator(); !ok {
		t.Error("predator spawn refused by the prey count")
	}

	stats := g.collector.Flush(g.tick, g.samplePopulation())
	if stats.SpawnRejected != 1 || stats.PreySpawns != limit || stats.PredSpawns != 1 {
		t.Errorf("unexpected spawn counters: %+v", stats)
	}
}

func TestConversionBypassesSpawnCap(t *testing.T) {
	g := emptyGame(t)
	limit := config.Cfg().Population.SpawnCap
	for i := 0; i < limit; i++ {
		g.SpawnPredator()
	}
	pos := g.bodyMap.Get(g.predators[0]).Position
	g.spawnAgent(components.KindPrey, pos, 0)

	g.Step()

	if g.PredatorCount() != limit+1 {
		t.Errorf("predators = %d, want %d", g.PredatorCount(), limit+1)
	}
	if _, ok := g.SpawnPredator(); ok {
		t.Error("manual spawn should still be refused above the cap")
	}
}

func TestRefreshTracksExternalEntities(t *testing.T) {
	g := emptyGame(t)
	g.spawnAgent(components.KindPrey, r3.Vec{X: -5, Y: 0.5}, 0)
	doomed := g.spawnAgent(components.KindPrey, r3.Vec{X: 5, Y: 0.5}, 0)

	mapper := ecs.NewMap2[steering.Body, components.Agent](g.World())
	body := steering.NewBody(r3.Vec{Z: 5, Y: 0.5}, 0, 1.3, 7, 0.5)
	agent := components.Agent{ID: 1000, Kind: components.KindPredator}
	external := mapper.NewEntity(&body, &agent)

	obstacle := components.Obstacle{Position: r3.Vec{Z: -8, Y: 1.4}, Radius: 2}
	ecs.NewMap1[components.Obstacle](g.World()).NewEntity(&obstacle)

	g.World().RemoveEntity(doomed)

	g.Step()

	if g.PreyCount() != 1 {
		t.Errorf("prey = %d, want 1 after external removal", g.PreyCount())
	}
	if g.PredatorCount() != 1 || g.predators[0] != external {
		t.Errorf("external predator not tracked: %v", g.predators)
	}
	if g.ObstacleCount() != 1 {
		t.Errorf("obstacles = %d, want 1", g.ObstacleCount())
	}
	if moved := g.bodyMap.Get(external); moved.Velocity == (r3.Vec{}) {
		t.Error("external predator was not steered")
	}
}

func TestMissingBodyPanics(t *testing.T) {
	g := emptyGame(t)
	g.prey = append(g.prey, g.SpawnObstacle())

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for an agent without a body")
		}
		if msg, _ := r.(string); !strings.HasPrefix(msg, "game:") {
			t.Errorf("panic = %v, want game: prefix", r)
		}
	}()
	g.Step()
}

func TestEmptyArenaSteps(t *testing.T) {
	g := emptyGame(t)
	for i := 0; i < 100; i++ {
		g.Step()
	}
	if g.Tick() != 100 {
		t.Errorf("tick = %d, want 100", g.Tick())
	}
}

func TestAgentsStayNearArena(t *testing.T) {
	g := NewGameWithOptions(Options{Seed: 3})
	limit := g.Config().Arena.HalfExtent + 12

	for i := 0; i < 3000; i++ {
		g.Step()
	}
	for _, a := range g.Snapshot().Agents {
		if math.Abs(a.X) > limit || math.Abs(a.Z) > limit {
			t.Errorf("agent %d escaped to (%v, %v)", a.ID, a.X, a.Z)
		}
		if a.Y != g.Config().Arena.SpawnHeight {
			t.Errorf("agent %d drifted vertically to %v", a.ID, a.Y)
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []byte {
		g := NewGameWithOptions(Options{Seed: 99})
		for i := 0; i < 600; i++ {
			g.Step()
		}
		data, err := g.Snapshot().Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		return data
	}

	if a, b := run(), run(); !bytes.Equal(a, b) {
		t.Error("same seed produced different states")
	}
}

func TestTelemetryFlush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	g := NewGameWithOptions(Options{Seed: 5, StatsWindowSec: 0.1, OutputDir: dir})

	window := g.collector.WindowDurationTicks()
	for i := int32(0); i < 2*window+2; i++ {
		g.Step()
	}
	g.Unload()

	if g.Stats().WindowEndTick != 2*window {
		t.Errorf("last window ended at %d, want %d", g.Stats().WindowEndTick, 2*window)
	}
	if g.Stats().PreyCount+g.Stats().PredCount != g.PreyCount()+g.PredatorCount() {
		t.Errorf("window counts %+v do not match population", g.Stats())
	}

	for _, name := range []string{"telemetry.csv", "perf.csv", "events.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 3 {
		t.Errorf("telemetry.csv has %d lines, want header + 2 windows", lines)
	}
}
