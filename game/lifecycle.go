package game

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/config"
	"github.com/pthm-cable/outbreak/steering"
	"github.com/pthm-cable/outbreak/systems"
	"github.com/pthm-cable/outbreak/telemetry"
)

// spawnInitialPopulation creates the starting obstacles and agents.
func (g *Game) spawnInitialPopulation() {
	pop := g.cfg.Population

	for i := 0; i < pop.Obstacles; i++ {
		g.SpawnObstacle()
	}
	for i := 0; i < pop.InitialPrey; i++ {
		g.spawnAgent(components.KindPrey, g.randomSpawnPosition(), g.randomHeading())
	}
	for i := 0; i < pop.InitialPredators; i++ {
		g.spawnAgent(components.KindPredator, g.randomSpawnPosition(), g.randomHeading())
	}
}

// SpawnPrey adds a prey at a random position unless the prey count has
// reached the spawn cap.
func (g *Game) SpawnPrey() (ecs.Entity, bool) {
	return g.spawnCapped(components.KindPrey, len(g.prey))
}

// SpawnPredator adds a predator at a random position unless the predator
// count has reached the spawn cap.
func (g *Game) SpawnPredator() (ecs.Entity, bool) {
	return g.spawnCapped(components.KindPredator, len(g.predators))
}

func (g *Game) spawnCapped(kind components.Kind, count int) (ecs.Entity, bool) {
	if count >= g.cfg.Population.SpawnCap {
		slog.Info("spawn rejected", "kind", kind, "count", count, "cap", g.cfg.Population.SpawnCap)
		g.collector.RecordSpawnRejected()
		g.events = append(g.events, telemetry.NewSpawnRejectedEvent(g.tick, kind))
		return ecs.Entity{}, false
	}
	return g.spawnAgent(kind, g.randomSpawnPosition(), g.randomHeading()), true
}

// SpawnObstacle adds an obstacle at a random position.
func (g *Game) SpawnObstacle() ecs.Entity {
	half := g.cfg.Arena.HalfExtent
	obstacle := components.Obstacle{
		Position: r3.Vec{
			X: g.uniform(-half, half),
			Y: g.cfg.Arena.ObstacleHeight,
			Z: g.uniform(-half, half),
		},
		Radius: g.cfg.Population.ObstacleRadius,
	}
	e := g.obstacleMapper.NewEntity(&obstacle)
	g.obstacles = append(g.obstacles, e)
	g.tracked[e] = components.Agent{}
	return e
}

func (g *Game) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Game) randomSpawnPosition() r3.Vec {
	half := g.cfg.Arena.HalfExtent
	return r3.Vec{
		X: g.uniform(-half, half),
		Y: g.cfg.Arena.SpawnHeight,
		Z: g.uniform(-half, half),
	}
}

func (g *Game) randomHeading() float64 {
	return g.uniform(-180, 180)
}

// agentConfig returns the tuning for a kind.
func (g *Game) agentConfig(kind components.Kind) config.AgentConfig {
	if kind == components.KindPredator {
		return g.cfg.Predator
	}
	return g.cfg.Prey
}

// spawnAgent creates an agent entity and records the spawn.
// It never checks the spawn cap.
func (g *Game) spawnAgent(kind components.Kind, pos r3.Vec, heading float64) ecs.Entity {
	e, id := g.newAgent(kind, pos, heading)
	g.collector.RecordSpawn(kind)
	g.events = append(g.events, telemetry.NewSpawnEvent(g.tick, id, kind, pos.X, pos.Z))
	return e
}

// newAgent creates an agent entity and appends it to its ordered set.
func (g *Game) newAgent(kind components.Kind, pos r3.Vec, heading float64) (ecs.Entity, uint32) {
	ac := g.agentConfig(kind)

	id := g.nextID
	g.nextID++

	body := steering.NewBody(pos, heading, ac.Mass, ac.MaxSpeed, ac.Radius)
	agent := components.Agent{ID: id, Kind: kind, SpawnTick: g.tick}

	e := g.agentMapper.NewEntity(&body, &agent)
	g.tracked[e] = agent
	if kind == components.KindPrey {
		g.prey = append(g.prey, e)
	} else {
		g.predators = append(g.predators, e)
	}

	g.lifetimeTracker.Register(id, kind, g.tick)

	return e, id
}

// destroy removes an entity from the world and from tracking.
func (g *Game) destroy(e ecs.Entity) {
	delete(g.tracked, e)
	if g.world.Alive(e) {
		g.world.RemoveEntity(e)
	}
}

// retire closes the lifetime record of ev's agent and buffers ev with it.
func (g *Game) retire(ev telemetry.Event) {
	s := g.lifetimeTracker.Remove(ev.EntityID, g.tick, g.cfg.Physics.DT)
	g.events = append(g.events, ev.WithLifetime(s))
}

// mustBody returns the body of a tracked agent.
func (g *Game) mustBody(e ecs.Entity) *steering.Body {
	if !g.bodyMap.Has(e) {
		panic(fmt.Sprintf("game: tracked entity %v has no body", e))
	}
	return g.bodyMap.Get(e)
}

// enforcePredatorCap evicts at most one predator when over the ceiling.
func (g *Game) enforcePredatorCap() {
	pop := g.cfg.Population
	if len(g.predators) <= pop.PredatorCap {
		return
	}

	e := g.predators[pop.EvictIndex]
	g.predators = slices.Delete(g.predators, pop.EvictIndex, pop.EvictIndex+1)

	if g.world.Alive(e) {
		agent := g.agentMap.Get(e)
		slog.Debug("predator evicted", "id", agent.ID, "tick", g.tick, "count", len(g.predators))
		g.retire(telemetry.NewEvictionEvent(g.tick, agent.ID))
	} else {
		a := g.tracked[e]
		g.retire(telemetry.NewRemovedEvent(g.tick, a.ID, a.Kind))
	}
	g.collector.RecordEviction()
	g.destroy(e)
}

// refresh reconciles the ordered sets with the live world: dead handles are
// dropped and live entities not yet tracked are appended in query order.
func (g *Game) refresh() {
	g.prey = g.dropDead(g.prey, true)
	g.predators = g.dropDead(g.predators, true)
	g.obstacles = g.dropDead(g.obstacles, false)

	query := g.agentFilter.Query()
	for query.Next() {
		e := query.Entity()
		if _, ok := g.tracked[e]; ok {
			continue
		}
		_, agent := query.Get()
		g.tracked[e] = *agent
		if agent.Kind == components.KindPrey {
			g.prey = append(g.prey, e)
		} else {
			g.predators = append(g.predators, e)
		}
	}

	obstacles := g.obstacleFilter.Query()
	for obstacles.Next() {
		e := obstacles.Entity()
		if _, ok := g.tracked[e]; ok {
			continue
		}
		g.tracked[e] = components.Agent{}
		g.obstacles = append(g.obstacles, e)
	}
}

// dropDead forgets handles removed from the world by someone else. Agents
// among them have their lifetime closed as a removal event.
func (g *Game) dropDead(entities []ecs.Entity, agents bool) []ecs.Entity {
	return slices.DeleteFunc(entities, func(e ecs.Entity) bool {
		if g.world.Alive(e) {
			return false
		}
		if agents {
			a := g.tracked[e]
			g.retire(telemetry.NewRemovedEvent(g.tick, a.ID, a.Kind))
		}
		delete(g.tracked, e)
		return true
	})
}

// rebuildView copies the current state of every tracked entity into the view.
func (g *Game) rebuildView() {
	g.view.Reset()

	for _, e := range g.obstacles {
		o := g.obstacleMapper.Get(e)
		g.view.Obstacles = append(g.view.Obstacles, systems.ObstacleView{Position: o.Position, Radius: o.Radius})
	}
	for _, e := range g.prey {
		g.view.Prey = append(g.view.Prey, g.neighbor(e))
	}
	for _, e := range g.predators {
		g.view.Predators = append(g.view.Predators, g.neighbor(e))
	}
}

func (g *Game) neighbor(e ecs.Entity) systems.Neighbor {
	b := g.mustBody(e)
	return systems.Neighbor{
		E:      e,
		Target: steering.Target{Position: b.Position, Velocity: b.Velocity},
	}
}

// resolveContact converts at most one prey touching a predator.
func (g *Game) resolveContact() {
	if len(g.prey) == 0 || len(g.predators) == 0 {
		return
	}

	preyPos := make([]r3.Vec, len(g.prey))
	for i, e := range g.prey {
		preyPos[i] = g.mustBody(e).Position
	}
	predPos := make([]r3.Vec, len(g.predators))
	for i, e := range g.predators {
		predPos[i] = g.mustBody(e).Position
	}

	i, j, ok := systems.FindContact(preyPos, predPos, g.cfg.Population.ContactRadius)
	if !ok {
		return
	}

	g.convert(i, j)
	g.rebuildView()
}

// convert replaces prey i with a predator at the same position and heading.
func (g *Game) convert(i, j int) {
	e := g.prey[i]
	body := *g.mustBody(e)
	agent := *g.agentMap.Get(e)
	catcher := g.agentMap.Get(g.predators[j]).ID

	g.prey = slices.Delete(g.prey, i, i+1)
	g.destroy(e)

	_, newID := g.newAgent(components.KindPredator, body.Position, body.Heading())

	survivalTicks := g.tick - agent.SpawnTick
	g.lifetimeTracker.RecordConversion(catcher)
	g.collector.RecordConversion(survivalTicks)
	g.retire(telemetry.NewConversionEvent(g.tick, agent.ID, newID, body.Position.X, body.Position.Z))

	slog.Debug("prey converted",
		"prey", agent.ID,
		"predator", newID,
		"caught_by", catcher,
		"tick", g.tick,
		"survival_ticks", survivalTicks,
	)
}
