package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/steering"
	"github.com/pthm-cable/outbreak/telemetry"
)

// recordMovement credits each agent with the distance it moved this tick.
func (g *Game) recordMovement() {
	dt := g.cfg.Physics.DT
	for _, set := range [][]ecs.Entity{g.prey, g.predators} {
		for _, e := range set {
			body := g.mustBody(e)
			agent := g.agentMap.Get(e)
			dist := r3.Norm(steering.Horizontal(body.Velocity)) * dt
			g.lifetimeTracker.RecordMove(agent.ID, dist, agent.Tracking)
		}
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.samplePopulation())
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	g.flushEvents()

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		g.lastBookmark = &bm
	}
}

// flushEvents writes buffered events and clears the buffer.
func (g *Game) flushEvents() {
	if err := g.outputManager.WriteEvents(g.events); err != nil {
		slog.Error("failed to write events", "error", err)
	}
	g.events = g.events[:0]
}

// samplePopulation measures speeds and prey threat distances.
func (g *Game) samplePopulation() telemetry.PopulationSample {
	sample := telemetry.PopulationSample{
		PreyCount: len(g.prey),
		PredCount: len(g.predators),
	}

	predPos := make([]r3.Vec, 0, len(g.predators))
	for _, e := range g.predators {
		body := g.mustBody(e)
		sample.PredSpeeds = append(sample.PredSpeeds, r3.Norm(body.Velocity))
		predPos = append(predPos, body.Position)
		if g.agentMap.Get(e).Tracking {
			sample.TrackingCount++
		}
	}

	for _, e := range g.prey {
		body := g.mustBody(e)
		sample.PreySpeeds = append(sample.PreySpeeds, r3.Norm(body.Velocity))

		if len(predPos) == 0 {
			continue
		}
		nearest := math.Inf(1)
		for _, p := range predPos {
			nearest = math.Min(nearest, steering.HorizontalDistance(body.Position, p))
		}
		sample.ThreatDistances = append(sample.ThreatDistances, nearest)
	}

	return sample
}

// Snapshot returns a copy of the arena state for display or streaming.
func (g *Game) Snapshot() *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		Tick:       g.tick,
		SimTimeSec: float64(g.tick) * g.cfg.Physics.DT,
		HalfExtent: g.cfg.Arena.HalfExtent,
		Obstacles:  make([]telemetry.ObstacleState, 0, len(g.obstacles)),
		Agents:     make([]telemetry.AgentState, 0, len(g.prey)+len(g.predators)),
		Bookmark:   g.lastBookmark,
	}

	for _, e := range g.obstacles {
		if !g.world.Alive(e) {
			continue
		}
		o := g.obstacleMapper.Get(e)
		snapshot.Obstacles = append(snapshot.Obstacles, telemetry.ObstacleState{
			X:      o.Position.X,
			Y:      o.Position.Y,
			Z:      o.Position.Z,
			Radius: o.Radius,
		})
	}

	for _, set := range [][]ecs.Entity{g.prey, g.predators} {
		for _, e := range set {
			if !g.world.Alive(e) {
				continue
			}
			body := g.mustBody(e)
			agent := g.agentMap.Get(e)
			state := telemetry.AgentState{
				ID:       agent.ID,
				Kind:     agent.Kind,
				X:        body.Position.X,
				Y:        body.Position.Y,
				Z:        body.Position.Z,
				VelX:     body.Velocity.X,
				VelZ:     body.Velocity.Z,
				Heading:  body.Heading(),
				Radius:   body.Radius,
				Tracking: agent.Tracking,
			}
			if agent.Tracking {
				state.TargetX = agent.Target.X
				state.TargetZ = agent.Target.Z
			}
			snapshot.Agents = append(snapshot.Agents, state)
		}
	}

	return snapshot
}
