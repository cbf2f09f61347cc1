package telemetry

import "github.com/pthm-cable/outbreak/components"

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	Kind            components.Kind
	SpawnTick       int32
	SurvivalTimeSec float64

	Distance      float64 // horizontal distance travelled
	TrackingTicks int     // predators: ticks spent with a target
	Conversions   int     // predators: prey caught
}

// LifetimeTracker manages per-agent lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(id uint32, kind components.Kind, spawnTick int32) {
	lt.stats[id] = &LifetimeStats{
		Kind:      kind,
		SpawnTick: spawnTick,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them, with the survival time
// filled in up to currentTick.
func (lt *LifetimeTracker) Remove(id uint32, currentTick int32, dt float64) *LifetimeStats {
	s := lt.stats[id]
	if s == nil {
		return nil
	}
	s.SurvivalTimeSec = float64(currentTick-s.SpawnTick) * dt
	delete(lt.stats, id)
	return s
}

// RecordMove adds travelled distance and tracking time for one tick.
func (lt *LifetimeTracker) RecordMove(id uint32, distance float64, tracking bool) {
	if s := lt.stats[id]; s != nil {
		s.Distance += distance
		if tracking {
			s.TrackingTicks++
		}
	}
}

// RecordConversion credits a predator with a caught prey.
func (lt *LifetimeTracker) RecordConversion(predatorID uint32) {
	if s := lt.stats[predatorID]; s != nil {
		s.Conversions++
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
