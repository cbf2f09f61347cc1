// Package telemetry aggregates simulation events into fixed-length windows
// and writes them out as CSV.
package telemetry

import "github.com/pthm-cable/outbreak/components"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Event counters for current window
	preySpawns    int
	predSpawns    int
	spawnRejected int
	conversions   int
	evictions     int

	// Prey survival times (seconds) for prey lost this window
	survival []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records a successful manual or initial spawn.
func (c *Collector) RecordSpawn(kind components.Kind) {
	if kind == components.KindPrey {
		c.preySpawns++
	} else {
		c.predSpawns++
	}
}

// RecordSpawnRejected records a spawn refused by the soft cap.
func (c *Collector) RecordSpawnRejected() {
	c.spawnRejected++
}

// RecordConversion records a prey turned into a predator after surviving
// survivalTicks ticks.
func (c *Collector) RecordConversion(survivalTicks int32) {
	c.conversions++
	c.survival = append(c.survival, float64(survivalTicks)*c.dt)
}

// RecordEviction records a predator removed by the population cap.
func (c *Collector) RecordEviction() {
	c.evictions++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// PopulationSample holds per-agent measurements taken at window end.
type PopulationSample struct {
	PreyCount  int
	PredCount  int
	PreySpeeds []float64
	PredSpeeds []float64
	// Distance from each prey to its nearest predator; empty without predators.
	ThreatDistances []float64
	TrackingCount   int // predators with a current target
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample PopulationSample) WindowStats {
	preyMean, preyP50, preyP90 := ComputeSpeedStats(sample.PreySpeeds)
	predMean, predP50, predP90 := ComputeSpeedStats(sample.PredSpeeds)
	threatMean, threatMin := ComputeThreatStats(sample.ThreatDistances)
	survivalMean, survivalStd := ComputeSurvivalStats(c.survival)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		PreyCount: sample.PreyCount,
		PredCount: sample.PredCount,
		Tracking:  sample.TrackingCount,

		PreySpawns:    c.preySpawns,
		PredSpawns:    c.predSpawns,
		SpawnRejected: c.spawnRejected,
		Conversions:   c.conversions,
		Evictions:     c.evictions,

		PreySpeedMean: preyMean,
		PreySpeedP50:  preyP50,
		PreySpeedP90:  preyP90,
		PredSpeedMean: predMean,
		PredSpeedP50:  predP50,
		PredSpeedP90:  predP90,

		ThreatDistMean: threatMean,
		ThreatDistMin:  threatMin,

		PreySurvivalMean: survivalMean,
		PreySurvivalStd:  survivalStd,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.preySpawns = 0
	c.predSpawns = 0
	c.spawnRejected = 0
	c.conversions = 0
	c.evictions = 0
	c.survival = c.survival[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
