package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	PreyCount int `csv:"prey"`
	PredCount int `csv:"pred"`
	Tracking  int `csv:"tracking"`

	// Events during window
	PreySpawns    int `csv:"prey_spawns"`
	PredSpawns    int `csv:"pred_spawns"`
	SpawnRejected int `csv:"spawn_rejected"`
	Conversions   int `csv:"conversions"`
	Evictions     int `csv:"evictions"`

	// Speed distribution (sampled at window end)
	PreySpeedMean float64 `csv:"prey_speed_mean"`
	PreySpeedP50  float64 `csv:"prey_speed_p50"`
	PreySpeedP90  float64 `csv:"prey_speed_p90"`
	PredSpeedMean float64 `csv:"pred_speed_mean"`
	PredSpeedP50  float64 `csv:"pred_speed_p50"`
	PredSpeedP90  float64 `csv:"pred_speed_p90"`

	// Prey to nearest predator
	ThreatDistMean float64 `csv:"threat_dist_mean"`
	ThreatDistMin  float64 `csv:"threat_dist_min"`

	// Seconds survived by prey converted during the window
	PreySurvivalMean float64 `csv:"prey_survival_mean"`
	PreySurvivalStd  float64 `csv:"prey_survival_std"`
}

// Percentile returns the empirical p-th quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// ComputeSpeedStats calculates mean and percentiles from speed values.
func ComputeSpeedStats(values []float64) (mean, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := sortedCopy(values)
	return stat.Mean(sorted, nil), Percentile(sorted, 0.5), Percentile(sorted, 0.9)
}

// ComputeThreatStats calculates the mean and minimum distance to a predator.
func ComputeThreatStats(values []float64) (mean, closest float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := sortedCopy(values)
	return stat.Mean(sorted, nil), sorted[0]
}

// ComputeSurvivalStats calculates mean and sample standard deviation.
// The deviation is 0 for fewer than two samples.
func ComputeSurvivalStats(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("prey", s.PreyCount),
		slog.Int("pred", s.PredCount),
		slog.Int("tracking", s.Tracking),
		slog.Int("prey_spawns", s.PreySpawns),
		slog.Int("pred_spawns", s.PredSpawns),
		slog.Int("spawn_rejected", s.SpawnRejected),
		slog.Int("conversions", s.Conversions),
		slog.Int("evictions", s.Evictions),
		slog.Float64("prey_speed_mean", s.PreySpeedMean),
		slog.Float64("pred_speed_mean", s.PredSpeedMean),
		slog.Float64("threat_dist_mean", s.ThreatDistMean),
		slog.Float64("threat_dist_min", s.ThreatDistMin),
		slog.Float64("prey_survival_mean", s.PreySurvivalMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"prey", s.PreyCount,
		"pred", s.PredCount,
		"tracking", s.Tracking,
		"prey_spawns", s.PreySpawns,
		"pred_spawns", s.PredSpawns,
		"spawn_rejected", s.SpawnRejected,
		"conversions", s.Conversions,
		"evictions", s.Evictions,
		"prey_speed_mean", s.PreySpeedMean,
		"prey_speed_p50", s.PreySpeedP50,
		"prey_speed_p90", s.PreySpeedP90,
		"pred_speed_mean", s.PredSpeedMean,
		"pred_speed_p50", s.PredSpeedP50,
		"pred_speed_p90", s.PredSpeedP90,
		"threat_dist_mean", s.ThreatDistMean,
		"threat_dist_min", s.ThreatDistMin,
		"prey_survival_mean", s.PreySurvivalMean,
		"prey_survival_std", s.PreySurvivalStd,
	)
}
