package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9},
		{"clamped above", []float64{1, 2, 3}, 1.5, 3},
		{"clamped below", []float64{1, 2, 3}, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSpeedStats(t *testing.T) {
	// Unsorted on purpose
	values := []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}
	mean, p50, p90 := ComputeSpeedStats(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p90 != 9 {
		t.Errorf("p90 = %v, want 9", p90)
	}
	if values[0] != 10 {
		t.Error("input slice was reordered")
	}
}

func TestComputeSpeedStatsEmpty(t *testing.T) {
	mean, p50, p90 := ComputeSpeedStats(nil)
	if mean != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeThreatStats(t *testing.T) {
	mean, closest := ComputeThreatStats([]float64{4, 2, 6})
	if math.Abs(mean-4) > 1e-9 || closest != 2 {
		t.Errorf("ComputeThreatStats = (%v, %v), want (4, 2)", mean, closest)
	}
}

func TestComputeSurvivalStats(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantMean float64
		wantStd  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{3}, 3, 0},
		{"pair", []float64{2, 4}, 3, math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := ComputeSurvivalStats(tt.values)
			if math.Abs(mean-tt.wantMean) > 1e-9 || math.Abs(std-tt.wantStd) > 1e-9 {
				t.Errorf("got (%v, %v), want (%v, %v)", mean, std, tt.wantMean, tt.wantStd)
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1, 0.25)

	if c.WindowDurationTicks() != 4 {
		t.Fatalf("window = %d ticks, want 4", c.WindowDurationTicks())
	}
	if c.ShouldFlush(3) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(4) {
		t.Error("should flush at the window end")
	}

	c.RecordSpawn(0)
	c.RecordSpawn(1)
	c.RecordSpawn(1)
	c.RecordSpawnRejected()
	c.RecordEviction()
	c.RecordConversion(8)
	c.RecordConversion(16)

	stats := c.Flush(4, PopulationSample{PreyCount: 3, PredCount: 5})

	if stats.PreySpawns != 1 || stats.PredSpawns != 2 {
		t.Errorf("spawns = %d/%d, want 1/2", stats.PreySpawns, stats.PredSpawns)
	}
	if stats.SpawnRejected != 1 || stats.Evictions != 1 || stats.Conversions != 2 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.PreySurvivalMean != 3 {
		t.Errorf("survival mean = %v, want 3s", stats.PreySurvivalMean)
	}
	if stats.SimTimeSec != 1 {
		t.Errorf("sim time = %v, want 1", stats.SimTimeSec)
	}

	next := c.Flush(8, PopulationSample{})
	if next.WindowStartTick != 4 {
		t.Errorf("next window starts at %d, want 4", next.WindowStartTick)
	}
	if next.Conversions != 0 || next.PreySurvivalMean != 0 {
		t.Error("counters not reset between windows")
	}
}
