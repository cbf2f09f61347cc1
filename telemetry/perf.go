package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of a simulation tick.
type Phase int

// Tick phases in execution order.
const (
	PhaseCap Phase = iota
	PhaseRefresh
	PhaseSteering
	PhaseContact
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"cap", "refresh", "steering", "contact", "telemetry"}

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseCap, PhaseRefresh, PhaseSteering, PhaseContact, PhaseTelemetry}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PhaseDurations holds one duration per phase.
type PhaseDurations [numPhases]time.Duration

type tickSample struct {
	total  time.Duration
	phases PhaseDurations
}

// PerfCollector keeps a ring of recent tick timings.
type PerfCollector struct {
	ring  []tickSample
	next  int
	count int

	current    tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over the last window ticks.
// A non-positive window defaults to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick closes the running phase and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.current.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.current
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame marks a rendered frame; the gap since the previous call is
// reported as the frame duration.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the ticks currently in the window.
type PerfStats struct {
	Samples int

	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	PhaseAvg PhaseDurations
	PhasePct [numPhases]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the window. Frame timing is reported even when no tick
// has been recorded.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Samples: p.count, FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	totals := make([]float64, p.count)
	var sum time.Duration
	var phaseSum PhaseDurations
	for i, t := range p.ring[:p.count] {
		totals[i] = float64(t.total)
		sum += t.total
		for ph, d := range t.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = sum / n
	s.MinTickDuration = time.Duration(slices.Min(totals))
	s.MaxTickDuration = time.Duration(slices.Max(totals))

	slices.Sort(totals)
	s.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))

	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "timing", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	CapPct       float64 `csv:"cap_pct"`
	RefreshPct   float64 `csv:"refresh_pct"`
	SteeringPct  float64 `csv:"steering_pct"`
	ContactPct   float64 `csv:"contact_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		CapPct:       s.PhasePct[PhaseCap],
		RefreshPct:   s.PhasePct[PhaseRefresh],
		SteeringPct:  s.PhasePct[PhaseSteering],
		ContactPct:   s.PhasePct[PhaseContact],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
