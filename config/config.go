// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Arena      ArenaConfig      `yaml:"arena"`
	Steering   SteeringConfig   `yaml:"steering"`
	Prey       AgentConfig      `yaml:"prey"`
	Predator   AgentConfig      `yaml:"predator"`
	Population PopulationConfig `yaml:"population"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`
	Stream     StreamConfig     `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per tick
}

// ArenaConfig describes the square arena centered on the origin.
type ArenaConfig struct {
	HalfExtent     float64 `yaml:"half_extent"`     // |x| or |z| at or beyond this is out of bounds
	SpawnHeight    float64 `yaml:"spawn_height"`    // Y of freshly spawned agents
	ObstacleHeight float64 `yaml:"obstacle_height"` // Y of obstacle centers
}

// SteeringConfig holds the shared steering kernel constants.
type SteeringConfig struct {
	Lookahead       float64 `yaml:"lookahead"`        // pursuit/evasion extrapolation distance
	WanderForward   float64 `yaml:"wander_forward"`   // wander circle offset ahead of the agent
	WanderSpread    float64 `yaml:"wander_spread"`    // ± lateral jitter on x and z
	WanderDamping   float64 `yaml:"wander_damping"`   // wander force divisor
	AvoidRange      float64 `yaml:"avoid_range"`      // obstacles further than this are ignored
	SeparationRange float64 `yaml:"separation_range"` // neighbors further than this are ignored
}

// AgentConfig holds per-kind tuning.
type AgentConfig struct {
	Mass           float64   `yaml:"mass"`
	MaxSpeed       float64   `yaml:"max_speed"`
	Radius         float64   `yaml:"radius"`
	BoundaryWeight float64   `yaml:"boundary_weight"` // multiplier on the seek-home force when out of bounds
	Home           []float64 `yaml:"home"`            // seek-home target (x, y, z)
	ThreatRadius   float64   `yaml:"threat_radius"`   // prey only: predators closer than this are evaded
	PursuitWeight  float64   `yaml:"pursuit_weight"`  // predator only: pursuit force multiplier
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	InitialPrey      int     `yaml:"initial_prey"`
	InitialPredators int     `yaml:"initial_predators"`
	Obstacles        int     `yaml:"obstacles"`
	ObstacleRadius   float64 `yaml:"obstacle_radius"`
	SpawnCap         int     `yaml:"spawn_cap"`      // soft cap checked only when spawning
	PredatorCap      int     `yaml:"predator_cap"`   // hard ceiling enforced every tick
	EvictIndex       int     `yaml:"evict_index"`    // predator slot removed when over the ceiling
	ContactRadius    float64 `yaml:"contact_radius"` // prey/predator distance that triggers conversion
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	ConversionSurge ConversionSurgeConfig `yaml:"conversion_surge"`
}

// ConversionSurgeConfig holds conversion surge detection parameters.
type ConversionSurgeConfig struct {
	Multiplier     float64 `yaml:"multiplier"`
	MinConversions int     `yaml:"min_conversions"`
}

// StreamConfig holds spectator stream parameters.
type StreamConfig struct {
	Path          string `yaml:"path"`
	TicksPerFrame int    `yaml:"ticks_per_frame"`
	Buffer        int    `yaml:"buffer"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ArenaWidth   float64 // 2 * HalfExtent
	PreyHome     r3.Vec
	PredatorHome r3.Vec
	TicksPerSec  float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy, used when several simulations run with tweaked parameters.
func (c *Config) Clone() *Config {
	out := *c
	out.Prey.Home = append([]float64(nil), c.Prey.Home...)
	out.Predator.Home = append([]float64(nil), c.Predator.Home...)
	return &out
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Arena.HalfExtent <= 0 {
		return fmt.Errorf("arena.half_extent must be positive, got %v", c.Arena.HalfExtent)
	}
	if c.Prey.Mass <= 0 || c.Predator.Mass <= 0 {
		return fmt.Errorf("agent mass must be positive (prey %v, predator %v)", c.Prey.Mass, c.Predator.Mass)
	}
	for name, home := range map[string][]float64{"prey": c.Prey.Home, "predator": c.Predator.Home} {
		if len(home) != 0 && len(home) != 3 {
			return fmt.Errorf("%s.home needs 3 components, got %d", name, len(home))
		}
	}
	if c.Population.EvictIndex < 0 || c.Population.EvictIndex > c.Population.PredatorCap {
		return fmt.Errorf("population.evict_index %d outside [0, predator_cap]", c.Population.EvictIndex)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ArenaWidth = 2 * c.Arena.HalfExtent
	c.Derived.PreyHome = vec(c.Prey.Home)
	c.Derived.PredatorHome = vec(c.Predator.Home)
	c.Derived.TicksPerSec = 1 / c.Physics.DT
}

func vec(v []float64) r3.Vec {
	if len(v) != 3 {
		return r3.Vec{}
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
