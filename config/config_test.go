package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Arena.HalfExtent != 18 {
		t.Errorf("half extent = %v, want 18", cfg.Arena.HalfExtent)
	}
	if cfg.Population.PredatorCap != 20 || cfg.Population.EvictIndex != 1 {
		t.Errorf("predator cap/evict = %d/%d, want 20/1", cfg.Population.PredatorCap, cfg.Population.EvictIndex)
	}
	if cfg.Population.SpawnCap != 10 {
		t.Errorf("spawn cap = %d, want 10", cfg.Population.SpawnCap)
	}
	if cfg.Prey.Mass != 1 || cfg.Prey.MaxSpeed != 10 {
		t.Errorf("prey tuning = %v/%v, want 1/10", cfg.Prey.Mass, cfg.Prey.MaxSpeed)
	}
	if cfg.Predator.Mass != 1.3 || cfg.Predator.MaxSpeed != 7 {
		t.Errorf("predator tuning = %v/%v, want 1.3/7", cfg.Predator.Mass, cfg.Predator.MaxSpeed)
	}
	if cfg.Prey.BoundaryWeight != 800 || cfg.Predator.BoundaryWeight != 1 {
		t.Errorf("boundary weights = %v/%v, want 800/1", cfg.Prey.BoundaryWeight, cfg.Predator.BoundaryWeight)
	}
	if cfg.Derived.PreyHome.Y != 0.5 {
		t.Errorf("prey home = %+v, want y=0.5", cfg.Derived.PreyHome)
	}
	if cfg.Derived.ArenaWidth != 36 {
		t.Errorf("arena width = %v, want 36", cfg.Derived.ArenaWidth)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("population:\n  predator_cap: 5\npredator:\n  max_speed: 9\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Population.PredatorCap != 5 {
		t.Errorf("predator cap = %d, want 5", cfg.Population.PredatorCap)
	}
	if cfg.Predator.MaxSpeed != 9 {
		t.Errorf("predator max speed = %v, want 9", cfg.Predator.MaxSpeed)
	}
	// Untouched fields keep their defaults
	if cfg.Predator.Mass != 1.3 {
		t.Errorf("predator mass = %v, want default 1.3", cfg.Predator.Mass)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero dt", "physics:\n  dt: 0\n"},
		{"negative arena", "arena:\n  half_extent: -1\n"},
		{"bad home", "prey:\n  home: [1, 2]\n"},
		{"evict past cap", "population:\n  predator_cap: 2\n  evict_index: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Population.InitialPrey = 7

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config failed: %v", err)
	}
	if loaded.Population.InitialPrey != 7 {
		t.Errorf("initial prey = %d, want 7", loaded.Population.InitialPrey)
	}
}

func TestClone(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	c := cfg.Clone()
	c.Prey.Home[1] = 99
	if cfg.Prey.Home[1] == 99 {
		t.Error("Clone shares the Home slice with the original")
	}
}
