package main

import (
	"github.com/pthm-cable/outbreak/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters, with
// defaults taken from base.
func NewParamVector(base *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pred_max_speed", Path: "predator.max_speed", Min: 3, Max: 12, Default: base.Predator.MaxSpeed},
			{Name: "pred_mass", Path: "predator.mass", Min: 0.5, Max: 3, Default: base.Predator.Mass},
			{Name: "pred_pursuit_weight", Path: "predator.pursuit_weight", Min: 0.1, Max: 2, Default: base.Predator.PursuitWeight},
			{Name: "prey_threat_radius", Path: "prey.threat_radius", Min: 5, Max: 25, Default: base.Prey.ThreatRadius},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Predator.MaxSpeed = clamped[0]
	cfg.Predator.Mass = clamped[1]
	cfg.Predator.PursuitWeight = clamped[2]
	cfg.Prey.ThreatRadius = clamped[3]
}
