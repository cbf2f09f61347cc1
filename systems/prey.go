package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/steering"
)

// PreyParams tunes the prey policy.
type PreyParams struct {
	ThreatRadius   float64 // predators closer than this are evaded
	BoundaryWeight float64 // seek-home multiplier when out of bounds
	Home           r3.Vec
	HalfExtent     float64
}

// PreyPolicy flees nearby predators, wanders when none are near, and always
// avoids obstacles, separates from other prey and stays inside the arena.
type PreyPolicy struct {
	Params PreyParams
	Kernel steering.Params
	rng    *rand.Rand
}

// NewPreyPolicy creates a prey policy drawing wander jitter from rng.
func NewPreyPolicy(params PreyParams, kernel steering.Params, rng *rand.Rand) *PreyPolicy {
	return &PreyPolicy{Params: params, Kernel: kernel, rng: rng}
}

// ComputeSteering implements Policy.
func (p *PreyPolicy) ComputeSteering(body *steering.Body, view *View) Steering {
	var force r3.Vec

	// Each additional threat contributes less, so many predators don't
	// overwhelm the other terms.
	threats := 0
	for _, pred := range view.Predators {
		if steering.Distance(body.Position, pred.Position) < p.Params.ThreatRadius {
			threats++
			evade := steering.Evade(body, pred.Target, p.Kernel.Lookahead)
			force = r3.Add(force, r3.Scale(1/float64(threats), evade))
		}
	}
	if threats == 0 {
		force = r3.Add(force, steering.Wander(body, p.rng, p.Kernel))
	}

	if steering.OutOfBounds(body.Position, p.Params.HalfExtent) {
		force = r3.Add(force, r3.Scale(p.Params.BoundaryWeight, steering.Seek(body, p.Params.Home)))
	}

	force = avoidAndSeparate(body, force, view.Obstacles, view.Prey, p.Kernel)

	return Steering{Force: finalize(body, force)}
}
