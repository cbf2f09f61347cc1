package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/steering"
)

// PredatorParams tunes the predator policy.
type PredatorParams struct {
	PursuitWeight  float64
	BoundaryWeight float64
	Home           r3.Vec
	HalfExtent     float64
}

// PredatorPolicy pursues the nearest prey, wanders when there is none, and
// always avoids obstacles, separates from other predators and stays inside
// the arena.
type PredatorPolicy struct {
	Params PredatorParams
	Kernel steering.Params
	rng    *rand.Rand
}

// NewPredatorPolicy creates a predator policy drawing wander jitter from rng.
func NewPredatorPolicy(params PredatorParams, kernel steering.Params, rng *rand.Rand) *PredatorPolicy {
	return &PredatorPolicy{Params: params, Kernel: kernel, rng: rng}
}

// NearestPrey returns the index of the prey closest to pos on the horizontal
// plane. Ties keep the earliest candidate. Returns -1 when prey is empty.
func NearestPrey(pos r3.Vec, prey []Neighbor) int {
	best := -1
	var bestDist float64
	for i, n := range prey {
		d := steering.HorizontalDistance(pos, n.Position)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// ComputeSteering implements Policy.
func (p *PredatorPolicy) ComputeSteering(body *steering.Body, view *View) Steering {
	var (
		force  r3.Vec
		result Steering
	)

	if i := NearestPrey(body.Position, view.Prey); i >= 0 {
		target := view.Prey[i]
		pursue := steering.Pursue(body, target.Target, p.Kernel.Lookahead)
		force = r3.Add(force, r3.Scale(p.Params.PursuitWeight, pursue))
		result.Target = target.Position
		result.Tracking = true
	} else {
		force = r3.Add(force, steering.Wander(body, p.rng, p.Kernel))
	}

	if steering.OutOfBounds(body.Position, p.Params.HalfExtent) {
		force = r3.Add(force, r3.Scale(p.Params.BoundaryWeight, steering.Seek(body, p.Params.Home)))
	}

	force = avoidAndSeparate(body, force, view.Obstacles, view.Predators, p.Kernel)

	result.Force = finalize(body, force)
	return result
}
