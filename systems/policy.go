package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/steering"
)

// Neighbor is a read-only copy of another agent's motion at the start of the tick.
type Neighbor struct {
	E ecs.Entity
	steering.Target
}

// ObstacleView is a read-only copy of an obstacle.
type ObstacleView struct {
	Position r3.Vec
	Radius   float64
}

// View is the per-tick picture of the population handed to every policy.
// It is rebuilt by the population controller each tick; policies must not
// retain it or modify its slices.
type View struct {
	Obstacles []ObstacleView
	Prey      []Neighbor
	Predators []Neighbor
}

// Reset empties the view while keeping its backing arrays.
func (v *View) Reset() {
	v.Obstacles = v.Obstacles[:0]
	v.Prey = v.Prey[:0]
	v.Predators = v.Predators[:0]
}

// Steering is the outcome of one policy evaluation.
type Steering struct {
	Force    r3.Vec // horizontal force, already scaled to max speed
	Target   r3.Vec // pursuit target, valid when Tracking
	Tracking bool
}

// Policy computes the steering force for one agent kind.
type Policy interface {
	ComputeSteering(body *steering.Body, view *View) Steering
}

// Policies maps agent kinds to their policy.
type Policies map[components.Kind]Policy

// finalize rescales the accumulated force to max speed and drops the vertical
// component so the agent stays at its height.
func finalize(body *steering.Body, force r3.Vec) r3.Vec {
	force = r3.Scale(body.MaxSpeed, steering.Normalize(force))
	return steering.Horizontal(force)
}

// avoidAndSeparate adds obstacle avoidance and same-kind separation.
func avoidAndSeparate(body *steering.Body, force r3.Vec, obstacles []ObstacleView, peers []Neighbor, p steering.Params) r3.Vec {
	for _, o := range obstacles {
		force = r3.Add(force, steering.AvoidObstacle(body, o.Position, o.Radius, p.AvoidRange))
	}
	for _, n := range peers {
		force = r3.Add(force, steering.Separate(body, n.Position, p.SeparationRange))
	}
	return force
}
