package steering

import "gonum.org/v1/gonum/spatial/r3"

// Body is the kinematic state of one agent.
//
// Forces are accumulated into Acceleration with ApplyForce, then Integrate
// advances the body one tick and clears the accumulator. The heading is
// derived from the velocity by SyncOrientation and cannot be set directly
// after construction.
type Body struct {
	Position     r3.Vec
	Velocity     r3.Vec
	Acceleration r3.Vec
	Direction    r3.Vec // unit velocity after the last Integrate, zero when stationary

	Mass     float64
	MaxSpeed float64
	Radius   float64

	heading float64 // degrees
}

// NewBody creates a stationary body.
func NewBody(pos r3.Vec, heading, mass, maxSpeed, radius float64) Body {
	return Body{
		Position: pos,
		Mass:     mass,
		MaxSpeed: maxSpeed,
		Radius:   radius,
		heading:  heading,
	}
}

// Heading returns the orientation angle in degrees.
func (b *Body) Heading() float64 {
	return b.heading
}

// ApplyForce accumulates a force for the current tick.
func (b *Body) ApplyForce(f r3.Vec) {
	b.Acceleration = r3.Add(b.Acceleration, r3.Scale(1/b.Mass, f))
}

// Integrate advances velocity and position by dt and resets the acceleration.
// Must run exactly once per tick, after all ApplyForce calls.
func (b *Body) Integrate(dt float64) {
	b.Velocity = r3.Add(b.Velocity, r3.Scale(dt, b.Acceleration))
	b.Position = r3.Add(b.Position, r3.Scale(dt, b.Velocity))
	b.Direction = Normalize(b.Velocity)
	b.Acceleration = r3.Vec{}
}

// SyncOrientation recomputes the heading from the current direction.
// A stationary body keeps its previous heading.
func (b *Body) SyncOrientation() {
	if Horizontal(b.Direction) == (r3.Vec{}) {
		return
	}
	b.heading = HeadingOf(b.Direction)
}

// Forward returns the unit forward axis.
func (b *Body) Forward() r3.Vec {
	return ForwardOf(b.heading)
}

// Right returns the unit right axis.
func (b *Body) Right() r3.Vec {
	return RightOf(b.heading)
}

// Target is the observable motion of another agent.
type Target struct {
	Position r3.Vec
	Velocity r3.Vec
}

// Future extrapolates the target a fixed distance along its direction of travel.
func (t Target) Future(lookahead float64) r3.Vec {
	return r3.Add(t.Position, r3.Scale(lookahead, Normalize(t.Velocity)))
}
