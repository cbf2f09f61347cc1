package steering

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Params holds the kernel constants shared by all agents.
type Params struct {
	Lookahead       float64 // pursuit/evasion extrapolation distance
	WanderForward   float64 // offset of the wander origin ahead of the agent
	WanderSpread    float64 // ± jitter applied to x and z of the wander target
	WanderDamping   float64 // divisor applied to the wander seek force
	AvoidRange      float64 // obstacles beyond this distance are ignored
	SeparationRange float64 // neighbors beyond this distance are ignored
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		Lookahead:       2,
		WanderForward:   1,
		WanderSpread:    2,
		WanderDamping:   4,
		AvoidRange:      5,
		SeparationRange: 1.5,
	}
}

// steer converts a desired direction into a steering force.
func steer(b *Body, desired r3.Vec) r3.Vec {
	return r3.Sub(r3.Scale(b.MaxSpeed, Normalize(desired)), b.Velocity)
}

// Seek steers towards a fixed point.
func Seek(b *Body, target r3.Vec) r3.Vec {
	return steer(b, r3.Sub(target, b.Position))
}

// Flee steers directly away from a fixed point.
func Flee(b *Body, target r3.Vec) r3.Vec {
	return steer(b, r3.Sub(b.Position, target))
}

// Pursue seeks the target's extrapolated position.
func Pursue(b *Body, t Target, lookahead float64) r3.Vec {
	return Seek(b, t.Future(lookahead))
}

// Evade flees the target's extrapolated position.
func Evade(b *Body, t Target, lookahead float64) r3.Vec {
	return Flee(b, t.Future(lookahead))
}

// Wander seeks a random point in a small cone ahead of the body.
// A new point is drawn on every call, so the motion is jittery rather than
// smoothly curving.
func Wander(b *Body, rng *rand.Rand, p Params) r3.Vec {
	ahead := r3.Add(b.Position, r3.Scale(p.WanderForward, Normalize(b.Velocity)))
	jitter := r3.Vec{
		X: (rng.Float64()*2 - 1) * p.WanderSpread,
		Z: (rng.Float64()*2 - 1) * p.WanderSpread,
	}
	return r3.Scale(1/p.WanderDamping, Seek(b, r3.Add(ahead, jitter)))
}

// AvoidObstacle steers sideways away from an obstacle in the forward path.
// It returns zero unless the obstacle is ahead, within maxRange, and its
// lateral offset is no larger than the combined radii.
func AvoidObstacle(b *Body, center r3.Vec, radius, maxRange float64) r3.Vec {
	toCenter := r3.Sub(center, b.Position)

	if r3.Dot(toCenter, b.Forward()) <= 0 {
		return r3.Vec{}
	}
	if r3.Norm(toCenter) > maxRange {
		return r3.Vec{}
	}

	right := b.Right()
	lateral := r3.Dot(toCenter, right)
	if radius+b.Radius < math.Abs(lateral) {
		return r3.Vec{}
	}

	// Obstacle on the left: go right, and vice versa
	desired := r3.Scale(b.MaxSpeed, right)
	if lateral >= 0 {
		desired = r3.Scale(-1, desired)
	}
	return r3.Sub(desired, b.Velocity)
}

// Separate repels the body from a close neighbor, inversely to distance.
// Coincident neighbors (including the body itself) produce no force.
func Separate(b *Body, neighbor r3.Vec, maxRange float64) r3.Vec {
	d := Distance(neighbor, b.Position)
	if d > maxRange || d == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/d, Flee(b, neighbor))
}

// OutOfBounds reports whether pos is on or beyond the arena edge.
func OutOfBounds(pos r3.Vec, halfExtent float64) bool {
	return pos.X >= halfExtent || pos.X <= -halfExtent ||
		pos.Z >= halfExtent || pos.Z <= -halfExtent
}
