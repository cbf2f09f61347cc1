// Package steering implements the kinematic body shared by every agent and the
// steering force primitives (seek, flee, pursue, evade, wander, obstacle
// avoidance, separation) that policies blend together.
//
// Y is the vertical axis; agents move on the X/Z plane.
package steering

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Normalize returns the unit vector of v, or the zero vector when |v| == 0.
// r3.Unit yields NaN for the zero vector, which would poison force sums.
func Normalize(v r3.Vec) r3.Vec {
	if v == (r3.Vec{}) {
		return r3.Vec{}
	}
	return r3.Unit(v)
}

// Horizontal drops the vertical component.
func Horizontal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// HorizontalDistance returns the distance between a and b on the X/Z plane.
func HorizontalDistance(a, b r3.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// HeadingOf returns the heading in degrees of a direction on the X/Z plane,
// measured from +Z towards +X.
func HeadingOf(dir r3.Vec) float64 {
	return math.Atan2(dir.X, dir.Z) * 180 / math.Pi
}

// ForwardOf returns the unit forward axis for a heading in degrees.
func ForwardOf(heading float64) r3.Vec {
	s, c := math.Sincos(heading * math.Pi / 180)
	return r3.Vec{X: s, Z: c}
}

// RightOf returns the unit right axis for a heading in degrees.
func RightOf(heading float64) r3.Vec {
	s, c := math.Sincos(heading * math.Pi / 180)
	return r3.Vec{X: c, Z: -s}
}
