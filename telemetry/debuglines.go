package telemetry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/steering"
)

// SegmentRole identifies what a debug segment shows.
type SegmentRole uint8

const (
	SegmentForward SegmentRole = iota // 1 unit along the heading
	SegmentRight                      // 2 units along the right axis
	SegmentFuture                     // cross at the predicted position
	SegmentTarget                     // predator to its pursuit target
)

// Debug line geometry.
const (
	ForwardLength   = 1.0
	RightLength     = 2.0
	FutureDistance  = 2.0
	FutureCrossHalf = 0.3
)

// Segment is a line on the horizontal plane.
type Segment struct {
	Role   SegmentRole
	Kind   components.Kind
	X1, Z1 float64
	X2, Z2 float64
}

// DebugSegments returns the debug lines for an agent: its forward and right
// axes, a cross FutureDistance ahead along its velocity, and for a tracking
// predator the line to its target.
func (a AgentState) DebugSegments() []Segment {
	pos := r3.Vec{X: a.X, Z: a.Z}
	line := func(role SegmentRole, from, to r3.Vec) Segment {
		return Segment{Role: role, Kind: a.Kind, X1: from.X, Z1: from.Z, X2: to.X, Z2: to.Z}
	}

	fwd := r3.Add(pos, r3.Scale(ForwardLength, steering.ForwardOf(a.Heading)))
	right := r3.Add(pos, r3.Scale(RightLength, steering.RightOf(a.Heading)))
	future := steering.Target{Position: pos, Velocity: r3.Vec{X: a.VelX, Z: a.VelZ}}.Future(FutureDistance)

	segs := make([]Segment, 0, 5)
	segs = append(segs,
		line(SegmentForward, pos, fwd),
		line(SegmentRight, pos, right),
		line(SegmentFuture, r3.Vec{X: future.X - FutureCrossHalf, Z: future.Z}, r3.Vec{X: future.X + FutureCrossHalf, Z: future.Z}),
		line(SegmentFuture, r3.Vec{X: future.X, Z: future.Z - FutureCrossHalf}, r3.Vec{X: future.X, Z: future.Z + FutureCrossHalf}),
	)
	if a.Tracking {
		segs = append(segs, line(SegmentTarget, pos, r3.Vec{X: a.TargetX, Z: a.TargetZ}))
	}
	return segs
}
