package steering

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func vecNear(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestApplyForceAccumulates(t *testing.T) {
	b := NewBody(r3.Vec{}, 0, 2, 10, 0.5)

	b.ApplyForce(r3.Vec{X: 4})
	b.ApplyForce(r3.Vec{Z: 2})

	want := r3.Vec{X: 2, Z: 1}
	if !vecNear(b.Acceleration, want, eps) {
		t.Errorf("acceleration = %+v, want %+v", b.Acceleration, want)
	}
	if b.Velocity != (r3.Vec{}) || b.Position != (r3.Vec{}) {
		t.Error("ApplyForce must only touch acceleration")
	}
}

func TestIntegrate(t *testing.T) {
	b := NewBody(r3.Vec{X: 1, Y: 0.5}, 0, 1, 10, 0.5)
	b.Velocity = r3.Vec{X: 2}
	b.ApplyForce(r3.Vec{Z: 6})

	b.Integrate(0.5)

	wantVel := r3.Vec{X: 2, Z: 3}
	wantPos := r3.Vec{X: 2, Y: 0.5, Z: 1.5}
	if !vecNear(b.Velocity, wantVel, eps) {
		t.Errorf("velocity = %+v, want %+v", b.Velocity, wantVel)
	}
	if !vecNear(b.Position, wantPos, eps) {
		t.Errorf("position = %+v, want %+v", b.Position, wantPos)
	}
	if b.Acceleration != (r3.Vec{}) {
		t.Errorf("acceleration not reset: %+v", b.Acceleration)
	}
	if math.Abs(r3.Norm(b.Direction)-1) > eps {
		t.Errorf("direction not unit: %+v", b.Direction)
	}
}

func TestIntegrateAlwaysClearsAcceleration(t *testing.T) {
	forces := []r3.Vec{{}, {X: 1}, {X: -3, Z: 7}, {X: 1e6, Y: 2, Z: -1e6}}
	for _, f := range forces {
		b := NewBody(r3.Vec{}, 45, 1.3, 7, 0.5)
		b.ApplyForce(f)
		b.Integrate(1.0 / 60)
		if b.Acceleration != (r3.Vec{}) {
			t.Errorf("force %+v: acceleration after Integrate = %+v", f, b.Acceleration)
		}
	}
}

func TestIntegrateStationary(t *testing.T) {
	b := NewBody(r3.Vec{}, 30, 1, 10, 0.5)
	b.Integrate(1.0 / 60)

	if b.Direction != (r3.Vec{}) {
		t.Errorf("stationary direction = %+v, want zero", b.Direction)
	}
	b.SyncOrientation()
	if b.Heading() != 30 {
		t.Errorf("stationary heading = %v, want 30 (unchanged)", b.Heading())
	}
}

func TestSyncOrientation(t *testing.T) {
	tests := []struct {
		name     string
		velocity r3.Vec
		want     float64
	}{
		{"north", r3.Vec{Z: 1}, 0},
		{"east", r3.Vec{X: 1}, 90},
		{"west", r3.Vec{X: -1}, -90},
		{"south", r3.Vec{Z: -1}, 180},
		{"north east", r3.Vec{X: 1, Z: 1}, 45},
		{"vertical ignored", r3.Vec{X: 1, Y: 5}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBody(r3.Vec{}, 0, 1, 10, 0.5)
			b.Velocity = tt.velocity
			b.Integrate(0.1)
			b.SyncOrientation()
			if math.Abs(b.Heading()-tt.want) > 1e-6 {
				t.Errorf("heading = %v, want %v", b.Heading(), tt.want)
			}
		})
	}
}

func TestAxes(t *testing.T) {
	tests := []struct {
		heading float64
		forward r3.Vec
		right   r3.Vec
	}{
		{0, r3.Vec{Z: 1}, r3.Vec{X: 1}},
		{90, r3.Vec{X: 1}, r3.Vec{Z: -1}},
		{180, r3.Vec{Z: -1}, r3.Vec{X: -1}},
		{-90, r3.Vec{X: -1}, r3.Vec{Z: 1}},
	}

	for _, tt := range tests {
		b := NewBody(r3.Vec{}, tt.heading, 1, 10, 0.5)
		if !vecNear(b.Forward(), tt.forward, 1e-9) {
			t.Errorf("heading %v: forward = %+v, want %+v", tt.heading, b.Forward(), tt.forward)
		}
		if !vecNear(b.Right(), tt.right, 1e-9) {
			t.Errorf("heading %v: right = %+v, want %+v", tt.heading, b.Right(), tt.right)
		}
	}
}

func TestTargetFuture(t *testing.T) {
	tgt := Target{Position: r3.Vec{X: 1, Z: 1}, Velocity: r3.Vec{Z: 5}}

	got := tgt.Future(2)
	want := r3.Vec{X: 1, Z: 3}
	if !vecNear(got, want, eps) {
		t.Errorf("future = %+v, want %+v", got, want)
	}

	tgt.Velocity = r3.Vec{}
	if got := tgt.Future(2); got != tgt.Position {
		t.Errorf("stationary future = %+v, want current position", got)
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Normalize(r3.Vec{}); got != (r3.Vec{}) {
		t.Errorf("Normalize(0) = %+v, want zero", got)
	}
	got := Normalize(r3.Vec{X: 3, Z: 4})
	if !vecNear(got, r3.Vec{X: 0.6, Z: 0.8}, eps) {
		t.Errorf("Normalize(3,0,4) = %+v", got)
	}
}
