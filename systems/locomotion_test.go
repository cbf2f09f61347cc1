package systems

import (
	"math"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/steering"
)

// fixedPolicy returns the same steering every call.
type fixedPolicy struct {
	out   Steering
	calls int
}

func (p *fixedPolicy) ComputeSteering(*steering.Body, *View) Steering {
	p.calls++
	return p.out
}

func TestLocomotionUpdate(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap2[steering.Body, components.Agent](world)

	preyPolicy := &fixedPolicy{out: Steering{Force: r3.Vec{X: 6}}}
	predPolicy := &fixedPolicy{out: Steering{Force: r3.Vec{Z: 2.6}, Target: r3.Vec{X: 1, Z: 1}, Tracking: true}}

	sys := NewLocomotionSystem(world, Policies{
		components.KindPrey:     preyPolicy,
		components.KindPredator: predPolicy,
	}, 0.5)

	preyBody := steering.NewBody(r3.Vec{Y: 0.5}, 0, 1, 10, 0.5)
	preyAgent := components.Agent{ID: 1, Kind: components.KindPrey}
	prey := mapper.NewEntity(&preyBody, &preyAgent)

	predBody := steering.NewBody(r3.Vec{Y: 0.5}, 90, 1.3, 7, 0.5)
	predAgent := components.Agent{ID: 2, Kind: components.KindPredator}
	pred := mapper.NewEntity(&predBody, &predAgent)

	sys.Update([]ecs.Entity{prey, pred}, &View{})

	if preyPolicy.calls != 1 || predPolicy.calls != 1 {
		t.Fatalf("policy calls = %d/%d, want 1/1", preyPolicy.calls, predPolicy.calls)
	}

	b, a := mapper.Get(prey)
	if !vecNear(b.Velocity, r3.Vec{X: 3}, eps) {
		t.Errorf("prey velocity = %+v, want (3,0,0)", b.Velocity)
	}
	if !vecNear(b.Position, r3.Vec{X: 1.5, Y: 0.5}, eps) {
		t.Errorf("prey position = %+v, want (1.5,0.5,0)", b.Position)
	}
	if math.Abs(b.Heading()-90) > 1e-9 {
		t.Errorf("prey heading = %v, want 90", b.Heading())
	}
	if b.Acceleration != (r3.Vec{}) {
		t.Errorf("prey acceleration = %+v, want zero", b.Acceleration)
	}
	if a.Tracking {
		t.Error("prey should not be tracking")
	}

	b, a = mapper.Get(pred)
	// 2.6 / 1.3 = 2 units/s², half a second
	if !vecNear(b.Velocity, r3.Vec{Z: 1}, eps) {
		t.Errorf("predator velocity = %+v, want (0,0,1)", b.Velocity)
	}
	if b.Heading() != 0 {
		t.Errorf("predator heading = %v, want 0", b.Heading())
	}
	if !a.Tracking || a.Target != (r3.Vec{X: 1, Z: 1}) {
		t.Errorf("predator target = %+v tracking=%v", a.Target, a.Tracking)
	}
}

func TestLocomotionSkipsUnlistedEntities(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap2[steering.Body, components.Agent](world)
	policy := &fixedPolicy{out: Steering{Force: r3.Vec{X: 1}}}
	sys := NewLocomotionSystem(world, Policies{components.KindPrey: policy}, 1)

	body := steering.NewBody(r3.Vec{}, 0, 1, 10, 0.5)
	agent := components.Agent{Kind: components.KindPrey}
	e := mapper.NewEntity(&body, &agent)

	sys.Update(nil, &View{})

	if policy.calls != 0 {
		t.Errorf("policy called %d times for an empty update", policy.calls)
	}
	if b, _ := mapper.Get(e); b.Position != (r3.Vec{}) {
		t.Errorf("unlisted entity moved to %+v", b.Position)
	}
}

func TestLocomotionPanicsWithoutPolicy(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap2[steering.Body, components.Agent](world)
	sys := NewLocomotionSystem(world, Policies{components.KindPrey: &fixedPolicy{}}, 1)

	body := steering.NewBody(r3.Vec{}, 0, 1.3, 7, 0.5)
	agent := components.Agent{Kind: components.KindPredator}
	e := mapper.NewEntity(&body, &agent)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for an agent kind without a policy")
		}
		if msg, _ := r.(string); !strings.HasPrefix(msg, "systems:") {
			t.Errorf("panic = %v, want systems: prefix", r)
		}
	}()
	sys.Update([]ecs.Entity{e}, &View{})
}
