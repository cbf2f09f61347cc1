package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/steering"
)

// LocomotionSystem steers and integrates every agent once per tick.
type LocomotionSystem struct {
	agents   *ecs.Map2[steering.Body, components.Agent]
	policies Policies
	dt       float64
}

// NewLocomotionSystem creates a locomotion system that dispatches on agent kind.
func NewLocomotionSystem(w *ecs.World, policies Policies, dt float64) *LocomotionSystem {
	return &LocomotionSystem{
		agents:   ecs.NewMap2[steering.Body, components.Agent](w),
		policies: policies,
		dt:       dt,
	}
}

// Update advances the given entities in order. Forces are computed against
// view, which must describe the population before any of them moved.
func (s *LocomotionSystem) Update(entities []ecs.Entity, view *View) {
	for _, e := range entities {
		body, agent := s.agents.Get(e)
		if body == nil {
			panic(fmt.Sprintf("systems: entity %v has no body", e))
		}

		policy, ok := s.policies[agent.Kind]
		if !ok {
			panic(fmt.Sprintf("systems: no policy for %s entity %v", agent.Kind, e))
		}

		st := policy.ComputeSteering(body, view)
		body.ApplyForce(st.Force)
		body.Integrate(s.dt)
		body.SyncOrientation()

		agent.Target = st.Target
		agent.Tracking = st.Tracking
	}
}
