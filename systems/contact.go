package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/outbreak/steering"
)

// FindContact scans every (prey, predator) pair and reports the last pair
// within radius. At most one contact is resolved per tick, so later prey
// shadow earlier ones.
func FindContact(prey, predators []r3.Vec, radius float64) (i, j int, ok bool) {
	for pi, p := range prey {
		for zi, z := range predators {
			if steering.Distance(p, z) <= radius {
				i, j, ok = pi, zi, true
			}
		}
	}
	return i, j, ok
}
