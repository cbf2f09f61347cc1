// Package components defines ECS components for the simulation.
package components

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind distinguishes the two agent populations.
type Kind uint8

const (
	KindPrey     Kind = iota // humans: flee, wander, avoid
	KindPredator             // zombies: pursue the nearest prey
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindPrey:
		return "prey"
	case KindPredator:
		return "predator"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prey":
		*k = KindPrey
	case "predator":
		*k = KindPredator
	default:
		return fmt.Errorf("unknown kind %q", text)
	}
	return nil
}

// Agent holds identity and the last steering decision of a moving agent.
// Agent entities also carry a steering.Body.
type Agent struct {
	ID        uint32
	Kind      Kind
	SpawnTick int32

	// Pursuit target recorded for display (predators only)
	Target   r3.Vec
	Tracking bool
}

// Obstacle is a static circular obstacle on the arena floor.
type Obstacle struct {
	Position r3.Vec
	Radius   float64
}
