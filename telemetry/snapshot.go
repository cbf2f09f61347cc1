package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/pthm-cable/outbreak/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a read-only picture of the arena at the end of a tick.
// It is built in memory for the viewer and the spectator stream; it is not
// written to disk.
type Snapshot struct {
	Version    int     `json:"version"`
	Tick       int32   `json:"tick"`
	SimTimeSec float64 `json:"sim_time"`
	HalfExtent float64 `json:"half_extent"`

	Obstacles []ObstacleState `json:"obstacles"`
	Agents    []AgentState    `json:"agents"`

	// Most recent bookmark, if any
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ObstacleState holds one obstacle.
type ObstacleState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
}

// AgentState holds one agent's kinematic state.
type AgentState struct {
	ID   uint32          `json:"id"`
	Kind components.Kind `json:"kind"`

	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	VelX    float64 `json:"vel_x"`
	VelZ    float64 `json:"vel_z"`
	Heading float64 `json:"heading"` // degrees from +Z towards +X
	Radius  float64 `json:"radius"`

	// Predator pursuit target
	Tracking bool    `json:"tracking,omitempty"`
	TargetX  float64 `json:"target_x,omitempty"`
	TargetZ  float64 `json:"target_z,omitempty"`
}

// Counts returns the number of prey and predators in the snapshot.
func (s *Snapshot) Counts() (prey, predators int) {
	for _, a := range s.Agents {
		if a.Kind == components.KindPrey {
			prey++
		} else {
			predators++
		}
	}
	return prey, predators
}

// Encode returns the JSON form of the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}
	return &snapshot, nil
}
