package telemetry

import "github.com/pthm-cable/outbreak/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventSpawnRejected
	EventConversion
	EventEviction
	EventRemoved
)

// String returns the event name used in logs and CSV output.
func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventSpawnRejected:
		return "spawn_rejected"
	case EventConversion:
		return "conversion"
	case EventEviction:
		return "eviction"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (t EventType) MarshalCSV() (string, error) {
	return t.String(), nil
}

// Event represents a single population event.
type Event struct {
	Type     EventType       `csv:"type"`
	Tick     int32           `csv:"tick"`
	EntityID uint32          `csv:"entity"`
	Kind     components.Kind `csv:"kind"`

	// Optional fields depending on event type
	TargetID uint32  `csv:"target"` // converting predator, or the predator spawned
	X        float64 `csv:"x"`
	Z        float64 `csv:"z"`

	// Lifetime of the agent that left the arena, when it was tracked
	SurvivalSec   float64 `csv:"survival_sec"`
	Distance      float64 `csv:"distance"`
	TrackingTicks int     `csv:"tracking_ticks"`
	Catches       int     `csv:"catches"`
}

// WithLifetime copies an agent's closed lifetime record into the event.
// A nil record leaves the event unchanged.
func (e Event) WithLifetime(s *LifetimeStats) Event {
	if s == nil {
		return e
	}
	e.SurvivalSec = s.SurvivalTimeSec
	e.Distance = s.Distance
	e.TrackingTicks = s.TrackingTicks
	e.Catches = s.Conversions
	return e
}

// NewSpawnEvent creates a spawn event.
func NewSpawnEvent(tick int32, id uint32, kind components.Kind, x, z float64) Event {
	return Event{
		Type:     EventSpawn,
		Tick:     tick,
		EntityID: id,
		Kind:     kind,
		X:        x,
		Z:        z,
	}
}

// NewSpawnRejectedEvent creates an event for a spawn refused by the cap.
func NewSpawnRejectedEvent(tick int32, kind components.Kind) Event {
	return Event{
		Type: EventSpawnRejected,
		Tick: tick,
		Kind: kind,
	}
}

// NewConversionEvent creates a conversion event. preyID is the prey that was
// destroyed and newID the predator spawned in its place.
func NewConversionEvent(tick int32, preyID, newID uint32, x, z float64) Event {
	return Event{
		Type:     EventConversion,
		Tick:     tick,
		EntityID: preyID,
		Kind:     components.KindPrey,
		TargetID: newID,
		X:        x,
		Z:        z,
	}
}

// NewEvictionEvent creates an eviction event for a predator removed by the cap.
func NewEvictionEvent(tick int32, predatorID uint32) Event {
	return Event{
		Type:     EventEviction,
		Tick:     tick,
		EntityID: predatorID,
		Kind:     components.KindPredator,
	}
}

// NewRemovedEvent creates an event for an agent removed from the world
// outside the population controller.
func NewRemovedEvent(tick int32, id uint32, kind components.Kind) Event {
	return Event{
		Type:     EventRemoved,
		Tick:     tick,
		EntityID: id,
		Kind:     kind,
	}
}
