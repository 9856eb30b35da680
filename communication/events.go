// Package communication carries habitat events from the services that
// produce them to the clients that watch them: an embedded NATS bus as
// the internal spine and a websocket hub as the outward fan-out.
package communication

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types broadcast to clients.
const (
	EventConnection        = "connection"
	EventEntityArrival     = "entity_arrival"
	EventBreedingStarted   = "breeding_started"
	EventBreedingCompleted = "breeding_completed"
	EventExperimentCreated = "experiment_created"
	EventExperimentRated   = "experiment_rated"
	EventBadgeUnlocked     = "badge_unlocked"
	EventQuarantine        = "quarantine"
	EventSoulSwap          = "soul_swap"
	EventStatsUpdate       = "stats_update"
)

// Event is one broadcast frame. Fields marshal flat next to the type
// and timestamp, so clients see a single JSON object per frame.
type Event struct {
	Type      string
	Fields    map[string]any
	Timestamp time.Time
}

// MarshalJSON flattens the event into one object.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["type"] = e.Type
	if !e.Timestamp.IsZero() {
		out["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the type and timestamp back out of the flat
// object; everything else lands in Fields.
func (e *Event) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if t, ok := raw["type"].(string); ok {
		e.Type = t
		delete(raw, "type")
	}
	if ts, ok := raw["timestamp"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = parsed
			delete(raw, "timestamp")
		}
	}
	e.Fields = raw
	return nil
}

// Sink accepts events for broadcast. The Hub delivers straight to its
// clients; the Bus publishes onto NATS for whoever bridges it.
type Sink interface {
	Broadcast(event Event)
}

// EntityArrivalEvent announces a new resident.
func EntityArrivalEvent(entityName, location string) Event {
	return Event{Type: EventEntityArrival, Fields: map[string]any{
		"entity_name": entityName,
		"location":    location,
		"message":     fmt.Sprintf("%s arrived at %s", entityName, location),
	}}
}

// BreedingStartedEvent announces a pairing entering the hearth.
func BreedingStartedEvent(parentA, parentB string) Event {
	return Event{Type: EventBreedingStarted, Fields: map[string]any{
		"parent_a": parentA,
		"parent_b": parentB,
		"message":  fmt.Sprintf("Breeding: %s + %s", parentA, parentB),
	}}
}

// BreedingCompletedEvent announces a birth.
func BreedingCompletedEvent(offspringName string, generation int) Event {
	return Event{Type: EventBreedingCompleted, Fields: map[string]any{
		"offspring":  offspringName,
		"generation": generation,
		"message":    fmt.Sprintf("🎉 %s born (Gen %d)", offspringName, generation),
	}}
}

// ExperimentCreatedEvent announces a new mini-game.
func ExperimentCreatedEvent(creator, experimentName string) Event {
	return Event{Type: EventExperimentCreated, Fields: map[string]any{
		"creator":         creator,
		"experiment_name": experimentName,
		"message":         fmt.Sprintf("✨ %s created '%s'", creator, experimentName),
	}}
}

// ExperimentRatedEvent announces a fresh star rating.
func ExperimentRatedEvent(experimentName string, stars int) Event {
	return Event{Type: EventExperimentRated, Fields: map[string]any{
		"experiment": experimentName,
		"stars":      stars,
		"message":    fmt.Sprintf("⭐ '%s' rated %d stars", experimentName, stars),
	}}
}

// BadgeUnlockedEvent announces an achievement.
func BadgeUnlockedEvent(entityName, badgeName string) Event {
	return Event{Type: EventBadgeUnlocked, Fields: map[string]any{
		"entity":  entityName,
		"badge":   badgeName,
		"message": fmt.Sprintf("🏆 %s unlocked '%s'", entityName, badgeName),
	}}
}

// QuarantineEvent announces a containment.
func QuarantineEvent(entityName, reason string) Event {
	return Event{Type: EventQuarantine, Fields: map[string]any{
		"entity":  entityName,
		"reason":  reason,
		"message": fmt.Sprintf("🚨 %s quarantined: %s", entityName, reason),
	}}
}

// SoulSwapEvent announces a tincture being taken.
func SoulSwapEvent(entityName, tincture string) Event {
	return Event{Type: EventSoulSwap, Fields: map[string]any{
		"entity":   entityName,
		"tincture": tincture,
		"message":  fmt.Sprintf("🧪 %s taking %s", entityName, tincture),
	}}
}

// StatsUpdateEvent pushes fresh facility statistics.
func StatsUpdateEvent(stats map[string]any) Event {
	return Event{Type: EventStatsUpdate, Fields: map[string]any{
		"stats": stats,
	}}
}
