// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import "time"

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened inside the progression engine.
const (
	// Progression events
	EventLessonCompleted EventType = "progression.lesson_completed"
	EventLevelUp         EventType = "progression.level_up"

	// Achievement events
	EventAchievementEarned EventType = "achievement.earned"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a published event. Handlers must be safe for
// concurrent use; the bus may invoke them from multiple goroutines.
type EventHandler func(event Event)

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event)
}

// BaseEvent provides common event fields for concrete event types.
type BaseEvent struct {
	Type        EventType
	Aggregate   string
	Timestamp   time.Time
	PayloadData map[string]interface{}
}

// EventType returns the type of the event.
func (e BaseEvent) EventType() EventType { return e.Type }

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID returns the ID of the aggregate that produced this event.
func (e BaseEvent) AggregateID() string { return e.Aggregate }

// Payload returns the event data as a map for serialization.
func (e BaseEvent) Payload() map[string]interface{} { return e.PayloadData }

// NewEvent creates a BaseEvent with the given type, aggregate and payload.
func NewEvent(eventType EventType, aggregateID string, occurredAt time.Time, payload map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Aggregate:   aggregateID,
		Timestamp:   occurredAt,
		PayloadData: payload,
	}
}
