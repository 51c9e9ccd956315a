// Package messaging implements the in-process event bus the progression
// engine publishes domain events on. Cache maintenance subscribes here so
// the write path never blocks on Redis.
package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/shared"
	"github.com/studyloop/studyloop/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// EventBus is an in-memory implementation of shared.EventPublisher.
// Handlers run on the publisher's goroutine after the owning transaction
// has committed; a panicking handler is recovered and logged so one bad
// subscriber cannot take down the request.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]shared.EventHandler
	log      *logger.Logger
}

// NewEventBus creates a new EventBus.
func NewEventBus(log *logger.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		log:      log.With(logger.Component("eventbus")),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers an event to every handler subscribed to its type.
func (b *EventBus) Publish(event shared.Event) {
	if event == nil {
		return
	}

	b.mu.RLock()
	handlers := make([]shared.EventHandler, len(b.handlers[event.EventType()]))
	copy(handlers, b.handlers[event.EventType()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.invoke(handler, event)
	}
}

func (b *EventBus) invoke(handler shared.EventHandler, event shared.Event) {
	defer func() {
		if p := recover(); p != nil {
			b.log.Error("event handler panicked",
				logger.String("event_type", string(event.EventType())),
				logger.Any("panic", p),
			)
		}
	}()
	handler(event)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE MAINTENANCE SUBSCRIBER
// ══════════════════════════════════════════════════════════════════════════════

// ProgressInvalidator drops a user's cached profile snapshots.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// LeaderboardUpdater writes a user's new XP into a class leaderboard.
type LeaderboardUpdater interface {
	UpdateScore(ctx context.Context, classID, userID uuid.UUID, totalXP int)
}

// RegisterCacheMaintenance subscribes the read-side caches to completion
// events. Each handler gets its own short deadline detached from the
// request context.
func RegisterCacheMaintenance(bus *EventBus, progress ProgressInvalidator, leaderboard LeaderboardUpdater, log *logger.Logger) {
	log = log.With(logger.Component("cache_maintenance"))

	bus.Subscribe(shared.EventLessonCompleted, func(event shared.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		payload := event.Payload()
		userID, ok := parseID(payload["user_id"])
		if !ok {
			log.Warn("completion event missing user id")
			return
		}

		if progress != nil {
			progress.Invalidate(ctx, userID)
		}

		if leaderboard != nil {
			classID, ok := parseID(payload["class_id"])
			if !ok {
				return
			}
			totalXP, ok := payload["total_xp"].(int)
			if !ok {
				return
			}
			leaderboard.UpdateScore(ctx, classID, userID, totalXP)
		}
	})
}

func parseID(v interface{}) (uuid.UUID, bool) {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
