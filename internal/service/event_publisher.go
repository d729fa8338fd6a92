package service

import (
	"context"
	"time"

	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/pkg/events"
)

const eventPublishTimeout = 5 * time.Second

// publishEvent fires a domain event without holding up the request.
// A nil publisher means the bus is disabled.
func publishEvent(pub events.Publisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	event := events.New(eventType, data)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, event); err != nil {
			log.Warn("EVENTS", "failed to publish event", map[string]interface{}{
				"type":  eventType,
				"error": err.Error(),
			})
		}
	}()
}
