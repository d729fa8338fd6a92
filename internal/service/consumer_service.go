package service

import (
	"context"
	"encoding/json"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	relay      events.Publisher
	logger     logger.ILogger
}

// NewConsumerService relays chat turns from the in-process bus to the NATS event stream.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	relay events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		relay:      relay,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishChatTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "failed to unmarshal chat turn", map[string]interface{}{"error": err})
		msg.Ack() // poison message, retrying will not help
		return
	}

	cs.logger.Info("CONSUMER", "chat turn completed", map[string]interface{}{
		"session_id":      payload.ChatSessionId,
		"user_id":         payload.UserId,
		"user_message_id": payload.UserMessageId,
		"ai_message_id":   payload.AiMessageId,
		"fallback":        payload.Fallback,
		"upstream_ms":     payload.UpstreamMs,
	})

	if cs.relay != nil {
		event := events.BaseEvent{
			Type: events.ChatTurnCompleted,
			Data: map[string]interface{}{
				"chat_session_id": payload.ChatSessionId,
				"user_id":         payload.UserId,
				"user_message_id": payload.UserMessageId,
				"ai_message_id":   payload.AiMessageId,
				"fallback":        payload.Fallback,
				"upstream_ms":     payload.UpstreamMs,
			},
			OccurredAt: payload.OccurredAt,
		}
		relayCtx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
		err := cs.relay.Publish(relayCtx, event)
		cancel()
		if err != nil {
			cs.logger.Warn("CONSUMER", "failed to relay chat turn to NATS", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}
