package service

import (
	"context"
	"encoding/json"

	"uny-compass-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ChatTurnTopic is the in-process topic carrying stored chat turns.
const ChatTurnTopic = "CHAT_TURN_COMPLETED"

type IPublisherService interface {
	PublishChatTurn(ctx context.Context, msg dto.PublishChatTurnMessage) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) PublishChatTurn(ctx context.Context, payload dto.PublishChatTurnMessage) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(context.WithoutCancel(ctx))
	return ps.publisher.Publish(ps.topicName, msg)
}
