package service

import (
	"context"

	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/pkg/events"
	pktNats "uny-compass-be/pkg/nats"
)

const auditDurable = "uny-audit-log"

// EventSubscriber is the slice of the NATS subscriber the audit trail needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

type IAuditService interface {
	Start(ctx context.Context) error
}

// auditService writes every domain event from the bus to the audit log.
type auditService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewAuditService(sub EventSubscriber, log logger.ILogger) IAuditService {
	return &auditService{
		subscriber: sub,
		logger:     log,
	}
}

func (s *auditService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, pktNats.Subject(">"), auditDurable, s.handleEvent); err != nil {
		s.logger.Error("AUDIT", "failed to start audit subscriber", map[string]interface{}{"error": err})
		return err
	}
	s.logger.Info("AUDIT", "audit trail listening to events.>", nil)
	return nil
}

func (s *auditService) handleEvent(ctx context.Context, event events.Event) error {
	details := map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.logger.Info("AUDIT", event.EventType(), details)
	return nil
}
