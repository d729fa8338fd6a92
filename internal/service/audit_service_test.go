package service

import (
	"context"
	"errors"
	"testing"

	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/pkg/events"
	pktNats "uny-compass-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
	err     error
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error {
	f.subject = subject
	f.durable = durableName
	f.handler = handler
	return f.err
}

func TestAuditSubscribesToAllEvents(t *testing.T) {
	sub := &fakeSubscriber{}
	svc := NewAuditService(sub, logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))

	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, auditDurable, sub.durable)
	require.NotNil(t, sub.handler)
	assert.NoError(t, sub.handler(context.Background(), events.New(events.UserLogin, map[string]interface{}{"user_id": 1})))
}

func TestAuditStartError(t *testing.T) {
	sub := &fakeSubscriber{err: errors.New("stream not found")}

	err := NewAuditService(sub, logger.NewNopLogger()).Start(context.Background())

	assert.EqualError(t, err, "stream not found")
}
