package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-support-be/internal/pkg/logger"
	"ai-support-be/pkg/events"
	"ai-support-be/pkg/notify"
)

type IEscalationConsumer interface {
	Consume(ctx context.Context) error
}

// escalationConsumer drains the in-process escalation topic and forwards
// each record to the NATS operations channel. When NATS is not configured
// it still drains the topic, logging records locally.
type escalationConsumer struct {
	pubSub    *gochannel.GoChannel
	publisher *notify.Publisher // nil when NATS is off
	logger    logger.ILogger
}

func NewEscalationConsumer(pubSub *gochannel.GoChannel, publisher *notify.Publisher, log logger.ILogger) IEscalationConsumer {
	return &escalationConsumer{
		pubSub:    pubSub,
		publisher: publisher,
		logger:    log,
	}
}

func (c *escalationConsumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, EscalationTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (c *escalationConsumer) processMessage(ctx context.Context, msg *message.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.logger.Error("escalation", "unmarshal escalation record", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying won't help
		return
	}

	c.logger.Warn("escalation", "escalation raised", payload)

	if c.publisher != nil {
		event := events.EscalationEvent{
			ID:     msg.UUID,
			Route:  asString(payload["route"]),
			Query:  asString(payload["query"]),
			Reason: asString(payload["reason"]),
		}
		event.SessionID = asString(payload["session_id"])
		if err := c.publisher.Publish(ctx, event); err != nil {
			c.logger.Error("escalation", "forward to NATS", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	}

	msg.Ack()
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
