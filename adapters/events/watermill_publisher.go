package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// TopicAuth carries every core.AuthEvent
const TopicAuth = "tasktrail.auth"

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     TopicAuth,
	}
}

// PublishAuthEvent publishes an auth event
func (p *WatermillPublisher) PublishAuthEvent(_ context.Context, event core.AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(event.Type))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
