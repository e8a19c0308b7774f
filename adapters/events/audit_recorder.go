package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// AuditRecorder turns auth events into transaction log entries
type AuditRecorder struct {
	subscriber message.Subscriber
	log        ports.TransactionLog
	logger     zerolog.Logger
	done       chan struct{}
}

// NewAuditRecorder creates a recorder reading from subscriber
func NewAuditRecorder(subscriber message.Subscriber, txLog ports.TransactionLog, logger zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{
		subscriber: subscriber,
		log:        txLog,
		logger:     logger.With().Str("component", "audit").Logger(),
		done:       make(chan struct{}),
	}
}

// Start subscribes to auth events and records them in the background until ctx is
// cancelled or the subscriber closes. Events published before Start returns are not seen
// by the in-process bus.
func (r *AuditRecorder) Start(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, TopicAuth)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicAuth, err)
	}

	go func() {
		defer close(r.done)
		for msg := range messages {
			// Recording is best effort. A failed entry is logged and acked so a broken
			// store cannot wedge the subscription.
			if err := r.handle(ctx, msg); err != nil {
				r.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("failed to record auth event")
			}
			msg.Ack()
		}
	}()

	return nil
}

// Done is closed once the subscription has drained
func (r *AuditRecorder) Done() <-chan struct{} {
	return r.done
}

func (r *AuditRecorder) handle(ctx context.Context, msg *message.Message) error {
	var event core.AuthEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("failed to decode auth event: %w", err)
	}

	tx := core.TransactionFromEvent(uuid.NewString(), event)
	if err := r.log.Record(ctx, tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	r.logger.Debug().
		Str("type", string(event.Type)).
		Str("tx_hash", tx.TxHash).
		Msg("auth event recorded")
	return nil
}
