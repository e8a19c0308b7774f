package ports

import (
	"context"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

// EventPublisher publishes auth events so other components can react to them
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, event core.AuthEvent) error
}
