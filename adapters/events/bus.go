package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const consumerGroup = "tasktrail-audit"

// Bus is a publisher/subscriber pair sharing one transport
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Close closes both ends of the bus
func (b Bus) Close() error {
	if err := b.Publisher.Close(); err != nil {
		return err
	}
	return b.Subscriber.Close()
}

// NewInProcessBus returns a bus backed by Go channels
func NewInProcessBus(logger zerolog.Logger) Bus {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
		Persistent:          false,
	}, NewLoggerAdapter(logger))

	return Bus{Publisher: ch, Subscriber: ch}
}

// NewRedisBus returns a bus backed by redis streams, shared by every instance
func NewRedisBus(client redis.UniversalClient, logger zerolog.Logger) (Bus, error) {
	wmLogger := NewLoggerAdapter(logger)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		wmLogger,
	)
	if err != nil {
		return Bus{}, fmt.Errorf("failed to create redis publisher: %w", err)
	}

	subscriber, err := redisstream.NewSubscriber(
		redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: consumerGroup,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		return Bus{}, fmt.Errorf("failed to create redis subscriber: %w", err)
	}

	return Bus{Publisher: publisher, Subscriber: subscriber}, nil
}

// loggerAdapter routes watermill logs through zerolog
type loggerAdapter struct {
	logger zerolog.Logger
}

// NewLoggerAdapter wraps a zerolog logger for watermill
func NewLoggerAdapter(logger zerolog.Logger) watermill.LoggerAdapter {
	return loggerAdapter{logger: logger.With().Str("component", "watermill").Logger()}
}

func (l loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l loggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.logger.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return loggerAdapter{logger: l.logger.With().Fields(map[string]interface{}(fields)).Logger()}
}
