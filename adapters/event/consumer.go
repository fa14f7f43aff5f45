package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/config"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

// ErrPoison marks a message that can never be handled. The consumer commits
// it so the partition is not blocked.
var ErrPoison = errors.New("poison message")

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Handler func(ctx context.Context, msg kafka.Message) error

type Consumer struct {
	reader  MessageReader
	handler Handler
	logger  logger.Logger
}

func NewKafkaReader(cfg config.Config, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    topic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

func NewConsumer(reader MessageReader, handler Handler, log logger.Logger) *Consumer {
	return &Consumer{reader: reader, handler: handler, logger: log}
}

// Run fetches until ctx is done. A message is committed only after its
// handler succeeds or reports ErrPoison; failed messages stay uncommitted and
// are redelivered after a rebalance or restart.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message failed: %w", err)
		}

		l := c.logger.With(
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.String("key", string(msg.Key)),
		)
		l.Debug("Received message")

		if err := c.handler(ctx, msg); err != nil {
			if !errors.Is(err, ErrPoison) {
				l.Error("Failed to process message", err)
				continue
			}
			l.Warn("Skipping poison message", zap.Error(err))
		}

		if err := c.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
			l.Error("Failed to commit message", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// Decode unmarshals a message value, reporting malformed JSON as ErrPoison.
func Decode[T any](msg kafka.Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return payload, fmt.Errorf("%w: %v", ErrPoison, err)
	}
	return payload, nil
}
