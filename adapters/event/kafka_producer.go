package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/config"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type KafkaProducerClient struct {
	PostEventsWriter  *kafka.Writer
	MediaEventsWriter *kafka.Writer
	logger            logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'post.events', hashed by post id to keep per-post order
	postWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicPostEvents,
		Balancer: &kafka.Hash{},
	}

	// writer 'media.events'
	mediaWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicMediaEvents,
		Balancer: &kafka.LeastBytes{},
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		PostEventsWriter:  postWriter,
		MediaEventsWriter: mediaWriter,
		logger:            log,
	}, nil
}

func (c *KafkaProducerClient) PublishPostEvent(ctx context.Context, payload PostEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal post event failed: %w", err)
	}
	err = c.PostEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.PostID.String()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write post event failed: %w", err)
	}
	c.logger.Debug("Published post event",
		zap.String("event_type", string(payload.EventType)),
		zap.String("post_id", payload.PostID.String()))
	return nil
}

func (c *KafkaProducerClient) PublishMediaEvent(ctx context.Context, payload MediaEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal media event failed: %w", err)
	}
	err = c.MediaEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.AttachmentID.String()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write media event failed: %w", err)
	}
	c.logger.Debug("Published media event",
		zap.String("event_type", string(payload.EventType)),
		zap.String("attachment_id", payload.AttachmentID.String()))
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.PostEventsWriter != nil {
		if err := c.PostEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close post events writer", zap.Error(err))
		}
	}
	if c.MediaEventsWriter != nil {
		if err := c.MediaEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close media events writer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}
