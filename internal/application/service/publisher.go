package service

import (
	"context"

	"github.com/khoahotran/auto-featured-image/adapters/event"
)

// EventPublisher is implemented by event.KafkaProducerClient.
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, payload event.PostEventPayload) error
	PublishMediaEvent(ctx context.Context, payload event.MediaEventPayload) error
}
