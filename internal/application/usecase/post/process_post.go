package post

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/internal/application/hook"
	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

// ProcessPostEventUseCase turns post events from the queue into hook
// dispatches.
type ProcessPostEventUseCase struct {
	dispatcher *hook.Dispatcher
	logger     logger.Logger
}

// Hook priorities. The featured image is assigned before the social card is
// built so the card can use it.
const (
	FeaturedImagePriority = 5
	SocialCardPriority    = hook.DefaultPriority
)

// RegisterHooks wires the publish-time handlers into d. The featured image
// also listens on publish_post so that hook alone is enough to assign one;
// the second run is a no-op.
func RegisterHooks(d *hook.Dispatcher, assign *featured.AssignUseCase, card *SocialCardUseCase) {
	d.Register(hook.TransitionPostStatus, FeaturedImagePriority, "featured_image", assign.OnTransition)
	d.Register(hook.TransitionPostStatus, SocialCardPriority, "social_card", card.OnTransition)
	d.Register(hook.PublishPost, hook.DefaultPriority, "featured_image", assign.OnTransition)
}

func NewProcessPostEventUseCase(d *hook.Dispatcher, log logger.Logger) *ProcessPostEventUseCase {
	return &ProcessPostEventUseCase{dispatcher: d, logger: log}
}

func (uc *ProcessPostEventUseCase) Execute(ctx context.Context, payload event.PostEventPayload) error {
	l := uc.logger.With(zap.String("post_id", payload.PostID.String()), zap.String("event_type", string(payload.EventType)))

	switch payload.EventType {
	case event.PostEventTypeCreated, event.PostEventTypeStatusChanged:
	default:
		l.Warn("Unknown post event type, skipping")
		return nil
	}
	if payload.NewStatus == "" {
		l.Warn("Post event without new status, skipping")
		return nil
	}

	l.Info("Worker UseCase processing post event",
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	err := uc.dispatcher.FireTransition(ctx, hook.Transition{
		PostID:    payload.PostID,
		OwnerID:   payload.OwnerID,
		OldStatus: payload.OldStatus,
		NewStatus: payload.NewStatus,
	})
	if err != nil {
		return fmt.Errorf("dispatch transition failed: %w", err)
	}
	return nil
}
