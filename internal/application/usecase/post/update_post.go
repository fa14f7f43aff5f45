package post

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/internal/application/service"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type UpdatePostStatusUseCase struct {
	postRepo  post.Repository
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewUpdatePostStatusUseCase(pRepo post.Repository, pub service.EventPublisher, log logger.Logger) *UpdatePostStatusUseCase {
	return &UpdatePostStatusUseCase{
		postRepo:  pRepo,
		publisher: pub,
		logger:    log,
	}
}

type UpdatePostStatusInput struct {
	PostID uuid.UUID
	Status string
}

type UpdatePostStatusOutput struct {
	Post      *post.Post
	OldStatus post.PostStatus
}

// Execute moves the post to a new status and announces the transition. The
// event goes out even when the status is unchanged, like a re-save of a
// published post; consumers must be idempotent.
func (uc *UpdatePostStatusUseCase) Execute(ctx context.Context, input UpdatePostStatusInput) (*UpdatePostStatusOutput, error) {
	status, err := post.ParseStatus(input.Status)
	if err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	p, err := uc.postRepo.FindByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	old := p.Transition(status, now)

	if err := uc.postRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	l := uc.logger.With(zap.String("post_id", p.ID.String()),
		zap.String("old_status", string(old)), zap.String("new_status", string(p.Status)))

	err = uc.publisher.PublishPostEvent(context.WithoutCancel(ctx), event.PostEventPayload{
		EventType: event.PostEventTypeStatusChanged,
		PostID:    p.ID,
		OwnerID:   p.OwnerID,
		OldStatus: old,
		NewStatus: p.Status,
	})
	if err != nil {
		l.Error("Failed to publish Kafka 'status_changed' event", err)
	}

	l.Info("Post status updated")
	return &UpdatePostStatusOutput{Post: p, OldStatus: old}, nil
}
