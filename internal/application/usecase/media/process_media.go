package media

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/internal/application/service"
	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

const (
	mainTransformation  = "c_limit,w_1200"
	thumbTransformation = "c_fill,g_auto,w_400,h_400"
)

// ProcessMediaUseCase runs in the worker. It builds the delivery URLs of a
// freshly uploaded attachment and makes it live.
type ProcessMediaUseCase struct {
	attachmentRepo attachment.Repository
	uploader       service.Uploader
	logger         logger.Logger
}

func NewProcessMediaUseCase(r attachment.Repository, u service.Uploader, log logger.Logger) *ProcessMediaUseCase {
	return &ProcessMediaUseCase{attachmentRepo: r, uploader: u, logger: log}
}

func (uc *ProcessMediaUseCase) Execute(ctx context.Context, payload event.MediaEventPayload) error {
	l := uc.logger.With(zap.String("attachment_id", payload.AttachmentID.String()), zap.String("event_type", string(payload.EventType)))
	l.Info("Worker UseCase processing media event")

	a, err := uc.attachmentRepo.FindByID(ctx, payload.AttachmentID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("Attachment not found, skipping event")
			return nil
		}
		return apperror.NewInternal("failed to get attachment", err)
	}

	if a.Status != attachment.StatusPending {
		l.Info("Attachment already processed, skipping", zap.String("status", string(a.Status)))
		return nil
	}

	if a.IsImage() && payload.OriginalPublicID != "" {
		mainURL, err := uc.uploader.TransformURL(payload.OriginalPublicID, mainTransformation)
		if err != nil {
			return apperror.NewInternal("failed to build main image URL", err)
		}
		thumbURL, err := uc.uploader.TransformURL(payload.OriginalPublicID, thumbTransformation)
		if err != nil {
			return apperror.NewInternal("failed to build thumbnail URL", err)
		}
		a.URL = mainURL
		a.ThumbnailURL = &thumbURL
		l.Info("Generated Cloudinary URLs for attachment")
	}

	a.Status = attachment.StatusInherit
	if err := uc.attachmentRepo.Update(ctx, a); err != nil {
		return apperror.NewInternal("failed to update attachment to 'inherit'", err)
	}

	l.Info("Successfully processed attachment", zap.String("status", string(a.Status)))
	return nil
}
