package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/internal/application/service"
	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type UploadMediaUseCase struct {
	attachmentRepo attachment.Repository
	uploader       service.Uploader
	publisher      service.EventPublisher
	logger         logger.Logger
}

func NewUploadMediaUseCase(
	r attachment.Repository,
	u service.Uploader,
	p service.EventPublisher,
	log logger.Logger,
) *UploadMediaUseCase {
	return &UploadMediaUseCase{attachmentRepo: r, uploader: u, publisher: p, logger: log}
}

type UploadMediaInput struct {
	OwnerID  uuid.UUID
	File     io.Reader
	Title    string
	MimeType string
	Metadata map[string]any
}

type UploadMediaOutput struct {
	Attachment *attachment.Attachment
}

func originalFolder(ownerID uuid.UUID) string {
	return fmt.Sprintf("users/%s/attachments/originals", ownerID.String())
}

func (uc *UploadMediaUseCase) Execute(ctx context.Context, input UploadMediaInput) (*UploadMediaOutput, error) {
	now := time.Now().UTC()
	a := &attachment.Attachment{
		ID:        uuid.New(),
		OwnerID:   input.OwnerID,
		Title:     strings.TrimSpace(input.Title),
		MimeType:  input.MimeType,
		Status:    attachment.StatusPending,
		Metadata:  input.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("invalid attachment", err)
	}
	if a.MimeType == "" {
		return nil, apperror.NewInvalidInput("mime type is required", nil)
	}

	l := uc.logger.With(zap.String("attachment_id", a.ID.String()))

	folder := originalFolder(input.OwnerID)
	publicID := folder + "/" + a.ID.String()
	originalURL, err := uc.uploader.Upload(ctx, input.File, folder, a.ID.String())
	if err != nil {
		return nil, apperror.NewInternal("failed to upload original media file", err)
	}

	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata["original_url"] = originalURL
	a.Metadata["original_public_id"] = publicID
	a.URL = originalURL

	if err := uc.attachmentRepo.Save(ctx, a); err != nil {
		if delErr := uc.uploader.Delete(context.WithoutCancel(ctx), publicID); delErr != nil {
			l.Warn("Failed to clean up orphaned upload", zap.Error(delErr))
		}
		return nil, err
	}

	payload := event.MediaEventPayload{
		EventType:        event.MediaEventTypeUploaded,
		AttachmentID:     a.ID,
		OwnerID:          a.OwnerID,
		OriginalURL:      originalURL,
		OriginalPublicID: publicID,
	}
	if err := uc.publisher.PublishMediaEvent(context.WithoutCancel(ctx), payload); err != nil {
		l.Error("Failed to publish Kafka 'media.uploaded' event", err)
	}

	l.Info("Uploaded attachment", zap.String("title", a.Title), zap.String("mime_type", a.MimeType))
	return &UploadMediaOutput{Attachment: a}, nil
}
