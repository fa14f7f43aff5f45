package media

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

// List

type ListMediaUseCase struct {
	attachmentRepo attachment.Repository
}

func NewListMediaUseCase(r attachment.Repository) *ListMediaUseCase {
	return &ListMediaUseCase{attachmentRepo: r}
}

type ListMediaInput struct {
	Prefix        string
	Limit, Offset int
}
type ListMediaOutput struct{ Attachments []*attachment.Attachment }

func (uc *ListMediaUseCase) Execute(ctx context.Context, in ListMediaInput) (*ListMediaOutput, error) {
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 30
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	items, err := uc.attachmentRepo.ListByTitlePrefix(ctx, in.Prefix, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return &ListMediaOutput{Attachments: items}, nil
}

// Rename

// RenameMediaUseCase changes an attachment's title, which is how an image is
// opted in or out of featured-image selection.
type RenameMediaUseCase struct {
	attachmentRepo attachment.Repository
	logger         logger.Logger
}

func NewRenameMediaUseCase(r attachment.Repository, log logger.Logger) *RenameMediaUseCase {
	return &RenameMediaUseCase{attachmentRepo: r, logger: log}
}

type RenameMediaInput struct {
	AttachmentID uuid.UUID
	Title        string
}

func (uc *RenameMediaUseCase) Execute(ctx context.Context, in RenameMediaInput) (*attachment.Attachment, error) {
	a, err := uc.attachmentRepo.FindByID(ctx, in.AttachmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == attachment.StatusTrash {
		return nil, apperror.NewInvalidInput("attachment is in trash", nil)
	}

	old := a.Title
	a.Title = strings.TrimSpace(in.Title)
	if err := a.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("invalid attachment", err)
	}
	a.UpdatedAt = time.Now().UTC()

	if err := uc.attachmentRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	uc.logger.Info("Renamed attachment",
		zap.String("attachment_id", a.ID.String()),
		zap.String("old_title", old),
		zap.String("title", a.Title))
	return a, nil
}

// Trash

type TrashMediaUseCase struct {
	attachmentRepo attachment.Repository
	logger         logger.Logger
}

func NewTrashMediaUseCase(r attachment.Repository, log logger.Logger) *TrashMediaUseCase {
	return &TrashMediaUseCase{attachmentRepo: r, logger: log}
}

// Execute moves the attachment to trash. The Cloudinary original is kept so
// the operation can be undone by hand; posts already pointing at it keep
// their featured image.
func (uc *TrashMediaUseCase) Execute(ctx context.Context, attachmentID uuid.UUID) error {
	a, err := uc.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if a.Status == attachment.StatusTrash {
		return nil
	}
	a.Status = attachment.StatusTrash
	a.UpdatedAt = time.Now().UTC()
	if err := uc.attachmentRepo.Update(ctx, a); err != nil {
		return err
	}
	uc.logger.Info("Trashed attachment", zap.String("attachment_id", a.ID.String()))
	return nil
}
