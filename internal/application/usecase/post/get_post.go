package post

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type GetPostUseCase struct {
	postRepo       post.Repository
	termRepo       term.Repository
	metaRepo       post.MetaRepository
	attachmentRepo attachment.Repository
	logger         logger.Logger
}

func NewGetPostUseCase(
	pRepo post.Repository,
	tRepo term.Repository,
	mRepo post.MetaRepository,
	aRepo attachment.Repository,
	log logger.Logger,
) *GetPostUseCase {
	return &GetPostUseCase{
		postRepo:       pRepo,
		termRepo:       tRepo,
		metaRepo:       mRepo,
		attachmentRepo: aRepo,
		logger:         log,
	}
}

type GetPostInput struct {
	PostID uuid.UUID
}

type GetPostOutput struct {
	Post          *post.Post
	Tags          []term.Term
	Categories    []term.Term
	FeaturedImage *attachment.Attachment
}

func (uc *GetPostUseCase) Execute(ctx context.Context, input GetPostInput) (*GetPostOutput, error) {
	p, err := uc.postRepo.FindByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	l := uc.logger.With(zap.String("post_id", p.ID.String()))

	tags, err := uc.termRepo.GetTermsForPost(ctx, p.ID, term.TaxonomyTag)
	if err != nil {
		l.Warn("Failed to get tags for post", zap.Error(err))
	}
	categories, err := uc.termRepo.GetTermsForPost(ctx, p.ID, term.TaxonomyCategory)
	if err != nil {
		l.Warn("Failed to get categories for post", zap.Error(err))
	}

	featured, err := featuredImage(ctx, uc.metaRepo, uc.attachmentRepo, p.ID)
	if err != nil {
		l.Warn("Failed to get featured image for post", zap.Error(err))
	}

	return &GetPostOutput{
		Post:          p,
		Tags:          tags,
		Categories:    categories,
		FeaturedImage: featured,
	}, nil
}

// featuredImage loads the attachment named by the post's thumbnail meta. It
// returns nil without error when the post has none or the attachment is gone.
func featuredImage(ctx context.Context, metaRepo post.MetaRepository, attachmentRepo attachment.Repository, postID uuid.UUID) (*attachment.Attachment, error) {
	value, ok, err := metaRepo.Get(ctx, postID, post.ThumbnailMetaKey)
	if err != nil || !ok {
		return nil, err
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperror.NewInternal("malformed thumbnail meta", err)
	}
	a, err := attachmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}
