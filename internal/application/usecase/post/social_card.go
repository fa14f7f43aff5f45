package post

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/application/hook"
	"github.com/khoahotran/auto-featured-image/internal/application/service"
	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

const (
	ogImageTransformation   = "c_fill,g_auto,w_1200,h_630"
	ogThumbTransformation   = "c_limit,w_400"
	originalPublicIDMetaKey = "original_public_id"
)

// SocialCardUseCase derives Open Graph images from a post's featured image.
// It must run after the featured image hook on the same transition.
type SocialCardUseCase struct {
	metaRepo       post.MetaRepository
	attachmentRepo attachment.Repository
	uploader       service.Uploader
	logger         logger.Logger
}

func NewSocialCardUseCase(mRepo post.MetaRepository, aRepo attachment.Repository, up service.Uploader, log logger.Logger) *SocialCardUseCase {
	return &SocialCardUseCase{metaRepo: mRepo, attachmentRepo: aRepo, uploader: up, logger: log}
}

func (uc *SocialCardUseCase) OnTransition(ctx context.Context, t hook.Transition) error {
	if t.NewStatus != post.StatusPublished {
		return nil
	}
	l := uc.logger.With(zap.String("post_id", t.PostID.String()))

	if _, has, err := uc.metaRepo.Get(ctx, t.PostID, post.OgImageMetaKey); err != nil {
		return fmt.Errorf("check og image failed: %w", err)
	} else if has {
		return nil
	}

	img, err := featuredImage(ctx, uc.metaRepo, uc.attachmentRepo, t.PostID)
	if err != nil {
		return fmt.Errorf("get featured image failed: %w", err)
	}
	if img == nil {
		l.Debug("Post has no featured image, no social card")
		return nil
	}

	publicID, _ := img.Metadata[originalPublicIDMetaKey].(string)
	if publicID == "" {
		l.Warn("Featured image has no Cloudinary public id, skipping social card", zap.String("attachment_id", img.ID.String()))
		return nil
	}

	ogImageURL, err := uc.uploader.TransformURL(publicID, ogImageTransformation)
	if err != nil {
		return fmt.Errorf("build OG image URL failed: %w", err)
	}
	thumbURL, err := uc.uploader.TransformURL(publicID, ogThumbTransformation)
	if err != nil {
		return fmt.Errorf("build thumbnail URL failed: %w", err)
	}

	if _, err := uc.metaRepo.Add(ctx, t.PostID, post.OgImageMetaKey, ogImageURL, true); err != nil {
		return fmt.Errorf("store OG image failed: %w", err)
	}
	if _, err := uc.metaRepo.Add(ctx, t.PostID, post.OgThumbnailURLMetaKey, thumbURL, true); err != nil {
		return fmt.Errorf("store OG thumbnail failed: %w", err)
	}

	l.Info("Generated social card", zap.String("attachment_id", img.ID.String()))
	return nil
}
