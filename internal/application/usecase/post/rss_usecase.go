package post

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/config"
	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

const rssItemLimit = 20

type RSSUseCase struct {
	postRepo       post.Repository
	metaRepo       post.MetaRepository
	attachmentRepo attachment.Repository
	cfg            config.Config
	logger         logger.Logger
}

func NewRSSUseCase(
	pRepo post.Repository,
	mRepo post.MetaRepository,
	aRepo attachment.Repository,
	cfg config.Config,
	log logger.Logger,
) *RSSUseCase {
	return &RSSUseCase{
		postRepo:       pRepo,
		metaRepo:       mRepo,
		attachmentRepo: aRepo,
		cfg:            cfg,
		logger:         log,
	}
}

// Execute builds the feed of the latest published posts. A post with a
// featured image carries it as the item's enclosure.
func (uc *RSSUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	uc.logger.Info("Generating RSS feed...")

	feed := &feeds.Feed{
		Title:       uc.cfg.Feed.Title,
		Link:        &feeds.Link{Href: uc.cfg.App.BaseURL},
		Description: uc.cfg.Feed.Description,
		Author:      &feeds.Author{Name: uc.cfg.Feed.Author},
		Created:     time.Now(),
	}

	posts, err := uc.postRepo.ListPublished(ctx, rssItemLimit, 0)
	if err != nil {
		uc.logger.Error("Failed to list published posts for RSS", err)
		return nil, err
	}

	feedItems := make([]*feeds.Item, 0, len(posts))
	for _, p := range posts {
		item := &feeds.Item{
			Id:          p.ID.String(),
			Title:       p.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf(uc.cfg.Feed.PostURL, p.Slug)},
			Description: p.ContentMarkdown,
			Created:     p.CreatedAt,
		}
		if p.PublishedAt != nil {
			item.Created = *p.PublishedAt
		}

		img, err := featuredImage(ctx, uc.metaRepo, uc.attachmentRepo, p.ID)
		if err != nil {
			uc.logger.Warn("Failed to load featured image for RSS item", zap.String("post_id", p.ID.String()), zap.Error(err))
		}
		if img != nil {
			item.Enclosure = &feeds.Enclosure{Url: img.URL, Length: "0", Type: img.MimeType}
		}

		feedItems = append(feedItems, item)
	}

	feed.Items = feedItems
	uc.logger.Info("RSS feed generated successfully", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}
