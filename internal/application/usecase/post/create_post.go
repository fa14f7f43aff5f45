package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/internal/application/service"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type CreatePostUseCase struct {
	postRepo  post.Repository
	termRepo  term.Repository
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewCreatePostUseCase(pRepo post.Repository, tRepo term.Repository, pub service.EventPublisher, log logger.Logger) *CreatePostUseCase {
	return &CreatePostUseCase{
		postRepo:  pRepo,
		termRepo:  tRepo,
		publisher: pub,
		logger:    log,
	}
}

type CreatePostInput struct {
	OwnerID    uuid.UUID
	Title      string
	Content    string
	Slug       string
	Status     post.PostStatus
	Tags       []string
	Categories []string
	Metadata   map[string]any
}

type CreatePostOutput struct {
	PostID uuid.UUID
	Slug   string
	Status post.PostStatus
}

func (uc *CreatePostUseCase) Execute(ctx context.Context, input CreatePostInput) (*CreatePostOutput, error) {
	if input.Slug == "" {
		input.Slug = term.Slugify(input.Title)
	}
	if input.Status == "" {
		input.Status = post.StatusDraft
	}
	if _, err := post.ParseStatus(string(input.Status)); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}
	if input.Metadata == nil {
		input.Metadata = make(map[string]any)
	}

	now := time.Now().UTC()
	newPost := &post.Post{
		ID:              uuid.New(),
		OwnerID:         input.OwnerID,
		Slug:            input.Slug,
		Title:           strings.TrimSpace(input.Title),
		ContentMarkdown: input.Content,
		Status:          post.StatusDraft,
		Metadata:        input.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	newPost.Transition(input.Status, now)

	if err := newPost.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	if err := uc.postRepo.Save(ctx, newPost); err != nil {
		return nil, err
	}

	l := uc.logger.With(zap.String("post_id", newPost.ID.String()))

	// Terms must be in place before the event goes out, the worker reads them.
	if err := setTerms(ctx, uc.termRepo, newPost.ID, term.TaxonomyTag, input.Tags); err != nil {
		return nil, err
	}
	if err := setTerms(ctx, uc.termRepo, newPost.ID, term.TaxonomyCategory, input.Categories); err != nil {
		return nil, err
	}

	err := uc.publisher.PublishPostEvent(context.WithoutCancel(ctx), event.PostEventPayload{
		EventType: event.PostEventTypeCreated,
		PostID:    newPost.ID,
		OwnerID:   newPost.OwnerID,
		NewStatus: newPost.Status,
	})
	if err != nil {
		l.Error("Failed to publish Kafka 'created' event", err)
	}

	l.Info("Created post", zap.String("status", string(newPost.Status)),
		zap.Int("tags", len(input.Tags)), zap.Int("categories", len(input.Categories)))

	return &CreatePostOutput{
		PostID: newPost.ID,
		Slug:   newPost.Slug,
		Status: newPost.Status,
	}, nil
}

func setTerms(ctx context.Context, repo term.Repository, postID uuid.UUID, taxonomy term.Taxonomy, names []string) error {
	terms, err := repo.FindOrCreateTerms(ctx, taxonomy, names)
	if err != nil {
		return fmt.Errorf("process %s terms failed: %w", taxonomy, err)
	}
	ids := make([]uuid.UUID, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	if err := repo.SetTermsForPost(ctx, postID, taxonomy, ids); err != nil {
		return fmt.Errorf("set %s terms failed: %w", taxonomy, err)
	}
	return nil
}
