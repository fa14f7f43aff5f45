package featured

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/application/hook"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

// Guard keeps two workers from resolving the same post at the same time.
// It only saves duplicate lookups; the thumbnail write is write-once anyway.
type Guard interface {
	Acquire(ctx context.Context, postID uuid.UUID) (bool, error)
	Release(ctx context.Context, postID uuid.UUID) error
}

type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipPostNotFound SkipReason = "post_not_found"
	SkipHasThumbnail SkipReason = "has_thumbnail"
	SkipNoMatch      SkipReason = "no_match"
	SkipInProgress   SkipReason = "in_progress"
	SkipAlreadySet   SkipReason = "already_set"
	SkipDryRun       SkipReason = "dry_run"
)

type AssignUseCase struct {
	postRepo post.Repository
	metaRepo post.MetaRepository
	termRepo term.Repository
	resolver *Resolver
	guard    Guard
	logger   logger.Logger
}

func NewAssignUseCase(
	pRepo post.Repository,
	mRepo post.MetaRepository,
	tRepo term.Repository,
	resolver *Resolver,
	guard Guard,
	log logger.Logger,
) *AssignUseCase {
	return &AssignUseCase{
		postRepo: pRepo,
		metaRepo: mRepo,
		termRepo: tRepo,
		resolver: resolver,
		guard:    guard,
		logger:   log,
	}
}

type AssignInput struct {
	PostID uuid.UUID
	DryRun bool
}

type AssignOutput struct {
	Assigned     bool
	AttachmentID uuid.UUID
	Taxonomy     term.Taxonomy
	Slug         string
	SkipReason   SkipReason
}

// Execute gives the post a featured image unless it already has one.
func (uc *AssignUseCase) Execute(ctx context.Context, input AssignInput) (*AssignOutput, error) {
	ctx, span := tracer.Start(ctx, "AssignUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("post_id", input.PostID.String()), attribute.Bool("dry_run", input.DryRun))

	l := uc.logger.With(zap.String("post_id", input.PostID.String()), zap.String("policy", string(uc.resolver.Policy())))

	if uc.guard != nil && !input.DryRun {
		acquired, err := uc.guard.Acquire(ctx, input.PostID)
		switch {
		case err != nil:
			l.Warn("Featured image guard unavailable, continuing without it", zap.Error(err))
		case !acquired:
			l.Info("Featured image resolution already running for post, skipping")
			return &AssignOutput{SkipReason: SkipInProgress}, nil
		default:
			defer func() {
				if err := uc.guard.Release(context.WithoutCancel(ctx), input.PostID); err != nil {
					l.Warn("Failed to release featured image guard", zap.Error(err))
				}
			}()
		}
	}

	p, err := uc.postRepo.FindByID(ctx, input.PostID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("Post not found, skipping featured image")
			return &AssignOutput{SkipReason: SkipPostNotFound}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get post failed: %w", err)
	}

	if _, has, err := uc.metaRepo.Get(ctx, p.ID, post.ThumbnailMetaKey); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check thumbnail failed: %w", err)
	} else if has {
		l.Debug("Post already has a featured image")
		return &AssignOutput{SkipReason: SkipHasThumbnail}, nil
	}

	tags, err := uc.termRepo.GetTermsForPost(ctx, p.ID, term.TaxonomyTag)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get tags failed: %w", err)
	}
	categories, err := uc.termRepo.GetTermsForPost(ctx, p.ID, term.TaxonomyCategory)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get categories failed: %w", err)
	}

	res, err := uc.resolver.Resolve(ctx, term.Slugs(tags), term.Slugs(categories))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("resolve featured image failed: %w", err)
	}
	if !res.Found {
		l.Info("No eligible image for post", zap.Int("tags", len(tags)), zap.Int("categories", len(categories)))
		return &AssignOutput{SkipReason: SkipNoMatch}, nil
	}

	out := &AssignOutput{AttachmentID: res.AttachmentID, Taxonomy: res.Taxonomy, Slug: res.Slug}
	if input.DryRun {
		out.SkipReason = SkipDryRun
		return out, nil
	}

	added, err := uc.metaRepo.Add(ctx, p.ID, post.ThumbnailMetaKey, res.AttachmentID.String(), true)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("set featured image failed: %w", err)
	}
	if !added {
		l.Info("Featured image was set concurrently, keeping existing value")
		out.SkipReason = SkipAlreadySet
		return out, nil
	}

	out.Assigned = true
	l.Info("Assigned featured image",
		zap.String("attachment_id", res.AttachmentID.String()),
		zap.String("taxonomy", string(res.Taxonomy)),
		zap.String("slug", res.Slug))
	return out, nil
}

// OnTransition is the hook handler. Only transitions into published resolve
// an image.
func (uc *AssignUseCase) OnTransition(ctx context.Context, t hook.Transition) error {
	if t.NewStatus != post.StatusPublished {
		return nil
	}
	_, err := uc.Execute(ctx, AssignInput{PostID: t.PostID})
	return err
}
