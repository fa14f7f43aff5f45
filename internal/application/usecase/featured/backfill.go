package featured

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

// BackfillUseCase assigns featured images to published posts that never got
// one, e.g. posts published before the worker was running.
type BackfillUseCase struct {
	postRepo post.Repository
	assign   *AssignUseCase
	logger   logger.Logger
}

func NewBackfillUseCase(pRepo post.Repository, assign *AssignUseCase, log logger.Logger) *BackfillUseCase {
	return &BackfillUseCase{postRepo: pRepo, assign: assign, logger: log}
}

type BackfillInput struct {
	Limit  int
	DryRun bool
}

type BackfillOutput struct {
	Scanned  int
	Assigned int
	Skipped  map[SkipReason]int
}

func (uc *BackfillUseCase) Execute(ctx context.Context, input BackfillInput) (*BackfillOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 100
	}

	posts, err := uc.postRepo.ListPublishedWithoutMeta(ctx, post.ThumbnailMetaKey, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts without featured image failed: %w", err)
	}

	out := &BackfillOutput{Skipped: map[SkipReason]int{}}
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := uc.assign.Execute(ctx, AssignInput{PostID: p.ID, DryRun: input.DryRun})
		if err != nil {
			return out, fmt.Errorf("post %s: %w", p.ID, err)
		}
		out.Scanned++
		if res.Assigned {
			out.Assigned++
		} else {
			out.Skipped[res.SkipReason]++
		}
	}

	uc.logger.Info("Backfill finished",
		zap.Int("scanned", out.Scanned),
		zap.Int("assigned", out.Assigned),
		zap.Bool("dry_run", input.DryRun))
	return out, nil
}
