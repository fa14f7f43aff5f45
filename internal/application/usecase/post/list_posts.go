package post

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/auto-featured-image/internal/domain/post"
)

type ListPostsUseCase struct {
	postRepo post.Repository
}

func NewListPostsUseCase(pRepo post.Repository) *ListPostsUseCase {
	return &ListPostsUseCase{postRepo: pRepo}
}

type ListPostsInput struct {
	OwnerID uuid.UUID
	Limit   int
	Offset  int
}

type ListPostsOutput struct {
	Posts []*post.Post
}

func (uc *ListPostsUseCase) Execute(ctx context.Context, input ListPostsInput) (*ListPostsOutput, error) {
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 10
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	posts, err := uc.postRepo.ListByOwner(ctx, input.OwnerID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return &ListPostsOutput{Posts: posts}, nil
}
