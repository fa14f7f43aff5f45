package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
	postUC "github.com/khoahotran/auto-featured-image/internal/application/usecase/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

// FeaturedImageAssigner is implemented by featured.AssignUseCase.
type FeaturedImageAssigner interface {
	Execute(ctx context.Context, input featured.AssignInput) (*featured.AssignOutput, error)
}

type PostHandler struct {
	createPostUseCase       *postUC.CreatePostUseCase
	listPostsUseCase        *postUC.ListPostsUseCase
	updatePostStatusUseCase *postUC.UpdatePostStatusUseCase
	getPostUseCase          *postUC.GetPostUseCase
	assigner                FeaturedImageAssigner
}

func NewPostHandler(
	createUC *postUC.CreatePostUseCase,
	listUC *postUC.ListPostsUseCase,
	updateStatusUC *postUC.UpdatePostStatusUseCase,
	getUC *postUC.GetPostUseCase,
	assigner FeaturedImageAssigner,
) *PostHandler {
	return &PostHandler{
		createPostUseCase:       createUC,
		listPostsUseCase:        listUC,
		updatePostStatusUseCase: updateStatusUC,
		getPostUseCase:          getUC,
		assigner:                assigner,
	}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	output, err := h.createPostUseCase.Execute(c.Request.Context(), postUC.CreatePostInput{
		OwnerID:    ownerID,
		Title:      req.Title,
		Content:    req.Content,
		Slug:       req.Slug,
		Status:     post.PostStatus(req.Status),
		Tags:       req.Tags,
		Categories: req.Categories,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "created post successfully",
		"post_id": output.PostID,
		"slug":    output.Slug,
		"status":  output.Status,
	})
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}

	output, err := h.listPostsUseCase.Execute(c.Request.Context(), postUC.ListPostsInput{
		OwnerID: ownerID,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	dtos := make([]PostSummaryDTO, len(output.Posts))
	for i, p := range output.Posts {
		dtos[i] = ToPostSummaryDTO(p)
	}
	c.JSON(http.StatusOK, dtos)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := parseID(c, "post")
	if !ok {
		return
	}

	output, err := h.getPostUseCase.Execute(c.Request.Context(), postUC.GetPostInput{PostID: postID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToPostDTO(output.Post, output.Tags, output.Categories, output.FeaturedImage))
}

func (h *PostHandler) UpdatePostStatus(c *gin.Context) {
	postID, ok := parseID(c, "post")
	if !ok {
		return
	}

	var req UpdatePostStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	output, err := h.updatePostStatusUseCase.Execute(c.Request.Context(), postUC.UpdatePostStatusInput{
		PostID: postID,
		Status: req.Status,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":       ToPostSummaryDTO(output.Post),
		"old_status": output.OldStatus,
	})
}

// AssignFeaturedImage resolves a featured image right away instead of waiting
// for the worker. With dry_run=true nothing is written.
func (h *PostHandler) AssignFeaturedImage(c *gin.Context) {
	postID, ok := parseID(c, "post")
	if !ok {
		return
	}
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("dry_run must be a boolean", err))
		return
	}

	output, err := h.assigner.Execute(c.Request.Context(), featured.AssignInput{PostID: postID, DryRun: dryRun})
	if err != nil {
		c.Error(err)
		return
	}
	if output.SkipReason == featured.SkipPostNotFound {
		c.Error(post.ErrPostNotFound)
		return
	}

	c.JSON(http.StatusOK, ToFeaturedImageDTO(output))
}
