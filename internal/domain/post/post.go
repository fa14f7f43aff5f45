package post

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPending   PostStatus = "pending"
	StatusPrivate   PostStatus = "private"
	StatusPublished PostStatus = "published"
)

// Meta keys written by the background hooks.
const (
	ThumbnailMetaKey      = "_thumbnail_id"
	OgImageMetaKey        = "_og_image_url"
	OgThumbnailURLMetaKey = "_og_thumbnail_url"
)

type Post struct {
	ID              uuid.UUID      `json:"id"`
	OwnerID         uuid.UUID      `json:"owner_id"`
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	ContentMarkdown string         `json:"content_markdown"`
	Status          PostStatus     `json:"status"`
	Metadata        map[string]any `json:"metadata"`
	PublishedAt     *time.Time     `json:"published_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

var (
	ErrInvalidPostStatus = errors.New("invalid status")
	ErrInvalidPostSlug   = errors.New("slug only includes lowercase letter, digit and -")
	postSlugRegex        = regexp.MustCompile(`^[a-z0-9-]+$`)
	ErrPostNotFound      = apperror.NewNotFound("post", "")
)

func ParseStatus(s string) (PostStatus, error) {
	st := PostStatus(s)
	switch st {
	case StatusDraft, StatusPending, StatusPrivate, StatusPublished:
		return st, nil
	}
	return "", ErrInvalidPostStatus
}

func (p *Post) Validate() error {
	if !postSlugRegex.MatchString(p.Slug) {
		return ErrInvalidPostSlug
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return err
	}
	return nil
}

// Transition moves p to status and returns the previous one. The first move
// into published stamps PublishedAt.
func (p *Post) Transition(status PostStatus, now time.Time) PostStatus {
	old := p.Status
	p.Status = status
	p.UpdatedAt = now
	if status == StatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	return old
}

func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

type Repository interface {
	Save(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Post, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*Post, error)
	// ListPublishedWithoutMeta returns published posts that have no value
	// stored under key, oldest first.
	ListPublishedWithoutMeta(ctx context.Context, key string, limit int) ([]*Post, error)
}

// MetaRepository stores free-form key/value pairs attached to a post.
type MetaRepository interface {
	// Add stores value under key. With unique set, Add is a no-op when the
	// post already has any value for key; the returned bool reports whether
	// a row was written.
	Add(ctx context.Context, postID uuid.UUID, key, value string, unique bool) (bool, error)
	// Get returns the first value stored under key.
	Get(ctx context.Context, postID uuid.UUID, key string) (string, bool, error)
}
