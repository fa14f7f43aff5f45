package attachment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/auto-featured-image/internal/domain/term"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusInherit Status = "inherit"
	StatusTrash   Status = "trash"
)

// DefaultTitleMarker is the first word of every title that opts an image
// into automatic featured-image selection.
const DefaultTitleMarker = "active"

var ErrEmptyTitle = errors.New("attachment title is required")

type Attachment struct {
	ID           uuid.UUID      `json:"id"`
	OwnerID      uuid.UUID      `json:"owner_id"`
	Title        string         `json:"title"`
	MimeType     string         `json:"mime_type"`
	Status       Status         `json:"status"`
	URL          string         `json:"url"`
	ThumbnailURL *string        `json:"thumbnail_url"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TitlePrefix is the title prefix that makes an image eligible for slug
// under taxonomy, e.g. "active tag sunset".
func TitlePrefix(marker string, taxonomy term.Taxonomy, slug string) string {
	return marker + " " + string(taxonomy) + " " + slug
}

func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// Eligible reports whether a is a live image whose title starts with prefix.
// The comparison is case-sensitive.
func (a *Attachment) Eligible(prefix string) bool {
	return a.IsImage() && a.Status == StatusInherit && strings.HasPrefix(a.Title, prefix)
}

func (a *Attachment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

type Repository interface {
	Save(ctx context.Context, a *Attachment) error
	Update(ctx context.Context, a *Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Attachment, error)
	ListByTitlePrefix(ctx context.Context, prefix string, limit, offset int) ([]*Attachment, error)
	// FindEligible returns up to limit eligible attachments for prefix in
	// random order.
	FindEligible(ctx context.Context, prefix string, limit int) ([]*Attachment, error)
}
