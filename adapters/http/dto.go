package http

import (
	"time"

	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
)

// Post DTOs

type CreatePostRequest struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content"`
	Slug       string   `json:"slug"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft pending private published"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

type UpdatePostStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft pending private published"`
}

type PostSummaryDTO struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type PostDTO struct {
	ID              string         `json:"id"`
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	ContentMarkdown string         `json:"content_markdown"`
	Status          string         `json:"status"`
	PublishedAt     *time.Time     `json:"published_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Tags            []string       `json:"tags"`
	Categories      []string       `json:"categories"`
	FeaturedImage   *AttachmentDTO `json:"featured_image"`
}

func ToPostSummaryDTO(p *post.Post) PostSummaryDTO {
	return PostSummaryDTO{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		Title:       p.Title,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func termNames(terms []term.Term) []string {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.Name
	}
	return names
}

func ToPostDTO(p *post.Post, tags, categories []term.Term, featuredImage *attachment.Attachment) PostDTO {
	dto := PostDTO{
		ID:              p.ID.String(),
		Slug:            p.Slug,
		Title:           p.Title,
		ContentMarkdown: p.ContentMarkdown,
		Status:          string(p.Status),
		PublishedAt:     p.PublishedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Tags:            termNames(tags),
		Categories:      termNames(categories),
	}
	if featuredImage != nil {
		a := ToAttachmentDTO(featuredImage)
		dto.FeaturedImage = &a
	}
	return dto
}

// Featured image DTOs

type FeaturedImageDTO struct {
	Assigned     bool   `json:"assigned"`
	AttachmentID string `json:"attachment_id,omitempty"`
	Taxonomy     string `json:"taxonomy,omitempty"`
	Slug         string `json:"slug,omitempty"`
	SkipReason   string `json:"skip_reason,omitempty"`
}

func ToFeaturedImageDTO(out *featured.AssignOutput) FeaturedImageDTO {
	dto := FeaturedImageDTO{
		Assigned:   out.Assigned,
		Taxonomy:   string(out.Taxonomy),
		Slug:       out.Slug,
		SkipReason: string(out.SkipReason),
	}
	if out.Taxonomy != "" {
		dto.AttachmentID = out.AttachmentID.String()
	}
	return dto
}

// Attachment DTOs

type AttachmentDTO struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	MimeType     string         `json:"mime_type"`
	URL          string         `json:"url"`
	ThumbnailURL *string        `json:"thumbnail_url,omitempty"`
	Status       string         `json:"status"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

type RenameAttachmentRequest struct {
	Title string `json:"title" binding:"required"`
}

func ToAttachmentDTO(a *attachment.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:           a.ID.String(),
		Title:        a.Title,
		MimeType:     a.MimeType,
		URL:          a.URL,
		ThumbnailURL: a.ThumbnailURL,
		Status:       string(a.Status),
		Metadata:     a.Metadata,
		CreatedAt:    a.CreatedAt,
	}
}
