package event

import (
	"github.com/google/uuid"

	"github.com/khoahotran/auto-featured-image/internal/domain/post"
)

const (
	TopicPostEvents  = "post.events"
	TopicMediaEvents = "media.events"
)

type PostEventType string

const (
	PostEventTypeCreated       PostEventType = "post.created"
	PostEventTypeStatusChanged PostEventType = "post.status_changed"
)

// PostEventPayload is keyed by PostID on the wire so every event of a post
// lands on the same partition.
type PostEventPayload struct {
	EventType PostEventType   `json:"event_type"`
	PostID    uuid.UUID       `json:"post_id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	OldStatus post.PostStatus `json:"old_status,omitempty"`
	NewStatus post.PostStatus `json:"new_status,omitempty"`
}

type MediaEventType string

const (
	MediaEventTypeUploaded MediaEventType = "media.uploaded"
)

type MediaEventPayload struct {
	EventType        MediaEventType `json:"event_type"`
	AttachmentID     uuid.UUID      `json:"attachment_id"`
	OwnerID          uuid.UUID      `json:"owner_id"`
	OriginalURL      string         `json:"original_url"`
	OriginalPublicID string         `json:"original_public_id"`
}
