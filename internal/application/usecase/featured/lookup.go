package featured

import (
	"context"

	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
)

// Lookup finds images eligible for a slug. Order among the returned
// attachments carries no meaning.
type Lookup interface {
	FindEligible(ctx context.Context, taxonomy term.Taxonomy, slug string, limit int) ([]*attachment.Attachment, error)
}

// AttachmentLookup answers lookups from the attachment store using the
// "<marker> <taxonomy> <slug>" title convention.
type AttachmentLookup struct {
	repo   attachment.Repository
	marker string
}

func NewAttachmentLookup(repo attachment.Repository, marker string) *AttachmentLookup {
	if marker == "" {
		marker = attachment.DefaultTitleMarker
	}
	return &AttachmentLookup{repo: repo, marker: marker}
}

func (l *AttachmentLookup) FindEligible(ctx context.Context, taxonomy term.Taxonomy, slug string, limit int) ([]*attachment.Attachment, error) {
	return l.repo.FindEligible(ctx, attachment.TitlePrefix(l.marker, taxonomy, slug), limit)
}
