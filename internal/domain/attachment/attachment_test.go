package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/auto-featured-image/internal/domain/term"
)

func TestTitlePrefix(t *testing.T) {
	assert.Equal(t, "active tag sunset", TitlePrefix(DefaultTitleMarker, term.TaxonomyTag, "sunset"))
	assert.Equal(t, "active category news", TitlePrefix(DefaultTitleMarker, term.TaxonomyCategory, "news"))
}

func TestEligible(t *testing.T) {
	prefix := TitlePrefix(DefaultTitleMarker, term.TaxonomyTag, "sunset")
	live := func(title, mime string) *Attachment {
		return &Attachment{Title: title, MimeType: mime, Status: StatusInherit}
	}

	assert.True(t, live("active tag sunset - beach.jpg", "image/jpeg").Eligible(prefix))
	assert.True(t, live("active tag sunset", "image/png").Eligible(prefix))
	assert.True(t, live("active tag sunsets", "image/png").Eligible(prefix), "prefix match accepts any suffix")

	assert.False(t, live("Active tag sunset", "image/png").Eligible(prefix), "case-sensitive")
	assert.False(t, live("inactive tag sunset", "image/png").Eligible(prefix))
	assert.False(t, live("active tag sunset", "video/mp4").Eligible(prefix))

	trashed := live("active tag sunset", "image/png")
	trashed.Status = StatusTrash
	assert.False(t, trashed.Eligible(prefix))

	pending := live("active tag sunset", "image/png")
	pending.Status = StatusPending
	assert.False(t, pending.Eligible(prefix))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Attachment{Title: "  "}).Validate(), ErrEmptyTitle)
	assert.NoError(t, (&Attachment{Title: "active tag x"}).Validate())
}
