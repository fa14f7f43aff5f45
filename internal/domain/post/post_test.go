package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	p := &Post{Slug: "hello-world", Status: StatusDraft}
	assert.NoError(t, p.Validate())

	p.Slug = "Hello World"
	assert.ErrorIs(t, p.Validate(), ErrInvalidPostSlug)

	p.Slug = "ok"
	p.Status = "public"
	assert.ErrorIs(t, p.Validate(), ErrInvalidPostStatus)
}

func TestTransition_StampsPublishedAtOnce(t *testing.T) {
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	later := first.Add(time.Hour)
	p := &Post{Status: StatusDraft}

	old := p.Transition(StatusPublished, first)
	assert.Equal(t, StatusDraft, old)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, first, *p.PublishedAt)

	p.Transition(StatusPrivate, later)
	p.Transition(StatusPublished, later)
	assert.Equal(t, first, *p.PublishedAt)
	assert.Equal(t, later, p.UpdatedAt)
	assert.True(t, p.IsPublished())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("published")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, st)

	_, err = ParseStatus("trash")
	assert.ErrorIs(t, err, ErrInvalidPostStatus)
}
