package post

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/internal/application/hook"
	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type publishFixture struct {
	posts      *memPostRepo
	terms      *memTermRepo
	meta       *memMetaRepo
	atts       *memAttachmentRepo
	dispatcher *hook.Dispatcher
}

func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()
	f := &publishFixture{
		posts: newMemPostRepo(),
		terms: newMemTermRepo(),
		meta:  newMemMetaRepo(),
		atts:  &memAttachmentRepo{},
	}
	log := logger.NewNop()
	resolver := featured.NewResolver(featured.NewAttachmentLookup(f.atts, "active"), featured.PolicyFirstMatch, log)
	assign := featured.NewAssignUseCase(f.posts, f.meta, f.terms, resolver, nil, log)
	card := NewSocialCardUseCase(f.meta, f.atts, fakeUploader{}, log)

	f.dispatcher = hook.NewDispatcher(log)
	RegisterHooks(f.dispatcher, assign, card)
	return f
}

func (f *publishFixture) createPost(t *testing.T, tags, categories []string) uuid.UUID {
	t.Helper()
	out, err := NewCreatePostUseCase(f.posts, f.terms, &fakePublisher{}, logger.NewNop()).
		Execute(context.Background(), CreatePostInput{Title: "p-" + uuid.NewString()[:8], Tags: tags, Categories: categories})
	require.NoError(t, err)
	return out.PostID
}

func TestRegisterHooks_Order(t *testing.T) {
	f := newPublishFixture(t)

	assert.Equal(t, []string{"featured_image", "social_card"}, f.dispatcher.Handlers(hook.TransitionPostStatus))
	assert.Equal(t, []string{"featured_image"}, f.dispatcher.Handlers(hook.PublishPost))
}

func TestProcessPostEvent_PublishBuildsCardFromFeaturedImage(t *testing.T) {
	f := newPublishFixture(t)
	postID := f.createPost(t, []string{"sunset"}, []string{"travel"})
	img := f.atts.add("active tag sunset beach")

	err := NewProcessPostEventUseCase(f.dispatcher, logger.NewNop()).Execute(context.Background(), event.PostEventPayload{
		EventType: event.PostEventTypeStatusChanged,
		PostID:    postID,
		OldStatus: post.StatusDraft,
		NewStatus: post.StatusPublished,
	})

	require.NoError(t, err)
	thumb, ok, _ := f.meta.Get(context.Background(), postID, post.ThumbnailMetaKey)
	require.True(t, ok)
	assert.Equal(t, img.ID.String(), thumb)
	assert.Len(t, f.meta.values[postID][post.ThumbnailMetaKey], 1)

	og, ok, _ := f.meta.Get(context.Background(), postID, post.OgImageMetaKey)
	require.True(t, ok)
	assert.Contains(t, og, ogImageTransformation)
	ogThumb, ok, _ := f.meta.Get(context.Background(), postID, post.OgThumbnailURLMetaKey)
	require.True(t, ok)
	assert.Contains(t, ogThumb, ogThumbTransformation)
}

func TestProcessPostEvent_NonPublishTransitionDoesNothing(t *testing.T) {
	f := newPublishFixture(t)
	postID := f.createPost(t, []string{"sunset"}, nil)
	f.atts.add("active tag sunset")

	err := NewProcessPostEventUseCase(f.dispatcher, logger.NewNop()).Execute(context.Background(), event.PostEventPayload{
		EventType: event.PostEventTypeStatusChanged,
		PostID:    postID,
		OldStatus: post.StatusDraft,
		NewStatus: post.StatusPending,
	})

	require.NoError(t, err)
	assert.Empty(t, f.meta.values[postID])
}

func TestProcessPostEvent_NoImageNoCard(t *testing.T) {
	f := newPublishFixture(t)
	postID := f.createPost(t, []string{"unmatched"}, nil)

	err := NewProcessPostEventUseCase(f.dispatcher, logger.NewNop()).Execute(context.Background(), event.PostEventPayload{
		EventType: event.PostEventTypeCreated,
		PostID:    postID,
		NewStatus: post.StatusPublished,
	})

	require.NoError(t, err)
	assert.Empty(t, f.meta.values[postID])
}

func TestProcessPostEvent_SkipsUnknownAndIncomplete(t *testing.T) {
	d := hook.NewDispatcher(logger.NewNop())
	calls := 0
	d.Register(hook.TransitionPostStatus, hook.DefaultPriority, "count", func(context.Context, hook.Transition) error {
		calls++
		return nil
	})
	uc := NewProcessPostEventUseCase(d, logger.NewNop())

	require.NoError(t, uc.Execute(context.Background(), event.PostEventPayload{EventType: "post.deleted", PostID: uuid.New()}))
	require.NoError(t, uc.Execute(context.Background(), event.PostEventPayload{EventType: event.PostEventTypeStatusChanged, PostID: uuid.New()}))
	assert.Zero(t, calls)
}

func TestProcessPostEvent_HandlerErrorPropagates(t *testing.T) {
	d := hook.NewDispatcher(logger.NewNop())
	boom := errors.New("db down")
	d.Register(hook.TransitionPostStatus, hook.DefaultPriority, "fail", func(context.Context, hook.Transition) error {
		return boom
	})

	err := NewProcessPostEventUseCase(d, logger.NewNop()).Execute(context.Background(), event.PostEventPayload{
		EventType: event.PostEventTypeStatusChanged,
		PostID:    uuid.New(),
		NewStatus: post.StatusPublished,
	})

	assert.ErrorIs(t, err, boom)
}
