package featured

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/auto-featured-image/internal/application/hook"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type assignFixture struct {
	post   *post.Post
	images *memAttachmentRepo
	meta   *memMetaRepo
	terms  *memTermRepo
	guard  *fakeGuard
	uc     *AssignUseCase
}

func newAssignFixture(t *testing.T, policy Policy) *assignFixture {
	t.Helper()
	p := &post.Post{ID: uuid.New(), OwnerID: uuid.New(), Slug: "hello", Status: post.StatusPublished}
	f := &assignFixture{
		post:   p,
		images: &memAttachmentRepo{},
		meta:   newMemMetaRepo(),
		terms:  newMemTermRepo(),
		guard:  &fakeGuard{},
	}
	resolver := newTestResolver(f.images, policy, WithRandom(fixedIndex(0)))
	f.uc = NewAssignUseCase(newMemPostRepo(p), f.meta, f.terms, resolver, f.guard, logger.NewNop())
	return f
}

func (f *assignFixture) thumbnail(t *testing.T) string {
	t.Helper()
	v, ok, err := f.meta.Get(context.Background(), f.post.ID, post.ThumbnailMetaKey)
	require.NoError(t, err)
	if !ok {
		return ""
	}
	return v
}

func TestAssign_EndToEndTags(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	sunset := f.images.addImage("active tag sunset - beach.jpg")
	f.images.addImage("active tag travel - trip.jpg")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "travel", "sunset")

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.NoError(t, err)
	assert.True(t, out.Assigned)
	assert.Equal(t, sunset, out.AttachmentID)
	assert.Equal(t, "sunset", out.Slug)
	assert.Equal(t, sunset.String(), f.thumbnail(t))
	assert.Equal(t, []uuid.UUID{f.post.ID}, f.guard.released)
}

func TestAssign_EndToEndCategory(t *testing.T) {
	f := newAssignFixture(t, PolicyPooledRandom)
	news := f.images.addImage("active category news update.png")
	f.terms.attach(f.post.ID, term.TaxonomyCategory, "news")

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.NoError(t, err)
	assert.True(t, out.Assigned)
	assert.Equal(t, term.TaxonomyCategory, out.Taxonomy)
	assert.Equal(t, news.String(), f.thumbnail(t))
}

func TestAssign_NoMatchWritesNothing(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.terms.attach(f.post.ID, term.TaxonomyTag, "x")
	f.terms.attach(f.post.ID, term.TaxonomyCategory, "y")

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.NoError(t, err)
	assert.False(t, out.Assigned)
	assert.Equal(t, SkipNoMatch, out.SkipReason)
	assert.Zero(t, f.meta.writes)
}

func TestAssign_ExistingThumbnailIsLeftAlone(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")
	existing := uuid.NewString()
	_, err := f.meta.Add(context.Background(), f.post.ID, post.ThumbnailMetaKey, existing, true)
	require.NoError(t, err)

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.NoError(t, err)
	assert.Equal(t, SkipHasThumbnail, out.SkipReason)
	assert.Equal(t, existing, f.thumbnail(t))
	assert.Equal(t, 1, f.meta.writes)
	assert.Empty(t, f.images.queried, "resolver must not run")
}

func TestAssign_SecondRunIsNoOp(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, AssignInput{PostID: f.post.ID})
	require.NoError(t, err)
	require.True(t, first.Assigned)
	before := f.thumbnail(t)

	second, err := f.uc.Execute(ctx, AssignInput{PostID: f.post.ID})
	require.NoError(t, err)

	assert.False(t, second.Assigned)
	assert.Equal(t, SkipHasThumbnail, second.SkipReason)
	assert.Equal(t, before, f.thumbnail(t))
	assert.Equal(t, 1, f.meta.writes)
}

func TestAssign_LosesRaceToConcurrentWriter(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")
	winner := uuid.NewString()
	_, err := f.meta.Add(context.Background(), f.post.ID, post.ThumbnailMetaKey, winner, true)
	require.NoError(t, err)
	f.meta.hideOnGet = true

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.NoError(t, err)
	assert.False(t, out.Assigned)
	assert.Equal(t, SkipAlreadySet, out.SkipReason)
	f.meta.hideOnGet = false
	assert.Equal(t, winner, f.thumbnail(t))
}

func TestAssign_DryRunDoesNotWrite(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	id := f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID, DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, SkipDryRun, out.SkipReason)
	assert.Equal(t, id, out.AttachmentID)
	assert.Zero(t, f.meta.writes)
}

func TestAssign_MissingPostIsSkipped(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, SkipPostNotFound, out.SkipReason)
}

func TestAssign_GuardBusySkips(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")
	f.guard.busy = true

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.NoError(t, err)
	assert.Equal(t, SkipInProgress, out.SkipReason)
	assert.Empty(t, f.images.queried)
	assert.Empty(t, f.guard.released)
}

func TestAssign_GuardErrorDoesNotBlock(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")
	f.guard.err = errors.New("redis down")

	out, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.NoError(t, err)
	assert.True(t, out.Assigned)
}

func TestAssign_LookupFailurePropagates(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")
	boom := errors.New("store unavailable")
	f.images.failWith = boom

	_, err := f.uc.Execute(context.Background(), AssignInput{PostID: f.post.ID})

	require.ErrorIs(t, err, boom)
	assert.Zero(t, f.meta.writes)
}

func TestOnTransition_OnlyPublished(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	id := f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")
	ctx := context.Background()

	require.NoError(t, f.uc.OnTransition(ctx, hook.Transition{PostID: f.post.ID, NewStatus: post.StatusDraft}))
	assert.Empty(t, f.thumbnail(t))

	require.NoError(t, f.uc.OnTransition(ctx, hook.Transition{PostID: f.post.ID, OldStatus: post.StatusDraft, NewStatus: post.StatusPublished}))
	assert.Equal(t, id.String(), f.thumbnail(t))
}

func TestOnTransition_DuplicateHooksWriteOnce(t *testing.T) {
	f := newAssignFixture(t, PolicyFirstMatch)
	f.images.addImage("active tag sunset")
	f.terms.attach(f.post.ID, term.TaxonomyTag, "sunset")

	d := hook.NewDispatcher(logger.NewNop())
	d.Register(hook.TransitionPostStatus, 5, "featured-image", f.uc.OnTransition)
	d.Register(hook.PublishPost, hook.DefaultPriority, "featured-image", f.uc.OnTransition)

	err := d.FireTransition(context.Background(), hook.Transition{PostID: f.post.ID, OldStatus: post.StatusDraft, NewStatus: post.StatusPublished})

	require.NoError(t, err)
	assert.Equal(t, 1, f.meta.writes)
}
