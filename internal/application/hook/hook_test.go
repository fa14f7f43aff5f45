package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

func recorder(calls *[]string, id string) Handler {
	return func(ctx context.Context, t Transition) error {
		*calls = append(*calls, id)
		return nil
	}
}

func TestDispatch_OrdersByPriorityThenRegistration(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	var calls []string

	d.Register(TransitionPostStatus, DefaultPriority, "social-card", recorder(&calls, "social-card"))
	d.Register(TransitionPostStatus, 5, "featured-image", recorder(&calls, "featured-image"))
	d.Register(TransitionPostStatus, DefaultPriority, "audit", recorder(&calls, "audit"))
	d.Register(TransitionPostStatus, 20, "late", recorder(&calls, "late"))

	require.NoError(t, d.Dispatch(context.Background(), TransitionPostStatus, Transition{PostID: uuid.New()}))

	want := []string{"featured-image", "social-card", "audit", "late"}
	assert.Equal(t, want, calls)
	assert.Equal(t, want, d.Handlers(TransitionPostStatus))
}

func TestDispatch_StopsOnError(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	var calls []string
	boom := errors.New("store unavailable")

	d.Register(PublishPost, 1, "first", func(ctx context.Context, t Transition) error { return boom })
	d.Register(PublishPost, 2, "second", recorder(&calls, "second"))

	err := d.Dispatch(context.Background(), PublishPost, Transition{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.Empty(t, calls)
}

func TestDispatch_NoHandlers(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	assert.NoError(t, d.Dispatch(context.Background(), PublishPost, Transition{}))
	assert.Empty(t, d.Handlers(PublishPost))
}

func TestFireTransition_PublishPostOnlyWhenPublished(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	var calls []string
	d.Register(TransitionPostStatus, DefaultPriority, "transition", recorder(&calls, "transition"))
	d.Register(PublishPost, DefaultPriority, "publish", recorder(&calls, "publish"))
	ctx := context.Background()

	require.NoError(t, d.FireTransition(ctx, Transition{OldStatus: post.StatusDraft, NewStatus: post.StatusPrivate}))
	assert.Equal(t, []string{"transition"}, calls)

	calls = nil
	require.NoError(t, d.FireTransition(ctx, Transition{OldStatus: post.StatusDraft, NewStatus: post.StatusPublished}))
	assert.Equal(t, []string{"transition", "publish"}, calls)
}

func TestDispatch_CanceledContext(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	var calls []string
	d.Register(PublishPost, DefaultPriority, "never", recorder(&calls, "never"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, d.Dispatch(ctx, PublishPost, Transition{}), context.Canceled)
	assert.Empty(t, calls)
}
