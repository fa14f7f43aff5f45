// Package hook runs post lifecycle handlers in an explicit, priority-based
// order. Lower priorities run first; equal priorities run in registration
// order.
package hook

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type Name string

const (
	// TransitionPostStatus fires on every status change.
	TransitionPostStatus Name = "transition_post_status"
	// PublishPost fires after TransitionPostStatus when the new status is
	// published.
	PublishPost Name = "publish_post"
)

const DefaultPriority = 10

type Transition struct {
	PostID    uuid.UUID
	OwnerID   uuid.UUID
	OldStatus post.PostStatus
	NewStatus post.PostStatus
}

type Handler func(ctx context.Context, t Transition) error

type registration struct {
	id       string
	priority int
	seq      int
	handler  Handler
}

type Dispatcher struct {
	mu     sync.RWMutex
	hooks  map[Name][]registration
	seq    int
	logger logger.Logger
}

func NewDispatcher(log logger.Logger) *Dispatcher {
	return &Dispatcher{hooks: make(map[Name][]registration), logger: log}
}

// Register adds handler under name. id only labels the handler in logs and
// errors.
func (d *Dispatcher) Register(name Name, priority int, id string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	regs := append(d.hooks[name], registration{id: id, priority: priority, seq: d.seq, handler: handler})
	slices.SortStableFunc(regs, func(a, b registration) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return a.seq - b.seq
	})
	d.hooks[name] = regs
}

// Handlers lists the ids registered under name in execution order.
func (d *Dispatcher) Handlers(name Name) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, len(d.hooks[name]))
	for i, r := range d.hooks[name] {
		ids[i] = r.id
	}
	return ids
}

// Dispatch runs every handler for name. The first failing handler stops the
// chain.
func (d *Dispatcher) Dispatch(ctx context.Context, name Name, t Transition) error {
	d.mu.RLock()
	regs := slices.Clone(d.hooks[name])
	d.mu.RUnlock()

	for _, r := range regs {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.logger.Debug("Running hook",
			zap.String("hook", string(name)), zap.String("handler", r.id),
			zap.Int("priority", r.priority), zap.String("post_id", t.PostID.String()))
		if err := r.handler(ctx, t); err != nil {
			return fmt.Errorf("hook %s handler %s: %w", name, r.id, err)
		}
	}
	return nil
}

// FireTransition dispatches TransitionPostStatus, then PublishPost when the
// post ended up published.
func (d *Dispatcher) FireTransition(ctx context.Context, t Transition) error {
	if err := d.Dispatch(ctx, TransitionPostStatus, t); err != nil {
		return err
	}
	if t.NewStatus == post.StatusPublished {
		return d.Dispatch(ctx, PublishPost, t)
	}
	return nil
}
