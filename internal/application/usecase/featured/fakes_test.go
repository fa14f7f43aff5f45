package featured

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

type memAttachmentRepo struct {
	mu       sync.Mutex
	items    []*attachment.Attachment
	queried  []string
	failWith error
}

func (r *memAttachmentRepo) addImage(title string) uuid.UUID {
	a := &attachment.Attachment{ID: uuid.New(), Title: title, MimeType: "image/jpeg", Status: attachment.StatusInherit}
	r.items = append(r.items, a)
	return a.ID
}

func (r *memAttachmentRepo) Save(ctx context.Context, a *attachment.Attachment) error {
	r.items = append(r.items, a)
	return nil
}

func (r *memAttachmentRepo) Update(ctx context.Context, a *attachment.Attachment) error { return nil }

func (r *memAttachmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*attachment.Attachment, error) {
	for _, a := range r.items {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperror.NewNotFound("attachment", id.String())
}

func (r *memAttachmentRepo) ListByTitlePrefix(ctx context.Context, prefix string, limit, offset int) ([]*attachment.Attachment, error) {
	var out []*attachment.Attachment
	for _, a := range r.items {
		if strings.HasPrefix(a.Title, prefix) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAttachmentRepo) FindEligible(ctx context.Context, prefix string, limit int) ([]*attachment.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queried = append(r.queried, prefix)
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []*attachment.Attachment
	for _, a := range r.items {
		if a.Eligible(prefix) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

// multiLookup ignores limit and returns every eligible item, like a store
// that cannot cap its result set.
type multiLookup struct{ repo *memAttachmentRepo }

func (m multiLookup) FindEligible(ctx context.Context, taxonomy term.Taxonomy, slug string, limit int) ([]*attachment.Attachment, error) {
	return m.repo.FindEligible(ctx, attachment.TitlePrefix("active", taxonomy, slug), len(m.repo.items))
}

type memPostRepo struct {
	posts map[uuid.UUID]*post.Post
	meta  *memMetaRepo
}

func newMemPostRepo(posts ...*post.Post) *memPostRepo {
	r := &memPostRepo{posts: map[uuid.UUID]*post.Post{}}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *memPostRepo) Save(ctx context.Context, p *post.Post) error   { r.posts[p.ID] = p; return nil }
func (r *memPostRepo) Update(ctx context.Context, p *post.Post) error { r.posts[p.ID] = p; return nil }

func (r *memPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	return p, nil
}

func (r *memPostRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*post.Post, error) {
	return nil, nil
}

func (r *memPostRepo) ListPublished(ctx context.Context, limit, offset int) ([]*post.Post, error) {
	return nil, nil
}

func (r *memPostRepo) ListPublishedWithoutMeta(ctx context.Context, key string, limit int) ([]*post.Post, error) {
	var out []*post.Post
	for _, p := range r.posts {
		if !p.IsPublished() || len(out) == limit {
			continue
		}
		if r.meta != nil {
			if _, has, _ := r.meta.Get(ctx, p.ID, key); has {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

type memMetaRepo struct {
	mu     sync.Mutex
	values map[uuid.UUID]map[string][]string
	writes int
	// hideOnGet simulates a concurrent writer: Get reports nothing even
	// though a value exists.
	hideOnGet bool
}

func newMemMetaRepo() *memMetaRepo {
	return &memMetaRepo{values: map[uuid.UUID]map[string][]string{}}
}

func (r *memMetaRepo) Add(ctx context.Context, postID uuid.UUID, key, value string, unique bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values[postID] == nil {
		r.values[postID] = map[string][]string{}
	}
	if unique && len(r.values[postID][key]) > 0 {
		return false, nil
	}
	r.values[postID][key] = append(r.values[postID][key], value)
	r.writes++
	return true, nil
}

func (r *memMetaRepo) Get(ctx context.Context, postID uuid.UUID, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vals := r.values[postID][key]
	if len(vals) == 0 || r.hideOnGet {
		return "", false, nil
	}
	return vals[0], true, nil
}

type memTermRepo struct {
	terms map[uuid.UUID]map[term.Taxonomy][]term.Term
}

func newMemTermRepo() *memTermRepo {
	return &memTermRepo{terms: map[uuid.UUID]map[term.Taxonomy][]term.Term{}}
}

func (r *memTermRepo) attach(postID uuid.UUID, taxonomy term.Taxonomy, slugs ...string) {
	if r.terms[postID] == nil {
		r.terms[postID] = map[term.Taxonomy][]term.Term{}
	}
	for _, s := range slugs {
		r.terms[postID][taxonomy] = append(r.terms[postID][taxonomy], term.Term{ID: uuid.New(), Name: s, Slug: s, Taxonomy: taxonomy})
	}
}

func (r *memTermRepo) FindOrCreateTerms(ctx context.Context, taxonomy term.Taxonomy, names []string) ([]term.Term, error) {
	return nil, nil
}

func (r *memTermRepo) SetTermsForPost(ctx context.Context, postID uuid.UUID, taxonomy term.Taxonomy, termIDs []uuid.UUID) error {
	return nil
}

func (r *memTermRepo) GetTermsForPost(ctx context.Context, postID uuid.UUID, taxonomy term.Taxonomy) ([]term.Term, error) {
	return slices.Clone(r.terms[postID][taxonomy]), nil
}

type fakeGuard struct {
	busy     bool
	err      error
	released []uuid.UUID
}

func (g *fakeGuard) Acquire(ctx context.Context, postID uuid.UUID) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return !g.busy, nil
}

func (g *fakeGuard) Release(ctx context.Context, postID uuid.UUID) error {
	g.released = append(g.released, postID)
	return nil
}

func fixedIndex(i int) func(int) int {
	return func(n int) int { return i }
}
