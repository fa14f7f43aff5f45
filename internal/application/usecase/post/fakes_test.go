package post

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

type memPostRepo struct {
	posts map[uuid.UUID]*post.Post
	order []uuid.UUID
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[uuid.UUID]*post.Post{}}
}

func (r *memPostRepo) Save(_ context.Context, p *post.Post) error {
	for _, existing := range r.posts {
		if existing.Slug == p.Slug {
			return apperror.NewConflict("post", "slug", p.Slug)
		}
	}
	r.posts[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memPostRepo) Update(_ context.Context, p *post.Post) error {
	if _, ok := r.posts[p.ID]; !ok {
		return post.ErrPostNotFound
	}
	r.posts[p.ID] = p
	return nil
}

func (r *memPostRepo) FindByID(_ context.Context, id uuid.UUID) (*post.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	return p, nil
}

func (r *memPostRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*post.Post, error) {
	var out []*post.Post
	for _, id := range r.order {
		if r.posts[id].OwnerID == ownerID {
			out = append(out, r.posts[id])
		}
	}
	return out, nil
}

func (r *memPostRepo) ListPublished(_ context.Context, limit, offset int) ([]*post.Post, error) {
	var out []*post.Post
	for _, id := range r.order {
		if r.posts[id].IsPublished() {
			out = append(out, r.posts[id])
		}
	}
	return out, nil
}

func (r *memPostRepo) ListPublishedWithoutMeta(context.Context, string, int) ([]*post.Post, error) {
	return nil, nil
}

type memMetaRepo struct {
	mu     sync.Mutex
	values map[uuid.UUID]map[string][]string
}

func newMemMetaRepo() *memMetaRepo {
	return &memMetaRepo{values: map[uuid.UUID]map[string][]string{}}
}

func (r *memMetaRepo) Add(_ context.Context, postID uuid.UUID, key, value string, unique bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values[postID] == nil {
		r.values[postID] = map[string][]string{}
	}
	if unique && len(r.values[postID][key]) > 0 {
		return false, nil
	}
	r.values[postID][key] = append(r.values[postID][key], value)
	return true, nil
}

func (r *memMetaRepo) Get(_ context.Context, postID uuid.UUID, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vals := r.values[postID][key]
	if len(vals) == 0 {
		return "", false, nil
	}
	return vals[0], true, nil
}

type memTermRepo struct {
	terms     map[term.Taxonomy]map[string]term.Term
	relations map[uuid.UUID]map[term.Taxonomy][]uuid.UUID
}

func newMemTermRepo() *memTermRepo {
	return &memTermRepo{
		terms:     map[term.Taxonomy]map[string]term.Term{},
		relations: map[uuid.UUID]map[term.Taxonomy][]uuid.UUID{},
	}
}

func (r *memTermRepo) FindOrCreateTerms(_ context.Context, taxonomy term.Taxonomy, names []string) ([]term.Term, error) {
	if r.terms[taxonomy] == nil {
		r.terms[taxonomy] = map[string]term.Term{}
	}
	out := make([]term.Term, 0, len(names))
	for _, n := range names {
		slug := term.Slugify(n)
		t, ok := r.terms[taxonomy][slug]
		if !ok {
			t = term.Term{ID: uuid.New(), Name: n, Slug: slug, Taxonomy: taxonomy}
			r.terms[taxonomy][slug] = t
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memTermRepo) SetTermsForPost(_ context.Context, postID uuid.UUID, taxonomy term.Taxonomy, termIDs []uuid.UUID) error {
	if r.relations[postID] == nil {
		r.relations[postID] = map[term.Taxonomy][]uuid.UUID{}
	}
	r.relations[postID][taxonomy] = termIDs
	return nil
}

func (r *memTermRepo) GetTermsForPost(_ context.Context, postID uuid.UUID, taxonomy term.Taxonomy) ([]term.Term, error) {
	var out []term.Term
	for _, id := range r.relations[postID][taxonomy] {
		for _, t := range r.terms[taxonomy] {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

type memAttachmentRepo struct {
	items []*attachment.Attachment
}

func (r *memAttachmentRepo) add(title string) *attachment.Attachment {
	id := uuid.New()
	a := &attachment.Attachment{
		ID: id, Title: title, MimeType: "image/jpeg", Status: attachment.StatusInherit,
		URL:      "https://cdn.example.com/" + id.String(),
		Metadata: map[string]any{originalPublicIDMetaKey: "users/x/attachments/originals/" + id.String()},
	}
	r.items = append(r.items, a)
	return a
}

func (r *memAttachmentRepo) Save(_ context.Context, a *attachment.Attachment) error {
	r.items = append(r.items, a)
	return nil
}

func (r *memAttachmentRepo) Update(context.Context, *attachment.Attachment) error { return nil }

func (r *memAttachmentRepo) FindByID(_ context.Context, id uuid.UUID) (*attachment.Attachment, error) {
	for _, a := range r.items {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperror.NewNotFound("attachment", id.String())
}

func (r *memAttachmentRepo) ListByTitlePrefix(context.Context, string, int, int) ([]*attachment.Attachment, error) {
	return r.items, nil
}

func (r *memAttachmentRepo) FindEligible(_ context.Context, prefix string, limit int) ([]*attachment.Attachment, error) {
	var out []*attachment.Attachment
	for _, a := range r.items {
		if a.Eligible(prefix) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePublisher struct {
	posts []event.PostEventPayload
}

func (p *fakePublisher) PublishPostEvent(_ context.Context, payload event.PostEventPayload) error {
	p.posts = append(p.posts, payload)
	return nil
}

func (p *fakePublisher) PublishMediaEvent(context.Context, event.MediaEventPayload) error { return nil }

type fakeUploader struct{}

func (fakeUploader) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "", nil
}

func (fakeUploader) Delete(context.Context, string) error { return nil }

func (fakeUploader) TransformURL(publicID, transformation string) (string, error) {
	return "https://res.cloudinary.com/demo/image/upload/" + transformation + "/" + strings.TrimPrefix(publicID, "/"), nil
}
