package featured

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

var tracer = otel.Tracer("featured_usecase")

// Result is the outcome of a resolution. Found is false when no slug in
// either taxonomy had an eligible image.
type Result struct {
	Found        bool
	AttachmentID uuid.UUID
	Taxonomy     term.Taxonomy
	Slug         string
}

type Resolver struct {
	lookup Lookup
	policy Policy
	intn   func(n int) int
	logger logger.Logger
}

type ResolverOption func(*Resolver)

// WithRandom replaces the source used for tie-breaks. intn must return a
// value in [0, n).
func WithRandom(intn func(n int) int) ResolverOption {
	return func(r *Resolver) { r.intn = intn }
}

func NewResolver(lookup Lookup, policy Policy, log logger.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		lookup: lookup,
		policy: policy,
		intn:   rand.Intn,
		logger: log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve picks the featured image for a post from its tag and category
// slugs. Tags always win over categories; categories are only looked at
// when no tag produced a match. Errors come only from the lookup.
func (r *Resolver) Resolve(ctx context.Context, tagSlugs, categorySlugs []string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Resolver.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("policy", string(r.policy)),
		attribute.Int("tag_count", len(tagSlugs)),
		attribute.Int("category_count", len(categorySlugs)),
	)

	groups := []struct {
		taxonomy term.Taxonomy
		slugs    []string
	}{
		{term.TaxonomyTag, tagSlugs},
		{term.TaxonomyCategory, categorySlugs},
	}

	for _, g := range groups {
		res, err := r.resolveGroup(ctx, g.taxonomy, g.slugs)
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}
		if res.Found {
			span.SetAttributes(
				attribute.String("attachment_id", res.AttachmentID.String()),
				attribute.String("taxonomy", string(res.Taxonomy)),
			)
			return res, nil
		}
	}
	return Result{}, nil
}

func (r *Resolver) resolveGroup(ctx context.Context, taxonomy term.Taxonomy, slugs []string) (Result, error) {
	sorted := make([]string, 0, len(slugs))
	for _, s := range slugs {
		// a blank slug would turn the title prefix into "<marker> <taxonomy> "
		if s != "" {
			sorted = append(sorted, s)
		}
	}
	slices.Sort(sorted)

	if r.policy == PolicyPooledRandom {
		return r.pooledRandom(ctx, taxonomy, sorted)
	}
	return r.firstMatch(ctx, taxonomy, sorted)
}

func (r *Resolver) firstMatch(ctx context.Context, taxonomy term.Taxonomy, slugs []string) (Result, error) {
	for _, slug := range slugs {
		id, ok, err := r.pick(ctx, taxonomy, slug)
		if err != nil {
			return Result{}, err
		}
		if ok {
			r.logger.Debug("Matched featured image",
				zap.String("taxonomy", string(taxonomy)), zap.String("slug", slug), zap.String("attachment_id", id.String()))
			return Result{Found: true, AttachmentID: id, Taxonomy: taxonomy, Slug: slug}, nil
		}
	}
	return Result{}, nil
}

func (r *Resolver) pooledRandom(ctx context.Context, taxonomy term.Taxonomy, slugs []string) (Result, error) {
	pool := make([]Result, 0, len(slugs))
	for _, slug := range slugs {
		id, ok, err := r.pick(ctx, taxonomy, slug)
		if err != nil {
			return Result{}, err
		}
		if ok {
			pool = append(pool, Result{Found: true, AttachmentID: id, Taxonomy: taxonomy, Slug: slug})
		}
	}
	if len(pool) == 0 {
		return Result{}, nil
	}

	chosen := pool[r.intn(len(pool))]
	r.logger.Debug("Picked featured image from pool",
		zap.String("taxonomy", string(taxonomy)), zap.Int("pool_size", len(pool)),
		zap.String("slug", chosen.Slug), zap.String("attachment_id", chosen.AttachmentID.String()))
	return chosen, nil
}

// pick asks the lookup for one eligible image. Should the lookup return
// several, any of them is an equally valid representative.
func (r *Resolver) pick(ctx context.Context, taxonomy term.Taxonomy, slug string) (uuid.UUID, bool, error) {
	found, err := r.lookup.FindEligible(ctx, taxonomy, slug, 1)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup %s %q: %w", taxonomy, slug, err)
	}
	switch len(found) {
	case 0:
		return uuid.Nil, false, nil
	case 1:
		return found[0].ID, true, nil
	}
	return found[r.intn(len(found))].ID, true, nil
}
