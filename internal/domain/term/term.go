package term

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Taxonomy is the classification axis a term belongs to.
type Taxonomy string

const (
	TaxonomyTag      Taxonomy = "tag"
	TaxonomyCategory Taxonomy = "category"
)

func (t Taxonomy) Valid() bool {
	return t == TaxonomyTag || t == TaxonomyCategory
}

type Term struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Taxonomy Taxonomy  `json:"taxonomy"`
}

type Relation struct {
	TermID uuid.UUID `json:"term_id"`
	PostID uuid.UUID `json:"post_id"`
}

// Slugify lowercases name and joins its words with '-'.
func Slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// Slugs returns the slugs of terms in their given order.
func Slugs(terms []Term) []string {
	slugs := make([]string, len(terms))
	for i, t := range terms {
		slugs[i] = t.Slug
	}
	return slugs
}

type Repository interface {
	FindOrCreateTerms(ctx context.Context, taxonomy Taxonomy, names []string) ([]Term, error)
	SetTermsForPost(ctx context.Context, postID uuid.UUID, taxonomy Taxonomy, termIDs []uuid.UUID) error
	GetTermsForPost(ctx context.Context, postID uuid.UUID, taxonomy Taxonomy) ([]Term, error)
}
