package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/khoahotran/auto-featured-image/internal/domain/term"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

type postgresTermRepo struct {
	db DB
}

func NewPostgresTermRepo(db DB) term.Repository {
	return &postgresTermRepo{db: db}
}

func (r *postgresTermRepo) FindOrCreateTerms(ctx context.Context, taxonomy term.Taxonomy, names []string) ([]term.Term, error) {
	if !taxonomy.Valid() {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown taxonomy %q", taxonomy), nil)
	}

	termsToFind := make(map[string]string)
	for _, name := range names {
		if slug := term.Slugify(name); slug != "" {
			termsToFind[slug] = strings.TrimSpace(name)
		}
	}
	if len(termsToFind) == 0 {
		return []term.Term{}, nil
	}

	slugs := make([]string, 0, len(termsToFind))
	insertQuery := `INSERT INTO terms (name, slug, taxonomy) VALUES `
	var inserts []string
	var args []any
	i := 1
	for slug, name := range termsToFind {
		slugs = append(slugs, slug)
		inserts = append(inserts, fmt.Sprintf("($%d, $%d, $%d)", i, i+1, i+2))
		args = append(args, name, slug, string(taxonomy))
		i += 3
	}
	insertQuery += strings.Join(inserts, ",") + " ON CONFLICT (taxonomy, slug) DO NOTHING"

	if _, err := r.db.Exec(ctx, insertQuery, args...); err != nil {
		return nil, apperror.NewInternal("failed to bulk insert terms", err)
	}

	query := `SELECT id, name, slug, taxonomy FROM terms WHERE taxonomy = $1 AND slug = ANY($2) ORDER BY slug`
	rows, err := r.db.Query(ctx, query, string(taxonomy), slugs)
	if err != nil {
		return nil, apperror.NewInternal("failed to retrieve terms", err)
	}
	return scanTerms(rows)
}

func (r *postgresTermRepo) SetTermsForPost(ctx context.Context, postID uuid.UUID, taxonomy term.Taxonomy, termIDs []uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		deleteQuery := `
			DELETE FROM term_relations tr
			USING terms t
			WHERE tr.term_id = t.id AND tr.post_id = $1 AND t.taxonomy = $2
		`
		if _, err := tx.Exec(ctx, deleteQuery, postID, string(taxonomy)); err != nil {
			return apperror.NewInternal("failed to delete old terms", err)
		}

		if len(termIDs) == 0 {
			return nil
		}

		rowsToInsert := make([][]any, len(termIDs))
		for i, termID := range termIDs {
			rowsToInsert[i] = []any{termID, postID}
		}

		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"term_relations"},
			[]string{"term_id", "post_id"},
			pgx.CopyFromRows(rowsToInsert),
		)
		if err != nil {
			return apperror.NewInternal("failed to set new terms", err)
		}
		return nil
	})
}

// GetTermsForPost returns the post's terms in no particular order.
func (r *postgresTermRepo) GetTermsForPost(ctx context.Context, postID uuid.UUID, taxonomy term.Taxonomy) ([]term.Term, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.taxonomy
		FROM terms t
		JOIN term_relations tr ON t.id = tr.term_id
		WHERE tr.post_id = $1 AND t.taxonomy = $2
	`
	rows, err := r.db.Query(ctx, query, postID, string(taxonomy))
	if err != nil {
		return nil, apperror.NewInternal("failed to query terms", err)
	}
	return scanTerms(rows)
}

func scanTerms(rows pgx.Rows) ([]term.Term, error) {
	defer rows.Close()
	terms := make([]term.Term, 0)
	for rows.Next() {
		var t term.Term
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Taxonomy); err != nil {
			return nil, apperror.NewInternal("failed to scan term", err)
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating terms", err)
	}
	return terms, nil
}
