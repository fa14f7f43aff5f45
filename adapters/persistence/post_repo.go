package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

type postgresPostRepo struct {
	db DB
}

func NewPostgresPostRepo(db DB) post.Repository {
	return &postgresPostRepo{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var postColumns = []string{
	"id", "owner_id", "slug", "title", "content_markdown", "status",
	"metadata", "published_at", "created_at", "updated_at",
}

func scanPost(row pgx.Row) (*post.Post, error) {
	p := &post.Post{}
	var metadataBytes []byte
	var publishedAt *time.Time

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Slug,
		&p.Title,
		&p.ContentMarkdown,
		&p.Status,
		&metadataBytes,
		&publishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, post.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to scan post row: %w", err)
	}

	p.PublishedAt = publishedAt
	if err := json.Unmarshal(metadataBytes, &p.Metadata); err != nil || p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	return p, nil
}

func scanPosts(rows pgx.Rows) ([]*post.Post, error) {
	defer rows.Close()
	posts := make([]*post.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *postgresPostRepo) Save(ctx context.Context, p *post.Post) error {
	metadataBytes, err := json.Marshal(p.Metadata)
	if err != nil {
		return apperror.NewInternal("failed to marshal post metadata", err)
	}

	query := `
		INSERT INTO posts (id, owner_id, slug, title, content_markdown, status, metadata, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.OwnerID, p.Slug, p.Title, p.ContentMarkdown, p.Status,
		metadataBytes, p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("post", "slug", p.Slug)
		}
		return apperror.NewInternal("failed to save post", err)
	}
	return nil
}

func (r *postgresPostRepo) Update(ctx context.Context, p *post.Post) error {
	metadataBytes, err := json.Marshal(p.Metadata)
	if err != nil {
		return apperror.NewInternal("failed to marshal post metadata", err)
	}

	query := `
		UPDATE posts SET
			slug = $2, title = $3, content_markdown = $4, status = $5,
			metadata = $6, published_at = $7, updated_at = $8
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.ID, p.Slug, p.Title, p.ContentMarkdown, p.Status,
		metadataBytes, p.PublishedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("post", "slug", p.Slug)
		}
		return apperror.NewInternal("failed to update post", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return post.ErrPostNotFound
	}
	return nil
}

func (r *postgresPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	sql, args, err := psql.Select(postColumns...).From("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find post query", err)
	}
	return scanPost(r.db.QueryRow(ctx, sql, args...))
}

func (r *postgresPostRepo) list(ctx context.Context, builder sq.SelectBuilder) ([]*post.Post, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list posts query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query posts", err)
	}
	return scanPosts(rows)
}

func (r *postgresPostRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*post.Post, error) {
	return r.list(ctx, psql.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

func (r *postgresPostRepo) ListPublished(ctx context.Context, limit, offset int) ([]*post.Post, error) {
	return r.list(ctx, psql.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"status": post.StatusPublished}).
		OrderBy("published_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

func (r *postgresPostRepo) ListPublishedWithoutMeta(ctx context.Context, key string, limit int) ([]*post.Post, error) {
	missing := sq.Expr("NOT EXISTS (SELECT 1 FROM post_meta pm WHERE pm.post_id = posts.id AND pm.meta_key = ?)", key)
	return r.list(ctx, psql.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"status": post.StatusPublished}).
		Where(missing).
		OrderBy("published_at ASC").
		Limit(uint64(limit)))
}
