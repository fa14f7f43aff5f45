package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/khoahotran/auto-featured-image/internal/domain/post"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

type postgresMetaRepo struct {
	db DB
}

func NewPostgresMetaRepo(db DB) post.MetaRepository {
	return &postgresMetaRepo{db: db}
}

// Add inserts a meta row. For unique keys the existence check and the insert
// run in one transaction holding an advisory lock on (post, key), so two
// concurrent writers cannot both succeed.
func (r *postgresMetaRepo) Add(ctx context.Context, postID uuid.UUID, key, value string, unique bool) (bool, error) {
	if !unique {
		query := `INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)`
		if _, err := r.db.Exec(ctx, query, postID, key, value); err != nil {
			return false, apperror.NewInternal("failed to add post meta", err)
		}
		return true, nil
	}

	var added bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::uuid::text || ':' || $2::text))`, postID, key); err != nil {
			return err
		}
		query := `
			INSERT INTO post_meta (post_id, meta_key, meta_value)
			SELECT $1::uuid, $2::text, $3::text
			WHERE NOT EXISTS (SELECT 1 FROM post_meta WHERE post_id = $1::uuid AND meta_key = $2::text)
		`
		cmdTag, err := tx.Exec(ctx, query, postID, key, value)
		if err != nil {
			return err
		}
		added = cmdTag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, apperror.NewInternal("failed to add unique post meta", err)
	}
	return added, nil
}

func (r *postgresMetaRepo) Get(ctx context.Context, postID uuid.UUID, key string) (string, bool, error) {
	query := `SELECT meta_value FROM post_meta WHERE post_id = $1 AND meta_key = $2 ORDER BY id LIMIT 1`
	var value string
	err := r.db.QueryRow(ctx, query, postID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, apperror.NewInternal("failed to get post meta", err)
	}
	return value, true, nil
}
