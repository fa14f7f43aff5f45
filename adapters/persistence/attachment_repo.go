package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/khoahotran/auto-featured-image/internal/domain/attachment"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
)

type postgresAttachmentRepo struct {
	db DB
}

func NewPostgresAttachmentRepo(db DB) attachment.Repository {
	return &postgresAttachmentRepo{db: db}
}

var attachmentColumns = []string{
	"id", "owner_id", "title", "mime_type", "status", "url",
	"thumbnail_url", "metadata", "created_at", "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns prefix into a LIKE pattern that matches it literally.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

func scanAttachment(row pgx.Row) (*attachment.Attachment, error) {
	a := &attachment.Attachment{}
	var metadataBytes []byte

	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Title, &a.MimeType, &a.Status, &a.URL,
		&a.ThumbnailURL, &metadataBytes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("attachment", "")
		}
		return nil, apperror.NewInternal("failed to scan attachment row", err)
	}

	if err := json.Unmarshal(metadataBytes, &a.Metadata); err != nil || a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	return a, nil
}

func (r *postgresAttachmentRepo) query(ctx context.Context, builder sq.SelectBuilder) ([]*attachment.Attachment, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build attachment query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query attachments", err)
	}
	defer rows.Close()

	items := make([]*attachment.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating attachment rows", err)
	}
	return items, nil
}

func (r *postgresAttachmentRepo) Save(ctx context.Context, a *attachment.Attachment) error {
	metadataBytes, err := json.Marshal(a.Metadata)
	if err != nil {
		return apperror.NewInternal("failed to marshal attachment metadata", err)
	}

	query := `
		INSERT INTO attachments (id, owner_id, title, mime_type, status, url, thumbnail_url, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		a.ID, a.OwnerID, a.Title, a.MimeType, a.Status, a.URL,
		a.ThumbnailURL, metadataBytes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to save attachment", err)
	}
	return nil
}

func (r *postgresAttachmentRepo) Update(ctx context.Context, a *attachment.Attachment) error {
	metadataBytes, err := json.Marshal(a.Metadata)
	if err != nil {
		return apperror.NewInternal("failed to marshal attachment metadata", err)
	}

	query := `
		UPDATE attachments SET
			title = $2, mime_type = $3, status = $4, url = $5,
			thumbnail_url = $6, metadata = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		a.ID, a.Title, a.MimeType, a.Status, a.URL, a.ThumbnailURL, metadataBytes,
	)
	if err != nil {
		return apperror.NewInternal("failed to update attachment", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("attachment", a.ID.String())
	}
	return nil
}

func (r *postgresAttachmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*attachment.Attachment, error) {
	sql, args, err := psql.Select(attachmentColumns...).From("attachments").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find attachment query", err)
	}
	a, err := scanAttachment(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NewNotFound("attachment", id.String())
	}
	return a, err
}

func (r *postgresAttachmentRepo) ListByTitlePrefix(ctx context.Context, prefix string, limit, offset int) ([]*attachment.Attachment, error) {
	builder := psql.Select(attachmentColumns...).
		From("attachments").
		Where(sq.NotEq{"status": attachment.StatusTrash}).
		OrderBy("title ASC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if prefix != "" {
		builder = builder.Where(sq.Like{"title": likePrefix(prefix)})
	}
	return r.query(ctx, builder)
}

func (r *postgresAttachmentRepo) FindEligible(ctx context.Context, prefix string, limit int) ([]*attachment.Attachment, error) {
	return r.query(ctx, psql.Select(attachmentColumns...).
		From("attachments").
		Where(sq.Eq{"status": attachment.StatusInherit}).
		Where(sq.Like{"mime_type": "image/%"}).
		Where(sq.Like{"title": likePrefix(prefix)}).
		OrderBy("random()").
		Limit(uint64(limit)))
}
