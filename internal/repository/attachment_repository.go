package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// ============================================
// Attachment Repository (sqlx)
// ============================================

type sqlxAttachmentRepository struct {
	db *sqlx.DB
}

func (r *sqlxAttachmentRepository) Create(ctx context.Context, attachment *Attachment) error {
	query := `
		INSERT INTO attachments (owner_kind, owner_id, filename, original_name, file_size, mime_type, storage_path, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		attachment.OwnerKind, attachment.OwnerID, attachment.Filename,
		attachment.OriginalName, attachment.FileSize, attachment.MimeType,
		attachment.StoragePath, attachment.UploaderID,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *sqlxAttachmentRepository) FindByID(ctx context.Context, id string) (*Attachment, error) {
	query := `
		SELECT id, owner_kind, owner_id, filename, original_name, file_size, mime_type, storage_path, uploader_id, created_at
		FROM attachments WHERE id = $1
	`
	a := &Attachment{}
	err := r.db.GetContext(ctx, a, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *sqlxAttachmentRepository) FindByOwner(ctx context.Context, ownerKind, ownerID string) ([]*Attachment, error) {
	query := `
		SELECT id, owner_kind, owner_id, filename, original_name, file_size, mime_type, storage_path, uploader_id, created_at
		FROM attachments
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY created_at
	`
	var attachments []*Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, ownerKind, ownerID); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *sqlxAttachmentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM attachments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
