package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/model"
)

type AttachmentRepository interface {
	// CreateBatch inserts all rows in a single transaction; either every
	// attachment gets an id or none is persisted.
	CreateBatch(ctx context.Context, attachments []*model.Attachment) error
	CountByEvent(ctx context.Context, eventID int64) (int, error)
	ByKey(ctx context.Context, key string) (*model.Attachment, error)
	ByEvent(ctx context.Context, eventID int64) ([]*model.Attachment, error)
	AllKeys(ctx context.Context) ([]string, error)
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) CreateBatch(ctx context.Context, attachments []*model.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO attachments (event_id, key, filename, content_type, size_bytes, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	for _, attachment := range attachments {
		err := tx.QueryRowxContext(ctx, query,
			attachment.EventID,
			attachment.Key,
			attachment.Filename,
			attachment.ContentType,
			attachment.SizeBytes,
			attachment.UploadedAt.UTC(),
		).Scan(&attachment.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *attachmentRepository) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attachments WHERE event_id = $1`

	err := r.db.GetContext(ctx, &count, query, eventID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *attachmentRepository) ByKey(ctx context.Context, key string) (*model.Attachment, error) {
	attachment := &model.Attachment{}
	query := `SELECT * FROM attachments WHERE key = $1`

	err := r.db.GetContext(ctx, attachment, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "attachment not found")
	}
	if err != nil {
		return nil, err
	}

	return attachment, nil
}

func (r *attachmentRepository) ByEvent(ctx context.Context, eventID int64) ([]*model.Attachment, error) {
	attachments := []*model.Attachment{}
	query := `SELECT * FROM attachments WHERE event_id = $1 ORDER BY uploaded_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &attachments, query, eventID)
	if err != nil {
		return nil, err
	}

	return attachments, nil
}

// AllKeys lists every registered storage key; used by the orphan sweep.
func (r *attachmentRepository) AllKeys(ctx context.Context) ([]string, error) {
	keys := []string{}
	query := `SELECT key FROM attachments ORDER BY id`

	err := r.db.SelectContext(ctx, &keys, query)
	if err != nil {
		return nil, err
	}

	return keys, nil
}
