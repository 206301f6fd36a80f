package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/model"
)

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// MaxPageSize caps page_size for list queries.
const MaxPageSize = 200

// ListFilter narrows a list query. Zero values mean "no filter". Tags match
// events whose tag set intersects the given set; Start/End are inclusive
// bounds on the event timestamp.
type ListFilter struct {
	Query string
	Tags  []string
	Start *time.Time
	End   *time.Time
}

// EventPatch carries a partial update. A nil field is left untouched; a
// non-nil pointer to a zero value is a deliberate reset (e.g. clearing tags
// with an empty slice).
type EventPatch struct {
	Title       *string
	Description *string
	Timestamp   *time.Time
	Tags        *model.Tags
	Metadata    *model.Metadata
}

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	ByID(ctx context.Context, id int64) (*model.Event, error)
	List(ctx context.Context, filter ListFilter, sort SortOrder, page, pageSize int) ([]*model.Event, int, error)
	Update(ctx context.Context, id int64, patch EventPatch) (*model.Event, error)
	Delete(ctx context.Context, id int64) ([]string, error)
	AllNewestFirst(ctx context.Context) ([]*model.Event, error)
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	query := `INSERT INTO events (created_at, timestamp, title, description, tags, metadata)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		event.CreatedAt.UTC(),
		event.Timestamp.UTC(),
		event.Title,
		event.Description,
		event.Tags,
		event.Metadata,
	).Scan(&event.ID)
	if err != nil {
		return err
	}

	if event.Attachments == nil {
		event.Attachments = []*model.Attachment{}
	}
	return nil
}

func (r *eventRepository) ByID(ctx context.Context, id int64) (*model.Event, error) {
	event := &model.Event{}
	query := `SELECT * FROM events WHERE id = $1`

	err := r.db.GetContext(ctx, event, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "event not found")
	}
	if err != nil {
		return nil, err
	}

	err = r.loadAttachments(ctx, []*model.Event{event})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// List runs two queries, count and page, against the identical predicate so
// total always reflects the filtered set regardless of pagination.
func (r *eventRepository) List(ctx context.Context, filter ListFilter, sort SortOrder, page, pageSize int) ([]*model.Event, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	where, args := buildFilter(filter)

	query, queryArgs, err := sqlx.In(`SELECT COUNT(*) FROM events`+where, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = r.db.GetContext(ctx, &total, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}

	// Ties broken by id so ordering is deterministic across pages.
	order := ` ORDER BY timestamp DESC, id DESC`
	if sort == SortOldest {
		order = ` ORDER BY timestamp ASC, id ASC`
	}

	pageArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
	query, queryArgs, err = sqlx.In(`SELECT * FROM events`+where+order+` LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	events := []*model.Event{}
	err = r.db.SelectContext(ctx, &events, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}

	err = r.loadAttachments(ctx, events)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// buildFilter composes the WHERE clause shared by the count and page queries.
// Placeholders are `?` so sqlx.In can expand the tag set; tag overlap uses the
// JSON array stored in the tags column. A Postgres deployment would swap the
// json_each predicate for the native array overlap operator.
func buildFilter(f ListFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		conds = append(conds, `(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)`)
		args = append(args, like, like)
	}
	if len(f.Tags) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM json_each(events.tags) WHERE json_each.value IN (?))`)
		args = append(args, f.Tags)
	}
	if f.Start != nil {
		conds = append(conds, `timestamp >= ?`)
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		conds = append(conds, `timestamp <= ?`)
		args = append(args, f.End.UTC())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *eventRepository) Update(ctx context.Context, id int64, patch EventPatch) (*model.Event, error) {
	var sets []string
	var args []any

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Timestamp != nil {
		sets = append(sets, "timestamp = ?")
		args = append(args, patch.Timestamp.UTC())
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *patch.Tags)
	}
	if patch.Metadata != nil {
		sets = append(sets, "metadata = ?")
		args = append(args, *patch.Metadata)
	}

	// Empty patch: nothing to write, return the current row.
	if len(sets) == 0 {
		return r.ByID(ctx, id)
	}

	args = append(args, id)
	query := "UPDATE events SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "event not found")
	}

	return r.ByID(ctx, id)
}

// Delete removes the event and, via FK cascade, its attachment rows in one
// transaction. It returns the storage keys that were attached so the caller
// can purge the objects after the transaction has committed.
func (r *eventRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	keys := []string{}
	err = tx.SelectContext(ctx, &keys, `SELECT key FROM attachments WHERE event_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "event not found")
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return keys, nil
}

func (r *eventRepository) AllNewestFirst(ctx context.Context) ([]*model.Event, error) {
	events := []*model.Event{}
	query := `SELECT * FROM events ORDER BY timestamp DESC, id DESC`

	err := r.db.SelectContext(ctx, &events, query)
	if err != nil {
		return nil, err
	}

	err = r.loadAttachments(ctx, events)
	if err != nil {
		return nil, err
	}

	return events, nil
}

// loadAttachments populates Attachments for the given events in one query,
// ordered stably by upload time.
func (r *eventRepository) loadAttachments(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(events))
	byID := make(map[int64]*model.Event, len(events))
	for _, event := range events {
		event.Attachments = []*model.Attachment{}
		ids = append(ids, event.ID)
		byID[event.ID] = event
	}

	query, args, err := sqlx.In(`SELECT * FROM attachments WHERE event_id IN (?) ORDER BY uploaded_at ASC, id ASC`, ids)
	if err != nil {
		return err
	}

	var attachments []*model.Attachment
	err = r.db.SelectContext(ctx, &attachments, query, args...)
	if err != nil {
		return err
	}

	for _, attachment := range attachments {
		event := byID[attachment.EventID]
		if event != nil {
			event.Attachments = append(event.Attachments, attachment)
		}
	}
	return nil
}
