package service

import (
	"context"
	"time"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/model"
	"github.com/lifelog/lifelog/internal/repository"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 10000
)

// CreateEventInput carries the client-supplied fields for a new event.
// Timestamp defaults to the creation time when absent.
type CreateEventInput struct {
	Title       string
	Description *string
	Tags        []string
	Timestamp   *time.Time
	Metadata    map[string]any
}

type EventService struct {
	events      repository.EventRepository
	attachments *AttachmentService
}

func NewEventService(events repository.EventRepository, attachments *AttachmentService) *EventService {
	return &EventService{
		events:      events,
		attachments: attachments,
	}
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*model.Event, error) {
	err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	err = validateDescription(input.Description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timestamp := now
	if input.Timestamp != nil {
		timestamp = input.Timestamp.UTC()
	}

	tags := model.Tags{}
	if input.Tags != nil {
		tags = model.Tags(input.Tags)
	}

	event := &model.Event{
		CreatedAt:   now,
		Timestamp:   timestamp,
		Title:       input.Title,
		Description: input.Description,
		Tags:        tags,
		Metadata:    model.Metadata(input.Metadata),
	}

	err = s.events.Create(ctx, event)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodePersistence, "failed to create event", err)
	}

	return event, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*model.Event, error) {
	return s.events.ByID(ctx, id)
}

func (s *EventService) List(ctx context.Context, filter repository.ListFilter, sort repository.SortOrder, page, pageSize int) ([]*model.Event, int, error) {
	return s.events.List(ctx, filter, sort, page, pageSize)
}

func (s *EventService) Update(ctx context.Context, id int64, patch repository.EventPatch) (*model.Event, error) {
	if patch.Title != nil {
		err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
	}
	err := validateDescription(patch.Description)
	if err != nil {
		return nil, err
	}

	return s.events.Update(ctx, id, patch)
}

// Delete removes the event and its attachment rows, then purges the storage
// objects. The purge runs only after the metadata transaction has committed,
// so there is no window where a row references an already-deleted object.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	keys, err := s.events.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.attachments.PurgeForEvent(ctx, keys)
	return nil
}

// ExportAll returns every event with attachments, newest first, unpaginated.
func (s *EventService) ExportAll(ctx context.Context) ([]*model.Event, error) {
	return s.events.AllNewestFirst(ctx)
}

func validateTitle(title string) error {
	if title == "" {
		return apperr.New(apperr.CodeValidation, "title is required")
	}
	if len(title) > maxTitleLen {
		return apperr.Newf(apperr.CodeValidation, "title exceeds %d characters", maxTitleLen)
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && len(*description) > maxDescriptionLen {
		return apperr.Newf(apperr.CodeValidation, "description exceeds %d characters", maxDescriptionLen)
	}
	return nil
}
