package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/model"
	"github.com/lifelog/lifelog/internal/repository"
	"github.com/lifelog/lifelog/internal/storage"
	"github.com/lifelog/lifelog/internal/validation"
)

// UploadFile is one file in an upload batch, already decoded from transport.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentService coordinates the dual write between the object store and
// the metadata rows. A batch is all-or-nothing from the caller's perspective:
// validation failures happen before any side effect, and a metadata failure
// after upload triggers best-effort deletion of the batch's objects.
type AttachmentService struct {
	events      repository.EventRepository
	attachments repository.AttachmentRepository
	storage     storage.Storage
	constraints validation.UploadConstraints
	maxPerEvent int
	presignTTL  time.Duration
}

func NewAttachmentService(
	events repository.EventRepository,
	attachments repository.AttachmentRepository,
	storage storage.Storage,
	constraints validation.UploadConstraints,
	maxPerEvent int,
	presignTTL time.Duration,
) *AttachmentService {
	return &AttachmentService{
		events:      events,
		attachments: attachments,
		storage:     storage,
		constraints: constraints,
		maxPerEvent: maxPerEvent,
		presignTTL:  presignTTL,
	}
}

func (s *AttachmentService) UploadBatch(ctx context.Context, eventID int64, files []UploadFile) ([]*model.Attachment, error) {
	_, err := s.events.ByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	existing, err := s.attachments.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodePersistence, "failed to count attachments", err)
	}
	if existing+len(files) > s.maxPerEvent {
		return nil, apperr.Newf(apperr.CodeQuotaExceeded,
			"too many attachments, max allowed per event is %d", s.maxPerEvent)
	}

	// Validate the whole batch, in input order, before any upload.
	for _, file := range files {
		err := s.constraints.ValidateUpload(file.Filename, file.ContentType, file.Size)
		if err != nil {
			return nil, err
		}
	}

	uploaded := make([]string, 0, len(files))
	attachments := make([]*model.Attachment, 0, len(files))
	for _, file := range files {
		key, err := s.storage.Put(ctx, file.Filename, file.Body, file.ContentType, file.Size)
		if err != nil {
			// Compensate exactly the subset uploaded so far.
			s.deleteKeys(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, key)
		attachments = append(attachments, &model.Attachment{
			EventID:     eventID,
			Key:         key,
			Filename:    file.Filename,
			ContentType: file.ContentType,
			SizeBytes:   file.Size,
			UploadedAt:  time.Now().UTC(),
		})
	}

	err = s.attachments.CreateBatch(ctx, attachments)
	if err != nil {
		// Objects are already in the store but metadata never committed:
		// roll the storage side back before surfacing the original error.
		s.deleteKeys(ctx, uploaded)
		return nil, apperr.Wrap(apperr.CodePersistence, "failed to save attachment metadata", err)
	}

	return attachments, nil
}

// PresignedURL issues a time-limited download URL for a registered key.
// Metadata is the source of truth: unknown keys are NotFound even if the
// store still holds a stale object, and no object existence check is made.
func (s *AttachmentService) PresignedURL(ctx context.Context, key string) (string, error) {
	_, err := s.attachments.ByKey(ctx, key)
	if err != nil {
		return "", err
	}

	return s.storage.PresignGet(ctx, key, s.presignTTL)
}

// PurgeForEvent deletes the objects behind the given keys. Callers invoke it
// strictly after the owning event's delete transaction has committed, so a
// failure here leaks a dangling object at worst; failures are logged and
// never escalated.
func (s *AttachmentService) PurgeForEvent(ctx context.Context, keys []string) {
	s.deleteKeys(ctx, keys)
}

func (s *AttachmentService) deleteKeys(ctx context.Context, keys []string) {
	for _, key := range keys {
		err := s.storage.Delete(ctx, key)
		if err != nil {
			slog.Error("failed to delete object from storage", "key", key, "error", err)
		}
	}
}
