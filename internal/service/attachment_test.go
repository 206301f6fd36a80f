package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/model"
	"github.com/lifelog/lifelog/internal/repository"
	"github.com/lifelog/lifelog/internal/testutil"
	"github.com/lifelog/lifelog/internal/validation"
)

func newTestStack(t *testing.T, store *testutil.MemStorage, maxPerEvent int) (*EventService, *AttachmentService) {
	t.Helper()

	database := testutil.NewDB(t)
	events := repository.NewEventRepository(database)
	attachments := repository.NewAttachmentRepository(database)
	constraints := validation.NewUploadConstraints([]string{"text/plain", "image/png"}, 1024)

	attachmentService := NewAttachmentService(events, attachments, store, constraints, maxPerEvent, 15*time.Minute)
	eventService := NewEventService(events, attachmentService)
	return eventService, attachmentService
}

func textFile(name, content string) UploadFile {
	return UploadFile{
		Filename:    name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func mustCreateEvent(t *testing.T, events *EventService, title string) *model.Event {
	t.Helper()

	event, err := events.Create(context.Background(), CreateEventInput{Title: title})
	require.NoError(t, err)
	return event
}

func TestUploadBatch_Success(t *testing.T) {
	store := testutil.NewMemStorage()
	events, attachments := newTestStack(t, store, 10)
	ctx := context.Background()

	event := mustCreateEvent(t, events, "trip")

	created, err := attachments.UploadBatch(ctx, event.ID, []UploadFile{
		textFile("notes.txt", "day one"),
		textFile("packing.txt", "tent, stove"),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, attachment := range created {
		assert.NotZero(t, attachment.ID)
		assert.NotEmpty(t, attachment.Key)
		assert.True(t, store.Has(attachment.Key))
	}
	assert.Equal(t, 2, store.Len())

	got, err := events.Get(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, got.Attachments, 2)
	assert.Equal(t, "notes.txt", got.Attachments[0].Filename)
}

func TestUploadBatch_EventNotFound(t *testing.T) {
	store := testutil.NewMemStorage()
	_, attachments := newTestStack(t, store, 10)

	_, err := attachments.UploadBatch(context.Background(), 404, []UploadFile{textFile("a.txt", "x")})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.Zero(t, store.Len())
}

func TestUploadBatch_QuotaBoundary(t *testing.T) {
	store := testutil.NewMemStorage()
	events, attachments := newTestStack(t, store, 2)
	ctx := context.Background()

	event := mustCreateEvent(t, events, "bounded")

	// One existing attachment, quota of two.
	_, err := attachments.UploadBatch(ctx, event.ID, []UploadFile{textFile("first.txt", "1")})
	require.NoError(t, err)

	// Two more would exceed the quota: whole batch rejected, nothing stored.
	_, err = attachments.UploadBatch(ctx, event.ID, []UploadFile{
		textFile("second.txt", "2"),
		textFile("third.txt", "3"),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeQuotaExceeded))
	assert.Equal(t, 1, store.Len())

	// Exactly one more fills the quota.
	_, err = attachments.UploadBatch(ctx, event.ID, []UploadFile{textFile("second.txt", "2")})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestUploadBatch_UnsupportedTypeAbortsBeforeUpload(t *testing.T) {
	store := testutil.NewMemStorage()
	events, attachments := newTestStack(t, store, 10)
	ctx := context.Background()

	event := mustCreateEvent(t, events, "mixed batch")

	_, err := attachments.UploadBatch(ctx, event.ID, []UploadFile{
		textFile("ok.txt", "fine"),
		{Filename: "virus.exe", ContentType: "application/x-msdownload", Size: 4, Body: strings.NewReader("nope")},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnsupportedType))

	// Validation failed before any side effect.
	assert.Zero(t, store.PutCalls)
	assert.Zero(t, store.Len())

	got, err := events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attachments)
}

func TestUploadBatch_TooLarge(t *testing.T) {
	store := testutil.NewMemStorage()
	events, attachments := newTestStack(t, store, 10)
	ctx := context.Background()

	event := mustCreateEvent(t, events, "big file")

	_, err := attachments.UploadBatch(ctx, event.ID, []UploadFile{
		{Filename: "huge.txt", ContentType: "text/plain", Size: 4096, Body: strings.NewReader("...")},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeTooLarge))
	assert.Zero(t, store.PutCalls)
}

func TestUploadBatch_StorageFailureCompensatesUploadedSubset(t *testing.T) {
	store := testutil.NewMemStorage()
	store.FailPutAt = 2
	events, attachments := newTestStack(t, store, 10)
	ctx := context.Background()

	event := mustCreateEvent(t, events, "flaky backend")

	_, err := attachments.UploadBatch(ctx, event.ID, []UploadFile{
		textFile("a.txt", "a"),
		textFile("b.txt", "b"),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeStorage))

	// The first object was uploaded and then deleted again.
	assert.Equal(t, 2, store.PutCalls)
	assert.Zero(t, store.Len())

	got, err := events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attachments)
}

type failingAttachmentRepo struct {
	repository.AttachmentRepository
}

func (f *failingAttachmentRepo) CreateBatch(ctx context.Context, attachments []*model.Attachment) error {
	return errors.New("database is locked")
}

func TestUploadBatch_MetadataFailureCompensatesAllObjects(t *testing.T) {
	store := testutil.NewMemStorage()
	database := testutil.NewDB(t)
	events := repository.NewEventRepository(database)
	attachments := &failingAttachmentRepo{repository.NewAttachmentRepository(database)}
	constraints := validation.NewUploadConstraints([]string{"text/plain"}, 1024)
	svc := NewAttachmentService(events, attachments, store, constraints, 10, 15*time.Minute)
	ctx := context.Background()

	event := &model.Event{CreatedAt: time.Now().UTC(), Timestamp: time.Now().UTC(), Title: "doomed"}
	require.NoError(t, events.Create(ctx, event))

	_, err := svc.UploadBatch(ctx, event.ID, []UploadFile{
		textFile("a.txt", "a"),
		textFile("b.txt", "b"),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodePersistence))

	// Both uploads were rolled back after the metadata transaction failed.
	assert.Equal(t, 2, store.PutCalls)
	assert.Zero(t, store.Len())
}

func TestPresignedURL(t *testing.T) {
	store := testutil.NewMemStorage()
	events, attachments := newTestStack(t, store, 10)
	ctx := context.Background()

	_, err := attachments.PresignedURL(ctx, "never-registered")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	event := mustCreateEvent(t, events, "linked")
	created, err := attachments.UploadBatch(ctx, event.ID, []UploadFile{textFile("a.txt", "a")})
	require.NoError(t, err)

	url, err := attachments.PresignedURL(ctx, created[0].Key)
	require.NoError(t, err)
	assert.Contains(t, url, created[0].Key)
}

func TestPurgeForEvent_SwallowsDeleteFailures(t *testing.T) {
	store := testutil.NewMemStorage()
	store.FailDelete = true
	_, attachments := newTestStack(t, store, 10)

	// Must not panic or surface an error; metadata is already gone.
	attachments.PurgeForEvent(context.Background(), []string{"gone1", "gone2"})
}
